package handler

import "github.com/gin-gonic/gin"

// Register mounts the API routes on the versioned group.
func Register(api gin.IRoutes, timetables *TimetableHandler, exports *ExportHandler, branches *BranchHandler) {
	api.POST("/timetables/normalize", timetables.Normalize)
	api.POST("/timetables/detect", timetables.Detect)
	api.POST("/timetables/resolve", timetables.Resolve)
	api.POST("/timetables/suggestions", timetables.Suggestions)
	api.POST("/timetables/fatigue", timetables.Fatigue)
	api.POST("/timetables/impact", timetables.Impact)
	api.POST("/timetables/analyze", timetables.Analyze)
	api.POST("/timetables/upload", timetables.Upload)
	api.GET("/timetables/runs", timetables.ListRuns)
	api.GET("/timetables/runs/:id", timetables.GetRun)
	api.DELETE("/timetables/runs/:id", timetables.DeleteRun)

	api.POST("/exports", exports.Create)
	api.GET("/exports/:id", exports.Status)
	api.GET("/export/:token", exports.Download)

	api.POST("/branches/analyze", branches.Analyze)
	api.POST("/branches/:branch/exams", branches.AddExam)
	api.GET("/branches/:branch/exams", branches.List)
	api.DELETE("/branches/:branch/exams", branches.Clear)
}

// RegisterOps mounts health, readiness and metrics endpoints.
func RegisterOps(r gin.IRoutes, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)
	r.GET("/metrics/summary", metrics.Summary)
}
