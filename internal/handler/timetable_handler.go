package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/middleware"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
	"github.com/noah-isme/exam-timetable-api/pkg/response"
)

type timetableService interface {
	Normalize(ctx context.Context, req dto.TimetableRequest) ([]models.ExamSession, error)
	Detect(ctx context.Context, req dto.TimetableRequest) (*dto.DetectResponse, bool, error)
	Resolve(ctx context.Context, req dto.ResolveRequest) (*models.ResolutionResult, error)
	Suggest(ctx context.Context, req dto.SuggestionsRequest) ([]models.Suggestion, error)
	Fatigue(ctx context.Context, req dto.TimetableRequest) ([]models.FatigueEntry, error)
	Impact(ctx context.Context, req dto.ImpactRequest) (*models.ImpactSummary, error)
	Analyze(ctx context.Context, req dto.TimetableRequest, source models.RunSource) (*models.TimetableRun, error)
	ListRuns(ctx context.Context, query dto.RunListQuery) ([]models.TimetableRunMeta, *models.Pagination, error)
	GetRun(ctx context.Context, id string) (*models.TimetableRun, error)
	DeleteRun(ctx context.Context, id string) error
}

type timetableImporter interface {
	Import(ctx context.Context, filename, contentType string, r io.Reader) (*models.TimetableRun, error)
}

// TimetableHandler exposes the conflict engine over HTTP.
type TimetableHandler struct {
	service  timetableService
	importer timetableImporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService, importer timetableImporter) *TimetableHandler {
	return &TimetableHandler{service: service, importer: importer}
}

// Normalize godoc
// @Summary Normalize raw exam records
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Raw exams"
// @Success 200 {object} response.Envelope
// @Router /timetables/normalize [post]
func (h *TimetableHandler) Normalize(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	sessions, err := h.service.Normalize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Detect godoc
// @Summary Detect timetable conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Raw exams"
// @Success 200 {object} response.Envelope
// @Router /timetables/detect [post]
func (h *TimetableHandler) Detect(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	result, cacheHit, err := h.service.Detect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Resolve godoc
// @Summary Auto-resolve conflicts
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ResolveRequest true "Exams and conflicts"
// @Success 200 {object} response.Envelope
// @Router /timetables/resolve [post]
func (h *TimetableHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Resolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Suggestions godoc
// @Summary Suggest alternative slots
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionsRequest true "Exams and conflicts"
// @Success 200 {object} response.Envelope
// @Router /timetables/suggestions [post]
func (h *TimetableHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionsRequest
	if !bindJSON(c, &req) {
		return
	}
	suggestions, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Fatigue godoc
// @Summary Student group fatigue report
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Raw exams"
// @Success 200 {object} response.Envelope
// @Router /timetables/fatigue [post]
func (h *TimetableHandler) Fatigue(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.service.Fatigue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Impact godoc
// @Summary Compare original and resolved timetables
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ImpactRequest true "Original, conflicts and resolved"
// @Success 200 {object} response.Envelope
// @Router /timetables/impact [post]
func (h *TimetableHandler) Impact(c *gin.Context) {
	var req dto.ImpactRequest
	if !bindJSON(c, &req) {
		return
	}
	summary, err := h.service.Impact(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Analyze godoc
// @Summary Run the full pipeline and store the result
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.TimetableRequest true "Raw exams"
// @Success 201 {object} response.Envelope
// @Router /timetables/analyze [post]
func (h *TimetableHandler) Analyze(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	run, err := h.service.Analyze(c.Request.Context(), req, models.RunSourceAPI)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, run)
}

// Upload godoc
// @Summary Analyze an uploaded timetable file
// @Tags Timetables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV, JSON or YAML timetable"
// @Success 201 {object} response.Envelope
// @Router /timetables/upload [post]
func (h *TimetableHandler) Upload(c *gin.Context) {
	if h.importer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "uploads are not configured"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close() //nolint:errcheck

	run, err := h.importer.Import(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, run)
}

// ListRuns godoc
// @Summary List stored timetable runs
// @Tags Timetables
// @Produce json
// @Param source query string false "api, upload or branch"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables/runs [get]
func (h *TimetableHandler) ListRuns(c *gin.Context) {
	var query dto.RunListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	runs, pagination, err := h.service.ListRuns(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// GetRun godoc
// @Summary Fetch a stored run
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/runs/{id} [get]
func (h *TimetableHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// DeleteRun godoc
// @Summary Delete a stored run
// @Tags Timetables
// @Param id path string true "Run ID"
// @Success 204
// @Router /timetables/runs/{id} [delete]
func (h *TimetableHandler) DeleteRun(c *gin.Context) {
	if err := h.service.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
