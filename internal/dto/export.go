package dto

import "github.com/noah-isme/exam-timetable-api/internal/models"

// ExportRequest enqueues a rendering of a stored run.
type ExportRequest struct {
	RunID   string               `json:"runId" validate:"required"`
	Variant models.ExportVariant `json:"variant" validate:"required,oneof=original resolved conflicts"`
	Format  models.ExportFormat  `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges a queued export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports export progress and the download link once ready.
type ExportStatusResponse struct {
	ID        string               `json:"id"`
	RunID     string               `json:"runId"`
	Variant   models.ExportVariant `json:"variant"`
	Format    models.ExportFormat  `json:"format"`
	Status    models.ExportStatus  `json:"status"`
	Progress  int                  `json:"progress"`
	ResultURL *string              `json:"resultUrl,omitempty"`
	Error     *string              `json:"error,omitempty"`
}
