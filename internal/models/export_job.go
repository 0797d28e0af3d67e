package models

import "time"

// ExportVariant selects which part of a run is exported.
type ExportVariant string

const (
	ExportVariantOriginal  ExportVariant = "original"
	ExportVariantResolved  ExportVariant = "resolved"
	ExportVariantConflicts ExportVariant = "conflicts"
)

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is persisted metadata of an asynchronous timetable export.
type ExportJob struct {
	ID           string        `db:"id" json:"id"`
	RunID        string        `db:"run_id" json:"run_id"`
	Variant      ExportVariant `db:"variant" json:"variant"`
	Format       ExportFormat  `db:"format" json:"format"`
	Status       ExportStatus  `db:"status" json:"status"`
	Progress     int           `db:"progress" json:"progress"`
	ResultURL    *string       `db:"result_url" json:"result_url,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time    `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string       `db:"error_message" json:"error_message,omitempty"`
}
