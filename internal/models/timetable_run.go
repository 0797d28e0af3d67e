package models

import "time"

// RunSource records how a timetable run was submitted.
type RunSource string

const (
	RunSourceAPI    RunSource = "api"
	RunSourceUpload RunSource = "upload"
	RunSourceBranch RunSource = "branch"
)

// TimetableRun is the persisted result of one analysis pass over a timetable.
type TimetableRun struct {
	ID          string        `db:"id" json:"id"`
	Source      RunSource     `db:"source" json:"source"`
	Exams       ExamSessions  `db:"exams" json:"exams"`
	Conflicts   Conflicts     `db:"conflicts" json:"conflicts"`
	Resolved    ExamSessions  `db:"resolved" json:"resolved"`
	Changes     StringList    `db:"changes" json:"changes"`
	Summary     string        `db:"summary" json:"summary"`
	Suggestions Suggestions   `db:"suggestions" json:"suggestions"`
	Fatigue     FatigueReport `db:"fatigue" json:"fatigue"`
	Impact      ImpactSummary `db:"impact" json:"impact"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// TimetableRunMeta is the lightweight list view of a run.
type TimetableRunMeta struct {
	ID            string    `db:"id" json:"id"`
	Source        RunSource `db:"source" json:"source"`
	Summary       string    `db:"summary" json:"summary"`
	ExamCount     int       `db:"exam_count" json:"exam_count"`
	ConflictCount int       `db:"conflict_count" json:"conflict_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// TimetableRunFilter describes list parameters.
type TimetableRunFilter struct {
	Source   RunSource
	Page     int
	PageSize int
}
