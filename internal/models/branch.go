package models

import "time"

// BranchExam is an exam stored in a branch timetable.
type BranchExam struct {
	ID        string      `db:"id" json:"id"`
	Branch    string      `db:"branch" json:"branch"`
	Exam      ExamSession `db:"exam" json:"exam"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// BranchAnalysis is the combined result of a multi-branch check.
type BranchAnalysis struct {
	Branches    []string              `json:"branches"`
	ExamCounts  map[string]int        `json:"examCounts"`
	CrossBranch []CrossBranchConflict `json:"crossBranchConflicts"`
	Conflicts   []Conflict            `json:"conflicts"`
	Summary     string                `json:"summary"`
	TotalExams  int                   `json:"totalExams"`
}
