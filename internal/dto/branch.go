package dto

import "github.com/noah-isme/exam-timetable-api/internal/models"

// BranchAnalyzeRequest selects the branches to compare. Empty means all.
type BranchAnalyzeRequest struct {
	Branches []string `json:"branches" validate:"omitempty,dive,required"`
}

// BranchTimetableResponse is one branch's stored timetable.
type BranchTimetableResponse struct {
	Branch string              `json:"branch"`
	Exams  []models.BranchExam `json:"exams"`
	Total  int                 `json:"total"`
}
