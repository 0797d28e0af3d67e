package dto

import "github.com/noah-isme/exam-timetable-api/internal/models"

// TimetableRequest carries a raw timetable. Field names inside each exam are
// matched loosely (subject, Subject Name, course, ...).
type TimetableRequest struct {
	Exams []models.RawExam `json:"exams" validate:"required,min=1"`
}

// ResolveRequest asks for an automatic repair of the timetable. When
// Redetect is set the supplied conflicts are replaced by a fresh detection.
type ResolveRequest struct {
	Exams     []models.RawExam  `json:"exams" validate:"required,min=1"`
	Conflicts []models.Conflict `json:"conflicts"`
	Redetect  bool              `json:"redetect"`
}

// SuggestionsRequest asks for alternative slots for detected conflicts.
type SuggestionsRequest struct {
	Exams     []models.RawExam  `json:"exams" validate:"required,min=1"`
	Conflicts []models.Conflict `json:"conflicts"`
}

// ImpactRequest compares a timetable before and after resolution.
type ImpactRequest struct {
	Original  []models.RawExam  `json:"original" validate:"required,min=1"`
	Conflicts []models.Conflict `json:"conflicts"`
	Resolved  []models.RawExam  `json:"resolved" validate:"required,min=1"`
}

// DetectResponse lists conflicts with per-type totals.
type DetectResponse struct {
	Conflicts []models.Conflict           `json:"conflicts"`
	Total     int                         `json:"total"`
	ByType    map[models.ConflictType]int `json:"byType"`
}

// RunListQuery binds run listing parameters.
type RunListQuery struct {
	Source string `form:"source" validate:"omitempty,oneof=api upload branch"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
}
