package models

// ConflictType enumerates the rule that produced a conflict.
type ConflictType string

const (
	ConflictStudentClash      ConflictType = "STUDENT_CLASH"
	ConflictRoom              ConflictType = "ROOM_CONFLICT"
	ConflictFacultyClash      ConflictType = "FACULTY_CLASH"
	ConflictDepartmentClash   ConflictType = "DEPARTMENT_CLASH"
	ConflictCapacityViolation ConflictType = "CAPACITY_VIOLATION"
	ConflictContinuousExams   ConflictType = "CONTINUOUS_EXAMS"
	ConflictMissingData       ConflictType = "MISSING_DATA"
	ConflictDuplicateEntry    ConflictType = "DUPLICATE_ENTRY"
	ConflictExamOnHoliday     ConflictType = "EXAM_ON_HOLIDAY"
	ConflictInvalidTimeSlot   ConflictType = "INVALID_TIME_SLOT"
)

// ConflictTypes lists every conflict type in detection order.
var ConflictTypes = []ConflictType{
	ConflictStudentClash,
	ConflictRoom,
	ConflictFacultyClash,
	ConflictDepartmentClash,
	ConflictCapacityViolation,
	ConflictContinuousExams,
	ConflictMissingData,
	ConflictDuplicateEntry,
	ConflictExamOnHoliday,
	ConflictInvalidTimeSlot,
}

// Severity grades how urgently a conflict must be addressed.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Severity returns the fixed severity assigned to the conflict type.
func (t ConflictType) Severity() Severity {
	switch t {
	case ConflictDepartmentClash, ConflictCapacityViolation:
		return SeverityMedium
	case ConflictContinuousExams:
		return SeverityLow
	case ConflictStudentClash, ConflictRoom, ConflictFacultyClash,
		ConflictMissingData, ConflictDuplicateEntry, ConflictExamOnHoliday, ConflictInvalidTimeSlot:
		return SeverityHigh
	default:
		return SeverityHigh
	}
}

// Valid reports whether t is one of the known conflict types.
func (t ConflictType) Valid() bool {
	for _, known := range ConflictTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsClash reports whether the type is one of the pairwise scheduling clashes
// (student, room or faculty).
func (t ConflictType) IsClash() bool {
	return t == ConflictStudentClash || t == ConflictRoom || t == ConflictFacultyClash
}

// Conflict is a rule violation involving one or two sessions.
type Conflict struct {
	Type     ConflictType `json:"type"`
	Severity Severity     `json:"severity"`
	ExamA    ExamSession  `json:"examA"`
	ExamB    *ExamSession `json:"examB,omitempty"`
	Field    string       `json:"field,omitempty"`
	Details  string       `json:"details"`
}

// Conflicts is a JSONB-backed list of conflicts.
type Conflicts []Conflict

// CountByType tallies conflicts per type.
func (c Conflicts) CountByType() map[ConflictType]int {
	counts := make(map[ConflictType]int, len(ConflictTypes))
	for _, conflict := range c {
		counts[conflict.Type]++
	}
	return counts
}

// CrossBranchConflictType enumerates clashes between branch timetables.
type CrossBranchConflictType string

const (
	CrossBranchFacultyOverlap CrossBranchConflictType = "FACULTY_OVERLAP"
	CrossBranchRoomClash      CrossBranchConflictType = "ROOM_CLASH"
	CrossBranchStudentClash   CrossBranchConflictType = "STUDENT_CLASH"
)

// CrossBranchConflict describes two overlapping sessions from the combined
// branch timetables.
type CrossBranchConflict struct {
	Type    CrossBranchConflictType `json:"type"`
	BranchA string                  `json:"branchA"`
	BranchB string                  `json:"branchB"`
	Details string                  `json:"details"`
	Time    string                  `json:"time"`
}
