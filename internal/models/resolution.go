package models

// ResolutionResult is the output of the auto-resolver.
type ResolutionResult struct {
	ResolvedTimetable []ExamSession `json:"resolvedTimetable"`
	Changes           []string      `json:"changes"`
	Summary           string        `json:"summary"`
	Unresolved        int           `json:"unresolved"`
}

// AlternativeSlot is a scored (time, room) candidate for a conflicting exam.
type AlternativeSlot struct {
	Slot      string `json:"slot"`
	End       string `json:"end"`
	Room      string `json:"room"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// Suggestion groups ranked alternatives for one conflict.
type Suggestion struct {
	ConflictID   string            `json:"conflictId"`
	ConflictType ConflictType      `json:"conflictType"`
	ExamName     string            `json:"examName"`
	OriginalSlot string            `json:"originalSlot"`
	Suggestions  []AlternativeSlot `json:"suggestions"`
}

// Suggestions is a JSONB-backed list of suggestions.
type Suggestions []Suggestion

// FatigueLevel buckets a fatigue score.
type FatigueLevel string

const (
	FatigueLow    FatigueLevel = "Low"
	FatigueMedium FatigueLevel = "Medium"
	FatigueHigh   FatigueLevel = "High"
)

// FatigueEntry is the fatigue score of one student group.
type FatigueEntry struct {
	StudentGroup string       `json:"studentGroup"`
	Score        int          `json:"score"`
	Level        FatigueLevel `json:"level"`
	Reasons      []string     `json:"reasons"`
}

// FatigueReport is a JSONB-backed list of fatigue entries.
type FatigueReport []FatigueEntry

// ImpactSummary captures before/after statistics of a resolution.
type ImpactSummary struct {
	TotalConflicts     int `json:"totalConflicts"`
	ResolvedConflicts  int `json:"resolvedConflicts"`
	RemainingConflicts int `json:"remainingConflicts"`
	RoomUtilization    int `json:"roomUtilization"`
	RoomsUsed          int `json:"roomsUsed"`
	FacultyLoadBalance int `json:"facultyLoadBalance"`
	FatigueBefore      int `json:"fatigueBefore"`
	FatigueAfter       int `json:"fatigueAfter"`
	FatigueImprovement int `json:"fatigueImprovement"`
}
