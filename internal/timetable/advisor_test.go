package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func advisorFixture() []models.ExamSession {
	maths := exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "R1", "F1")
	maths.TotalStudents, maths.Capacity = 40, 50
	physics := exam("2", "Physics", "G1", "2025-01-15", "10:00", "13:00", "R2", "F2")
	physics.TotalStudents, physics.Capacity = 30, 50
	return []models.ExamSession{maths, physics}
}

func TestSuggestRanksConflictFreeSlots(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := advisorFixture()
	conflicts := engine.Detect(sessions)
	require.Len(t, conflicts, 1)

	suggestions := engine.Suggest(conflicts, sessions)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, "STUDENT_CLASH_1", s.ConflictID)
	assert.Equal(t, models.ConflictStudentClash, s.ConflictType)
	assert.Equal(t, "Mathematics", s.ExamName)
	assert.Equal(t, "09:00", s.OriginalSlot)
	assert.Equal(t, []models.AlternativeSlot{
		{Slot: "15:00", End: "17:00", Room: "R1", Score: 100, Reasoning: "Conflict-free slot"},
		{Slot: "15:00", End: "17:00", Room: "R2", Score: 100, Reasoning: "Conflict-free slot"},
		{Slot: "16:00", End: "18:00", Room: "R1", Score: 100, Reasoning: "Conflict-free slot"},
	}, s.Suggestions)
}

func TestSuggestScoresBlockedCandidates(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := advisorFixture()
	rest := sessions[1:]

	candidate := sessions[0]
	candidate.Start, candidate.End = "09:00", "11:00"
	slot := engine.scoreCandidate(candidate, rest)
	assert.Equal(t, 35, slot.Score)
	assert.Equal(t, "Conflict with STUDENT_CLASH", slot.Reasoning)

	candidate.Start, candidate.End = "14:00", "16:00"
	assert.Equal(t, 85, engine.scoreCandidate(candidate, rest).Score)
}

func TestSuggestCapsConflicts(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := advisorFixture()
	conflicts := make([]models.Conflict, 7)
	for i := range conflicts {
		conflicts[i] = models.Conflict{Type: models.ConflictRoom, Severity: models.SeverityHigh, ExamA: sessions[0]}
	}

	assert.Len(t, engine.Suggest(conflicts, sessions), 5)
	assert.Len(t, New(Options{MaxSuggestedConflicts: 2}).Suggest(conflicts, sessions), 2)
}

func TestSuggestFloorsScoreAtZero(t *testing.T) {
	engine := New(DefaultOptions())
	target := exam("x", "Mathematics", "G1", "2025-01-15", "09:00", "11:00", "R3", "F1")
	target.TotalStudents, target.Capacity = 200, 50
	sessions := []models.ExamSession{
		target,
		exam("y1", "Physics", "G1", "2025-01-15", "08:00", "20:00", "R1", "F1"),
		exam("y2", "Chemistry", "G1", "2025-01-15", "08:00", "20:00", "R2", "F1"),
	}
	conflicts := []models.Conflict{{Type: models.ConflictStudentClash, Severity: models.SeverityHigh, ExamA: target}}

	suggestions := engine.Suggest(conflicts, sessions)

	require.Len(t, suggestions, 1)
	require.Len(t, suggestions[0].Suggestions, 3)
	for _, slot := range suggestions[0].Suggestions {
		assert.Zero(t, slot.Score)
	}
}

func TestSuggestWithoutConflicts(t *testing.T) {
	engine := New(DefaultOptions())
	assert.Empty(t, engine.Suggest(nil, advisorFixture()))
}
