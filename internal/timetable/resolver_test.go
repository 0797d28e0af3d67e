package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func TestResolveWithoutConflictsReturnsInput(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "10:00", "13:00", "101", "F1"),
	}

	result := engine.Resolve(sessions, nil)

	assert.Equal(t, sessions, result.ResolvedTimetable)
	assert.Empty(t, result.Changes)
	assert.Equal(t, "No conflicts detected. Timetable is already optimized.", result.Summary)
}

func TestResolveMovesLowerPrioritySession(t *testing.T) {
	engine := New(DefaultOptions())
	maths := exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1")
	maths.TotalStudents = 60
	physics := exam("2", "Physics", "G1", "2025-01-15", "10:00", "13:00", "102", "F2")
	physics.TotalStudents = 40
	sessions := []models.ExamSession{physics, maths}

	result := engine.Resolve(sessions, engine.Detect(sessions))

	require.Len(t, result.ResolvedTimetable, 2)
	assert.Equal(t, maths, result.ResolvedTimetable[0])
	moved := result.ResolvedTimetable[1]
	assert.Equal(t, "13:00", moved.Start)
	assert.Equal(t, "16:00", moved.End)
	assert.Equal(t, "2025-01-15", moved.Date)
	assert.Equal(t, "102", moved.Room)
	assert.Equal(t, "F2", moved.Faculty)
	assert.Equal(t, []string{"Physics moved from 10:00-13:00 → 13:00-16:00"}, result.Changes)
	assert.Equal(t, "Auto-resolved: 1 change(s) made to eliminate conflicts.", result.Summary)
	assert.Zero(t, result.Unresolved)

	assert.NotContains(t, conflictTypes(engine.Detect(result.ResolvedTimetable)), models.ConflictStudentClash)
	assert.Equal(t, "10:00", sessions[0].Start, "input must not be mutated")
}

func TestResolveLeavesUndatedSessionsInPlace(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "", "10:00", "13:00", "101", "F1"),
	}

	result := engine.Resolve(sessions, engine.Detect(sessions))

	assert.ElementsMatch(t, sessions, result.ResolvedTimetable)
	assert.Empty(t, result.Changes)
	assert.Zero(t, result.Unresolved)
}

func TestResolvePrefersHardSubjectsOnTies(t *testing.T) {
	engine := New(DefaultOptions())
	art := exam("1", "Intro to Art", "G1", "2025-01-15", "09:00", "12:00", "101", "F1")
	maths := exam("2", "Applied Mathematics", "G1", "2025-01-15", "09:00", "12:00", "102", "F2")
	sessions := []models.ExamSession{art, maths}

	result := engine.Resolve(sessions, engine.Detect(sessions))

	require.Len(t, result.ResolvedTimetable, 2)
	assert.Equal(t, maths, result.ResolvedTimetable[0])
	assert.Equal(t, "Intro to Art", result.ResolvedTimetable[1].Subject)
	assert.NotEqual(t, "09:00", result.ResolvedTimetable[1].Start)
}

func TestResolveLogsUnresolvableSessions(t *testing.T) {
	engine := New(Options{ResolverSlots: []Slot{{Start: "09:00", End: "12:00"}}})
	first := exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1")
	second := exam("2", "Physics", "G1", "2025-01-15", "09:00", "12:00", "102", "F2")
	sessions := []models.ExamSession{first, second}

	result := engine.Resolve(sessions, engine.Detect(sessions))

	require.Len(t, result.ResolvedTimetable, 2)
	assert.Equal(t, second, result.ResolvedTimetable[1])
	require.Len(t, result.Changes, 1)
	assert.True(t, strings.HasPrefix(result.Changes[0], "Physics could not be fully resolved - manual review needed"))
	assert.Equal(t, 1, result.Unresolved)
	assert.Equal(t, "All conflicts resolved without changes needed. 1 session(s) need manual review.", result.Summary)
}

func TestResolveFallsBackToDefaultRoomsAndFaculty(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "", ""),
		exam("2", "Physics", "G1", "2025-01-15", "09:00", "12:00", "", ""),
	}

	result := engine.Resolve(sessions, engine.Detect(sessions))

	moved := result.ResolvedTimetable[1]
	assert.Equal(t, "13:00", moved.Start)
	assert.Equal(t, "101", moved.Room)
	assert.Equal(t, "Faculty1", moved.Faculty)
	assert.Contains(t, result.Changes, "Physics room changed from (none) → 101")
}

func TestResolveNeverAddsClashesForMovedSessions(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "09:30", "12:30", "101", "F1"),
		exam("3", "Chemistry", "G2", "2025-01-15", "10:00", "13:00", "101", "F2"),
		exam("4", "Biology", "G3", "2025-01-15", "11:00", "14:00", "102", "F1"),
	}
	before := engine.Detect(sessions)

	result := engine.Resolve(sessions, before)
	after := engine.Detect(result.ResolvedTimetable)

	countClashes := func(conflicts []models.Conflict) int {
		n := 0
		for _, c := range conflicts {
			if c.Type.IsClash() {
				n++
			}
		}
		return n
	}
	assert.LessOrEqual(t, countClashes(after), countClashes(before))
	assert.Zero(t, countClashes(after))
}
