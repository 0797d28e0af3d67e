package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func TestDetectStudentAndRoomClash(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Data Structures", "21CS034", "2025-01-15", "09:00", "12:00", "A-101", ""),
		exam("2", "Operating Systems", "21CS034", "2025-01-15", "10:00", "13:00", "A-101", ""),
	}

	conflicts := engine.Detect(sessions)

	require.Equal(t, []models.ConflictType{models.ConflictStudentClash, models.ConflictRoom}, conflictTypes(conflicts))
	for _, c := range conflicts {
		assert.Equal(t, models.SeverityHigh, c.Severity)
		assert.Equal(t, "1", c.ExamA.ID)
		require.NotNil(t, c.ExamB)
		assert.Equal(t, "2", c.ExamB.ID)
	}
}

func TestDetectCapacityViolation(t *testing.T) {
	engine := New(DefaultOptions())
	session := exam("1", "Networks", "G1", "2025-01-15", "09:00", "12:00", "B-2", "F1")
	session.Capacity = 50
	session.TotalStudents = 60

	conflicts := engine.Detect([]models.ExamSession{session})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictCapacityViolation, conflicts[0].Type)
	assert.Equal(t, models.SeverityMedium, conflicts[0].Severity)
	assert.Nil(t, conflicts[0].ExamB)
}

func TestDetectInvalidTimeSlot(t *testing.T) {
	engine := New(DefaultOptions())
	session := exam("1", "Compilers", "G1", "2025-01-15", "09:00", "08:00", "B-2", "F1")

	conflicts := engine.Detect([]models.ExamSession{session})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictInvalidTimeSlot, conflicts[0].Type)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)
}

func TestDetectUnparsableTime(t *testing.T) {
	engine := New(DefaultOptions())
	session := exam("1", "Compilers", "G1", "2025-01-15", "nine", "12:00", "B-2", "F1")

	conflicts := engine.Detect([]models.ExamSession{session})

	assert.Equal(t, []models.ConflictType{models.ConflictInvalidTimeSlot}, conflictTypes(conflicts))
}

func conflictFreeSessions() []models.ExamSession {
	return []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G2", "2025-01-15", "09:00", "12:00", "102", "F2"),
		exam("3", "Chemistry", "G1", "2025-01-16", "09:00", "12:00", "101", "F1"),
		exam("4", "Biology", "G2", "2025-01-16", "13:00", "16:00", "102", "F2"),
	}
}

func TestDetectAndResolveConflictFreeTimetable(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := conflictFreeSessions()

	conflicts := engine.Detect(sessions)
	assert.Empty(t, conflicts)

	result := engine.Resolve(sessions, conflicts)
	assert.Equal(t, sessions, result.ResolvedTimetable)
	assert.Empty(t, result.Changes)
	assert.NotNil(t, result.Changes)
}

func TestDetectFacultyClashOnly(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G2", "2025-01-15", "11:00", "14:00", "102", "F1"),
	}

	conflicts := engine.Detect(sessions)

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictFacultyClash, conflicts[0].Type)
}

func TestDetectDepartmentClash(t *testing.T) {
	engine := New(DefaultOptions())
	a := exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1")
	b := exam("2", "Physics", "G1", "2025-01-15", "11:00", "14:00", "102", "F2")
	a.Branch, b.Branch = "CSE", "CSE"

	conflicts := engine.Detect([]models.ExamSession{a, b})

	assert.Equal(t, []models.ConflictType{models.ConflictStudentClash, models.ConflictDepartmentClash}, conflictTypes(conflicts))
	assert.Equal(t, models.SeverityMedium, conflicts[1].Severity)
}

func TestDetectContinuousExams(t *testing.T) {
	engine := New(DefaultOptions())
	tight := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "10:10", "11:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "09:00", "10:00", "102", "F2"),
	}
	conflicts := engine.Detect(tight)
	require.Equal(t, []models.ConflictType{models.ConflictContinuousExams}, conflictTypes(conflicts))
	assert.Equal(t, models.SeverityLow, conflicts[0].Severity)

	relaxed := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "10:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "10:15", "11:00", "102", "F2"),
	}
	assert.Empty(t, engine.Detect(relaxed))
}

func TestDetectMissingDataPerField(t *testing.T) {
	engine := New(DefaultOptions())

	conflicts := engine.Detect([]models.ExamSession{{ID: "x"}})

	require.Len(t, conflicts, 4)
	fields := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		assert.Equal(t, models.ConflictMissingData, c.Type)
		assert.Equal(t, models.SeverityHigh, c.Severity)
		fields = append(fields, c.Field)
	}
	assert.Equal(t, []string{"subject", "date", "start", "end"}, fields)
}

func TestDetectSkipsPairRulesWithoutUsableDate(t *testing.T) {
	engine := New(DefaultOptions())

	undated := []models.ExamSession{
		exam("1", "Mathematics", "G1", "", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "", "10:00", "13:00", "101", "F1"),
	}
	conflicts := engine.Detect(undated)
	require.Equal(t, []models.ConflictType{models.ConflictMissingData, models.ConflictMissingData}, conflictTypes(conflicts))
	for _, c := range conflicts {
		assert.Equal(t, "date", c.Field)
	}

	placeholder := []models.ExamSession{
		exam("1", "Mathematics", "G1", "TBD", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "TBD", "10:00", "13:00", "101", "F1"),
		exam("3", "Chemistry", "G1", "TBD", "13:10", "14:00", "102", "F2"),
	}
	assert.Empty(t, engine.Detect(placeholder))
}

func TestDetectDuplicates(t *testing.T) {
	engine := New(DefaultOptions())

	sameID := []models.ExamSession{
		exam("dup", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("dup", "Physics", "G2", "2025-01-16", "09:00", "12:00", "102", "F2"),
	}
	assert.Equal(t, []models.ConflictType{models.ConflictDuplicateEntry}, conflictTypes(engine.Detect(sameID)))

	sameTuple := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F2"),
	}
	assert.Contains(t, conflictTypes(engine.Detect(sameTuple)), models.ConflictDuplicateEntry)

	noIDs := []models.ExamSession{
		exam("", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("", "Physics", "G2", "2025-01-16", "09:00", "12:00", "102", "F2"),
	}
	assert.Empty(t, engine.Detect(noIDs))
}

func TestDetectHoliday(t *testing.T) {
	engine := New(DefaultOptions())
	session := exam("1", "Mathematics", "G1", "2025-08-15", "09:00", "12:00", "101", "F1")

	conflicts := engine.Detect([]models.ExamSession{session})

	require.Equal(t, []models.ConflictType{models.ConflictExamOnHoliday}, conflictTypes(conflicts))

	custom := New(Options{Holidays: []string{"2025-12-25"}})
	assert.Empty(t, custom.Detect([]models.ExamSession{session}))
}

func TestDetectIsDeterministicAndPure(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "12:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "10:00", "13:00", "101", "F1"),
		exam("3", "", "G2", "2025-08-15", "14:00", "13:00", "102", "F2"),
	}
	snapshot := append([]models.ExamSession{}, sessions...)

	first := engine.Detect(sessions)
	second := engine.Detect(sessions)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, sessions)
}

func TestDetectEmptyInput(t *testing.T) {
	engine := New(DefaultOptions())
	conflicts := engine.Detect(nil)
	assert.NotNil(t, conflicts)
	assert.Empty(t, conflicts)
}
