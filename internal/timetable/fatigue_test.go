package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func TestFatigueScoresAndLevels(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Chemistry", "G1", "2025-01-15", "12:00", "16:00", "101", "F1"),
		exam("2", "Mathematics", "G1", "2025-01-15", "09:00", "10:00", "101", "F1"),
		exam("3", "Physics", "G1", "2025-01-15", "10:30", "11:30", "101", "F1"),
		exam("4", "Biology", "G2", "2025-01-15", "09:00", "11:00", "102", "F2"),
		exam("5", "Networks", "G3", "2025-01-15", "09:00", "10:00", "103", "F3"),
		exam("6", "Databases", "G3", "2025-01-15", "10:30", "14:00", "103", "F3"),
	}

	report := engine.Fatigue(sessions)

	require.Len(t, report, 3)
	assert.Equal(t, models.FatigueEntry{
		StudentGroup: "G1",
		Score:        25,
		Level:        models.FatigueHigh,
		Reasons:      []string{"Back-to-back exams on 2025-01-15", "Back-to-back exams on 2025-01-15"},
	}, report[0])
	assert.Equal(t, "G3", report[1].StudentGroup)
	assert.Equal(t, 15, report[1].Score)
	assert.Equal(t, models.FatigueMedium, report[1].Level)
	assert.Equal(t, []string{"Back-to-back exams on 2025-01-15", "Long exam: Databases (3.5h)"}, report[1].Reasons)
	assert.Equal(t, "G2", report[2].StudentGroup)
	assert.Zero(t, report[2].Score)
	assert.Equal(t, models.FatigueLow, report[2].Level)
	assert.Empty(t, report[2].Reasons)
}

func TestFatigueReasonsKeepRepeatsInOrder(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "08:00", "09:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "09:30", "10:30", "101", "F1"),
		exam("3", "Chemistry", "G1", "2025-01-15", "11:00", "12:00", "101", "F1"),
		exam("4", "Biology", "G1", "2025-01-15", "12:30", "17:00", "101", "F1"),
	}

	report := engine.Fatigue(sessions)

	require.Len(t, report, 1)
	assert.Equal(t, 35, report[0].Score)
	assert.Equal(t, models.FatigueHigh, report[0].Level)
	assert.Equal(t, []string{"Back-to-back exams on 2025-01-15", "Back-to-back exams on 2025-01-15"}, report[0].Reasons)
}

func TestFatigueLevelThresholds(t *testing.T) {
	assert.Equal(t, models.FatigueLow, fatigueLevel(10))
	assert.Equal(t, models.FatigueMedium, fatigueLevel(11))
	assert.Equal(t, models.FatigueMedium, fatigueLevel(20))
	assert.Equal(t, models.FatigueHigh, fatigueLevel(21))
}

func TestFatigueIgnoresSpreadOutExams(t *testing.T) {
	engine := New(DefaultOptions())
	sessions := []models.ExamSession{
		exam("1", "Mathematics", "G1", "2025-01-15", "09:00", "11:00", "101", "F1"),
		exam("2", "Physics", "G1", "2025-01-15", "13:00", "15:00", "101", "F1"),
		exam("3", "Chemistry", "G1", "2025-01-16", "09:00", "12:00", "101", "F1"),
		exam("4", "Unknown", "", "2025-01-16", "09:00", "10:00", "101", "F1"),
	}

	report := engine.Fatigue(sessions)

	require.Len(t, report, 1)
	assert.Zero(t, report[0].Score)
}
