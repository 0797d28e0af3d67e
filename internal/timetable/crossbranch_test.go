package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func TestDetectCrossBranchFacultyOverlap(t *testing.T) {
	cse := exam("1", "Compilers", "CSE-5", "2025-01-15", "09:00", "12:00", "R1", "F1")
	cse.Branch = "CSE"
	ise := exam("2", "Networks", "ISE-5", "2025-01-15", "10:00", "13:00", "R2", "F1")
	ise.Branch = "ISE"

	conflicts := DetectCrossBranch([]models.ExamSession{cse, ise})

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.CrossBranchConflict{
		Type:    models.CrossBranchFacultyOverlap,
		BranchA: "CSE",
		BranchB: "ISE",
		Details: "F1 assigned to Compilers and Networks",
		Time:    "2025-01-15 09:00-12:00",
	}, conflicts[0])
}

func TestDetectCrossBranchRoomAndGroup(t *testing.T) {
	a := exam("1", "Compilers", "G1", "2025-01-15", "09:00", "12:00", "R1", "F1")
	a.Branch = "CSE"
	b := exam("2", "Networks", "G1", "2025-01-15", "11:00", "13:00", "R1", "F1")
	b.Branch = "CSE"
	c := exam("3", "Circuits", "G9", "2025-01-16", "11:00", "13:00", "R1", "F1")
	c.Branch = "ECE"

	conflicts := DetectCrossBranch([]models.ExamSession{a, b, c})

	require.Len(t, conflicts, 2)
	assert.Equal(t, models.CrossBranchRoomClash, conflicts[0].Type)
	assert.Equal(t, models.CrossBranchStudentClash, conflicts[1].Type)
}

func TestCrossBranchSummary(t *testing.T) {
	clean := CrossBranchSummary(nil)
	assert.Contains(t, clean, "Total Conflicts: 0")
	assert.True(t, strings.HasSuffix(clean, "All branch timetables are compatible."))

	summary := CrossBranchSummary([]models.CrossBranchConflict{
		{Type: models.CrossBranchFacultyOverlap},
		{Type: models.CrossBranchRoomClash},
		{Type: models.CrossBranchRoomClash},
	})
	assert.Contains(t, summary, "Total Conflicts: 3")
	assert.Contains(t, summary, "- Faculty Overlaps: 1")
	assert.Contains(t, summary, "- Room Clashes: 2")
	assert.NotContains(t, summary, "Student Conflicts")
	assert.Contains(t, summary, "Recommendations:")
}
