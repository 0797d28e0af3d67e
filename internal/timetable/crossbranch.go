package timetable

import (
	"fmt"
	"strings"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// DetectCrossBranch checks a combined multi-branch timetable for faculty
// shared across branches and for rooms or student groups booked twice.
func DetectCrossBranch(exams []models.ExamSession) []models.CrossBranchConflict {
	conflicts := make([]models.CrossBranchConflict, 0)
	for i := 0; i < len(exams); i++ {
		for j := i + 1; j < len(exams); j++ {
			a, b := exams[i], exams[j]
			if !sameSlot(a, b) {
				continue
			}
			when := fmt.Sprintf("%s %s", a.Date, a.Slot())
			if a.Faculty != "" && a.Faculty == b.Faculty && a.Branch != b.Branch {
				conflicts = append(conflicts, models.CrossBranchConflict{
					Type:    models.CrossBranchFacultyOverlap,
					BranchA: a.Branch,
					BranchB: b.Branch,
					Details: fmt.Sprintf("%s assigned to %s and %s", a.Faculty, a.Label(), b.Label()),
					Time:    when,
				})
			}
			if a.Room != "" && a.Room == b.Room {
				conflicts = append(conflicts, models.CrossBranchConflict{
					Type:    models.CrossBranchRoomClash,
					BranchA: a.Branch,
					BranchB: b.Branch,
					Details: fmt.Sprintf("Room %s double-booked", a.Room),
					Time:    when,
				})
			}
			if a.StudentGroup != "" && a.StudentGroup == b.StudentGroup {
				conflicts = append(conflicts, models.CrossBranchConflict{
					Type:    models.CrossBranchStudentClash,
					BranchA: a.Branch,
					BranchB: b.Branch,
					Details: fmt.Sprintf("Group %s has %s and %s", a.StudentGroup, a.Label(), b.Label()),
					Time:    when,
				})
			}
		}
	}
	return conflicts
}

// CrossBranchSummary renders a fixed-format plain text report.
func CrossBranchSummary(conflicts []models.CrossBranchConflict) string {
	counts := make(map[models.CrossBranchConflictType]int)
	for _, c := range conflicts {
		counts[c.Type]++
	}

	var b strings.Builder
	b.WriteString("Multi-Branch Analysis Complete\n\n")
	fmt.Fprintf(&b, "Total Conflicts: %d\n\n", len(conflicts))
	if n := counts[models.CrossBranchFacultyOverlap]; n > 0 {
		fmt.Fprintf(&b, "- Faculty Overlaps: %d\n", n)
	}
	if n := counts[models.CrossBranchRoomClash]; n > 0 {
		fmt.Fprintf(&b, "- Room Clashes: %d\n", n)
	}
	if n := counts[models.CrossBranchStudentClash]; n > 0 {
		fmt.Fprintf(&b, "- Student Conflicts: %d\n", n)
	}
	if len(conflicts) == 0 {
		b.WriteString("\nNo conflicts detected. All branch timetables are compatible.")
		return b.String()
	}
	b.WriteString("\nRecommendations:\n")
	b.WriteString("- Reassign faculty with multiple branch duties\n")
	b.WriteString("- Allocate different rooms for simultaneous exams\n")
	b.WriteString("- Adjust time slots to avoid student group overlaps")
	return b.String()
}
