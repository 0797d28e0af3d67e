package timetable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

const (
	summaryNoConflicts = "No conflicts detected. Timetable is already optimized."
	summaryNoChanges   = "All conflicts resolved without changes needed."
)

// Resolve reassigns time, room and faculty of clashing sessions using a
// priority-ordered greedy first-fit search. When conflicts is empty the input
// is returned unchanged; callers wanting fresh conflicts run Detect first.
func (e *Engine) Resolve(sessions []models.ExamSession, conflicts []models.Conflict) models.ResolutionResult {
	if len(conflicts) == 0 {
		return models.ResolutionResult{
			ResolvedTimetable: append([]models.ExamSession{}, sessions...),
			Changes:           []string{},
			Summary:           summaryNoConflicts,
		}
	}

	ordered := e.prioritize(sessions)
	rooms := distinct(sessions, func(s models.ExamSession) string { return s.Room }, e.opts.DefaultRooms)
	faculty := distinct(sessions, func(s models.ExamSession) string { return s.Faculty }, e.opts.DefaultFaculty)

	scheduled := make([]models.ExamSession, 0, len(ordered))
	changes := make([]string, 0)
	unresolved := 0

	for _, exam := range ordered {
		blocked := blockingConflict(exam, scheduled)
		if blocked == "" {
			scheduled = append(scheduled, exam)
			continue
		}
		candidate, ok := e.firstFit(exam, scheduled, rooms, faculty)
		if !ok {
			unresolved++
			changes = append(changes, fmt.Sprintf("%s could not be fully resolved - manual review needed (%s)", exam.Label(), blocked))
			scheduled = append(scheduled, exam)
			continue
		}
		changes = append(changes, describeChanges(exam, candidate)...)
		scheduled = append(scheduled, candidate)
	}

	return models.ResolutionResult{
		ResolvedTimetable: scheduled,
		Changes:           changes,
		Summary:           resolutionSummary(len(changes)-unresolved, unresolved),
		Unresolved:        unresolved,
	}
}

// prioritize returns a copy sorted by cohort size, then hard subjects first.
// Remaining ties keep input order.
func (e *Engine) prioritize(sessions []models.ExamSession) []models.ExamSession {
	ordered := append([]models.ExamSession{}, sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TotalStudents != ordered[j].TotalStudents {
			return ordered[i].TotalStudents > ordered[j].TotalStudents
		}
		return e.isHardSubject(ordered[i].Subject) && !e.isHardSubject(ordered[j].Subject)
	})
	return ordered
}

func (e *Engine) isHardSubject(subject string) bool {
	subject = strings.ToLower(subject)
	for _, kw := range e.hard {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// firstFit walks slots, then rooms, then faculty and returns the first
// combination that clashes with nothing already scheduled.
func (e *Engine) firstFit(exam models.ExamSession, scheduled []models.ExamSession, rooms, faculty []string) (models.ExamSession, bool) {
	for _, slot := range e.opts.ResolverSlots {
		for _, room := range rooms {
			for _, person := range faculty {
				candidate := exam
				candidate.Start = slot.Start
				candidate.End = slot.End
				candidate.Room = room
				candidate.Faculty = person
				if blockingConflict(candidate, scheduled) == "" {
					return candidate, true
				}
			}
		}
	}
	return exam, false
}

// blockingConflict returns the kind of clash between exam and any of others:
// student group first, then room, then faculty. Empty attributes never clash.
func blockingConflict(exam models.ExamSession, others []models.ExamSession) models.ConflictType {
	var found models.ConflictType
	for _, other := range others {
		if !sameSlot(exam, other) {
			continue
		}
		switch {
		case exam.StudentGroup != "" && exam.StudentGroup == other.StudentGroup:
			return models.ConflictStudentClash
		case exam.Room != "" && exam.Room == other.Room:
			if found == "" || found == models.ConflictFacultyClash {
				found = models.ConflictRoom
			}
		case exam.Faculty != "" && exam.Faculty == other.Faculty:
			if found == "" {
				found = models.ConflictFacultyClash
			}
		}
	}
	return found
}

func describeChanges(before, after models.ExamSession) []string {
	var lines []string
	if before.Start != after.Start || before.End != after.End {
		lines = append(lines, fmt.Sprintf("%s moved from %s → %s", before.Label(), before.Slot(), after.Slot()))
	}
	if before.Room != after.Room {
		lines = append(lines, fmt.Sprintf("%s room changed from %s → %s", before.Label(), orNone(before.Room), after.Room))
	}
	if before.Faculty != after.Faculty {
		lines = append(lines, fmt.Sprintf("%s faculty changed from %s → %s", before.Label(), orNone(before.Faculty), after.Faculty))
	}
	return lines
}

func resolutionSummary(changes, unresolved int) string {
	summary := summaryNoChanges
	if changes > 0 {
		summary = fmt.Sprintf("Auto-resolved: %d change(s) made to eliminate conflicts.", changes)
	}
	if unresolved > 0 {
		summary += fmt.Sprintf(" %d session(s) need manual review.", unresolved)
	}
	return summary
}

// distinct collects non-empty values in first-seen order, falling back to
// defaults when none are present.
func distinct(sessions []models.ExamSession, field func(models.ExamSession) string, defaults []string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, s := range sessions {
		v := field(s)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	if len(values) == 0 {
		return append([]string{}, defaults...)
	}
	return values
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
