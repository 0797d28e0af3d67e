package timetable

import (
	"fmt"
	"time"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// rule evaluates one conflict type, either over an ordered pair of sessions
// or over a single session. Single-session rules may report several findings
// (one per missing field, for example).
type rule struct {
	kind models.ConflictType
	pair   func(e *Engine, a, b models.ExamSession) (string, bool)
	single func(e *Engine, exam models.ExamSession) []finding
}

type finding struct {
	field   string
	details string
}

// detectionRules is the fixed rule order. Pair rules run over all (i<j)
// pairs, single rules over every session in index order.
var detectionRules = []rule{
	{kind: models.ConflictStudentClash, pair: studentClash},
	{kind: models.ConflictRoom, pair: roomClash},
	{kind: models.ConflictFacultyClash, pair: facultyClash},
	{kind: models.ConflictDepartmentClash, pair: departmentClash},
	{kind: models.ConflictCapacityViolation, single: capacityViolation},
	{kind: models.ConflictContinuousExams, pair: continuousExams},
	{kind: models.ConflictMissingData, single: missingData},
	{kind: models.ConflictDuplicateEntry, pair: duplicateEntry},
	{kind: models.ConflictExamOnHoliday, single: examOnHoliday},
	{kind: models.ConflictInvalidTimeSlot, single: invalidTimeSlot},
}

// Detect scans the sessions and returns every conflict, ordered by rule and
// then by session index.
func (e *Engine) Detect(sessions []models.ExamSession) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	for _, r := range detectionRules {
		if r.pair != nil {
			for i := 0; i < len(sessions); i++ {
				for j := i + 1; j < len(sessions); j++ {
					details, hit := r.pair(e, sessions[i], sessions[j])
					if !hit {
						continue
					}
					other := sessions[j]
					conflicts = append(conflicts, models.Conflict{
						Type:     r.kind,
						Severity: r.kind.Severity(),
						ExamA:    sessions[i],
						ExamB:    &other,
						Details:  details,
					})
				}
			}
			continue
		}
		for _, exam := range sessions {
			for _, f := range r.single(e, exam) {
				conflicts = append(conflicts, models.Conflict{
					Type:     r.kind,
					Severity: r.kind.Severity(),
					ExamA:    exam,
					Field:    f.field,
					Details:  f.details,
				})
			}
		}
	}
	return conflicts
}

func sameSlot(a, b models.ExamSession) bool {
	return Overlaps(a.Date, a.Start, a.End, b.Date, b.Start, b.End)
}

func studentClash(_ *Engine, a, b models.ExamSession) (string, bool) {
	if a.StudentGroup == "" || a.StudentGroup != b.StudentGroup || !sameSlot(a, b) {
		return "", false
	}
	return fmt.Sprintf("Student group %s has %s and %s at overlapping times on %s",
		a.StudentGroup, a.Label(), b.Label(), a.Date), true
}

func roomClash(_ *Engine, a, b models.ExamSession) (string, bool) {
	if a.Room == "" || a.Room != b.Room || !sameSlot(a, b) {
		return "", false
	}
	return fmt.Sprintf("Room %s is double-booked for %s and %s on %s",
		a.Room, a.Label(), b.Label(), a.Date), true
}

func facultyClash(_ *Engine, a, b models.ExamSession) (string, bool) {
	if a.Faculty == "" || a.Faculty != b.Faculty || !sameSlot(a, b) {
		return "", false
	}
	return fmt.Sprintf("Faculty %s is assigned to %s and %s at overlapping times on %s",
		a.Faculty, a.Label(), b.Label(), a.Date), true
}

func departmentClash(_ *Engine, a, b models.ExamSession) (string, bool) {
	if a.Branch == "" || a.Branch != b.Branch {
		return "", false
	}
	if a.StudentGroup == "" || a.StudentGroup != b.StudentGroup || !sameSlot(a, b) {
		return "", false
	}
	return fmt.Sprintf("Department %s schedules %s and %s together for group %s",
		a.Branch, a.Label(), b.Label(), a.StudentGroup), true
}

func continuousExams(e *Engine, a, b models.ExamSession) (string, bool) {
	if a.StudentGroup == "" || a.StudentGroup != b.StudentGroup ||
		a.Date != b.Date || !calendarDay(a.Date) {
		return "", false
	}
	ia, okA := sessionInterval(a.Start, a.End)
	ib, okB := sessionInterval(b.Start, b.End)
	if !okA || !okB || !ia.valid() || !ib.valid() || ia.overlaps(ib) {
		return "", false
	}
	gap := ia.gap(ib)
	if time.Duration(gap)*time.Minute >= e.opts.ContinuousGap {
		return "", false
	}
	return fmt.Sprintf("Student group %s has %s and %s only %d minute(s) apart on %s",
		a.StudentGroup, a.Label(), b.Label(), gap, a.Date), true
}

func duplicateEntry(_ *Engine, a, b models.ExamSession) (string, bool) {
	if a.ID != "" && a.ID == b.ID {
		return fmt.Sprintf("Exam id %s appears more than once", a.ID), true
	}
	if a.Subject == b.Subject && a.StudentGroup == b.StudentGroup && a.Date == b.Date &&
		a.Start == b.Start && a.Room == b.Room {
		return fmt.Sprintf("%s for group %s on %s at %s is listed twice",
			a.Label(), a.StudentGroup, a.Date, a.Start), true
	}
	return "", false
}

func capacityViolation(_ *Engine, exam models.ExamSession) []finding {
	if exam.Capacity <= 0 || exam.TotalStudents <= exam.Capacity {
		return nil
	}
	return []finding{{details: fmt.Sprintf("%s has %d students but room %s holds %d",
		exam.Label(), exam.TotalStudents, exam.Room, exam.Capacity)}}
}

func missingData(_ *Engine, exam models.ExamSession) []finding {
	var out []finding
	fields := []struct {
		name  string
		value string
	}{
		{"subject", exam.Subject},
		{"date", exam.Date},
		{"start", exam.Start},
		{"end", exam.End},
	}
	for _, f := range fields {
		if f.value == "" {
			out = append(out, finding{field: f.name, details: fmt.Sprintf("%s is missing %s", exam.Label(), f.name)})
		}
	}
	return out
}

func examOnHoliday(e *Engine, exam models.ExamSession) []finding {
	if exam.Date == "" || !e.IsHoliday(exam.Date) {
		return nil
	}
	return []finding{{details: fmt.Sprintf("%s is scheduled on holiday %s", exam.Label(), exam.Date)}}
}

func invalidTimeSlot(_ *Engine, exam models.ExamSession) []finding {
	if exam.Start == "" || exam.End == "" {
		if unparsable(exam.Start) || unparsable(exam.End) {
			return []finding{{details: fmt.Sprintf("%s has an unreadable time", exam.Label())}}
		}
		return nil
	}
	iv, ok := sessionInterval(exam.Start, exam.End)
	if !ok {
		return []finding{{details: fmt.Sprintf("%s has an unreadable time range %s", exam.Label(), exam.Slot())}}
	}
	if !iv.valid() {
		return []finding{{details: fmt.Sprintf("%s ends at %s, not after its start %s", exam.Label(), exam.End, exam.Start)}}
	}
	return nil
}

func unparsable(raw string) bool {
	if raw == "" {
		return false
	}
	_, ok := parseClock(raw)
	return !ok
}
