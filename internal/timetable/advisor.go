package timetable

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

const (
	scoreConflictFree = 50
	scoreFacultyFree  = 30
	scoreCapacityFits = 20
	penaltyCloseExam  = 15
)

// Suggest ranks alternative (time, room) pairs for the first exam of each
// conflict, up to MaxSuggestedConflicts conflicts.
func (e *Engine) Suggest(conflicts []models.Conflict, sessions []models.ExamSession) []models.Suggestion {
	limit := len(conflicts)
	if limit > e.opts.MaxSuggestedConflicts {
		limit = e.opts.MaxSuggestedConflicts
	}
	rooms := distinct(sessions, func(s models.ExamSession) string { return s.Room }, nil)

	suggestions := make([]models.Suggestion, 0, limit)
	for idx, conflict := range conflicts[:limit] {
		exam := conflict.ExamA
		rest := withoutSession(sessions, exam)

		candidates := make([]models.AlternativeSlot, 0, len(e.opts.AdvisorSlots)*len(rooms))
		for _, slot := range e.opts.AdvisorSlots {
			start, ok := parseClock(slot)
			if !ok {
				continue
			}
			end := start + int(e.opts.AdvisorDuration/time.Minute)
			for _, room := range rooms {
				candidate := exam
				candidate.Start = formatClock(start)
				candidate.End = formatClock(end)
				candidate.Room = room
				candidates = append(candidates, e.scoreCandidate(candidate, rest))
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		if len(candidates) > e.opts.SuggestionsPerConflict {
			candidates = candidates[:e.opts.SuggestionsPerConflict]
		}

		suggestions = append(suggestions, models.Suggestion{
			ConflictID:   conflictID(conflict, idx),
			ConflictType: conflict.Type,
			ExamName:     exam.Label(),
			OriginalSlot: exam.Start,
			Suggestions:  candidates,
		})
	}
	return suggestions
}

func (e *Engine) scoreCandidate(candidate models.ExamSession, rest []models.ExamSession) models.AlternativeSlot {
	score := 0
	reasoning := "Conflict-free slot"
	if blocked := blockingConflict(candidate, rest); blocked == "" {
		score += scoreConflictFree
	} else {
		reasoning = fmt.Sprintf("Conflict with %s", blocked)
	}
	if e.facultyFree(candidate, rest) {
		score += scoreFacultyFree
	}
	capacity := candidate.Capacity
	if capacity <= 0 {
		capacity = e.opts.DefaultCapacity
	}
	if candidate.TotalStudents <= capacity {
		score += scoreCapacityFits
	}
	score -= penaltyCloseExam * e.closeExams(candidate, rest)
	if score < 0 {
		score = 0
	}
	return models.AlternativeSlot{
		Slot:      candidate.Start,
		End:       candidate.End,
		Room:      candidate.Room,
		Score:     score,
		Reasoning: reasoning,
	}
}

func (e *Engine) facultyFree(candidate models.ExamSession, rest []models.ExamSession) bool {
	if candidate.Faculty == "" {
		return true
	}
	for _, other := range rest {
		if other.Faculty == candidate.Faculty && other.Date == candidate.Date {
			return false
		}
	}
	return true
}

// closeExams counts same-group, same-date sessions within FatigueGap of the
// candidate.
func (e *Engine) closeExams(candidate models.ExamSession, rest []models.ExamSession) int {
	if candidate.StudentGroup == "" {
		return 0
	}
	iv, ok := sessionInterval(candidate.Start, candidate.End)
	if !ok {
		return 0
	}
	count := 0
	for _, other := range rest {
		if other.StudentGroup != candidate.StudentGroup || other.Date != candidate.Date {
			continue
		}
		ov, ok := sessionInterval(other.Start, other.End)
		if !ok {
			continue
		}
		if time.Duration(iv.gap(ov))*time.Minute < e.opts.FatigueGap {
			count++
		}
	}
	return count
}

// withoutSession drops exam from sessions, matching by id when it has one and
// by value otherwise. Only the first match is dropped.
func withoutSession(sessions []models.ExamSession, exam models.ExamSession) []models.ExamSession {
	rest := make([]models.ExamSession, 0, len(sessions))
	dropped := false
	for _, s := range sessions {
		if !dropped && isSameSession(s, exam) {
			dropped = true
			continue
		}
		rest = append(rest, s)
	}
	return rest
}

func isSameSession(a, b models.ExamSession) bool {
	if b.ID != "" {
		return a.ID == b.ID
	}
	return a == b
}

func conflictID(conflict models.Conflict, idx int) string {
	if conflict.ExamA.ID != "" {
		return fmt.Sprintf("%s_%s", conflict.Type, conflict.ExamA.ID)
	}
	return fmt.Sprintf("%s_%d", conflict.Type, idx+1)
}
