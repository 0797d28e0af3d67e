package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

const (
	fatigueBackToBack = 10
	fatigueLongExam   = 5
	maxFatigueReasons = 2
)

// Fatigue scores every student group by back-to-back and long exams. Entries
// are ordered by score, highest first.
func (e *Engine) Fatigue(sessions []models.ExamSession) []models.FatigueEntry {
	groups, order := groupSessions(sessions)
	report := make([]models.FatigueEntry, 0, len(order))
	for _, group := range order {
		score, reasons := e.groupFatigue(groups[group])
		report = append(report, models.FatigueEntry{
			StudentGroup: group,
			Score:        score,
			Level:        fatigueLevel(score),
			Reasons:      reasons,
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Score > report[j].Score
	})
	return report
}

func groupSessions(sessions []models.ExamSession) (map[string][]models.ExamSession, []string) {
	groups := make(map[string][]models.ExamSession)
	order := make([]string, 0)
	for _, s := range sessions {
		if s.StudentGroup == "" {
			continue
		}
		if _, ok := groups[s.StudentGroup]; !ok {
			order = append(order, s.StudentGroup)
		}
		groups[s.StudentGroup] = append(groups[s.StudentGroup], s)
	}
	return groups, order
}

func (e *Engine) groupFatigue(exams []models.ExamSession) (int, []string) {
	sorted := append([]models.ExamSession{}, exams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return clockOrRaw(sorted[i].Start) < clockOrRaw(sorted[j].Start)
	})

	score := 0
	reasons := make([]string, 0, maxFatigueReasons)
	addReason := func(reason string) {
		if len(reasons) < maxFatigueReasons {
			reasons = append(reasons, reason)
		}
	}

	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.Date != next.Date {
			continue
		}
		curEnd, okEnd := parseClock(cur.End)
		nextStart, okStart := parseClock(next.Start)
		if !okEnd || !okStart {
			continue
		}
		if time.Duration(nextStart-curEnd)*time.Minute < e.opts.FatigueGap {
			score += fatigueBackToBack
			addReason(fmt.Sprintf("Back-to-back exams on %s", cur.Date))
		}
	}

	for _, exam := range sorted {
		iv, ok := sessionInterval(exam.Start, exam.End)
		if !ok {
			continue
		}
		length := time.Duration(iv.end-iv.start) * time.Minute
		if length > e.opts.LongExam {
			score += fatigueLongExam
			addReason(fmt.Sprintf("Long exam: %s (%sh)", exam.Label(), strconv.FormatFloat(length.Hours(), 'f', -1, 64)))
		}
	}
	return score, reasons
}

func fatigueLevel(score int) models.FatigueLevel {
	switch {
	case score >= 21:
		return models.FatigueHigh
	case score >= 11:
		return models.FatigueMedium
	default:
		return models.FatigueLow
	}
}

// clockOrRaw keeps unparsable times sortable by pushing them after valid ones.
func clockOrRaw(raw string) string {
	if minutes, ok := parseClock(raw); ok {
		return formatClock(minutes)
	}
	return "~" + raw
}

// groupScores returns the fatigue score of each named group within sessions.
func (e *Engine) groupScores(sessions []models.ExamSession, groups []string) []float64 {
	bySession, _ := groupSessions(sessions)
	scores := make([]float64, 0, len(groups))
	for _, group := range groups {
		score, _ := e.groupFatigue(bySession[group])
		scores = append(scores, float64(score))
	}
	return scores
}
