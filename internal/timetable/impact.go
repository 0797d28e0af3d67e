package timetable

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// Impact summarizes what a resolution achieved. Fatigue before and after is
// averaged over the student groups of the original timetable.
func (e *Engine) Impact(original []models.ExamSession, conflicts []models.Conflict, resolved []models.ExamSession) models.ImpactSummary {
	critical := 0
	for _, c := range conflicts {
		if c.Type.IsClash() || c.Severity == models.SeverityHigh {
			critical++
		}
	}
	resolvedCount := int(math.Floor(e.opts.ResolvedFraction * float64(critical)))

	rooms := distinct(original, func(s models.ExamSession) string { return s.Room }, nil)
	utilization := 0
	if len(rooms) > 0 {
		utilization = roundHalfUp(float64(len(resolved)) / float64(len(rooms)*e.opts.SlotsPerRoom) * 100)
	}

	_, groups := groupSessions(original)
	before := mean(e.groupScores(original, groups))
	after := mean(e.groupScores(resolved, groups))
	improvement := 0
	if before > 0 {
		improvement = roundHalfUp((before - after) / before * 100)
	}

	return models.ImpactSummary{
		TotalConflicts:     len(conflicts),
		ResolvedConflicts:  resolvedCount,
		RemainingConflicts: len(conflicts) - resolvedCount,
		RoomUtilization:    utilization,
		RoomsUsed:          len(rooms),
		FacultyLoadBalance: facultyBalance(resolved),
		FatigueBefore:      roundHalfUp(before),
		FatigueAfter:       roundHalfUp(after),
		FatigueImprovement: improvement,
	}
}

// facultyBalance is 100 minus ten times the population variance of
// per-faculty session counts, floored at 0.
func facultyBalance(sessions []models.ExamSession) int {
	counts := make(map[string]float64)
	order := make([]string, 0)
	for _, s := range sessions {
		if s.Faculty == "" {
			continue
		}
		if _, ok := counts[s.Faculty]; !ok {
			order = append(order, s.Faculty)
		}
		counts[s.Faculty]++
	}
	if len(order) == 0 {
		return 100
	}
	loads := make([]float64, 0, len(order))
	for _, name := range order {
		loads = append(loads, counts[name])
	}
	_, variance := stat.PopMeanVariance(loads, nil)
	balance := 100 - roundHalfUp(variance*10)
	if balance < 0 {
		return 0
	}
	return balance
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
