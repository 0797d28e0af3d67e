package timetable

import (
	"fmt"
	"strings"
	"time"
)

var clockLayouts = []string{"15:04", "15:04:05"}

const dateLayout = "2006-01-02"

// calendarDay reports whether raw is a YYYY-MM-DD date.
func calendarDay(raw string) bool {
	_, err := time.Parse(dateLayout, raw)
	return err == nil
}

// parseClock converts a time of day into minutes since midnight.
func parseClock(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

func formatClock(minutes int) string {
	minutes = ((minutes % (24 * 60)) + 24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// interval is a parsed [start, end) range in minutes.
type interval struct {
	start, end int
}

func sessionInterval(start, end string) (interval, bool) {
	s, okStart := parseClock(start)
	e, okEnd := parseClock(end)
	if !okStart || !okEnd {
		return interval{}, false
	}
	return interval{start: s, end: e}, true
}

func (iv interval) valid() bool {
	return iv.end > iv.start
}

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// gap returns the minutes between two non-overlapping intervals, or 0 when
// they overlap.
func (iv interval) gap(other interval) int {
	if iv.overlaps(other) {
		return 0
	}
	if iv.end <= other.start {
		return other.start - iv.end
	}
	return iv.start - other.end
}

// Overlaps reports whether [startA, endA) and [startB, endB) intersect on the
// same date. Touching endpoints do not overlap. Missing or unparsable dates
// and times never do.
func Overlaps(dateA, startA, endA, dateB, startB, endB string) bool {
	if dateA != dateB || !calendarDay(dateA) {
		return false
	}
	a, okA := sessionInterval(startA, endA)
	b, okB := sessionInterval(startB, endB)
	if !okA || !okB {
		return false
	}
	return a.overlaps(b)
}
