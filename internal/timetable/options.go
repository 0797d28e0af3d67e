// Package timetable implements the exam conflict detector, the greedy
// auto-resolver, the alternative-slot advisor and the fatigue and impact
// analyzers. Everything here is pure: inputs are never mutated and no I/O is
// performed, so an Engine can be shared between goroutines.
package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a fixed time range the resolver may move a session into.
type Slot struct {
	Start string
	End   string
}

// ParseSlots reads "HH:MM-HH:MM" entries.
func ParseSlots(raw []string) ([]Slot, error) {
	slots := make([]Slot, 0, len(raw))
	for _, entry := range raw {
		start, end, ok := strings.Cut(strings.TrimSpace(entry), "-")
		if !ok {
			return nil, fmt.Errorf("slot %q: expected HH:MM-HH:MM", entry)
		}
		startMin, okStart := parseClock(start)
		endMin, okEnd := parseClock(end)
		if !okStart || !okEnd {
			return nil, fmt.Errorf("slot %q: invalid time", entry)
		}
		if endMin <= startMin {
			return nil, fmt.Errorf("slot %q: end must be after start", entry)
		}
		slots = append(slots, Slot{Start: formatClock(startMin), End: formatClock(endMin)})
	}
	return slots, nil
}

// Options holds the heuristic constants used by the engine.
type Options struct {
	// Holidays are YYYY-MM-DD dates on which no exam may be held.
	Holidays []string
	// HardSubjects are lower-case keywords; matching subjects are scheduled
	// first among sessions of equal size.
	HardSubjects []string

	ResolverSlots  []Slot
	DefaultRooms   []string
	DefaultFaculty []string

	AdvisorSlots           []string
	AdvisorDuration        time.Duration
	MaxSuggestedConflicts  int
	SuggestionsPerConflict int
	DefaultCapacity        int

	ContinuousGap time.Duration
	FatigueGap    time.Duration
	LongExam      time.Duration

	// ResolvedFraction is the share of critical conflicts counted as resolved
	// in the impact summary.
	ResolvedFraction float64
	SlotsPerRoom     int
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		Holidays:     []string{"2025-01-26", "2025-08-15", "2025-10-02"},
		HardSubjects: []string{"mathematics", "physics", "chemistry", "programming"},
		ResolverSlots: []Slot{
			{Start: "09:00", End: "12:00"},
			{Start: "11:00", End: "14:00"},
			{Start: "13:00", End: "16:00"},
			{Start: "15:00", End: "18:00"},
		},
		DefaultRooms:           []string{"101", "102", "103"},
		DefaultFaculty:         []string{"Faculty1", "Faculty2", "Faculty3"},
		AdvisorSlots:           []string{"09:00", "11:00", "12:00", "14:00", "15:00", "16:00"},
		AdvisorDuration:        2 * time.Hour,
		MaxSuggestedConflicts:  5,
		SuggestionsPerConflict: 3,
		DefaultCapacity:        100,
		ContinuousGap:          15 * time.Minute,
		FatigueGap:             2 * time.Hour,
		LongExam:               3 * time.Hour,
		ResolvedFraction:       0.85,
		SlotsPerRoom:           8,
	}
}

// Engine runs the timetable algorithms with a fixed set of options.
type Engine struct {
	opts     Options
	holidays map[string]struct{}
	hard     []string
}

// New builds an Engine. Zero-valued options fall back to DefaultOptions.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Holidays == nil {
		opts.Holidays = def.Holidays
	}
	if opts.HardSubjects == nil {
		opts.HardSubjects = def.HardSubjects
	}
	if len(opts.ResolverSlots) == 0 {
		opts.ResolverSlots = def.ResolverSlots
	}
	if len(opts.DefaultRooms) == 0 {
		opts.DefaultRooms = def.DefaultRooms
	}
	if len(opts.DefaultFaculty) == 0 {
		opts.DefaultFaculty = def.DefaultFaculty
	}
	if len(opts.AdvisorSlots) == 0 {
		opts.AdvisorSlots = def.AdvisorSlots
	}
	if opts.AdvisorDuration <= 0 {
		opts.AdvisorDuration = def.AdvisorDuration
	}
	if opts.MaxSuggestedConflicts <= 0 {
		opts.MaxSuggestedConflicts = def.MaxSuggestedConflicts
	}
	if opts.SuggestionsPerConflict <= 0 {
		opts.SuggestionsPerConflict = def.SuggestionsPerConflict
	}
	if opts.DefaultCapacity <= 0 {
		opts.DefaultCapacity = def.DefaultCapacity
	}
	if opts.ContinuousGap <= 0 {
		opts.ContinuousGap = def.ContinuousGap
	}
	if opts.FatigueGap <= 0 {
		opts.FatigueGap = def.FatigueGap
	}
	if opts.LongExam <= 0 {
		opts.LongExam = def.LongExam
	}
	if opts.ResolvedFraction <= 0 || opts.ResolvedFraction > 1 {
		opts.ResolvedFraction = def.ResolvedFraction
	}
	if opts.SlotsPerRoom <= 0 {
		opts.SlotsPerRoom = def.SlotsPerRoom
	}

	holidays := make(map[string]struct{}, len(opts.Holidays))
	for _, day := range opts.Holidays {
		holidays[normalizeDate(day)] = struct{}{}
	}
	hard := make([]string, 0, len(opts.HardSubjects))
	for _, kw := range opts.HardSubjects {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			hard = append(hard, kw)
		}
	}
	return &Engine{opts: opts, holidays: holidays, hard: hard}
}

// Options returns a copy of the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// IsHoliday reports whether date is a configured holiday.
func (e *Engine) IsHoliday(date string) bool {
	_, ok := e.holidays[date]
	return ok
}
