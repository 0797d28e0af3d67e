package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	"github.com/noah-isme/exam-timetable-api/pkg/config"
)

// EngineOptions maps scheduler configuration onto engine options. Empty lists
// keep the engine defaults.
func EngineOptions(cfg config.SchedulerConfig) (timetable.Options, error) {
	opts := timetable.Options{
		Holidays:              cfg.Holidays,
		HardSubjects:          cfg.HardSubjects,
		DefaultRooms:          cfg.DefaultRooms,
		DefaultFaculty:        cfg.DefaultFaculty,
		AdvisorSlots:          cfg.AdvisorSlots,
		MaxSuggestedConflicts: cfg.MaxSuggestedConflicts,
		ResolvedFraction:      cfg.ResolvedFraction,
	}
	if len(cfg.ResolverSlots) > 0 {
		slots, err := timetable.ParseSlots(cfg.ResolverSlots)
		if err != nil {
			return timetable.Options{}, fmt.Errorf("resolver slots: %w", err)
		}
		opts.ResolverSlots = slots
	}
	for _, slot := range cfg.AdvisorSlots {
		if _, err := time.Parse("15:04", slot); err != nil {
			return timetable.Options{}, fmt.Errorf("advisor slot %q: %w", slot, err)
		}
	}
	return opts, nil
}

// NewEngine builds a timetable engine from scheduler configuration.
func NewEngine(cfg config.SchedulerConfig) (*timetable.Engine, error) {
	opts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}
	return timetable.New(opts), nil
}
