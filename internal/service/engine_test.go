package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	"github.com/noah-isme/exam-timetable-api/pkg/config"
)

func TestEngineOptionsFromConfig(t *testing.T) {
	opts, err := EngineOptions(config.SchedulerConfig{
		Holidays:      []string{"2025-12-25"},
		ResolverSlots: []string{"08:00-10:00", "10:30-12:30"},
		AdvisorSlots:  []string{"08:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, []timetable.Slot{{Start: "08:00", End: "10:00"}, {Start: "10:30", End: "12:30"}}, opts.ResolverSlots)

	engine := timetable.New(opts)
	assert.True(t, engine.IsHoliday("2025-12-25"))
	assert.False(t, engine.IsHoliday("2025-01-26"))
	assert.Equal(t, []string{"101", "102", "103"}, engine.Options().DefaultRooms)
}

func TestEngineOptionsRejectsBadSlots(t *testing.T) {
	_, err := EngineOptions(config.SchedulerConfig{ResolverSlots: []string{"12:00-09:00"}})
	assert.Error(t, err)
	_, err = EngineOptions(config.SchedulerConfig{AdvisorSlots: []string{"noon"}})
	assert.Error(t, err)
	_, err = NewEngine(config.SchedulerConfig{ResolverSlots: []string{"bad"}})
	assert.Error(t, err)
}
