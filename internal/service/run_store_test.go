package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

func TestMemoryRunStoreLifecycle(t *testing.T) {
	store := NewMemoryRunStore(time.Hour)
	ctx := context.Background()
	base := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	for i, source := range []models.RunSource{models.RunSourceAPI, models.RunSourceUpload, models.RunSourceAPI} {
		run := &models.TimetableRun{
			Source:    source,
			Exams:     models.ExamSessions{{ID: "1"}, {ID: "2"}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.Create(ctx, run))
	}

	metas, total, err := store.List(ctx, models.TimetableRunFilter{Source: models.RunSourceAPI})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, metas, 2)
	assert.True(t, metas[0].CreatedAt.After(metas[1].CreatedAt))
	assert.Equal(t, 2, metas[0].ExamCount)

	page, total, err := store.List(ctx, models.TimetableRunFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)

	fetched, err := store.GetByID(ctx, metas[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunSourceAPI, fetched.Source)

	deleted, err := store.Delete(ctx, metas[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = store.GetByID(ctx, metas[0].ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryRunStoreExpiry(t *testing.T) {
	store := NewMemoryRunStore(time.Hour)
	ctx := context.Background()
	run := &models.TimetableRun{Source: models.RunSourceAPI}
	require.NoError(t, store.Create(ctx, run))

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := store.GetByID(ctx, run.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	removed, err := store.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
