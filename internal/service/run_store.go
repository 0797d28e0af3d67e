package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// RunStore persists analysed timetables.
type RunStore interface {
	Create(ctx context.Context, run *models.TimetableRun) error
	GetByID(ctx context.Context, id string) (*models.TimetableRun, error)
	List(ctx context.Context, filter models.TimetableRunFilter) ([]models.TimetableRunMeta, int, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryRunStore keeps runs in process memory for deployments without a
// database. Entries older than the TTL are invisible and pruned lazily.
type MemoryRunStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]models.TimetableRun
}

// NewMemoryRunStore builds a store whose entries expire after ttl.
func NewMemoryRunStore(ttl time.Duration) *MemoryRunStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryRunStore{ttl: ttl, now: time.Now, items: make(map[string]models.TimetableRun)}
}

// Create stores a copy of run.
func (s *MemoryRunStore) Create(_ context.Context, run *models.TimetableRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	s.mu.Lock()
	s.items[run.ID] = *run
	s.mu.Unlock()
	return nil
}

// GetByID returns sql.ErrNoRows for unknown or expired runs, like the SQL store.
func (s *MemoryRunStore) GetByID(_ context.Context, id string) (*models.TimetableRun, error) {
	s.mu.RLock()
	run, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || s.expired(run) {
		return nil, fmt.Errorf("get timetable run: %w", sql.ErrNoRows)
	}
	return &run, nil
}

// List returns live runs newest first.
func (s *MemoryRunStore) List(_ context.Context, filter models.TimetableRunFilter) ([]models.TimetableRunMeta, int, error) {
	s.mu.RLock()
	metas := make([]models.TimetableRunMeta, 0, len(s.items))
	for _, run := range s.items {
		if s.expired(run) || (filter.Source != "" && run.Source != filter.Source) {
			continue
		}
		metas = append(metas, models.TimetableRunMeta{
			ID:            run.ID,
			Source:        run.Source,
			Summary:       run.Summary,
			ExamCount:     len(run.Exams),
			ConflictCount: len(run.Conflicts),
			CreatedAt:     run.CreatedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].ID < metas[j].ID
		}
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	total := len(metas)
	start := (page - 1) * size
	if start >= total {
		return []models.TimetableRunMeta{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return metas[start:end], total, nil
}

// Delete removes a run and reports whether it existed.
func (s *MemoryRunStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.items[id]
	delete(s.items, id)
	return ok && !s.expired(run), nil
}

// DeleteOlderThan prunes runs created before cutoff.
func (s *MemoryRunStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, run := range s.items {
		if run.CreatedAt.Before(cutoff) || s.expired(run) {
			delete(s.items, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryRunStore) expired(run models.TimetableRun) bool {
	return s.now().Sub(run.CreatedAt) > s.ttl
}
