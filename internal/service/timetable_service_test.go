package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
)

func clashingExams() []models.RawExam {
	return []models.RawExam{
		{"id": "1", "subject": "Data Structures", "studentGroup": "CSE-A", "date": "2025-01-15", "start": "09:00", "end": "12:00", "room": "101", "faculty": "F1", "totalStudents": 60},
		{"id": "2", "subject_name": "Operating Systems", "group": "CSE-A", "exam_date": "2025-01-15", "start_time": "10:00", "end_time": "13:00", "room_no": "102", "faculty": "F2", "students": "40"},
	}
}

func newTimetableServiceForTest(t *testing.T) (*TimetableService, *MemoryRunStore, *memoryCacheRepo, *MetricsService) {
	t.Helper()
	runs := NewMemoryRunStore(time.Hour)
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	svc := NewTimetableService(nil, runs, cache, metrics, nil, nil, TimetableServiceConfig{MaxSessions: 3})
	return svc, runs, cacheRepo, metrics
}

func TestTimetableServiceNormalize(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)

	sessions, err := svc.Normalize(context.Background(), dto.TimetableRequest{Exams: clashingExams()})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Operating Systems", sessions[1].Subject)
	assert.Equal(t, "CSE-A", sessions[1].StudentGroup)
	assert.Equal(t, 40, sessions[1].TotalStudents)
}

func TestTimetableServiceRejectsEmptyAndOversized(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Normalize(ctx, dto.TimetableRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	exams := append(clashingExams(), clashingExams()...)
	_, _, err = svc.Detect(ctx, dto.TimetableRequest{Exams: exams})
	assert.ErrorIs(t, err, appErrors.ErrTooLarge)
}

func TestTimetableServiceDetectUsesCache(t *testing.T) {
	svc, _, cacheRepo, metrics := newTimetableServiceForTest(t)
	ctx := context.Background()
	req := dto.TimetableRequest{Exams: clashingExams()}

	first, hit, err := svc.Detect(ctx, req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, first.Total)
	assert.Equal(t, 1, first.ByType[models.ConflictStudentClash])
	assert.Len(t, cacheRepo.items, 1)

	second, hit, err := svc.Detect(ctx, req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Conflicts, second.Conflicts)

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.ConflictsDetected[string(models.ConflictStudentClash)])
	assert.EqualValues(t, 1, snap.CacheHits)
}

func TestTimetableServiceResolve(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)
	ctx := context.Background()

	untouched, err := svc.Resolve(ctx, dto.ResolveRequest{Exams: clashingExams()})
	require.NoError(t, err)
	assert.Empty(t, untouched.Changes)
	assert.Equal(t, "No conflicts detected. Timetable is already optimized.", untouched.Summary)

	resolved, err := svc.Resolve(ctx, dto.ResolveRequest{Exams: clashingExams(), Redetect: true})
	require.NoError(t, err)
	require.Len(t, resolved.ResolvedTimetable, 2)
	assert.Equal(t, []string{
		"Operating Systems moved from 10:00-13:00 → 13:00-16:00",
		"Operating Systems room changed from 102 → 101",
		"Operating Systems faculty changed from F2 → F1",
	}, resolved.Changes)
	assert.Zero(t, resolved.Unresolved)
}

func TestTimetableServiceSuggestDetectsWhenNoConflictsGiven(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)

	suggestions, err := svc.Suggest(context.Background(), dto.SuggestionsRequest{Exams: clashingExams()})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "STUDENT_CLASH_1", suggestions[0].ConflictID)
	assert.Len(t, suggestions[0].Suggestions, 3)
}

func TestTimetableServiceAnalyzePersistsRun(t *testing.T) {
	svc, runs, _, _ := newTimetableServiceForTest(t)
	ctx := context.Background()

	run, err := svc.Analyze(ctx, dto.TimetableRequest{Exams: clashingExams()}, models.RunSourceAPI)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Len(t, run.Conflicts, 1)
	assert.Len(t, run.Resolved, 2)
	assert.Equal(t, 1, run.Impact.TotalConflicts)

	stored, err := runs.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Summary, stored.Summary)

	metas, page, err := svc.ListRuns(ctx, dto.RunListQuery{})
	require.NoError(t, err)
	assert.Len(t, metas, 1)
	assert.Equal(t, 1, page.TotalCount)

	fetched, err := svc.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, fetched.ID)

	require.NoError(t, svc.DeleteRun(ctx, run.ID))
	_, err = svc.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRun(ctx, run.ID), appErrors.ErrNotFound)
}

type failingRunStore struct{ *MemoryRunStore }

func (failingRunStore) Create(context.Context, *models.TimetableRun) error {
	return errors.New("db down")
}

func TestTimetableServiceAnalyzeStoreFailure(t *testing.T) {
	svc := NewTimetableService(nil, failingRunStore{NewMemoryRunStore(time.Hour)}, nil, nil, nil, nil, TimetableServiceConfig{})

	_, err := svc.Analyze(context.Background(), dto.TimetableRequest{Exams: clashingExams()}, models.RunSourceAPI)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestTimetableServiceWithoutRunStore(t *testing.T) {
	svc := NewTimetableService(nil, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	run, err := svc.Analyze(context.Background(), dto.TimetableRequest{Exams: clashingExams()}, models.RunSourceAPI)
	require.NoError(t, err)
	assert.Empty(t, run.ID)

	_, _, err = svc.ListRuns(context.Background(), dto.RunListQuery{})
	assert.ErrorIs(t, err, appErrors.ErrUnavailable)
}

func TestTimetableServiceFatigueAndImpact(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)
	ctx := context.Background()

	fatigue, err := svc.Fatigue(ctx, dto.TimetableRequest{Exams: clashingExams()})
	require.NoError(t, err)
	require.Len(t, fatigue, 1)
	assert.Equal(t, "CSE-A", fatigue[0].StudentGroup)

	impact, err := svc.Impact(ctx, dto.ImpactRequest{Original: clashingExams(), Resolved: clashingExams()})
	require.NoError(t, err)
	assert.Zero(t, impact.TotalConflicts)
}

func TestTimetableServiceRejectsUnknownConflictTypes(t *testing.T) {
	svc, _, _, _ := newTimetableServiceForTest(t)
	ctx := context.Background()
	bogus := []models.Conflict{{Type: "TEACHER_ON_LEAVE", Severity: models.SeverityHigh}}

	_, err := svc.Resolve(ctx, dto.ResolveRequest{Exams: clashingExams(), Conflicts: bogus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Contains(t, err.Error(), "TEACHER_ON_LEAVE")

	_, err = svc.Suggest(ctx, dto.SuggestionsRequest{Exams: clashingExams(), Conflicts: bogus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Impact(ctx, dto.ImpactRequest{Original: clashingExams(), Resolved: clashingExams(), Conflicts: bogus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	known := []models.Conflict{{Type: models.ConflictStudentClash, Severity: models.SeverityHigh}}
	impact, err := svc.Impact(ctx, dto.ImpactRequest{Original: clashingExams(), Resolved: clashingExams(), Conflicts: known})
	require.NoError(t, err)
	assert.Equal(t, 1, impact.TotalConflicts)
}

func TestTimetableServiceResetDetections(t *testing.T) {
	svc, _, cacheRepo, _ := newTimetableServiceForTest(t)
	ctx := context.Background()

	_, _, err := svc.Detect(ctx, dto.TimetableRequest{Exams: clashingExams()})
	require.NoError(t, err)
	require.Len(t, cacheRepo.items, 1)

	require.NoError(t, svc.ResetDetections(ctx))
	assert.Empty(t, cacheRepo.items)

	_, hit, err := svc.Detect(ctx, dto.TimetableRequest{Exams: clashingExams()})
	require.NoError(t, err)
	assert.False(t, hit)

	withoutCache := NewTimetableService(nil, nil, nil, nil, nil, nil, TimetableServiceConfig{})
	assert.NoError(t, withoutCache.ResetDetections(ctx))
}
