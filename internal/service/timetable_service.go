package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
)

const detectCacheNamespace = "detect"

// TimetableServiceConfig bounds request sizes and run retention.
type TimetableServiceConfig struct {
	MaxSessions int
	RunTTL      time.Duration
	CacheTTL    time.Duration
}

// TimetableService runs the engine for a single request and persists full
// analyses as timetable runs. It holds no per-timetable state of its own.
type TimetableService struct {
	engine    *timetable.Engine
	runs      RunStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig
}

// NewTimetableService wires the engine with persistence, caching and metrics.
func NewTimetableService(engine *timetable.Engine, runs RunStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg TimetableServiceConfig) *TimetableService {
	if engine == nil {
		engine = timetable.New(timetable.DefaultOptions())
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 500
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 24 * time.Hour
	}
	return &TimetableService{
		engine:    engine,
		runs:      runs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Engine exposes the configured engine.
func (s *TimetableService) Engine() *timetable.Engine {
	return s.engine
}

// Normalize maps loosely keyed exams onto canonical sessions.
func (s *TimetableService) Normalize(_ context.Context, req dto.TimetableRequest) ([]models.ExamSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "exams must be a non-empty list")
	}
	return s.sessions(req.Exams)
}

// Detect returns every rule violation in the timetable. The boolean reports
// whether the result came from cache.
func (s *TimetableService) Detect(ctx context.Context, req dto.TimetableRequest) (*dto.DetectResponse, bool, error) {
	sessions, err := s.Normalize(ctx, req)
	if err != nil {
		return nil, false, err
	}

	key, err := DigestKey(detectCacheNamespace, sessions)
	if err != nil {
		s.logger.Warn("detect cache key", zap.Error(err))
	}
	var cached []models.Conflict
	if key != "" && s.cache.Get(ctx, key, &cached) {
		return detectResponse(cached), true, nil
	}

	conflicts := s.detect(sessions)
	if key != "" {
		s.cache.Set(ctx, key, conflicts, s.cfg.CacheTTL)
	}
	return detectResponse(conflicts), false, nil
}

// Resolve repairs the timetable with the greedy resolver.
func (s *TimetableService) Resolve(_ context.Context, req dto.ResolveRequest) (*models.ResolutionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolve payload")
	}
	if err := checkConflictTypes(req.Conflicts); err != nil {
		return nil, err
	}
	sessions, err := s.sessions(req.Exams)
	if err != nil {
		return nil, err
	}
	conflicts := req.Conflicts
	if req.Redetect {
		conflicts = s.detect(sessions)
	}
	result := s.resolve(sessions, conflicts)
	return &result, nil
}

// Suggest ranks alternative slots for the first conflicts. Conflicts are
// detected when the request carries none.
func (s *TimetableService) Suggest(_ context.Context, req dto.SuggestionsRequest) ([]models.Suggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestions payload")
	}
	if err := checkConflictTypes(req.Conflicts); err != nil {
		return nil, err
	}
	sessions, err := s.sessions(req.Exams)
	if err != nil {
		return nil, err
	}
	conflicts := req.Conflicts
	if len(conflicts) == 0 {
		conflicts = s.detect(sessions)
	}
	defer s.observe("suggest", time.Now())
	return s.engine.Suggest(conflicts, sessions), nil
}

// Fatigue scores each student group's exam load.
func (s *TimetableService) Fatigue(ctx context.Context, req dto.TimetableRequest) ([]models.FatigueEntry, error) {
	sessions, err := s.Normalize(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.observe("fatigue", time.Now())
	return s.engine.Fatigue(sessions), nil
}

// Impact compares the original and resolved timetables.
func (s *TimetableService) Impact(_ context.Context, req dto.ImpactRequest) (*models.ImpactSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid impact payload")
	}
	if err := checkConflictTypes(req.Conflicts); err != nil {
		return nil, err
	}
	original, err := s.sessions(req.Original)
	if err != nil {
		return nil, err
	}
	resolved, err := s.sessions(req.Resolved)
	if err != nil {
		return nil, err
	}
	defer s.observe("impact", time.Now())
	summary := s.engine.Impact(original, req.Conflicts, resolved)
	return &summary, nil
}

// ResetDetections drops cached detection results, which were computed under
// the engine options of whichever process stored them.
func (s *TimetableService) ResetDetections(ctx context.Context) error {
	return s.cache.Invalidate(ctx, detectCacheNamespace)
}

// Analyze runs the full pipeline and stores the outcome as a run.
func (s *TimetableService) Analyze(ctx context.Context, req dto.TimetableRequest, source models.RunSource) (*models.TimetableRun, error) {
	sessions, err := s.Normalize(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeSessions(ctx, sessions, source)
}

// AnalyzeSessions runs the full pipeline over already normalized sessions.
func (s *TimetableService) AnalyzeSessions(ctx context.Context, sessions []models.ExamSession, source models.RunSource) (*models.TimetableRun, error) {
	if err := s.checkSize(len(sessions)); err != nil {
		return nil, err
	}
	conflicts := s.detect(sessions)
	resolution := s.resolve(sessions, conflicts)

	start := time.Now()
	suggestions := s.engine.Suggest(conflicts, sessions)
	s.observe("suggest", start)
	start = time.Now()
	fatigue := s.engine.Fatigue(sessions)
	s.observe("fatigue", start)
	start = time.Now()
	impact := s.engine.Impact(sessions, conflicts, resolution.ResolvedTimetable)
	s.observe("impact", start)

	run := &models.TimetableRun{
		Source:      source,
		Exams:       sessions,
		Conflicts:   conflicts,
		Resolved:    resolution.ResolvedTimetable,
		Changes:     resolution.Changes,
		Summary:     resolution.Summary,
		Suggestions: suggestions,
		Fatigue:     fatigue,
		Impact:      impact,
	}
	if s.runs == nil {
		return run, nil
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable run")
	}
	s.logger.Info("timetable analysed",
		zap.String("run_id", run.ID),
		zap.String("source", string(source)),
		zap.Int("exams", len(sessions)),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("unresolved", resolution.Unresolved),
	)
	return run, nil
}

// ListRuns pages through stored runs.
func (s *TimetableService) ListRuns(ctx context.Context, query dto.RunListQuery) ([]models.TimetableRunMeta, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run query")
	}
	if s.runs == nil {
		return nil, nil, appErrors.ErrUnavailable
	}
	filter := models.TimetableRunFilter{Source: models.RunSource(query.Source), Page: query.Page, PageSize: query.Limit}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable runs")
	}
	return runs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetRun loads one stored run.
func (s *TimetableService) GetRun(ctx context.Context, id string) (*models.TimetableRun, error) {
	if s.runs == nil {
		return nil, appErrors.ErrUnavailable
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run")
	}
	return run, nil
}

// DeleteRun removes a stored run.
func (s *TimetableService) DeleteRun(ctx context.Context, id string) error {
	if s.runs == nil {
		return appErrors.ErrUnavailable
	}
	deleted, err := s.runs.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable run")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
	}
	return nil
}

// StartPruning periodically deletes runs older than the configured TTL.
func (s *TimetableService) StartPruning(ctx context.Context, interval time.Duration) {
	if s.runs == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pruneRuns(ctx)
			}
		}
	}()
}

func (s *TimetableService) pruneRuns(ctx context.Context) {
	removed, err := s.runs.DeleteOlderThan(ctx, time.Now().Add(-s.cfg.RunTTL))
	if err != nil {
		s.logger.Warn("prune timetable runs failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("pruned timetable runs", zap.Int64("removed", removed))
	}
}

func (s *TimetableService) sessions(raw []models.RawExam) ([]models.ExamSession, error) {
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exams must be a non-empty list")
	}
	if err := s.checkSize(len(raw)); err != nil {
		return nil, err
	}
	return timetable.NormalizeAll(raw), nil
}

func checkConflictTypes(conflicts []models.Conflict) error {
	for _, c := range conflicts {
		if !c.Type.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown conflict type %q", c.Type))
		}
	}
	return nil
}

func (s *TimetableService) checkSize(n int) error {
	if n == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "exams must be a non-empty list")
	}
	if n > s.cfg.MaxSessions {
		return appErrors.Clone(appErrors.ErrTooLarge, "timetable exceeds the maximum number of exam sessions")
	}
	return nil
}

func (s *TimetableService) detect(sessions []models.ExamSession) []models.Conflict {
	defer s.observe("detect", time.Now())
	conflicts := s.engine.Detect(sessions)
	s.metrics.RecordConflicts(conflicts)
	return conflicts
}

func (s *TimetableService) resolve(sessions []models.ExamSession, conflicts []models.Conflict) models.ResolutionResult {
	defer s.observe("resolve", time.Now())
	result := s.engine.Resolve(sessions, conflicts)
	s.metrics.RecordResolution(len(result.Changes)-result.Unresolved, result.Unresolved)
	return result
}

func (s *TimetableService) observe(operation string, start time.Time) {
	s.metrics.ObserveEngine(operation, time.Since(start))
}

func detectResponse(conflicts []models.Conflict) *dto.DetectResponse {
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return &dto.DetectResponse{
		Conflicts: conflicts,
		Total:     len(conflicts),
		ByType:    models.Conflicts(conflicts).CountByType(),
	}
}
