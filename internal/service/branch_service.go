package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
)

// BranchStore persists per-branch timetables.
type BranchStore interface {
	Create(ctx context.Context, exam *models.BranchExam) error
	ListByBranch(ctx context.Context, branch string) ([]models.BranchExam, error)
	DeleteByBranch(ctx context.Context, branch string) (int64, error)
}

// MemoryBranchStore keeps branch timetables in process memory.
type MemoryBranchStore struct {
	mu    sync.RWMutex
	items map[string][]models.BranchExam
}

// NewMemoryBranchStore builds an empty store.
func NewMemoryBranchStore() *MemoryBranchStore {
	return &MemoryBranchStore{items: make(map[string][]models.BranchExam)}
}

// Create appends the exam to its branch.
func (s *MemoryBranchStore) Create(_ context.Context, exam *models.BranchExam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.items[exam.Branch] = append(s.items[exam.Branch], *exam)
	s.mu.Unlock()
	return nil
}

// ListByBranch returns a copy of the branch timetable.
func (s *MemoryBranchStore) ListByBranch(_ context.Context, branch string) ([]models.BranchExam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BranchExam(nil), s.items[branch]...), nil
}

// DeleteByBranch clears the branch timetable.
func (s *MemoryBranchStore) DeleteByBranch(_ context.Context, branch string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items[branch])
	delete(s.items, branch)
	return int64(n), nil
}

// BranchService manages branch timetables and compares them.
type BranchService struct {
	store     BranchStore
	engine    *timetable.Engine
	branches  []string
	known     map[string]struct{}
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewBranchService constructs the service for the configured branch names.
func NewBranchService(store BranchStore, engine *timetable.Engine, branches []string, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *BranchService {
	if store == nil {
		store = NewMemoryBranchStore()
	}
	if engine == nil {
		engine = timetable.New(timetable.DefaultOptions())
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	names := make([]string, 0, len(branches))
	known := make(map[string]struct{}, len(branches))
	for _, b := range branches {
		b = canonicalBranch(b)
		if _, dup := known[b]; b == "" || dup {
			continue
		}
		known[b] = struct{}{}
		names = append(names, b)
	}
	return &BranchService{
		store:     store,
		engine:    engine,
		branches:  names,
		known:     known,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
	}
}

// Branches lists the accepted branch names.
func (s *BranchService) Branches() []string {
	return append([]string(nil), s.branches...)
}

// AddExam normalizes raw and appends it to the branch timetable.
func (s *BranchService) AddExam(ctx context.Context, branch string, raw models.RawExam) (*models.BranchExam, error) {
	name, err := s.branch(branch)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing exam data")
	}
	exam := timetable.Normalize(raw)
	if !analysable(exam) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam requires subject, date, start and end")
	}
	exam.Branch = name

	record := &models.BranchExam{Branch: name, Exam: exam}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store branch exam")
	}
	return record, nil
}

// List returns one branch timetable.
func (s *BranchService) List(ctx context.Context, branch string) (*dto.BranchTimetableResponse, error) {
	name, err := s.branch(branch)
	if err != nil {
		return nil, err
	}
	exams, err := s.store.ListByBranch(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch timetable")
	}
	if exams == nil {
		exams = []models.BranchExam{}
	}
	return &dto.BranchTimetableResponse{Branch: name, Exams: exams, Total: len(exams)}, nil
}

// Clear empties one branch timetable and reports how many exams were removed.
func (s *BranchService) Clear(ctx context.Context, branch string) (int64, error) {
	name, err := s.branch(branch)
	if err != nil {
		return 0, err
	}
	removed, err := s.store.DeleteByBranch(ctx, name)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear branch timetable")
	}
	s.logger.Info("branch timetable cleared", zap.String("branch", name), zap.Int64("removed", removed))
	return removed, nil
}

// Analyze loads the selected branches concurrently and checks the combined
// timetable. No selection means every configured branch.
func (s *BranchService) Analyze(ctx context.Context, req dto.BranchAnalyzeRequest) (*models.BranchAnalysis, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch selection")
	}
	selected := s.branches
	if len(req.Branches) > 0 {
		selected = make([]string, 0, len(req.Branches))
		seen := make(map[string]struct{}, len(req.Branches))
		for _, b := range req.Branches {
			name, err := s.branch(b)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			selected = append(selected, name)
		}
	}

	loaded := make([][]models.BranchExam, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range selected {
		i, name := i, name
		g.Go(func() error {
			exams, err := s.store.ListByBranch(gctx, name)
			if err != nil {
				return fmt.Errorf("load branch %s: %w", name, err)
			}
			loaded[i] = exams
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch timetables")
	}

	combined := make([]models.ExamSession, 0)
	for i, name := range selected {
		for _, record := range loaded[i] {
			exam := record.Exam
			if exam.Branch == "" {
				exam.Branch = name
			}
			combined = append(combined, exam)
		}
	}
	if len(combined) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no timetables found for the selected branches")
	}

	start := time.Now()
	analysis := AnalyzeBranches(s.engine, combined, selected)
	s.metrics.ObserveEngine("branches", time.Since(start))
	s.metrics.RecordConflicts(analysis.Conflicts)
	s.logger.Info("branches analysed",
		zap.Strings("branches", selected),
		zap.Int("exams", analysis.TotalExams),
		zap.Int("cross_branch_conflicts", len(analysis.CrossBranch)),
	)
	return &analysis, nil
}

func (s *BranchService) branch(raw string) (string, error) {
	name := canonicalBranch(raw)
	if name == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "branch is required")
	}
	if _, ok := s.known[name]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid branch: %s", raw))
	}
	return name, nil
}

// AnalyzeBranches runs the cross-branch and full detector passes over a
// combined timetable. Exams missing subject, date or times are skipped. When
// branches is empty the names are taken from the exams, sorted.
func AnalyzeBranches(engine *timetable.Engine, exams []models.ExamSession, branches []string) models.BranchAnalysis {
	valid := make([]models.ExamSession, 0, len(exams))
	counts := make(map[string]int)
	for _, exam := range exams {
		if !analysable(exam) {
			continue
		}
		valid = append(valid, exam)
		counts[exam.Branch]++
	}
	if len(branches) == 0 {
		branches = make([]string, 0, len(counts))
		for name := range counts {
			branches = append(branches, name)
		}
		sort.Strings(branches)
	}
	for _, name := range branches {
		if _, ok := counts[name]; !ok {
			counts[name] = 0
		}
	}

	cross := timetable.DetectCrossBranch(valid)
	conflicts := engine.Detect(valid)
	if conflicts == nil {
		conflicts = []models.Conflict{}
	}
	return models.BranchAnalysis{
		Branches:    branches,
		ExamCounts:  counts,
		CrossBranch: cross,
		Conflicts:   conflicts,
		Summary:     timetable.CrossBranchSummary(cross),
		TotalExams:  len(valid),
	}
}

func analysable(exam models.ExamSession) bool {
	return exam.Subject != "" && exam.Date != "" && exam.Start != "" && exam.End != ""
}

func canonicalBranch(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
