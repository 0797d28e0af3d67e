package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/pkg/export"
	"github.com/noah-isme/exam-timetable-api/pkg/storage"
)

type runReader interface {
	GetByID(ctx context.Context, id string) (*models.TimetableRun, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders stored timetable runs and persists the files.
type ExportService struct {
	runs      runReader
	storage   fileStorage
	renderers map[models.ExportFormat]export.Renderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(runs runReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		runs:    runs,
		storage: files,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		},
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate renders the job's run variant and stores it behind a signed URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	run, err := s.runs.GetByID(ctx, job.RunID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", job.RunID, err)
	}
	dataset, err := RunDataset(run, job.Variant)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(dataset)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("exports/%s/%s-%s.%s", run.ID, job.Variant, job.ID, renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Claims, error) {
	return s.signer.Verify(token, allowExpired)
}

// ContentType maps an export format to its MIME type.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	if renderer, ok := s.renderers[format]; ok {
		return renderer.ContentType()
	}
	return "application/octet-stream"
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl. A zero ttl uses the configured
// ResultTTL; a negative one removes every stored file.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl == 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

var sessionHeaders = []string{"ID", "Subject", "Branch", "Date", "Start", "End", "Room", "Faculty", "Student Group", "Capacity", "Students"}

// RunDataset builds the table for one variant of a stored run.
func RunDataset(run *models.TimetableRun, variant models.ExportVariant) (export.Dataset, error) {
	if run == nil {
		return export.Dataset{}, fmt.Errorf("run nil")
	}
	switch variant {
	case models.ExportVariantOriginal:
		return export.Dataset{
			Title:   "Exam Timetable",
			Headers: sessionHeaders,
			Rows:    sessionRows(run.Exams),
			Notes:   []string{fmt.Sprintf("%d conflicts detected", len(run.Conflicts))},
		}, nil
	case models.ExportVariantResolved:
		notes := make([]string, 0, len(run.Changes)+1)
		if run.Summary != "" {
			notes = append(notes, run.Summary)
		}
		notes = append(notes, run.Changes...)
		return export.Dataset{
			Title:   "Resolved Exam Timetable",
			Headers: sessionHeaders,
			Rows:    sessionRows(run.Resolved),
			Notes:   notes,
		}, nil
	case models.ExportVariantConflicts:
		rows := make([]map[string]string, 0, len(run.Conflicts))
		for _, c := range run.Conflicts {
			examB := ""
			if c.ExamB != nil {
				examB = c.ExamB.Label()
			}
			rows = append(rows, map[string]string{
				"Type":     string(c.Type),
				"Severity": string(c.Severity),
				"Exam A":   c.ExamA.Label(),
				"Exam B":   examB,
				"Date":     c.ExamA.Date,
				"Time":     c.ExamA.Slot(),
				"Details":  c.Details,
			})
		}
		return export.Dataset{
			Title:   "Timetable Conflicts",
			Headers: []string{"Type", "Severity", "Exam A", "Exam B", "Date", "Time", "Details"},
			Rows:    rows,
		}, nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported export variant %s", variant)
	}
}

func sessionRows(sessions []models.ExamSession) []map[string]string {
	rows := make([]map[string]string, 0, len(sessions))
	for _, e := range sessions {
		rows = append(rows, map[string]string{
			"ID":            e.ID,
			"Subject":       e.Subject,
			"Branch":        e.Branch,
			"Date":          e.Date,
			"Start":         e.Start,
			"End":           e.End,
			"Room":          e.Room,
			"Faculty":       e.Faculty,
			"Student Group": e.StudentGroup,
			"Capacity":      strconv.Itoa(e.Capacity),
			"Students":      strconv.Itoa(e.TotalStudents),
		})
	}
	return rows
}
