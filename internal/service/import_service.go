package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
	"github.com/noah-isme/exam-timetable-api/pkg/importer"
)

type uploadArchive interface {
	SaveStream(name string, r io.Reader) (int64, error)
}

// ImportConfig bounds uploaded files.
type ImportConfig struct {
	MaxBytes int64
}

// ImportService turns uploaded timetable files into analysed runs.
type ImportService struct {
	timetables *TimetableService
	archive    uploadArchive
	logger     *zap.Logger
	cfg        ImportConfig
}

// NewImportService constructs the import service. archive may be nil.
func NewImportService(timetables *TimetableService, archive uploadArchive, logger *zap.Logger, cfg ImportConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 5 << 20
	}
	return &ImportService{
		timetables: timetables,
		archive:    archive,
		logger:     logger,
		cfg:        cfg,
	}
}

// Import parses the uploaded file, keeps a copy of the original bytes and runs
// the full analysis over its exams.
func (s *ImportService) Import(ctx context.Context, filename, contentType string, r io.Reader) (*models.TimetableRun, error) {
	format, err := importer.DetectFormat(filename, contentType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "upload must be a CSV, JSON or YAML file")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, appErrors.Clone(appErrors.ErrTooLarge, "uploaded file is too large")
	}

	s.store(format, data)

	records, err := importer.Parse(bytes.NewReader(data), format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("could not parse %s upload", format))
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file contains no exams")
	}
	return s.timetables.AnalyzeSessions(ctx, timetable.NormalizeAll(records), models.RunSourceUpload)
}

// store archives the raw upload. Failures are logged and never block analysis.
func (s *ImportService) store(format importer.Format, data []byte) {
	if s.archive == nil {
		return
	}
	name := fmt.Sprintf("uploads/%s.%s", uuid.NewString(), format)
	if _, err := s.archive.SaveStream(name, bytes.NewReader(data)); err != nil {
		s.logger.Warn("archive upload failed", zap.String("file", name), zap.Error(err))
	}
}

