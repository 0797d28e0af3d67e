package service

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-timetable-api/internal/dto"
	"github.com/noah-isme/exam-timetable-api/internal/models"
	"github.com/noah-isme/exam-timetable-api/pkg/storage"
)

// analysedRun stores a full analysis of clashingExams in a memory run store.
func analysedRun(t *testing.T) (*MemoryRunStore, *models.TimetableRun) {
	t.Helper()
	runs := NewMemoryRunStore(time.Hour)
	svc := NewTimetableService(nil, runs, nil, nil, nil, nil, TimetableServiceConfig{})
	run, err := svc.Analyze(context.Background(), dto.TimetableRequest{Exams: clashingExams()}, models.RunSourceAPI)
	require.NoError(t, err)
	return runs, run
}

func newExportServiceForTest(t *testing.T, runs runReader) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1/", ResultTTL: time.Hour}
	return NewExportService(runs, store, signer, cfg, zap.NewNop()), store
}

func TestExportServiceGenerateCSV(t *testing.T) {
	runs, run := analysedRun(t)
	svc, store := newExportServiceForTest(t, runs)
	job := &models.ExportJob{ID: "job-1", RunID: run.ID, Variant: models.ExportVariantResolved, Format: models.ExportFormatCSV}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "exports/"+run.ID+"/resolved-job-1.csv", result.RelativePath)
	assert.Equal(t, "/api/v1/export/"+result.Token, result.URL)

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(body)
	assert.True(t, strings.HasPrefix(content, "ID,Subject,Branch"))
	assert.Contains(t, content, "13:00,16:00")
	assert.Contains(t, content, run.Summary)

	claims, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", claims.ExportID)
	assert.Equal(t, result.RelativePath, claims.Path)
}

func TestExportServiceGeneratePDF(t *testing.T) {
	runs, run := analysedRun(t)
	svc, store := newExportServiceForTest(t, runs)
	job := &models.ExportJob{ID: "job-2", RunID: run.ID, Variant: models.ExportVariantConflicts, Format: models.ExportFormatPDF}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	info, err := os.Stat(store.Path(result.RelativePath))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, "application/pdf", svc.ContentType(models.ExportFormatPDF))
}

func TestExportServiceGenerateErrors(t *testing.T) {
	runs, run := analysedRun(t)
	svc, _ := newExportServiceForTest(t, runs)
	ctx := context.Background()

	_, err := svc.Generate(ctx, nil)
	assert.Error(t, err)
	_, err = svc.Generate(ctx, &models.ExportJob{ID: "j", RunID: run.ID, Variant: models.ExportVariantOriginal, Format: "xlsx"})
	assert.Error(t, err)
	_, err = svc.Generate(ctx, &models.ExportJob{ID: "j", RunID: "missing", Variant: models.ExportVariantOriginal, Format: models.ExportFormatCSV})
	assert.Error(t, err)
	_, err = svc.Generate(ctx, &models.ExportJob{ID: "j", RunID: run.ID, Variant: "everything", Format: models.ExportFormatCSV})
	assert.Error(t, err)
}

func TestRunDataset(t *testing.T) {
	_, run := analysedRun(t)

	original, err := RunDataset(run, models.ExportVariantOriginal)
	require.NoError(t, err)
	require.Len(t, original.Rows, 2)
	assert.Equal(t, "10:00", original.Rows[1]["Start"])
	assert.Equal(t, []string{"1 conflicts detected"}, original.Notes)

	resolved, err := RunDataset(run, models.ExportVariantResolved)
	require.NoError(t, err)
	assert.Equal(t, "13:00", resolved.Rows[1]["Start"])
	assert.Equal(t, run.Summary, resolved.Notes[0])
	assert.Len(t, resolved.Notes, 1+len(run.Changes))

	conflicts, err := RunDataset(run, models.ExportVariantConflicts)
	require.NoError(t, err)
	require.Len(t, conflicts.Rows, 1)
	assert.Equal(t, "STUDENT_CLASH", conflicts.Rows[0]["Type"])
	assert.Equal(t, "Data Structures", conflicts.Rows[0]["Exam A"])
	assert.Equal(t, "Operating Systems", conflicts.Rows[0]["Exam B"])

	_, err = RunDataset(nil, models.ExportVariantOriginal)
	assert.Error(t, err)
}

func TestExportServiceCleanup(t *testing.T) {
	runs, run := analysedRun(t)
	svc, store := newExportServiceForTest(t, runs)
	ctx := context.Background()

	stale, err := svc.Generate(ctx, &models.ExportJob{ID: "job-3", RunID: run.ID, Variant: models.ExportVariantOriginal, Format: models.ExportFormatCSV})
	require.NoError(t, err)
	fresh, err := svc.Generate(ctx, &models.ExportJob{ID: "job-4", RunID: run.ID, Variant: models.ExportVariantConflicts, Format: models.ExportFormatCSV})
	require.NoError(t, err)
	aged := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(stale.RelativePath), aged, aged))

	removed, err := svc.Cleanup(0)
	require.NoError(t, err)
	assert.Equal(t, []string{stale.RelativePath}, removed)

	removed, err = svc.Cleanup(30 * time.Minute)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = svc.Cleanup(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.RelativePath}, removed)
}
