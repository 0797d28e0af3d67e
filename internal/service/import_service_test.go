package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-timetable-api/internal/models"
	appErrors "github.com/noah-isme/exam-timetable-api/pkg/errors"
	"github.com/noah-isme/exam-timetable-api/pkg/storage"
)

const uploadCSV = `subject,date,start,end,room,faculty,student group,total students
Data Structures,2025-01-15,09:00,12:00,101,F1,CSE-A,60
Operating Systems,2025-01-15,10:00,13:00,102,F2,CSE-A,40
`

type failingArchive struct{}

func (failingArchive) SaveStream(string, io.Reader) (int64, error) {
	return 0, assert.AnError
}

func newImportServiceForTest(t *testing.T, archive uploadArchive, maxBytes int64) (*ImportService, *MemoryRunStore) {
	t.Helper()
	runs := NewMemoryRunStore(time.Hour)
	timetables := NewTimetableService(nil, runs, nil, nil, nil, nil, TimetableServiceConfig{})
	return NewImportService(timetables, archive, nil, ImportConfig{MaxBytes: maxBytes}), runs
}

func TestImportServiceAnalysesCSVUpload(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc, runs := newImportServiceForTest(t, store, 0)

	run, err := svc.Import(context.Background(), "exams.csv", "", strings.NewReader(uploadCSV))
	require.NoError(t, err)
	assert.Equal(t, models.RunSourceUpload, run.Source)
	require.Len(t, run.Exams, 2)
	assert.Equal(t, "CSE-A", run.Exams[0].StudentGroup)
	assert.Equal(t, 60, run.Exams[0].TotalStudents)
	require.Len(t, run.Conflicts, 1)
	assert.Equal(t, models.ConflictStudentClash, run.Conflicts[0].Type)

	stored, err := runs.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)

	archived, err := store.CleanupOlderThan(-time.Hour)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.True(t, strings.HasPrefix(archived[0], "uploads/"))
	assert.True(t, strings.HasSuffix(archived[0], ".csv"))
}

func TestImportServiceAcceptsJSONByContentType(t *testing.T) {
	svc, _ := newImportServiceForTest(t, nil, 0)

	body := `{"exams":[{"subject":"Maths","date":"2025-02-01","start":"09:00","end":"11:00"}]}`
	run, err := svc.Import(context.Background(), "blob", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, run.Exams, 1)
	assert.Empty(t, run.Conflicts)
}

func TestImportServiceArchiveFailureDoesNotBlock(t *testing.T) {
	svc, _ := newImportServiceForTest(t, failingArchive{}, 0)

	run, err := svc.Import(context.Background(), "exams.csv", "", strings.NewReader(uploadCSV))
	require.NoError(t, err)
	assert.Len(t, run.Exams, 2)
}

func TestImportServiceRejections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newImportServiceForTest(t, nil, 64)

	_, err := svc.Import(ctx, "exams.xlsx", "application/octet-stream", strings.NewReader("x"))
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)

	_, err = svc.Import(ctx, "exams.csv", "", strings.NewReader(uploadCSV))
	assert.ErrorIs(t, err, appErrors.ErrTooLarge)

	_, err = svc.Import(ctx, "exams.json", "", strings.NewReader(`{"rows":[]}`))
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Import(ctx, "exams.csv", "", strings.NewReader("subject,room\n"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
