package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

const timetableRunColumns = "id, source, exams, conflicts, resolved, changes, summary, suggestions, fatigue, impact, created_at"

// TimetableRunRepository persists analysed timetables as JSONB documents.
type TimetableRunRepository struct {
	db *sqlx.DB
}

// NewTimetableRunRepository constructs the repository.
func NewTimetableRunRepository(db *sqlx.DB) *TimetableRunRepository {
	return &TimetableRunRepository{db: db}
}

// Create inserts a run, filling the identifier and timestamp when empty.
func (r *TimetableRunRepository) Create(ctx context.Context, run *models.TimetableRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO timetable_runs (id, source, exams, conflicts, resolved, changes, summary, suggestions, fatigue, impact, created_at)
VALUES (:id, :source, :exams, :conflicts, :resolved, :changes, :summary, :suggestions, :fatigue, :impact, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create timetable run: %w", err)
	}
	return nil
}

// GetByID returns a full run.
func (r *TimetableRunRepository) GetByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	query := "SELECT " + timetableRunColumns + " FROM timetable_runs WHERE id = $1"
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, fmt.Errorf("get timetable run: %w", err)
	}
	return &run, nil
}

// List returns run metadata, newest first, along with the total count.
func (r *TimetableRunRepository) List(ctx context.Context, filter models.TimetableRunFilter) ([]models.TimetableRunMeta, int, error) {
	page, size := normalizePage(filter.Page, filter.PageSize)

	conditions := []string{}
	args := []interface{}{}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM timetable_runs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetable runs: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, source, summary, jsonb_array_length(exams) AS exam_count, jsonb_array_length(conflicts) AS conflict_count, created_at
FROM timetable_runs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	var runs []models.TimetableRunMeta
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetable runs: %w", err)
	}
	return runs, total, nil
}

// Delete removes a run and, by cascade, its export jobs. It reports whether a
// row existed.
func (r *TimetableRunRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM timetable_runs WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete timetable run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timetable run rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteOlderThan prunes runs created before cutoff.
func (r *TimetableRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM timetable_runs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune timetable runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune timetable runs rows: %w", err)
	}
	return affected, nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
