package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-timetable-api/internal/models"
)

// BranchExamRepository stores per-branch timetables.
type BranchExamRepository struct {
	db *sqlx.DB
}

// NewBranchExamRepository constructs the repository.
func NewBranchExamRepository(db *sqlx.DB) *BranchExamRepository {
	return &BranchExamRepository{db: db}
}

// Create adds an exam to a branch.
func (r *BranchExamRepository) Create(ctx context.Context, exam *models.BranchExam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO branch_exams (id, branch, exam, created_at) VALUES (:id, :branch, :exam, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create branch exam: %w", err)
	}
	return nil
}

// ListByBranch returns a branch timetable in insertion order.
func (r *BranchExamRepository) ListByBranch(ctx context.Context, branch string) ([]models.BranchExam, error) {
	const query = `SELECT id, branch, exam, created_at FROM branch_exams WHERE branch = $1 ORDER BY created_at ASC, id ASC`
	var exams []models.BranchExam
	if err := r.db.SelectContext(ctx, &exams, query, branch); err != nil {
		return nil, fmt.Errorf("list branch exams: %w", err)
	}
	return exams, nil
}

// DeleteByBranch clears a branch timetable and returns the number of removed exams.
func (r *BranchExamRepository) DeleteByBranch(ctx context.Context, branch string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM branch_exams WHERE branch = $1`, branch)
	if err != nil {
		return 0, fmt.Errorf("delete branch exams: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete branch exams rows: %w", err)
	}
	return affected, nil
}
