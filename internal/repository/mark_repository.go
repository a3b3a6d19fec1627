package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// MarkRepository handles mark sheet persistence.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository constructs the repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// List returns marks matching the filter.
func (r *MarkRepository) List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	query := `SELECT id, student_id, assessment_id, scores FROM marks`
	var conditions []string
	var args []interface{}
	if filter.AssessmentID != "" {
		conditions = append(conditions, fmt.Sprintf("assessment_id = $%d", len(args)+1))
		args = append(args, filter.AssessmentID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	return marks, nil
}

// ListByAssessment returns all mark sheets recorded against an assessment.
func (r *MarkRepository) ListByAssessment(ctx context.Context, assessmentID string) ([]models.Mark, error) {
	return r.List(ctx, models.MarkFilter{AssessmentID: assessmentID})
}

// FindByStudentAndAssessment returns the single mark for a (student,
// assessment) pair. sql.ErrNoRows is an expected outcome for students who
// have not been assessed yet.
func (r *MarkRepository) FindByStudentAndAssessment(ctx context.Context, studentID, assessmentID string) (*models.Mark, error) {
	const query = `SELECT id, student_id, assessment_id, scores FROM marks WHERE student_id = $1 AND assessment_id = $2`
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, query, studentID, assessmentID); err != nil {
		return nil, err
	}
	return &mark, nil
}

// FindByID returns a mark by its ID.
func (r *MarkRepository) FindByID(ctx context.Context, id string) (*models.Mark, error) {
	const query = `SELECT id, student_id, assessment_id, scores FROM marks WHERE id = $1`
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, query, id); err != nil {
		return nil, err
	}
	return &mark, nil
}

// Upsert inserts or replaces the mark for a (student, assessment) pair.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	const query = `INSERT INTO marks (id, student_id, assessment_id, scores)
        VALUES (:id, :student_id, :assessment_id, :scores)
        ON CONFLICT (student_id, assessment_id)
        DO UPDATE SET scores = EXCLUDED.scores`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark: %w", err)
	}
	return nil
}

// Delete removes a mark sheet.
func (r *MarkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM marks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete mark: %w", err)
	}
	return nil
}
