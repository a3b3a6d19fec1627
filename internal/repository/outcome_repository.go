package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// OutcomeRepository handles course and program outcome persistence.
type OutcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository constructs the repository.
func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// ListCourseOutcomes returns the COs for a course, or all when courseID is empty.
func (r *OutcomeRepository) ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	query := `SELECT id, course_id, number, description FROM course_outcomes`
	var args []interface{}
	if courseID != "" {
		query += " WHERE course_id = $1"
		args = append(args, courseID)
	}
	query += " ORDER BY number"
	var outcomes []models.CourseOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, args...); err != nil {
		return nil, fmt.Errorf("list course outcomes: %w", err)
	}
	return outcomes, nil
}

// FindCourseOutcome returns a CO by its ID.
func (r *OutcomeRepository) FindCourseOutcome(ctx context.Context, id string) (*models.CourseOutcome, error) {
	const query = `SELECT id, course_id, number, description FROM course_outcomes WHERE id = $1`
	var outcome models.CourseOutcome
	if err := r.db.GetContext(ctx, &outcome, query, id); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// CreateCourseOutcome persists a new CO.
func (r *OutcomeRepository) CreateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}
	const query = `INSERT INTO course_outcomes (id, course_id, number, description)
        VALUES (:id, :course_id, :number, :description)`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("create course outcome: %w", err)
	}
	return nil
}

// UpdateCourseOutcome stores CO changes.
func (r *OutcomeRepository) UpdateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error {
	const query = `UPDATE course_outcomes SET course_id = :course_id, number = :number, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("update course outcome: %w", err)
	}
	return nil
}

// DeleteCourseOutcome removes a CO along with its mappings.
func (r *OutcomeRepository) DeleteCourseOutcome(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_outcomes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course outcome: %w", err)
	}
	return nil
}

// ListProgramOutcomes returns the POs for a program, or all when programID is empty.
func (r *OutcomeRepository) ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	query := `SELECT id, program_id, number, description FROM program_outcomes`
	var args []interface{}
	if programID != "" {
		query += " WHERE program_id = $1"
		args = append(args, programID)
	}
	query += " ORDER BY number"
	var outcomes []models.ProgramOutcome
	if err := r.db.SelectContext(ctx, &outcomes, query, args...); err != nil {
		return nil, fmt.Errorf("list program outcomes: %w", err)
	}
	return outcomes, nil
}

// FindProgramOutcome returns a PO by its ID.
func (r *OutcomeRepository) FindProgramOutcome(ctx context.Context, id string) (*models.ProgramOutcome, error) {
	const query = `SELECT id, program_id, number, description FROM program_outcomes WHERE id = $1`
	var outcome models.ProgramOutcome
	if err := r.db.GetContext(ctx, &outcome, query, id); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// CreateProgramOutcome persists a new PO.
func (r *OutcomeRepository) CreateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}
	const query = `INSERT INTO program_outcomes (id, program_id, number, description)
        VALUES (:id, :program_id, :number, :description)`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("create program outcome: %w", err)
	}
	return nil
}

// UpdateProgramOutcome stores PO changes.
func (r *OutcomeRepository) UpdateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error {
	const query = `UPDATE program_outcomes SET program_id = :program_id, number = :number, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("update program outcome: %w", err)
	}
	return nil
}

// DeleteProgramOutcome removes a PO along with its mappings.
func (r *OutcomeRepository) DeleteProgramOutcome(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM program_outcomes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete program outcome: %w", err)
	}
	return nil
}
