package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// ProgramRepository handles program persistence.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns programs matching the filter.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	query := `SELECT id, name, college_id, duration FROM programs`
	var conditions []string
	var args []interface{}
	if filter.CollegeID != "" {
		conditions = append(conditions, fmt.Sprintf("college_id = $%d", len(args)+1))
		args = append(args, filter.CollegeID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindByID returns a program by its ID.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, name, college_id, duration FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// Create persists a new program record.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	const query = `INSERT INTO programs (id, name, college_id, duration)
        VALUES (:id, :name, :college_id, :duration)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Update stores program changes.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	const query = `UPDATE programs SET name = :name, college_id = :college_id, duration = :duration WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return nil
}

// Delete removes a program.
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return nil
}
