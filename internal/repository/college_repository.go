package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// CollegeRepository handles college persistence.
type CollegeRepository struct {
	db *sqlx.DB
}

// NewCollegeRepository constructs the repository.
func NewCollegeRepository(db *sqlx.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

// List returns all colleges.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	const query = `SELECT id, name FROM colleges ORDER BY name`
	var colleges []models.College
	if err := r.db.SelectContext(ctx, &colleges, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}

// FindByID returns a college by its ID.
func (r *CollegeRepository) FindByID(ctx context.Context, id string) (*models.College, error) {
	const query = `SELECT id, name FROM colleges WHERE id = $1`
	var college models.College
	if err := r.db.GetContext(ctx, &college, query, id); err != nil {
		return nil, err
	}
	return &college, nil
}

// Create persists a new college record.
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) error {
	if college.ID == "" {
		college.ID = uuid.NewString()
	}
	const query = `INSERT INTO colleges (id, name) VALUES (:id, :name)`
	if _, err := r.db.NamedExecContext(ctx, query, college); err != nil {
		return fmt.Errorf("create college: %w", err)
	}
	return nil
}

// Update stores college changes.
func (r *CollegeRepository) Update(ctx context.Context, college *models.College) error {
	const query = `UPDATE colleges SET name = :name WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, college); err != nil {
		return fmt.Errorf("update college: %w", err)
	}
	return nil
}

// Delete removes a college and cascades to its programs.
func (r *CollegeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM colleges WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete college: %w", err)
	}
	return nil
}
