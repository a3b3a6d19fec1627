package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// MappingRepository handles CO-PO mapping persistence.
type MappingRepository struct {
	db *sqlx.DB
}

// NewMappingRepository constructs the repository.
func NewMappingRepository(db *sqlx.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// ListByCourse returns mapping rows for a course in insertion order. The PO
// roll-up depends on this ordering for its bucket contents.
func (r *MappingRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CoPoMapping, error) {
	const query = `SELECT id, course_id, co_id, po_id, level FROM co_po_mapping WHERE course_id = $1 ORDER BY id`
	var mappings []models.CoPoMapping
	if err := r.db.SelectContext(ctx, &mappings, query, courseID); err != nil {
		return nil, fmt.Errorf("list course mappings: %w", err)
	}
	return mappings, nil
}

// List returns all mapping rows.
func (r *MappingRepository) List(ctx context.Context) ([]models.CoPoMapping, error) {
	const query = `SELECT id, course_id, co_id, po_id, level FROM co_po_mapping ORDER BY id`
	var mappings []models.CoPoMapping
	if err := r.db.SelectContext(ctx, &mappings, query); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return mappings, nil
}

// FindByID returns a mapping by its ID.
func (r *MappingRepository) FindByID(ctx context.Context, id string) (*models.CoPoMapping, error) {
	const query = `SELECT id, course_id, co_id, po_id, level FROM co_po_mapping WHERE id = $1`
	var mapping models.CoPoMapping
	if err := r.db.GetContext(ctx, &mapping, query, id); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// ExistsPair reports whether a (CO, PO) mapping already exists.
func (r *MappingRepository) ExistsPair(ctx context.Context, coID, poID, excludeID string) (bool, error) {
	query := `SELECT 1 FROM co_po_mapping WHERE co_id = $1 AND po_id = $2`
	args := []interface{}{coID, poID}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check mapping pair: %w", err)
	}
	return true, nil
}

// Create persists a new mapping row.
func (r *MappingRepository) Create(ctx context.Context, mapping *models.CoPoMapping) error {
	if mapping.ID == "" {
		mapping.ID = uuid.NewString()
	}
	const query = `INSERT INTO co_po_mapping (id, course_id, co_id, po_id, level)
        VALUES (:id, :course_id, :co_id, :po_id, :level)`
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return fmt.Errorf("create mapping: %w", err)
	}
	return nil
}

// Update stores mapping changes.
func (r *MappingRepository) Update(ctx context.Context, mapping *models.CoPoMapping) error {
	const query = `UPDATE co_po_mapping SET course_id = :course_id, co_id = :co_id, po_id = :po_id, level = :level WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return fmt.Errorf("update mapping: %w", err)
	}
	return nil
}

// Delete removes a mapping row.
func (r *MappingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM co_po_mapping WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}
