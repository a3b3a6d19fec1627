package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// SettingsRepository manages the singleton system settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load reads the settings row, id is always 1.
func (r *SettingsRepository) Load(ctx context.Context) (*models.SystemSettings, error) {
	const query = `SELECT id, default_co_target, default_attainment_level3, default_attainment_level2,
        default_attainment_level1, default_weight_direct, default_weight_indirect
        FROM system_settings WHERE id = 1`
	var settings models.SystemSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update replaces the settings row in place.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.SystemSettings) error {
	settings.ID = 1
	const query = `UPDATE system_settings SET default_co_target = :default_co_target,
        default_attainment_level3 = :default_attainment_level3,
        default_attainment_level2 = :default_attainment_level2,
        default_attainment_level1 = :default_attainment_level1,
        default_weight_direct = :default_weight_direct,
        default_weight_indirect = :default_weight_indirect
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update system settings: %w", err)
	}
	return nil
}
