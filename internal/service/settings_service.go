package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type settingsRepository interface {
	Load(ctx context.Context) (*models.SystemSettings, error)
	Update(ctx context.Context, settings *models.SystemSettings) error
}

// SettingsRequest captures the system settings update payload.
type SettingsRequest struct {
	DefaultCoTarget         int `json:"default_co_target" validate:"required,min=0,max=100"`
	DefaultAttainmentLevel3 int `json:"default_attainment_level3" validate:"required,min=0,max=100"`
	DefaultAttainmentLevel2 int `json:"default_attainment_level2" validate:"required,min=0,max=100"`
	DefaultAttainmentLevel1 int `json:"default_attainment_level1" validate:"required,min=0,max=100"`
	DefaultWeightDirect     int `json:"default_weight_direct" validate:"required,min=0,max=100"`
	DefaultWeightIndirect   int `json:"default_weight_indirect" validate:"min=0,max=100"`
}

// SettingsService manages the singleton system settings row.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Get returns the current system settings.
func (s *SettingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "system settings not initialised")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Update replaces the system settings.
func (s *SettingsService) Update(ctx context.Context, req SettingsRequest) (*models.SystemSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	settings := &models.SystemSettings{
		ID:                      1,
		DefaultCoTarget:         req.DefaultCoTarget,
		DefaultAttainmentLevel3: req.DefaultAttainmentLevel3,
		DefaultAttainmentLevel2: req.DefaultAttainmentLevel2,
		DefaultAttainmentLevel1: req.DefaultAttainmentLevel1,
		DefaultWeightDirect:     req.DefaultWeightDirect,
		DefaultWeightIndirect:   req.DefaultWeightIndirect,
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
	}
	return settings, nil
}
