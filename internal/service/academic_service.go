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

type collegeRepository interface {
	List(ctx context.Context) ([]models.College, error)
	FindByID(ctx context.Context, id string) (*models.College, error)
	Create(ctx context.Context, college *models.College) error
	Update(ctx context.Context, college *models.College) error
	Delete(ctx context.Context, id string) error
}

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

// CollegeRequest captures college create/update payload.
type CollegeRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProgramRequest captures program create/update payload.
type ProgramRequest struct {
	Name      string `json:"name" validate:"required"`
	CollegeID string `json:"college_id" validate:"required"`
	Duration  int    `json:"duration" validate:"required,min=1"`
}

// BatchRequest captures batch create/update payload.
type BatchRequest struct {
	ProgramID string `json:"program_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

// SectionRequest captures section create/update payload.
type SectionRequest struct {
	Name      string `json:"name" validate:"required"`
	ProgramID string `json:"program_id" validate:"required"`
	BatchID   string `json:"batch_id" validate:"required"`
}

// AcademicService coordinates the college/program/batch/section hierarchy.
// List calls narrow their results to the caller's visibility scope.
type AcademicService struct {
	colleges  collegeRepository
	programs  programRepository
	batches   batchRepository
	sections  sectionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicService constructs an AcademicService.
func NewAcademicService(colleges collegeRepository, programs programRepository, batches batchRepository, sections sectionRepository, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{colleges: colleges, programs: programs, batches: batches, sections: sections, validator: validate, logger: logger}
}

// ListColleges returns colleges visible to the caller.
func (s *AcademicService) ListColleges(ctx context.Context, scope models.Scope) ([]models.College, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list colleges")
	}
	if scope.CollegeID == "" {
		return colleges, nil
	}
	var visible []models.College
	for _, college := range colleges {
		if college.ID == scope.CollegeID {
			visible = append(visible, college)
		}
	}
	return visible, nil
}

// GetCollege returns a single college.
func (s *AcademicService) GetCollege(ctx context.Context, id string) (*models.College, error) {
	college, err := s.colleges.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "college not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load college")
	}
	return college, nil
}

// CreateCollege adds a new college.
func (s *AcademicService) CreateCollege(ctx context.Context, req CollegeRequest) (*models.College, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid college payload")
	}
	college := &models.College{Name: req.Name}
	if err := s.colleges.Create(ctx, college); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create college")
	}
	return college, nil
}

// UpdateCollege modifies a college.
func (s *AcademicService) UpdateCollege(ctx context.Context, id string, req CollegeRequest) (*models.College, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid college payload")
	}
	college, err := s.GetCollege(ctx, id)
	if err != nil {
		return nil, err
	}
	college.Name = req.Name
	if err := s.colleges.Update(ctx, college); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update college")
	}
	return college, nil
}

// DeleteCollege removes a college.
func (s *AcademicService) DeleteCollege(ctx context.Context, id string) error {
	if _, err := s.GetCollege(ctx, id); err != nil {
		return err
	}
	if err := s.colleges.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete college")
	}
	return nil
}

// ListPrograms returns programs visible to the caller.
func (s *AcademicService) ListPrograms(ctx context.Context, filter models.ProgramFilter, scope models.Scope) ([]models.Program, error) {
	if scope.CollegeID != "" {
		filter.CollegeID = scope.CollegeID
	}
	programs, err := s.programs.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	if scope.ProgramID == "" {
		return programs, nil
	}
	var visible []models.Program
	for _, program := range programs {
		if program.ID == scope.ProgramID {
			visible = append(visible, program)
		}
	}
	return visible, nil
}

// GetProgram returns a single program.
func (s *AcademicService) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// CreateProgram adds a new program.
func (s *AcademicService) CreateProgram(ctx context.Context, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program := &models.Program{Name: req.Name, CollegeID: req.CollegeID, Duration: req.Duration}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	return program, nil
}

// UpdateProgram modifies a program.
func (s *AcademicService) UpdateProgram(ctx context.Context, id string, req ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program, err := s.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	program.Name = req.Name
	program.CollegeID = req.CollegeID
	program.Duration = req.Duration
	if err := s.programs.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	return program, nil
}

// DeleteProgram removes a program.
func (s *AcademicService) DeleteProgram(ctx context.Context, id string) error {
	if _, err := s.GetProgram(ctx, id); err != nil {
		return err
	}
	if err := s.programs.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program")
	}
	return nil
}

// ListBatches returns batches for a program.
func (s *AcademicService) ListBatches(ctx context.Context, filter models.BatchFilter, scope models.Scope) ([]models.Batch, error) {
	if scope.ProgramID != "" {
		filter.ProgramID = scope.ProgramID
	}
	batches, err := s.batches.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// GetBatch returns a single batch.
func (s *AcademicService) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// CreateBatch adds a new batch.
func (s *AcademicService) CreateBatch(ctx context.Context, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	batch := &models.Batch{ProgramID: req.ProgramID, Name: req.Name}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// UpdateBatch modifies a batch.
func (s *AcademicService) UpdateBatch(ctx context.Context, id string, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	batch.ProgramID = req.ProgramID
	batch.Name = req.Name
	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	return batch, nil
}

// DeleteBatch removes a batch.
func (s *AcademicService) DeleteBatch(ctx context.Context, id string) error {
	if _, err := s.GetBatch(ctx, id); err != nil {
		return err
	}
	if err := s.batches.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	return nil
}

// ListSections returns sections for a program or batch.
func (s *AcademicService) ListSections(ctx context.Context, filter models.SectionFilter, scope models.Scope) ([]models.Section, error) {
	if scope.ProgramID != "" {
		filter.ProgramID = scope.ProgramID
	}
	sections, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// GetSection returns a single section.
func (s *AcademicService) GetSection(ctx context.Context, id string) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

// CreateSection adds a new section.
func (s *AcademicService) CreateSection(ctx context.Context, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{Name: req.Name, ProgramID: req.ProgramID, BatchID: req.BatchID}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

// UpdateSection modifies a section.
func (s *AcademicService) UpdateSection(ctx context.Context, id string, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	section.Name = req.Name
	section.ProgramID = req.ProgramID
	section.BatchID = req.BatchID
	if err := s.sections.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return section, nil
}

// DeleteSection removes a section.
func (s *AcademicService) DeleteSection(ctx context.Context, id string) error {
	if _, err := s.GetSection(ctx, id); err != nil {
		return err
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	return nil
}
