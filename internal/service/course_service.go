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

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type outcomeRepository interface {
	ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error)
	FindCourseOutcome(ctx context.Context, id string) (*models.CourseOutcome, error)
	CreateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error
	UpdateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error
	DeleteCourseOutcome(ctx context.Context, id string) error
	ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error)
	FindProgramOutcome(ctx context.Context, id string) (*models.ProgramOutcome, error)
	CreateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error
	UpdateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error
	DeleteProgramOutcome(ctx context.Context, id string) error
}

type mappingRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CoPoMapping, error)
	FindByID(ctx context.Context, id string) (*models.CoPoMapping, error)
	ExistsPair(ctx context.Context, coID, poID, excludeID string) (bool, error)
	Create(ctx context.Context, mapping *models.CoPoMapping) error
	Update(ctx context.Context, mapping *models.CoPoMapping) error
	Delete(ctx context.Context, id string) error
}

type settingsDefaultsReader interface {
	Load(ctx context.Context) (*models.SystemSettings, error)
}

// CourseRequest captures course create/update payload.
type CourseRequest struct {
	Name              string              `json:"name" validate:"required"`
	Code              string              `json:"code" validate:"required"`
	ProgramID         string              `json:"program_id" validate:"required"`
	Target            int                 `json:"target"`
	InternalWeightage int                 `json:"internal_weightage"`
	ExternalWeightage int                 `json:"external_weightage"`
	AttainmentLevel3  int                 `json:"attainment_level3"`
	AttainmentLevel2  int                 `json:"attainment_level2"`
	AttainmentLevel1  int                 `json:"attainment_level1"`
	Status            models.CourseStatus `json:"status"`
	TeacherID         *string             `json:"teacher_id"`
}

// CourseOutcomeRequest captures CO create/update payload.
type CourseOutcomeRequest struct {
	CourseID    string `json:"course_id" validate:"required"`
	Number      string `json:"number" validate:"required"`
	Description string `json:"description"`
}

// ProgramOutcomeRequest captures PO create/update payload.
type ProgramOutcomeRequest struct {
	ProgramID   string `json:"program_id" validate:"required"`
	Number      string `json:"number" validate:"required"`
	Description string `json:"description"`
}

// MappingRequest captures CO-PO mapping create/update payload.
type MappingRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	CoID     string `json:"co_id" validate:"required"`
	PoID     string `json:"po_id" validate:"required"`
	Level    int    `json:"level" validate:"required"`
}

// CourseService coordinates courses, outcomes and CO-PO mappings. Writes
// invalidate cached attainment since any of them can change the next
// aggregation result.
type CourseService struct {
	courses   courseRepository
	outcomes  outcomeRepository
	mappings  mappingRepository
	settings  settingsDefaultsReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseRepository, outcomes outcomeRepository, mappings mappingRepository, settings settingsDefaultsReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, outcomes: outcomes, mappings: mappings, settings: settings, cache: cache, validator: validate, logger: logger}
}

func (s *CourseService) invalidateAttainment(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "attainment:*"); err != nil {
		s.logger.Warn("failed to invalidate attainment cache", zap.Error(err))
	}
}

// ListCourses returns courses visible to the caller.
func (s *CourseService) ListCourses(ctx context.Context, filter models.CourseFilter, scope models.Scope) ([]models.Course, error) {
	if scope.ProgramID != "" {
		filter.ProgramID = scope.ProgramID
	}
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if scope.Role != models.RoleTeacher {
		return courses, nil
	}
	// Teachers see only courses assigned to them.
	var visible []models.Course
	for _, course := range courses {
		if course.TeacherID != nil && *course.TeacherID == scope.UserID {
			visible = append(visible, course)
		}
	}
	return visible, nil
}

// GetCourse returns a single course.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// CreateCourse adds a new course. Target, weightage and attainment level
// fields left at zero are filled from system settings defaults.
func (s *CourseService) CreateCourse(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := s.courseFromRequest(req)
	if course.Status == "" {
		course.Status = models.CourseStatusActive
	}
	s.applyDefaults(ctx, course)
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// UpdateCourse modifies a course.
func (s *CourseService) UpdateCourse(ctx context.Context, id string, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	existing, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	course := s.courseFromRequest(req)
	course.ID = existing.ID
	if course.Status == "" {
		course.Status = existing.Status
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateAttainment(ctx)
	return course, nil
}

// DeleteCourse removes a course.
func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	if _, err := s.GetCourse(ctx, id); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateAttainment(ctx)
	return nil
}

func (s *CourseService) courseFromRequest(req CourseRequest) *models.Course {
	return &models.Course{
		Name:              req.Name,
		Code:              req.Code,
		ProgramID:         req.ProgramID,
		Target:            req.Target,
		InternalWeightage: req.InternalWeightage,
		ExternalWeightage: req.ExternalWeightage,
		AttainmentLevel3:  req.AttainmentLevel3,
		AttainmentLevel2:  req.AttainmentLevel2,
		AttainmentLevel1:  req.AttainmentLevel1,
		Status:            req.Status,
		TeacherID:         req.TeacherID,
	}
}

func (s *CourseService) applyDefaults(ctx context.Context, course *models.Course) {
	if s.settings == nil {
		return
	}
	defaults, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load settings defaults", zap.Error(err))
		return
	}
	if course.Target == 0 {
		course.Target = defaults.DefaultCoTarget
	}
	if course.AttainmentLevel3 == 0 {
		course.AttainmentLevel3 = defaults.DefaultAttainmentLevel3
	}
	if course.AttainmentLevel2 == 0 {
		course.AttainmentLevel2 = defaults.DefaultAttainmentLevel2
	}
	if course.AttainmentLevel1 == 0 {
		course.AttainmentLevel1 = defaults.DefaultAttainmentLevel1
	}
	if course.InternalWeightage == 0 {
		course.InternalWeightage = defaults.DefaultWeightDirect
	}
	if course.ExternalWeightage == 0 {
		course.ExternalWeightage = defaults.DefaultWeightIndirect
	}
}

// ListCourseOutcomes returns the COs of a course.
func (s *CourseService) ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	outcomes, err := s.outcomes.ListCourseOutcomes(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course outcomes")
	}
	return outcomes, nil
}

// CreateCourseOutcome adds a CO to a course.
func (s *CourseService) CreateCourseOutcome(ctx context.Context, req CourseOutcomeRequest) (*models.CourseOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course outcome payload")
	}
	outcome := &models.CourseOutcome{CourseID: req.CourseID, Number: req.Number, Description: req.Description}
	if err := s.outcomes.CreateCourseOutcome(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course outcome")
	}
	s.invalidateAttainment(ctx)
	return outcome, nil
}

// UpdateCourseOutcome modifies a CO.
func (s *CourseService) UpdateCourseOutcome(ctx context.Context, id string, req CourseOutcomeRequest) (*models.CourseOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course outcome payload")
	}
	outcome, err := s.outcomes.FindCourseOutcome(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcome")
	}
	outcome.CourseID = req.CourseID
	outcome.Number = req.Number
	outcome.Description = req.Description
	if err := s.outcomes.UpdateCourseOutcome(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course outcome")
	}
	s.invalidateAttainment(ctx)
	return outcome, nil
}

// DeleteCourseOutcome removes a CO.
func (s *CourseService) DeleteCourseOutcome(ctx context.Context, id string) error {
	if _, err := s.outcomes.FindCourseOutcome(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course outcome not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course outcome")
	}
	if err := s.outcomes.DeleteCourseOutcome(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course outcome")
	}
	s.invalidateAttainment(ctx)
	return nil
}

// ListProgramOutcomes returns the POs of a program.
func (s *CourseService) ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	outcomes, err := s.outcomes.ListProgramOutcomes(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program outcomes")
	}
	return outcomes, nil
}

// CreateProgramOutcome adds a PO to a program.
func (s *CourseService) CreateProgramOutcome(ctx context.Context, req ProgramOutcomeRequest) (*models.ProgramOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program outcome payload")
	}
	outcome := &models.ProgramOutcome{ProgramID: req.ProgramID, Number: req.Number, Description: req.Description}
	if err := s.outcomes.CreateProgramOutcome(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program outcome")
	}
	s.invalidateAttainment(ctx)
	return outcome, nil
}

// UpdateProgramOutcome modifies a PO.
func (s *CourseService) UpdateProgramOutcome(ctx context.Context, id string, req ProgramOutcomeRequest) (*models.ProgramOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program outcome payload")
	}
	outcome, err := s.outcomes.FindProgramOutcome(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program outcome")
	}
	outcome.ProgramID = req.ProgramID
	outcome.Number = req.Number
	outcome.Description = req.Description
	if err := s.outcomes.UpdateProgramOutcome(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program outcome")
	}
	s.invalidateAttainment(ctx)
	return outcome, nil
}

// DeleteProgramOutcome removes a PO.
func (s *CourseService) DeleteProgramOutcome(ctx context.Context, id string) error {
	if _, err := s.outcomes.FindProgramOutcome(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program outcome not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program outcome")
	}
	if err := s.outcomes.DeleteProgramOutcome(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete program outcome")
	}
	s.invalidateAttainment(ctx)
	return nil
}

// ListMappings returns the CO-PO mappings of a course.
func (s *CourseService) ListMappings(ctx context.Context, courseID string) ([]models.CoPoMapping, error) {
	mappings, err := s.mappings.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mappings")
	}
	return mappings, nil
}

// CreateMapping links a CO to a PO at a contribution level.
func (s *CourseService) CreateMapping(ctx context.Context, req MappingRequest) (*models.CoPoMapping, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mapping payload")
	}
	if req.Level < models.MappingLevelMin || req.Level > models.MappingLevelMax {
		return nil, appErrors.Clone(appErrors.ErrInvalidLevel, "")
	}
	exists, err := s.mappings.ExistsPair(ctx, req.CoID, req.PoID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mapping pair")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mapping already exists for this CO-PO pair")
	}
	mapping := &models.CoPoMapping{CourseID: req.CourseID, CoID: req.CoID, PoID: req.PoID, Level: req.Level}
	if err := s.mappings.Create(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mapping")
	}
	s.invalidateAttainment(ctx)
	return mapping, nil
}

// UpdateMapping modifies a CO-PO mapping.
func (s *CourseService) UpdateMapping(ctx context.Context, id string, req MappingRequest) (*models.CoPoMapping, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mapping payload")
	}
	if req.Level < models.MappingLevelMin || req.Level > models.MappingLevelMax {
		return nil, appErrors.Clone(appErrors.ErrInvalidLevel, "")
	}
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mapping not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mapping")
	}
	exists, err := s.mappings.ExistsPair(ctx, req.CoID, req.PoID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mapping pair")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "mapping already exists for this CO-PO pair")
	}
	mapping.CourseID = req.CourseID
	mapping.CoID = req.CoID
	mapping.PoID = req.PoID
	mapping.Level = req.Level
	if err := s.mappings.Update(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mapping")
	}
	s.invalidateAttainment(ctx)
	return mapping, nil
}

// DeleteMapping removes a CO-PO mapping.
func (s *CourseService) DeleteMapping(ctx context.Context, id string) error {
	if _, err := s.mappings.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mapping not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mapping")
	}
	if err := s.mappings.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mapping")
	}
	s.invalidateAttainment(ctx)
	return nil
}
