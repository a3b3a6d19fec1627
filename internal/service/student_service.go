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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ExistsPair(ctx context.Context, courseID, studentID, excludeID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

// StudentRequest captures student create/update payload.
type StudentRequest struct {
	Name      string               `json:"name" validate:"required"`
	ProgramID string               `json:"program_id" validate:"required"`
	Status    models.StudentStatus `json:"status"`
	SectionID *string              `json:"section_id"`
}

// EnrollmentRequest captures enrollment create/update payload.
type EnrollmentRequest struct {
	CourseID  string  `json:"course_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	SectionID *string `json:"section_id"`
}

// StudentService coordinates students and their course enrollments.
type StudentService struct {
	students    studentRepository
	enrollments enrollmentRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, enrollments enrollmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

func (s *StudentService) invalidateAttainment(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "attainment:*"); err != nil {
		s.logger.Warn("failed to invalidate attainment cache", zap.Error(err))
	}
}

// ListStudents returns students visible to the caller.
func (s *StudentService) ListStudents(ctx context.Context, filter models.StudentFilter, scope models.Scope) ([]models.Student, error) {
	if scope.ProgramID != "" {
		filter.ProgramID = scope.ProgramID
	} else if scope.CollegeID != "" {
		filter.CollegeID = scope.CollegeID
	}
	students, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// GetStudent returns a single student.
func (s *StudentService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// CreateStudent registers a new student.
func (s *StudentService) CreateStudent(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		Name:      req.Name,
		ProgramID: req.ProgramID,
		Status:    req.Status,
		SectionID: req.SectionID,
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// UpdateStudent modifies a student.
func (s *StudentService) UpdateStudent(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Name = req.Name
	student.ProgramID = req.ProgramID
	if req.Status != "" {
		student.Status = req.Status
	}
	student.SectionID = req.SectionID
	if err := s.students.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidateAttainment(ctx)
	return student, nil
}

// DeleteStudent removes a student.
func (s *StudentService) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.GetStudent(ctx, id); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.invalidateAttainment(ctx)
	return nil
}

// ListEnrollments returns enrollments matching the filter.
func (s *StudentService) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error) {
	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// CreateEnrollment registers a student to a course. A student can hold at
// most one enrollment per course.
func (s *StudentService) CreateEnrollment(ctx context.Context, req EnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	exists, err := s.enrollments.ExistsPair(ctx, req.CourseID, req.StudentID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment pair")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}
	enrollment := &models.Enrollment{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		SectionID: req.SectionID,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.invalidateAttainment(ctx)
	return enrollment, nil
}

// UpdateEnrollment modifies an enrollment.
func (s *StudentService) UpdateEnrollment(ctx context.Context, id string, req EnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	exists, err := s.enrollments.ExistsPair(ctx, req.CourseID, req.StudentID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment pair")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this course")
	}
	enrollment.CourseID = req.CourseID
	enrollment.StudentID = req.StudentID
	enrollment.SectionID = req.SectionID
	if err := s.enrollments.Update(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	s.invalidateAttainment(ctx)
	return enrollment, nil
}

// DeleteEnrollment removes an enrollment.
func (s *StudentService) DeleteEnrollment(ctx context.Context, id string) error {
	if _, err := s.enrollments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.enrollments.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.invalidateAttainment(ctx)
	return nil
}
