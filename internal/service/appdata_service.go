package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

// AppDataService assembles the role-scoped bootstrap snapshot. It reuses the
// entity services so the same visibility rules apply everywhere.
type AppDataService struct {
	academic *AcademicService
	courses  *CourseService
	students *StudentService
	settings *SettingsService
	users    *UserService
	logger   *zap.Logger
}

// NewAppDataService constructs an AppDataService.
func NewAppDataService(academic *AcademicService, courses *CourseService, students *StudentService, settings *SettingsService, users *UserService, logger *zap.Logger) *AppDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppDataService{academic: academic, courses: courses, students: students, settings: settings, users: users, logger: logger}
}

// Snapshot builds the bootstrap payload for the authenticated caller.
func (s *AppDataService) Snapshot(ctx context.Context, scope models.Scope) (*models.AppData, error) {
	data := &models.AppData{}

	colleges, err := s.academic.ListColleges(ctx, scope)
	if err != nil {
		return nil, err
	}
	data.Colleges = colleges

	programs, err := s.academic.ListPrograms(ctx, models.ProgramFilter{}, scope)
	if err != nil {
		return nil, err
	}
	data.Programs = programs

	batches, err := s.academic.ListBatches(ctx, models.BatchFilter{}, scope)
	if err != nil {
		return nil, err
	}
	data.Batches = batches

	sections, err := s.academic.ListSections(ctx, models.SectionFilter{}, scope)
	if err != nil {
		return nil, err
	}
	data.Sections = sections

	courses, err := s.courses.ListCourses(ctx, models.CourseFilter{}, scope)
	if err != nil {
		return nil, err
	}
	data.Courses = courses

	students, err := s.students.ListStudents(ctx, models.StudentFilter{}, scope)
	if err != nil {
		return nil, err
	}
	data.Students = students

	// Settings only matter to callers who can create courses.
	if scope.Role == models.RoleAdmin || scope.Role == models.RoleCoordinator {
		settings, err := s.settings.Get(ctx)
		if err == nil {
			data.Settings = settings
		} else {
			s.logger.Warn("failed to load settings for app data", zap.Error(err))
		}
	}

	user, err := s.users.Get(ctx, scope.UserID)
	if err != nil {
		return nil, err
	}
	data.User = models.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		ProgramID: user.ProgramID,
		CollegeID: user.CollegeID,
	}

	return data, nil
}
