package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type mockCrudCourseRepo struct {
	courses map[string]models.Course
}

func (m *mockCrudCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var result []models.Course
	for _, course := range m.courses {
		if filter.ProgramID != "" && course.ProgramID != filter.ProgramID {
			continue
		}
		result = append(result, course)
	}
	return result, nil
}

func (m *mockCrudCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return &course, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCrudCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "course-generated"
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCrudCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCrudCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	return nil
}

type mockCrudMappingRepo struct {
	mappings map[string]models.CoPoMapping
}

func (m *mockCrudMappingRepo) ListByCourse(ctx context.Context, courseID string) ([]models.CoPoMapping, error) {
	var result []models.CoPoMapping
	for _, mapping := range m.mappings {
		if mapping.CourseID == courseID {
			result = append(result, mapping)
		}
	}
	return result, nil
}

func (m *mockCrudMappingRepo) FindByID(ctx context.Context, id string) (*models.CoPoMapping, error) {
	if mapping, ok := m.mappings[id]; ok {
		return &mapping, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCrudMappingRepo) ExistsPair(ctx context.Context, coID, poID, excludeID string) (bool, error) {
	for _, mapping := range m.mappings {
		if mapping.CoID == coID && mapping.PoID == poID && mapping.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCrudMappingRepo) Create(ctx context.Context, mapping *models.CoPoMapping) error {
	if m.mappings == nil {
		m.mappings = make(map[string]models.CoPoMapping)
	}
	if mapping.ID == "" {
		mapping.ID = "map-generated"
	}
	m.mappings[mapping.ID] = *mapping
	return nil
}

func (m *mockCrudMappingRepo) Update(ctx context.Context, mapping *models.CoPoMapping) error {
	m.mappings[mapping.ID] = *mapping
	return nil
}

func (m *mockCrudMappingRepo) Delete(ctx context.Context, id string) error {
	delete(m.mappings, id)
	return nil
}

type mockCrudOutcomeRepo struct {
	courseOutcomes  map[string]models.CourseOutcome
	programOutcomes map[string]models.ProgramOutcome
}

func (m *mockCrudOutcomeRepo) ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	var result []models.CourseOutcome
	for _, co := range m.courseOutcomes {
		if co.CourseID == courseID {
			result = append(result, co)
		}
	}
	return result, nil
}

func (m *mockCrudOutcomeRepo) FindCourseOutcome(ctx context.Context, id string) (*models.CourseOutcome, error) {
	if co, ok := m.courseOutcomes[id]; ok {
		return &co, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCrudOutcomeRepo) CreateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error {
	if m.courseOutcomes == nil {
		m.courseOutcomes = make(map[string]models.CourseOutcome)
	}
	if outcome.ID == "" {
		outcome.ID = "co-generated"
	}
	m.courseOutcomes[outcome.ID] = *outcome
	return nil
}

func (m *mockCrudOutcomeRepo) UpdateCourseOutcome(ctx context.Context, outcome *models.CourseOutcome) error {
	m.courseOutcomes[outcome.ID] = *outcome
	return nil
}

func (m *mockCrudOutcomeRepo) DeleteCourseOutcome(ctx context.Context, id string) error {
	delete(m.courseOutcomes, id)
	return nil
}

func (m *mockCrudOutcomeRepo) ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	var result []models.ProgramOutcome
	for _, po := range m.programOutcomes {
		if po.ProgramID == programID {
			result = append(result, po)
		}
	}
	return result, nil
}

func (m *mockCrudOutcomeRepo) FindProgramOutcome(ctx context.Context, id string) (*models.ProgramOutcome, error) {
	if po, ok := m.programOutcomes[id]; ok {
		return &po, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCrudOutcomeRepo) CreateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error {
	if m.programOutcomes == nil {
		m.programOutcomes = make(map[string]models.ProgramOutcome)
	}
	if outcome.ID == "" {
		outcome.ID = "po-generated"
	}
	m.programOutcomes[outcome.ID] = *outcome
	return nil
}

func (m *mockCrudOutcomeRepo) UpdateProgramOutcome(ctx context.Context, outcome *models.ProgramOutcome) error {
	m.programOutcomes[outcome.ID] = *outcome
	return nil
}

func (m *mockCrudOutcomeRepo) DeleteProgramOutcome(ctx context.Context, id string) error {
	delete(m.programOutcomes, id)
	return nil
}

type mockSettingsReader struct {
	settings models.SystemSettings
}

func (m *mockSettingsReader) Load(ctx context.Context) (*models.SystemSettings, error) {
	settings := m.settings
	return &settings, nil
}

func newCourseServiceFixture() (*CourseService, *mockCrudCourseRepo, *mockCrudMappingRepo) {
	courses := &mockCrudCourseRepo{courses: map[string]models.Course{}}
	mappings := &mockCrudMappingRepo{mappings: map[string]models.CoPoMapping{}}
	settings := &mockSettingsReader{settings: models.SystemSettings{
		ID:                      1,
		DefaultCoTarget:         60,
		DefaultAttainmentLevel3: 70,
		DefaultAttainmentLevel2: 60,
		DefaultAttainmentLevel1: 50,
		DefaultWeightDirect:     80,
		DefaultWeightIndirect:   20,
	}}
	svc := NewCourseService(courses, &mockCrudOutcomeRepo{}, mappings, settings, nil, nil, nil)
	return svc, courses, mappings
}

func TestCourseServiceCreateAppliesDefaults(t *testing.T) {
	svc, _, _ := newCourseServiceFixture()

	course, err := svc.CreateCourse(context.Background(), CourseRequest{
		Name:      "Data Structures",
		Code:      "CS101",
		ProgramID: "prog-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 60, course.Target)
	assert.Equal(t, 70, course.AttainmentLevel3)
	assert.Equal(t, 50, course.AttainmentLevel1)
	assert.Equal(t, 80, course.InternalWeightage)
	assert.Equal(t, models.CourseStatusActive, course.Status)
}

func TestCourseServiceTeacherScopedListing(t *testing.T) {
	svc, repo, _ := newCourseServiceFixture()
	teacherID := "user-t"
	repo.courses["course-1"] = models.Course{ID: "course-1", ProgramID: "prog-1", TeacherID: &teacherID}
	repo.courses["course-2"] = models.Course{ID: "course-2", ProgramID: "prog-1"}

	courses, err := svc.ListCourses(context.Background(), models.CourseFilter{}, models.Scope{
		Role:      models.RoleTeacher,
		UserID:    "user-t",
		ProgramID: "prog-1",
	})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "course-1", courses[0].ID)
}

func TestCourseServiceCreateMappingRejectsBadLevel(t *testing.T) {
	svc, _, _ := newCourseServiceFixture()

	_, err := svc.CreateMapping(context.Background(), MappingRequest{
		CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 4,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLevel.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceCreateMappingRejectsDuplicatePair(t *testing.T) {
	svc, _, mappings := newCourseServiceFixture()
	mappings.mappings["map-1"] = models.CoPoMapping{ID: "map-1", CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 2}

	_, err := svc.CreateMapping(context.Background(), MappingRequest{
		CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateMappingAllowsSamePair(t *testing.T) {
	svc, _, mappings := newCourseServiceFixture()
	mappings.mappings["map-1"] = models.CoPoMapping{ID: "map-1", CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 2}

	updated, err := svc.UpdateMapping(context.Background(), "map-1", MappingRequest{
		CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Level)
}

func TestCourseServiceGetCourseNotFound(t *testing.T) {
	svc, _, _ := newCourseServiceFixture()

	_, err := svc.GetCourse(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
