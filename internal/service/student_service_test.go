package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type mockStudentStore struct {
	students   map[string]*models.Student
	lastFilter models.StudentFilter
}

func (m *mockStudentStore) List(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	m.lastFilter = filter
	var out []models.Student
	for _, s := range m.students {
		if filter.ProgramID != "" && s.ProgramID != filter.ProgramID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStudentStore) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStudentStore) Create(_ context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "stu-new"
	}
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentStore) Update(_ context.Context, student *models.Student) error {
	m.students[student.ID] = student
	return nil
}

func (m *mockStudentStore) Delete(_ context.Context, id string) error {
	delete(m.students, id)
	return nil
}

type mockEnrollmentStore struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentStore) List(_ context.Context, filter models.EnrollmentFilter) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, e := range m.enrollments {
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockEnrollmentStore) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (m *mockEnrollmentStore) ExistsPair(_ context.Context, courseID, studentID, excludeID string) (bool, error) {
	for _, e := range m.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentStore) Create(_ context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "enr-new"
	}
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollmentStore) Update(_ context.Context, enrollment *models.Enrollment) error {
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollmentStore) Delete(_ context.Context, id string) error {
	delete(m.enrollments, id)
	return nil
}

func newStudentServiceFixture() (*StudentService, *mockStudentStore, *mockEnrollmentStore) {
	students := &mockStudentStore{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", Name: "Asha", ProgramID: "prog-1", Status: models.StudentStatusActive},
		"stu-2": {ID: "stu-2", Name: "Ravi", ProgramID: "prog-2", Status: models.StudentStatusActive},
	}}
	enrollments := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", CourseID: "course-1", StudentID: "stu-1"},
	}}
	return NewStudentService(students, enrollments, nil, nil, nil), students, enrollments
}

func TestListStudentsScopedToProgram(t *testing.T) {
	svc, store, _ := newStudentServiceFixture()

	out, err := svc.ListStudents(context.Background(), models.StudentFilter{}, models.Scope{
		Role:      models.RoleCoordinator,
		ProgramID: "prog-1",
	})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "stu-1", out[0].ID)
	assert.Equal(t, "prog-1", store.lastFilter.ProgramID)
}

func TestCreateStudentDefaultsToActive(t *testing.T) {
	svc, _, _ := newStudentServiceFixture()

	student, err := svc.CreateStudent(context.Background(), StudentRequest{
		Name:      "Meera",
		ProgramID: "prog-1",
	})

	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, student.Status)
}

func TestCreateEnrollmentRejectsDuplicatePair(t *testing.T) {
	svc, _, _ := newStudentServiceFixture()

	_, err := svc.CreateEnrollment(context.Background(), EnrollmentRequest{
		CourseID:  "course-1",
		StudentID: "stu-1",
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUpdateEnrollmentAllowsOwnPair(t *testing.T) {
	svc, _, store := newStudentServiceFixture()
	section := "sec-1"

	enrollment, err := svc.UpdateEnrollment(context.Background(), "enr-1", EnrollmentRequest{
		CourseID:  "course-1",
		StudentID: "stu-1",
		SectionID: &section,
	})

	require.NoError(t, err)
	require.NotNil(t, enrollment.SectionID)
	assert.Equal(t, "sec-1", *enrollment.SectionID)
	assert.Equal(t, &section, store.enrollments["enr-1"].SectionID)
}

func TestDeleteStudentNotFound(t *testing.T) {
	svc, _, _ := newStudentServiceFixture()

	err := svc.DeleteStudent(context.Background(), "missing")

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
