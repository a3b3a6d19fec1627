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

type mockCollegeStore struct {
	colleges []models.College
}

func (m *mockCollegeStore) List(context.Context) ([]models.College, error) {
	return m.colleges, nil
}

func (m *mockCollegeStore) FindByID(_ context.Context, id string) (*models.College, error) {
	for i := range m.colleges {
		if m.colleges[i].ID == id {
			return &m.colleges[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCollegeStore) Create(_ context.Context, college *models.College) error {
	if college.ID == "" {
		college.ID = "col-new"
	}
	m.colleges = append(m.colleges, *college)
	return nil
}

func (m *mockCollegeStore) Update(_ context.Context, college *models.College) error {
	for i := range m.colleges {
		if m.colleges[i].ID == college.ID {
			m.colleges[i] = *college
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockCollegeStore) Delete(_ context.Context, id string) error {
	for i := range m.colleges {
		if m.colleges[i].ID == id {
			m.colleges = append(m.colleges[:i], m.colleges[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockProgramStore struct {
	programs   []models.Program
	lastFilter models.ProgramFilter
}

func (m *mockProgramStore) List(_ context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	m.lastFilter = filter
	var out []models.Program
	for _, p := range m.programs {
		if filter.CollegeID != "" && p.CollegeID != filter.CollegeID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProgramStore) FindByID(_ context.Context, id string) (*models.Program, error) {
	for i := range m.programs {
		if m.programs[i].ID == id {
			return &m.programs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgramStore) Create(_ context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = "prog-new"
	}
	m.programs = append(m.programs, *program)
	return nil
}

func (m *mockProgramStore) Update(_ context.Context, program *models.Program) error {
	for i := range m.programs {
		if m.programs[i].ID == program.ID {
			m.programs[i] = *program
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockProgramStore) Delete(context.Context, string) error { return nil }

type mockBatchStore struct{ batches []models.Batch }

func (m *mockBatchStore) List(_ context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	var out []models.Batch
	for _, b := range m.batches {
		if filter.ProgramID != "" && b.ProgramID != filter.ProgramID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBatchStore) FindByID(_ context.Context, id string) (*models.Batch, error) {
	for i := range m.batches {
		if m.batches[i].ID == id {
			return &m.batches[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockBatchStore) Create(_ context.Context, batch *models.Batch) error {
	m.batches = append(m.batches, *batch)
	return nil
}

func (m *mockBatchStore) Update(context.Context, *models.Batch) error { return nil }
func (m *mockBatchStore) Delete(context.Context, string) error        { return nil }

type mockSectionStore struct{ sections []models.Section }

func (m *mockSectionStore) List(_ context.Context, filter models.SectionFilter) ([]models.Section, error) {
	var out []models.Section
	for _, s := range m.sections {
		if filter.ProgramID != "" && s.ProgramID != filter.ProgramID {
			continue
		}
		if filter.BatchID != "" && s.BatchID != filter.BatchID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSectionStore) FindByID(_ context.Context, id string) (*models.Section, error) {
	for i := range m.sections {
		if m.sections[i].ID == id {
			return &m.sections[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionStore) Create(_ context.Context, section *models.Section) error {
	m.sections = append(m.sections, *section)
	return nil
}

func (m *mockSectionStore) Update(context.Context, *models.Section) error { return nil }
func (m *mockSectionStore) Delete(context.Context, string) error          { return nil }

func newAcademicFixture() (*AcademicService, *mockProgramStore) {
	colleges := &mockCollegeStore{colleges: []models.College{
		{ID: "col-1", Name: "Engineering College"},
		{ID: "col-2", Name: "Science College"},
	}}
	programs := &mockProgramStore{programs: []models.Program{
		{ID: "prog-1", Name: "CSE", CollegeID: "col-1", Duration: 4},
		{ID: "prog-2", Name: "ECE", CollegeID: "col-1", Duration: 4},
		{ID: "prog-3", Name: "Physics", CollegeID: "col-2", Duration: 3},
	}}
	batches := &mockBatchStore{batches: []models.Batch{
		{ID: "batch-1", ProgramID: "prog-1", Name: "2024"},
	}}
	sections := &mockSectionStore{sections: []models.Section{
		{ID: "sec-1", Name: "A", ProgramID: "prog-1", BatchID: "batch-1"},
	}}
	return NewAcademicService(colleges, programs, batches, sections, nil, nil), programs
}

func TestListCollegesDepartmentScope(t *testing.T) {
	svc, _ := newAcademicFixture()

	colleges, err := svc.ListColleges(context.Background(), models.Scope{
		Role:      models.RoleDepartment,
		CollegeID: "col-2",
	})

	require.NoError(t, err)
	require.Len(t, colleges, 1)
	assert.Equal(t, "col-2", colleges[0].ID)
}

func TestListCollegesAdminSeesAll(t *testing.T) {
	svc, _ := newAcademicFixture()

	colleges, err := svc.ListColleges(context.Background(), models.Scope{Role: models.RoleAdmin})

	require.NoError(t, err)
	assert.Len(t, colleges, 2)
}

func TestListProgramsCoordinatorScope(t *testing.T) {
	svc, _ := newAcademicFixture()

	programs, err := svc.ListPrograms(context.Background(), models.ProgramFilter{}, models.Scope{
		Role:      models.RoleCoordinator,
		ProgramID: "prog-2",
	})

	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, "prog-2", programs[0].ID)
}

func TestListProgramsDepartmentScopeForcesCollege(t *testing.T) {
	svc, store := newAcademicFixture()

	programs, err := svc.ListPrograms(context.Background(), models.ProgramFilter{CollegeID: "col-2"}, models.Scope{
		Role:      models.RoleDepartment,
		CollegeID: "col-1",
	})

	require.NoError(t, err)
	assert.Len(t, programs, 2)
	assert.Equal(t, "col-1", store.lastFilter.CollegeID)
}

func TestGetCollegeNotFound(t *testing.T) {
	svc, _ := newAcademicFixture()

	_, err := svc.GetCollege(context.Background(), "missing")

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCreateProgramValidation(t *testing.T) {
	svc, _ := newAcademicFixture()

	_, err := svc.CreateProgram(context.Background(), ProgramRequest{Name: "", CollegeID: "col-1"})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
