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

type mockAssessmentStore struct {
	assessments map[string]*models.Assessment
}

func (m *mockAssessmentStore) List(_ context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, a := range m.assessments {
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		if filter.SectionID != "" && a.SectionID != filter.SectionID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAssessmentStore) FindByID(_ context.Context, id string) (*models.Assessment, error) {
	a, ok := m.assessments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (m *mockAssessmentStore) Create(_ context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = "asm-new"
	}
	m.assessments[assessment.ID] = assessment
	return nil
}

func (m *mockAssessmentStore) Update(_ context.Context, assessment *models.Assessment) error {
	m.assessments[assessment.ID] = assessment
	return nil
}

func (m *mockAssessmentStore) Delete(_ context.Context, id string) error {
	delete(m.assessments, id)
	return nil
}

type mockMarkStore struct {
	marks map[string]*models.Mark
}

func (m *mockMarkStore) List(_ context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	var out []models.Mark
	for _, mk := range m.marks {
		if filter.AssessmentID != "" && mk.AssessmentID != filter.AssessmentID {
			continue
		}
		if filter.StudentID != "" && mk.StudentID != filter.StudentID {
			continue
		}
		out = append(out, *mk)
	}
	return out, nil
}

func (m *mockMarkStore) FindByID(_ context.Context, id string) (*models.Mark, error) {
	mk, ok := m.marks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return mk, nil
}

func (m *mockMarkStore) Upsert(_ context.Context, mark *models.Mark) error {
	for _, existing := range m.marks {
		if existing.StudentID == mark.StudentID && existing.AssessmentID == mark.AssessmentID {
			mark.ID = existing.ID
			m.marks[mark.ID] = mark
			return nil
		}
	}
	if mark.ID == "" {
		mark.ID = "mark-new"
	}
	m.marks[mark.ID] = mark
	return nil
}

func (m *mockMarkStore) Delete(_ context.Context, id string) error {
	delete(m.marks, id)
	return nil
}

func newAssessmentFixture() (*AssessmentService, *mockAssessmentStore, *mockMarkStore) {
	assessments := &mockAssessmentStore{assessments: map[string]*models.Assessment{
		"asm-1": {
			ID:        "asm-1",
			CourseID:  "course-1",
			SectionID: "sec-1",
			Name:      "Internal 1",
			Type:      models.AssessmentInternal,
			Questions: models.QuestionList{{Q: 1, MaxMarks: 10, CoIDs: []string{"co-1"}}},
		},
	}}
	marks := &mockMarkStore{marks: map[string]*models.Mark{
		"mark-1": {ID: "mark-1", StudentID: "stu-1", AssessmentID: "asm-1", Scores: models.ScoreList{{Q: 1, Marks: 4}}},
	}}
	return NewAssessmentService(assessments, marks, nil, nil, nil), assessments, marks
}

func TestCreateAssessmentRequiresQuestions(t *testing.T) {
	svc, _, _ := newAssessmentFixture()

	_, err := svc.CreateAssessment(context.Background(), AssessmentRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "Internal 2",
		Type:      models.AssessmentInternal,
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateAssessmentAllowsUnmappedQuestion(t *testing.T) {
	svc, _, _ := newAssessmentFixture()

	created, err := svc.CreateAssessment(context.Background(), AssessmentRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "Quiz 1",
		Type:      models.AssessmentInternal,
		Questions: []QuestionPayload{{Q: 1, MaxMarks: 10}},
	})

	require.NoError(t, err)
	require.Len(t, created.Questions, 1)
	// A question without outcome mappings is valid; it simply feeds no CO.
	assert.Empty(t, created.Questions[0].CoIDs)
}

func TestCreateAssessmentRejectsUnknownType(t *testing.T) {
	svc, _, _ := newAssessmentFixture()

	_, err := svc.CreateAssessment(context.Background(), AssessmentRequest{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "Quiz",
		Type:      "Surprise",
		Questions: []QuestionPayload{{Q: 1, MaxMarks: 10, CoIDs: []string{"co-1"}}},
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSaveMarkReplacesExistingSheet(t *testing.T) {
	svc, _, marks := newAssessmentFixture()

	mark, err := svc.SaveMark(context.Background(), MarkRequest{
		StudentID:    "stu-1",
		AssessmentID: "asm-1",
		Scores:       []ScorePayload{{Q: 1, Marks: 9}},
	})

	require.NoError(t, err)
	assert.Equal(t, "mark-1", mark.ID)
	require.Len(t, marks.marks, 1)
	assert.InDelta(t, 9, marks.marks["mark-1"].Scores[0].Marks, 0.001)
}

func TestSaveMarkUnknownAssessment(t *testing.T) {
	svc, _, _ := newAssessmentFixture()

	_, err := svc.SaveMark(context.Background(), MarkRequest{
		StudentID:    "stu-1",
		AssessmentID: "missing",
		Scores:       []ScorePayload{{Q: 1, Marks: 5}},
	})

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestDeleteAssessmentNotFound(t *testing.T) {
	svc, _, _ := newAssessmentFixture()

	err := svc.DeleteAssessment(context.Background(), "missing")

	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
