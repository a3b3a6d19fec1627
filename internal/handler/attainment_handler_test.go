package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type fakeCourseRepo struct {
	course *models.Course
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return f.course, nil
}

func (f *fakeCourseRepo) ListByProgram(context.Context, string) ([]models.Course, error) {
	if f.course == nil {
		return nil, nil
	}
	return []models.Course{*f.course}, nil
}

type fakeAssessmentRepo struct {
	assessments []models.Assessment
}

func (f *fakeAssessmentRepo) ListByCourse(context.Context, string) ([]models.Assessment, error) {
	return f.assessments, nil
}

func (f *fakeAssessmentRepo) ListByCourseAndSection(context.Context, string, string) ([]models.Assessment, error) {
	return f.assessments, nil
}

type fakeMarkRepo struct {
	marks []models.Mark
}

func (f *fakeMarkRepo) ListByAssessment(_ context.Context, assessmentID string) ([]models.Mark, error) {
	var out []models.Mark
	for _, m := range f.marks {
		if m.AssessmentID == assessmentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarkRepo) FindByStudentAndAssessment(context.Context, string, string) (*models.Mark, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "mark not found")
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func newCourseAttainmentService() *service.AttainmentService {
	course := &models.Course{ID: "course-1", Name: "Data Structures", Code: "CS101", ProgramID: "prog-1"}
	assessments := []models.Assessment{{
		ID:       "asm-1",
		CourseID: "course-1",
		Questions: models.QuestionList{
			{Q: 1, MaxMarks: 10, CoIDs: []string{"co-1"}},
			{Q: 2, MaxMarks: 5, CoIDs: []string{"co-1", "co-2"}},
		},
	}}
	marks := []models.Mark{
		{ID: "m-1", StudentID: "stu-a", AssessmentID: "asm-1", Scores: models.ScoreList{{Q: 1, Marks: 8}, {Q: 2, Marks: 5}}},
		{ID: "m-2", StudentID: "stu-b", AssessmentID: "asm-1", Scores: models.ScoreList{{Q: 1, Marks: 6}, {Q: 2, Marks: 3}}},
	}
	return service.NewAttainmentService(
		nil,
		&fakeCourseRepo{course: course},
		nil,
		nil,
		&fakeAssessmentRepo{assessments: assessments},
		&fakeMarkRepo{marks: marks},
		nil,
		nil,
		nil, nil, nil,
	)
}

func TestAttainmentHandlerCourseSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttainmentHandler(newCourseAttainmentService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attainment/courses/course-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Course(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")

	coAttainment, ok := envelope.Data["co_attainment"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 73.33, coAttainment["co-1"].(float64), 0.01)
	assert.InDelta(t, 80.0, coAttainment["co-2"].(float64), 0.01)
}

func TestAttainmentHandlerCourseNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttainmentHandler(newCourseAttainmentService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/attainment/courses/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Course(c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}
