package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

type mockProgramRepo struct {
	programs map[string]models.Program
}

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if program, ok := m.programs[id]; ok {
		return &program, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseRepo struct {
	courses map[string]models.Course
	order   []string
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return &course, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ListByProgram(ctx context.Context, programID string) ([]models.Course, error) {
	var result []models.Course
	for _, id := range m.order {
		course := m.courses[id]
		if course.ProgramID == programID {
			result = append(result, course)
		}
	}
	return result, nil
}

type mockOutcomeRepo struct {
	courseOutcomes  []models.CourseOutcome
	programOutcomes []models.ProgramOutcome
}

func (m *mockOutcomeRepo) ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error) {
	var result []models.CourseOutcome
	for _, co := range m.courseOutcomes {
		if co.CourseID == courseID {
			result = append(result, co)
		}
	}
	return result, nil
}

func (m *mockOutcomeRepo) ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error) {
	var result []models.ProgramOutcome
	for _, po := range m.programOutcomes {
		if po.ProgramID == programID {
			result = append(result, po)
		}
	}
	return result, nil
}

type mockMappingRepo struct {
	mappings []models.CoPoMapping
}

func (m *mockMappingRepo) ListByCourse(ctx context.Context, courseID string) ([]models.CoPoMapping, error) {
	var result []models.CoPoMapping
	for _, mapping := range m.mappings {
		if mapping.CourseID == courseID {
			result = append(result, mapping)
		}
	}
	return result, nil
}

type mockAssessmentRepo struct {
	assessments []models.Assessment
}

func (m *mockAssessmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error) {
	var result []models.Assessment
	for _, assessment := range m.assessments {
		if assessment.CourseID == courseID {
			result = append(result, assessment)
		}
	}
	return result, nil
}

func (m *mockAssessmentRepo) ListByCourseAndSection(ctx context.Context, courseID, sectionID string) ([]models.Assessment, error) {
	var result []models.Assessment
	for _, assessment := range m.assessments {
		if assessment.CourseID == courseID && assessment.SectionID == sectionID {
			result = append(result, assessment)
		}
	}
	return result, nil
}

type mockMarkRepo struct {
	marks []models.Mark
}

func (m *mockMarkRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]models.Mark, error) {
	var result []models.Mark
	for _, mark := range m.marks {
		if mark.AssessmentID == assessmentID {
			result = append(result, mark)
		}
	}
	return result, nil
}

func (m *mockMarkRepo) FindByStudentAndAssessment(ctx context.Context, studentID, assessmentID string) (*models.Mark, error) {
	for _, mark := range m.marks {
		if mark.StudentID == studentID && mark.AssessmentID == assessmentID {
			found := mark
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockStudentRepo struct {
	students map[string]models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := m.students[id]; ok {
		return &student, nil
	}
	return nil, sql.ErrNoRows
}

type mockEnrollmentRepo struct {
	enrollments []models.Enrollment
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var result []models.Enrollment
	for _, enrollment := range m.enrollments {
		if enrollment.StudentID == studentID {
			result = append(result, enrollment)
		}
	}
	return result, nil
}

// newAttainmentFixture builds the two-student, one-assessment course from
// which most expectations below derive: CO1 collects 22/30, CO2 collects 8/10.
func newAttainmentFixture() *AttainmentService {
	sectionID := "sec-1"
	programs := &mockProgramRepo{programs: map[string]models.Program{
		"prog-1": {ID: "prog-1", Name: "B.Tech CSE", CollegeID: "col-1", Duration: 4},
	}}
	courses := &mockCourseRepo{
		courses: map[string]models.Course{
			"course-1": {ID: "course-1", ProgramID: "prog-1", Code: "CS101", Name: "Data Structures"},
		},
		order: []string{"course-1"},
	}
	outcomes := &mockOutcomeRepo{
		courseOutcomes: []models.CourseOutcome{
			{ID: "co-1", CourseID: "course-1", Number: "CO1"},
			{ID: "co-2", CourseID: "course-1", Number: "CO2"},
		},
		programOutcomes: []models.ProgramOutcome{
			{ID: "po-1", ProgramID: "prog-1", Number: "PO1"},
		},
	}
	mappings := &mockMappingRepo{mappings: []models.CoPoMapping{
		{ID: "map-1", CourseID: "course-1", CoID: "co-1", PoID: "po-1", Level: 3},
		{ID: "map-2", CourseID: "course-1", CoID: "co-2", PoID: "po-1", Level: 2},
	}}
	assessments := &mockAssessmentRepo{assessments: []models.Assessment{
		{
			ID:        "asm-1",
			CourseID:  "course-1",
			SectionID: sectionID,
			Name:      "Mid Term",
			Type:      models.AssessmentInternal,
			Questions: models.QuestionList{
				{Q: 1, MaxMarks: 10, CoIDs: []string{"co-1"}},
				{Q: 2, MaxMarks: 5, CoIDs: []string{"co-1", "co-2"}},
			},
		},
	}}
	marks := &mockMarkRepo{marks: []models.Mark{
		{ID: "mark-a", StudentID: "stu-a", AssessmentID: "asm-1", Scores: models.ScoreList{{Q: 1, Marks: 8}, {Q: 2, Marks: 5}}},
		{ID: "mark-b", StudentID: "stu-b", AssessmentID: "asm-1", Scores: models.ScoreList{{Q: 1, Marks: 6}, {Q: 2, Marks: 3}}},
	}}
	students := &mockStudentRepo{students: map[string]models.Student{
		"stu-a": {ID: "stu-a", Name: "Asha", ProgramID: "prog-1", Status: models.StudentStatusActive, SectionID: &sectionID},
	}}
	enrollments := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "enr-a", CourseID: "course-1", StudentID: "stu-a", SectionID: &sectionID},
	}}

	return NewAttainmentService(programs, courses, outcomes, mappings, assessments, marks, students, enrollments, nil, nil, zap.NewNop())
}

func TestCourseAttainmentAccumulation(t *testing.T) {
	svc := newAttainmentFixture()

	result, cached, err := svc.CourseAttainment(context.Background(), "course-1")
	require.NoError(t, err)
	assert.False(t, cached)
	require.NotNil(t, result)
	assert.Equal(t, "course-1", result.Course.ID)
	assert.InDelta(t, 100.0*22.0/30.0, result.CoAttainment["co-1"], 0.01)
	assert.InDelta(t, 80.0, result.CoAttainment["co-2"], 0.01)
}

func TestCourseAttainmentFanOutNotDilution(t *testing.T) {
	svc := newAttainmentFixture()

	result, _, err := svc.CourseAttainment(context.Background(), "course-1")
	require.NoError(t, err)
	// Question 2 carries both outcomes; CO2 sees the full 5+3 out of 5+5,
	// not a split share.
	assert.InDelta(t, 80.0, result.CoAttainment["co-2"], 0.01)
}

func TestCourseAttainmentSkipsUnmatchedScores(t *testing.T) {
	svc := newAttainmentFixture()
	markRepo := svc.marks.(*mockMarkRepo)
	markRepo.marks = append(markRepo.marks, models.Mark{
		ID:           "mark-c",
		StudentID:    "stu-c",
		AssessmentID: "asm-1",
		Scores:       models.ScoreList{{Q: 99, Marks: 10}},
	})

	result, _, err := svc.CourseAttainment(context.Background(), "course-1")
	require.NoError(t, err)
	// The stray score changes nothing.
	assert.InDelta(t, 100.0*22.0/30.0, result.CoAttainment["co-1"], 0.01)
	assert.InDelta(t, 80.0, result.CoAttainment["co-2"], 0.01)
}

func TestCourseAttainmentNotFound(t *testing.T) {
	svc := newAttainmentFixture()

	_, _, err := svc.CourseAttainment(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCourseAttainmentEmptyCourse(t *testing.T) {
	svc := newAttainmentFixture()
	courseRepo := svc.courses.(*mockCourseRepo)
	courseRepo.courses["course-2"] = models.Course{ID: "course-2", ProgramID: "prog-1", Code: "CS102"}
	courseRepo.order = append(courseRepo.order, "course-2")

	result, _, err := svc.CourseAttainment(context.Background(), "course-2")
	require.NoError(t, err)
	assert.Empty(t, result.CoAttainment)
}

func TestProgramAttainmentRollUp(t *testing.T) {
	svc := newAttainmentFixture()

	result, cached, err := svc.ProgramAttainment(context.Background(), "prog-1")
	require.NoError(t, err)
	assert.False(t, cached)
	require.NotNil(t, result)
	require.Contains(t, result.PoAttainment, "po-1")

	bucket := result.PoAttainment["po-1"]
	assert.Equal(t, "PO1", bucket.Po.Number)
	require.Len(t, bucket.CoAttainments, 2)
	assert.Equal(t, "co-1", bucket.CoAttainments[0].Co.ID)
	assert.InDelta(t, 100.0*22.0/30.0, bucket.CoAttainments[0].Attainment, 0.01)
	assert.Equal(t, 3, bucket.CoAttainments[0].MappingLevel)
	assert.Equal(t, "co-2", bucket.CoAttainments[1].Co.ID)
	assert.InDelta(t, 80.0, bucket.CoAttainments[1].Attainment, 0.01)
	assert.Equal(t, 2, bucket.CoAttainments[1].MappingLevel)
}

func TestProgramAttainmentUnassessedOutcomeContributesZero(t *testing.T) {
	svc := newAttainmentFixture()
	outcomeRepo := svc.outcomes.(*mockOutcomeRepo)
	outcomeRepo.courseOutcomes = append(outcomeRepo.courseOutcomes,
		models.CourseOutcome{ID: "co-3", CourseID: "course-1", Number: "CO3"})
	mappingRepo := svc.mappings.(*mockMappingRepo)
	mappingRepo.mappings = append(mappingRepo.mappings,
		models.CoPoMapping{ID: "map-3", CourseID: "course-1", CoID: "co-3", PoID: "po-1", Level: 1})

	result, _, err := svc.ProgramAttainment(context.Background(), "prog-1")
	require.NoError(t, err)
	bucket := result.PoAttainment["po-1"]
	require.Len(t, bucket.CoAttainments, 3)
	assert.Equal(t, "co-3", bucket.CoAttainments[2].Co.ID)
	assert.Zero(t, bucket.CoAttainments[2].Attainment)
}

func TestProgramAttainmentNotFound(t *testing.T) {
	svc := newAttainmentFixture()

	_, _, err := svc.ProgramAttainment(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestStudentAttainmentUsesOwnMarksOnly(t *testing.T) {
	svc := newAttainmentFixture()

	result, cached, err := svc.StudentAttainment(context.Background(), "stu-a")
	require.NoError(t, err)
	assert.False(t, cached)
	// Student A alone: CO1 = 100*(8+5)/(10+5), CO2 = 100*5/5.
	assert.InDelta(t, 100.0*13.0/15.0, result.CoAttainment["co-1"], 0.01)
	assert.InDelta(t, 100.0, result.CoAttainment["co-2"], 0.01)
}

func TestStudentAttainmentMissingMarkSkipped(t *testing.T) {
	svc := newAttainmentFixture()
	markRepo := svc.marks.(*mockMarkRepo)
	markRepo.marks = nil

	result, _, err := svc.StudentAttainment(context.Background(), "stu-a")
	require.NoError(t, err)
	assert.Empty(t, result.CoAttainment)
}

func TestStudentAttainmentSectionlessEnrollmentContributesNothing(t *testing.T) {
	svc := newAttainmentFixture()
	enrollmentRepo := svc.enrollments.(*mockEnrollmentRepo)
	enrollmentRepo.enrollments = []models.Enrollment{
		{ID: "enr-a", CourseID: "course-1", StudentID: "stu-a", SectionID: nil},
	}

	result, _, err := svc.StudentAttainment(context.Background(), "stu-a")
	require.NoError(t, err)
	// An enrollment without a section matches no assessments, so none of
	// the course marks count toward the student.
	assert.Empty(t, result.CoAttainment)
}

func TestStudentAttainmentNotFound(t *testing.T) {
	svc := newAttainmentFixture()

	_, _, err := svc.StudentAttainment(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCourseAttainmentObservesQueryDurations(t *testing.T) {
	svc := newAttainmentFixture()
	svc.metrics = NewMetricsService()

	_, _, err := svc.CourseAttainment(context.Background(), "course-1")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `db_query_duration_seconds_count{query="attainment_assessments"} 1`)
	assert.Contains(t, body, `db_query_duration_seconds_count{query="attainment_marks"} 1`)
}

func TestAccumulatorZeroTotalReducesToZero(t *testing.T) {
	acc := newCoAccumulator()
	acc.feed([]models.Question{{Q: 1, MaxMarks: 0, CoIDs: []string{"co-1"}}}, []models.Score{{Q: 1, Marks: 0}})

	result := acc.reduce()
	assert.Zero(t, result["co-1"])
}
