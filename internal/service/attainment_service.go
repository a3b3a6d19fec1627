package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
)

// AttainmentProgramRepository describes program lookups for attainment roll-ups.
type AttainmentProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// AttainmentCourseRepository describes course lookups for attainment aggregation.
type AttainmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListByProgram(ctx context.Context, programID string) ([]models.Course, error)
}

// AttainmentOutcomeRepository describes outcome lookups for attainment aggregation.
type AttainmentOutcomeRepository interface {
	ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error)
	ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error)
}

// AttainmentMappingRepository describes CO-PO mapping lookups.
type AttainmentMappingRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.CoPoMapping, error)
}

// AttainmentAssessmentRepository describes assessment lookups.
type AttainmentAssessmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Assessment, error)
	ListByCourseAndSection(ctx context.Context, courseID, sectionID string) ([]models.Assessment, error)
}

// AttainmentMarkRepository describes mark lookups.
type AttainmentMarkRepository interface {
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.Mark, error)
	FindByStudentAndAssessment(ctx context.Context, studentID, assessmentID string) (*models.Mark, error)
}

// AttainmentStudentRepository describes student lookups.
type AttainmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AttainmentEnrollmentRepository describes enrollment lookups.
type AttainmentEnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

// AttainmentService derives CO and PO attainment from marks on every query.
// Results are never persisted; an optional read-through cache sits in front
// of the computation when enabled.
type AttainmentService struct {
	programs    AttainmentProgramRepository
	courses     AttainmentCourseRepository
	outcomes    AttainmentOutcomeRepository
	mappings    AttainmentMappingRepository
	assessments AttainmentAssessmentRepository
	marks       AttainmentMarkRepository
	students    AttainmentStudentRepository
	enrollments AttainmentEnrollmentRepository
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewAttainmentService constructs an attainment service.
func NewAttainmentService(
	programs AttainmentProgramRepository,
	courses AttainmentCourseRepository,
	outcomes AttainmentOutcomeRepository,
	mappings AttainmentMappingRepository,
	assessments AttainmentAssessmentRepository,
	marks AttainmentMarkRepository,
	students AttainmentStudentRepository,
	enrollments AttainmentEnrollmentRepository,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *AttainmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttainmentService{
		programs:    programs,
		courses:     courses,
		outcomes:    outcomes,
		mappings:    mappings,
		assessments: assessments,
		marks:       marks,
		students:    students,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// coAccumulator collects scored and maximum marks per course outcome. The
// same accumulator backs course-wide and student-scoped aggregation; the two
// differ only in which mark sheets are fed into it.
type coAccumulator struct {
	scored  map[string]float64
	total   map[string]float64
	skipped int
}

func newCoAccumulator() *coAccumulator {
	return &coAccumulator{
		scored: make(map[string]float64),
		total:  make(map[string]float64),
	}
}

// feed credits one mark sheet against an assessment's question layout. Each
// score entry is matched to the first question carrying the same number; a
// score with no matching question is skipped and counted. A question mapped
// to several outcomes credits its full marks to every one of them.
func (a *coAccumulator) feed(questions []models.Question, scores []models.Score) {
	for _, score := range scores {
		var question *models.Question
		for i := range questions {
			if questions[i].Q == score.Q {
				question = &questions[i]
				break
			}
		}
		if question == nil {
			a.skipped++
			continue
		}
		for _, coID := range question.CoIDs {
			a.total[coID] += question.MaxMarks
			a.scored[coID] += score.Marks
		}
	}
}

// reduce converts accumulated marks into attainment percentages. An outcome
// with zero total marks reduces to 0 rather than dividing by zero. Values are
// not clamped; marks above the maximum push attainment past 100.
func (a *coAccumulator) reduce() models.CoAttainmentMap {
	result := make(models.CoAttainmentMap, len(a.total))
	for coID, total := range a.total {
		if total > 0 {
			result[coID] = 100 * a.scored[coID] / total
		} else {
			result[coID] = 0
		}
	}
	return result
}

// CourseAttainment aggregates CO attainment across every assessment and mark
// sheet of a course, all sections included.
func (s *AttainmentService) CourseAttainment(ctx context.Context, courseID string) (*models.CourseAttainment, bool, error) {
	cacheKey := fmt.Sprintf("attainment:course:%s", courseID)
	var cached models.CourseAttainment
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, false, fmt.Errorf("find course: %w", err)
	}

	start := time.Now()
	coMap, err := s.aggregateCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveComputation("course", time.Since(start))
	}

	result := &models.CourseAttainment{Course: *course, CoAttainment: coMap}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, false, nil
}

// ProgramAttainment rolls course outcome attainment up to program outcomes.
// Contributions are grouped per PO in course order, then mapping order; a
// mapped CO that earned no marks contributes 0 rather than being dropped.
func (s *AttainmentService) ProgramAttainment(ctx context.Context, programID string) (*models.ProgramAttainment, bool, error) {
	cacheKey := fmt.Sprintf("attainment:program:%s", programID)
	var cached models.ProgramAttainment
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, false, fmt.Errorf("find program: %w", err)
	}

	start := time.Now()

	programOutcomes, err := s.outcomes.ListProgramOutcomes(ctx, programID)
	if err != nil {
		return nil, false, fmt.Errorf("list program outcomes: %w", err)
	}
	poByID := make(map[string]models.ProgramOutcome, len(programOutcomes))
	for _, po := range programOutcomes {
		poByID[po.ID] = po
	}

	courses, err := s.courses.ListByProgram(ctx, programID)
	if err != nil {
		return nil, false, fmt.Errorf("list program courses: %w", err)
	}

	result := &models.ProgramAttainment{
		Program:      *program,
		PoAttainment: make(map[string]*models.PoAttainment),
	}

	for _, course := range courses {
		coMap, err := s.aggregateCourse(ctx, course.ID)
		if err != nil {
			return nil, false, err
		}

		courseOutcomes, err := s.outcomes.ListCourseOutcomes(ctx, course.ID)
		if err != nil {
			return nil, false, fmt.Errorf("list course outcomes: %w", err)
		}
		coByID := make(map[string]models.CourseOutcome, len(courseOutcomes))
		for _, co := range courseOutcomes {
			coByID[co.ID] = co
		}

		mappings, err := s.mappings.ListByCourse(ctx, course.ID)
		if err != nil {
			return nil, false, fmt.Errorf("list mappings: %w", err)
		}

		for _, mapping := range mappings {
			po, ok := poByID[mapping.PoID]
			if !ok {
				s.logger.Warn("mapping references unknown program outcome",
					zap.String("mapping_id", mapping.ID), zap.String("po_id", mapping.PoID))
				continue
			}
			co, ok := coByID[mapping.CoID]
			if !ok {
				s.logger.Warn("mapping references unknown course outcome",
					zap.String("mapping_id", mapping.ID), zap.String("co_id", mapping.CoID))
				continue
			}
			bucket, ok := result.PoAttainment[mapping.PoID]
			if !ok {
				bucket = &models.PoAttainment{Po: po}
				result.PoAttainment[mapping.PoID] = bucket
			}
			bucket.CoAttainments = append(bucket.CoAttainments, models.CoContribution{
				Co:           co,
				Attainment:   coMap[mapping.CoID],
				MappingLevel: mapping.Level,
			})
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveComputation("program", time.Since(start))
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, false, nil
}

// StudentAttainment aggregates CO attainment for one student across all of
// their enrollments, using only their own mark sheets.
func (s *AttainmentService) StudentAttainment(ctx context.Context, studentID string) (*models.StudentAttainment, bool, error) {
	cacheKey := fmt.Sprintf("attainment:student:%s", studentID)
	var cached models.StudentAttainment
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, false, fmt.Errorf("find student: %w", err)
	}

	start := time.Now()

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, false, fmt.Errorf("list enrollments: %w", err)
	}

	acc := newCoAccumulator()
	for _, enrollment := range enrollments {
		// Assessments are delivered per section. An enrollment without a
		// section matches no assessments and contributes nothing.
		if enrollment.SectionID == nil {
			s.logger.Debug("enrollment has no section, skipping",
				zap.String("enrollment_id", enrollment.ID), zap.String("course_id", enrollment.CourseID))
			continue
		}
		assessments, err := s.assessments.ListByCourseAndSection(ctx, enrollment.CourseID, *enrollment.SectionID)
		if err != nil {
			return nil, false, fmt.Errorf("list assessments: %w", err)
		}

		for _, assessment := range assessments {
			mark, err := s.marks.FindByStudentAndAssessment(ctx, studentID, assessment.ID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return nil, false, fmt.Errorf("find mark: %w", err)
			}
			acc.feed(assessment.Questions, mark.Scores)
		}
	}
	if acc.skipped > 0 {
		s.logger.Debug("skipped unmatched score entries",
			zap.String("student_id", studentID), zap.Int("count", acc.skipped))
	}

	if s.metrics != nil {
		s.metrics.ObserveComputation("student", time.Since(start))
	}

	result := &models.StudentAttainment{Student: *student, CoAttainment: acc.reduce()}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, 0)
	}
	return result, false, nil
}

// aggregateCourse runs the accumulator over every mark sheet of a course.
func (s *AttainmentService) aggregateCourse(ctx context.Context, courseID string) (models.CoAttainmentMap, error) {
	start := time.Now()
	assessments, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("attainment_assessments", time.Since(start))
	}

	acc := newCoAccumulator()
	for _, assessment := range assessments {
		marksStart := time.Now()
		marks, err := s.marks.ListByAssessment(ctx, assessment.ID)
		if err != nil {
			return nil, fmt.Errorf("list marks: %w", err)
		}
		if s.metrics != nil {
			s.metrics.ObserveDBQuery("attainment_marks", time.Since(marksStart))
		}
		for _, mark := range marks {
			acc.feed(assessment.Questions, mark.Scores)
		}
	}
	if acc.skipped > 0 {
		s.logger.Debug("skipped unmatched score entries",
			zap.String("course_id", courseID), zap.Int("count", acc.skipped))
	}
	return acc.reduce(), nil
}
