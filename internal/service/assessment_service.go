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

type assessmentRepository interface {
	List(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error)
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error
}

type markRepository interface {
	List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error)
	FindByID(ctx context.Context, id string) (*models.Mark, error)
	Upsert(ctx context.Context, mark *models.Mark) error
	Delete(ctx context.Context, id string) error
}

// QuestionPayload is one question in an assessment request.
type QuestionPayload struct {
	Q        int      `json:"q" validate:"required,min=1"`
	MaxMarks float64  `json:"maxMarks" validate:"required,gt=0"`
	// CoIDs may be empty; an unmapped question contributes to no outcome.
	CoIDs []string `json:"coIds"`
}

// AssessmentRequest captures assessment create/update payload.
type AssessmentRequest struct {
	CourseID  string                `json:"course_id" validate:"required"`
	SectionID string                `json:"section_id" validate:"required"`
	Name      string                `json:"name" validate:"required"`
	Type      models.AssessmentType `json:"type" validate:"required,oneof=Internal External"`
	Questions []QuestionPayload     `json:"questions" validate:"required,min=1,dive"`
}

// ScorePayload is one score entry in a mark request.
type ScorePayload struct {
	Q     int     `json:"q" validate:"required,min=1"`
	Marks float64 `json:"marks" validate:"min=0"`
}

// MarkRequest captures a mark sheet create/replace payload.
type MarkRequest struct {
	StudentID    string         `json:"student_id" validate:"required"`
	AssessmentID string         `json:"assessment_id" validate:"required"`
	Scores       []ScorePayload `json:"scores" validate:"required,dive"`
}

// AssessmentService coordinates assessments and mark sheets. Mark writes go
// through upsert so each (student, assessment) pair keeps a single sheet.
type AssessmentService struct {
	assessments assessmentRepository
	marks       markRepository
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentService constructs an AssessmentService.
func NewAssessmentService(assessments assessmentRepository, marks markRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssessmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{assessments: assessments, marks: marks, cache: cache, validator: validate, logger: logger}
}

func (s *AssessmentService) invalidateAttainment(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "attainment:*"); err != nil {
		s.logger.Warn("failed to invalidate attainment cache", zap.Error(err))
	}
}

// ListAssessments returns assessments matching the filter.
func (s *AssessmentService) ListAssessments(ctx context.Context, filter models.AssessmentFilter) ([]models.Assessment, error) {
	assessments, err := s.assessments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// GetAssessment returns a single assessment.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.assessments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}
	return assessment, nil
}

// CreateAssessment adds an assessment with its question layout.
func (s *AssessmentService) CreateAssessment(ctx context.Context, req AssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	assessment := &models.Assessment{
		CourseID:  req.CourseID,
		SectionID: req.SectionID,
		Name:      req.Name,
		Type:      req.Type,
		Questions: questionsFromPayload(req.Questions),
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	s.invalidateAttainment(ctx)
	return assessment, nil
}

// UpdateAssessment replaces an assessment's fields and question layout.
func (s *AssessmentService) UpdateAssessment(ctx context.Context, id string, req AssessmentRequest) (*models.Assessment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	assessment, err := s.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	assessment.CourseID = req.CourseID
	assessment.SectionID = req.SectionID
	assessment.Name = req.Name
	assessment.Type = req.Type
	assessment.Questions = questionsFromPayload(req.Questions)
	if err := s.assessments.Update(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assessment")
	}
	s.invalidateAttainment(ctx)
	return assessment, nil
}

// DeleteAssessment removes an assessment.
func (s *AssessmentService) DeleteAssessment(ctx context.Context, id string) error {
	if _, err := s.GetAssessment(ctx, id); err != nil {
		return err
	}
	if err := s.assessments.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assessment")
	}
	s.invalidateAttainment(ctx)
	return nil
}

// ListMarks returns marks matching the filter.
func (s *AssessmentService) ListMarks(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	marks, err := s.marks.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return marks, nil
}

// SaveMark inserts or replaces the mark sheet for a (student, assessment)
// pair. The assessment must exist; score entries pointing at unknown question
// numbers are stored as-is and skipped during aggregation.
func (s *AssessmentService) SaveMark(ctx context.Context, req MarkRequest) (*models.Mark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mark payload")
	}
	if _, err := s.GetAssessment(ctx, req.AssessmentID); err != nil {
		return nil, err
	}
	scores := make(models.ScoreList, 0, len(req.Scores))
	for _, score := range req.Scores {
		scores = append(scores, models.Score{Q: score.Q, Marks: score.Marks})
	}
	mark := &models.Mark{
		StudentID:    req.StudentID,
		AssessmentID: req.AssessmentID,
		Scores:       scores,
	}
	if err := s.marks.Upsert(ctx, mark); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save mark")
	}
	s.invalidateAttainment(ctx)
	return mark, nil
}

// DeleteMark removes a mark sheet.
func (s *AssessmentService) DeleteMark(ctx context.Context, id string) error {
	if _, err := s.marks.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "mark not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark")
	}
	if err := s.marks.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete mark")
	}
	s.invalidateAttainment(ctx)
	return nil
}

func questionsFromPayload(payload []QuestionPayload) models.QuestionList {
	questions := make(models.QuestionList, 0, len(payload))
	for _, q := range payload {
		questions = append(questions, models.Question{Q: q.Q, MaxMarks: q.MaxMarks, CoIDs: q.CoIDs})
	}
	return questions
}
