package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// AssessmentHandler exposes assessment and mark endpoints.
type AssessmentHandler struct {
	assessments *service.AssessmentService
}

// NewAssessmentHandler constructs the assessment handler.
func NewAssessmentHandler(assessments *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// ListAssessments godoc
// @Summary List assessments
// @Tags Assessments
// @Produce json
// @Param course_id query string false "Filter by course"
// @Param section_id query string false "Filter by section"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	filter := models.AssessmentFilter{
		CourseID:  c.Query("course_id"),
		SectionID: c.Query("section_id"),
	}
	assessments, err := h.assessments.ListAssessments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessments, nil)
}

// GetAssessment returns one assessment with its question layout.
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	assessment, err := h.assessments.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// CreateAssessment adds an assessment.
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	var req service.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}
	assessment, err := h.assessments.CreateAssessment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// UpdateAssessment modifies an assessment.
func (h *AssessmentHandler) UpdateAssessment(c *gin.Context) {
	var req service.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}
	assessment, err := h.assessments.UpdateAssessment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessment, nil)
}

// DeleteAssessment removes an assessment.
func (h *AssessmentHandler) DeleteAssessment(c *gin.Context) {
	if err := h.assessments.DeleteAssessment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMarks returns marks filtered by assessment or student.
func (h *AssessmentHandler) ListMarks(c *gin.Context) {
	filter := models.MarkFilter{
		AssessmentID: c.Query("assessment_id"),
		StudentID:    c.Query("student_id"),
	}
	marks, err := h.assessments.ListMarks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// SaveMark godoc
// @Summary Record a student's marks for an assessment
// @Description Creates or replaces the per-question scores of one student on one assessment
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body service.MarkRequest true "Mark payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /marks [post]
func (h *AssessmentHandler) SaveMark(c *gin.Context) {
	var req service.MarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mark payload"))
		return
	}
	mark, err := h.assessments.SaveMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mark)
}

// DeleteMark removes a mark record.
func (h *AssessmentHandler) DeleteMark(c *gin.Context) {
	if err := h.assessments.DeleteMark(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
