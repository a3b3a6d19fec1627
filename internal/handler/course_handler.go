package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// CourseHandler exposes courses, outcomes and CO-PO mapping endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs the course handler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// ListCourses godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param program_id query string false "Filter by program"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		ProgramID: c.Query("program_id"),
		Status:    models.CourseStatus(c.Query("status")),
	}
	courses, err := h.courses.ListCourses(c.Request.Context(), filter, scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse returns one course.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse adds a course.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse modifies a course.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.UpdateCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteCourse removes a course.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.courses.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCourseOutcomes returns the COs of a course (course_id query).
func (h *CourseHandler) ListCourseOutcomes(c *gin.Context) {
	outcomes, err := h.courses.ListCourseOutcomes(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, nil)
}

// CreateCourseOutcome adds a CO.
func (h *CourseHandler) CreateCourseOutcome(c *gin.Context) {
	var req service.CourseOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course outcome payload"))
		return
	}
	outcome, err := h.courses.CreateCourseOutcome(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, outcome)
}

// UpdateCourseOutcome modifies a CO.
func (h *CourseHandler) UpdateCourseOutcome(c *gin.Context) {
	var req service.CourseOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course outcome payload"))
		return
	}
	outcome, err := h.courses.UpdateCourseOutcome(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// DeleteCourseOutcome removes a CO.
func (h *CourseHandler) DeleteCourseOutcome(c *gin.Context) {
	if err := h.courses.DeleteCourseOutcome(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListProgramOutcomes returns the POs of a program (program_id query).
func (h *CourseHandler) ListProgramOutcomes(c *gin.Context) {
	outcomes, err := h.courses.ListProgramOutcomes(c.Request.Context(), c.Query("program_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes, nil)
}

// CreateProgramOutcome adds a PO.
func (h *CourseHandler) CreateProgramOutcome(c *gin.Context) {
	var req service.ProgramOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program outcome payload"))
		return
	}
	outcome, err := h.courses.CreateProgramOutcome(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, outcome)
}

// UpdateProgramOutcome modifies a PO.
func (h *CourseHandler) UpdateProgramOutcome(c *gin.Context) {
	var req service.ProgramOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program outcome payload"))
		return
	}
	outcome, err := h.courses.UpdateProgramOutcome(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// DeleteProgramOutcome removes a PO.
func (h *CourseHandler) DeleteProgramOutcome(c *gin.Context) {
	if err := h.courses.DeleteProgramOutcome(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMappings returns the CO-PO mappings of a course (course_id query).
func (h *CourseHandler) ListMappings(c *gin.Context) {
	mappings, err := h.courses.ListMappings(c.Request.Context(), c.Query("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mappings, nil)
}

// CreateMapping godoc
// @Summary Create CO-PO mapping
// @Description Link a course outcome to a program outcome at a level between 1 and 3
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.MappingRequest true "Mapping payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /co-po-mappings [post]
func (h *CourseHandler) CreateMapping(c *gin.Context) {
	var req service.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mapping payload"))
		return
	}
	mapping, err := h.courses.CreateMapping(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mapping)
}

// UpdateMapping modifies a CO-PO mapping.
func (h *CourseHandler) UpdateMapping(c *gin.Context) {
	var req service.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mapping payload"))
		return
	}
	mapping, err := h.courses.UpdateMapping(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping, nil)
}

// DeleteMapping removes a CO-PO mapping.
func (h *CourseHandler) DeleteMapping(c *gin.Context) {
	if err := h.courses.DeleteMapping(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
