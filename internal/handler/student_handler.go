package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// StudentHandler exposes student and enrollment endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs the student handler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// ListStudents godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param program_id query string false "Filter by program"
// @Param section_id query string false "Filter by section"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	filter := models.StudentFilter{
		ProgramID: c.Query("program_id"),
		SectionID: c.Query("section_id"),
		Status:    models.StudentStatus(c.Query("status")),
	}
	students, err := h.students.ListStudents(c.Request.Context(), filter, scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// GetStudent returns one student.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.students.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// CreateStudent adds a student.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.CreateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// UpdateStudent modifies a student.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req service.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.students.UpdateStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// DeleteStudent removes a student.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.students.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEnrollments returns enrollments filtered by course or student.
func (h *StudentHandler) ListEnrollments(c *gin.Context) {
	filter := models.EnrollmentFilter{
		CourseID:  c.Query("course_id"),
		StudentID: c.Query("student_id"),
	}
	enrollments, err := h.students.ListEnrollments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// CreateEnrollment links a student to a course.
func (h *StudentHandler) CreateEnrollment(c *gin.Context) {
	var req service.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.students.CreateEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// UpdateEnrollment modifies an enrollment.
func (h *StudentHandler) UpdateEnrollment(c *gin.Context) {
	var req service.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.students.UpdateEnrollment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// DeleteEnrollment removes an enrollment.
func (h *StudentHandler) DeleteEnrollment(c *gin.Context) {
	if err := h.students.DeleteEnrollment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
