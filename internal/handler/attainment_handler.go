package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/service"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// AttainmentHandler exposes the attainment query endpoints.
type AttainmentHandler struct {
	attainment *service.AttainmentService
}

// NewAttainmentHandler constructs the attainment handler.
func NewAttainmentHandler(attainment *service.AttainmentService) *AttainmentHandler {
	return &AttainmentHandler{attainment: attainment}
}

// Program godoc
// @Summary Program outcome attainment
// @Description Roll course outcome attainment up to program outcomes
// @Tags Attainment
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attainment/programs/{id} [get]
func (h *AttainmentHandler) Program(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.attainment.ProgramAttainment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Course godoc
// @Summary Course outcome attainment
// @Description Aggregate CO attainment across all sections of a course
// @Tags Attainment
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attainment/courses/{id} [get]
func (h *AttainmentHandler) Course(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.attainment.CourseAttainment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Student godoc
// @Summary Student-scoped attainment
// @Description Aggregate CO attainment for one student across enrollments
// @Tags Attainment
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attainment/students/{id} [get]
func (h *AttainmentHandler) Student(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.attainment.StudentAttainment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}
