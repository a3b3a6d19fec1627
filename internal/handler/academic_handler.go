package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	"github.com/notsogambhir/obe-portal-api/internal/service"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// AcademicHandler exposes the college/program/batch/section endpoints.
type AcademicHandler struct {
	academic *service.AcademicService
}

// NewAcademicHandler constructs the academic handler.
func NewAcademicHandler(academic *service.AcademicService) *AcademicHandler {
	return &AcademicHandler{academic: academic}
}

// ListColleges godoc
// @Summary List colleges
// @Tags Academic
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /colleges [get]
func (h *AcademicHandler) ListColleges(c *gin.Context) {
	colleges, err := h.academic.ListColleges(c.Request.Context(), scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, colleges, nil)
}

// GetCollege returns one college.
func (h *AcademicHandler) GetCollege(c *gin.Context) {
	college, err := h.academic.GetCollege(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, college, nil)
}

// CreateCollege adds a college.
func (h *AcademicHandler) CreateCollege(c *gin.Context) {
	var req service.CollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid college payload"))
		return
	}
	college, err := h.academic.CreateCollege(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, college)
}

// UpdateCollege modifies a college.
func (h *AcademicHandler) UpdateCollege(c *gin.Context) {
	var req service.CollegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid college payload"))
		return
	}
	college, err := h.academic.UpdateCollege(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, college, nil)
}

// DeleteCollege removes a college.
func (h *AcademicHandler) DeleteCollege(c *gin.Context) {
	if err := h.academic.DeleteCollege(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPrograms godoc
// @Summary List programs
// @Tags Academic
// @Produce json
// @Param college_id query string false "Filter by college"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [get]
func (h *AcademicHandler) ListPrograms(c *gin.Context) {
	filter := models.ProgramFilter{CollegeID: c.Query("college_id")}
	programs, err := h.academic.ListPrograms(c.Request.Context(), filter, scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// GetProgram returns one program.
func (h *AcademicHandler) GetProgram(c *gin.Context) {
	program, err := h.academic.GetProgram(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// CreateProgram adds a program.
func (h *AcademicHandler) CreateProgram(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	program, err := h.academic.CreateProgram(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// UpdateProgram modifies a program.
func (h *AcademicHandler) UpdateProgram(c *gin.Context) {
	var req service.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program payload"))
		return
	}
	program, err := h.academic.UpdateProgram(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// DeleteProgram removes a program.
func (h *AcademicHandler) DeleteProgram(c *gin.Context) {
	if err := h.academic.DeleteProgram(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBatches returns batches, optionally filtered by program.
func (h *AcademicHandler) ListBatches(c *gin.Context) {
	filter := models.BatchFilter{ProgramID: c.Query("program_id")}
	batches, err := h.academic.ListBatches(c.Request.Context(), filter, scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// GetBatch returns one batch.
func (h *AcademicHandler) GetBatch(c *gin.Context) {
	batch, err := h.academic.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// CreateBatch adds a batch.
func (h *AcademicHandler) CreateBatch(c *gin.Context) {
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	batch, err := h.academic.CreateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// UpdateBatch modifies a batch.
func (h *AcademicHandler) UpdateBatch(c *gin.Context) {
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	batch, err := h.academic.UpdateBatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// DeleteBatch removes a batch.
func (h *AcademicHandler) DeleteBatch(c *gin.Context) {
	if err := h.academic.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListSections returns sections, optionally filtered by program or batch.
func (h *AcademicHandler) ListSections(c *gin.Context) {
	filter := models.SectionFilter{ProgramID: c.Query("program_id"), BatchID: c.Query("batch_id")}
	sections, err := h.academic.ListSections(c.Request.Context(), filter, scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// GetSection returns one section.
func (h *AcademicHandler) GetSection(c *gin.Context) {
	section, err := h.academic.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// CreateSection adds a section.
func (h *AcademicHandler) CreateSection(c *gin.Context) {
	var req service.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	section, err := h.academic.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// UpdateSection modifies a section.
func (h *AcademicHandler) UpdateSection(c *gin.Context) {
	var req service.SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	section, err := h.academic.UpdateSection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// DeleteSection removes a section.
func (h *AcademicHandler) DeleteSection(c *gin.Context) {
	if err := h.academic.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
