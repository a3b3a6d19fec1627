package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notsogambhir/obe-portal-api/internal/service"
	"github.com/notsogambhir/obe-portal-api/pkg/response"
)

// ReportHandler serves downloadable attainment reports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs the report handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Program godoc
// @Summary Program attainment report
// @Description Download the PO roll-up as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Program ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/programs/{id} [get]
func (h *ReportHandler) Program(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	report, err := h.reports.ProgramReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

// Course godoc
// @Summary Course attainment report
// @Description Download the CO attainment table as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/courses/{id} [get]
func (h *ReportHandler) Course(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	report, err := h.reports.CourseReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveReport(c, report)
}

func serveReport(c *gin.Context, report *service.Report) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
