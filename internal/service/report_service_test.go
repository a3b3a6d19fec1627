package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/export"
)

func newReportFixture() *ReportService {
	return NewReportService(newAttainmentFixture(), export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestReportServiceCourseCSV(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.CourseReport(context.Background(), "course-1", ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, "course-attainment-CS101.csv", report.FileName)

	body := string(report.Content)
	assert.Contains(t, body, "Course Outcome,Attainment (%)")
	assert.Contains(t, body, "co-1,73.33")
	assert.Contains(t, body, "co-2,80.00")
}

func TestReportServiceProgramWeightedMean(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.ProgramReport(context.Background(), "prog-1", ReportFormatCSV)
	require.NoError(t, err)

	// (73.33*3 + 80*2) / 5 = 76.00
	body := string(report.Content)
	assert.Contains(t, body, "PO1,CO1,73.33,3")
	assert.Contains(t, body, "PO1,CO2,80.00,2")
	require.True(t, strings.Contains(body, "PO1,ALL,,,76.00"), "weighted mean row missing: %s", body)
}

func TestReportServiceProgramPDF(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.ProgramReport(context.Background(), "prog-1", ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Content), "%PDF"))
}

func TestReportServiceUnsupportedFormat(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.CourseReport(context.Background(), "course-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceNotFoundPropagates(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.CourseReport(context.Background(), "missing", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
