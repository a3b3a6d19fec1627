package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/notsogambhir/obe-portal-api/internal/models"
	appErrors "github.com/notsogambhir/obe-portal-api/pkg/errors"
	"github.com/notsogambhir/obe-portal-api/pkg/export"
)

// ReportFormat selects the rendering of a report.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportExporter renders a dataset into bytes.
type ReportExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

// Report is a rendered attainment report.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders attainment results as downloadable tables. The
// weighted PO mean column exists only here; the aggregation itself never
// averages contributions.
type ReportService struct {
	attainment *AttainmentService
	csv        ReportExporter
	pdf        ReportExporter
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(attainment *AttainmentService, csv, pdf ReportExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{attainment: attainment, csv: csv, pdf: pdf, logger: logger}
}

// CourseReport renders the CO attainment table for a course.
func (s *ReportService) CourseReport(ctx context.Context, courseID string, format ReportFormat) (*Report, error) {
	result, _, err := s.attainment.CourseAttainment(ctx, courseID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("CO Attainment - %s %s", result.Course.Code, result.Course.Name),
		Headers: []string{"Course Outcome", "Attainment (%)"},
	}
	for _, coID := range sortedKeys(result.CoAttainment) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Course Outcome": coID,
			"Attainment (%)": formatPercent(result.CoAttainment[coID]),
		})
	}

	return s.render(dataset, fmt.Sprintf("course-attainment-%s", result.Course.Code), format)
}

// ProgramReport renders the PO roll-up table for a program, one row per
// contributing CO plus a weighted mean row per PO.
func (s *ReportService) ProgramReport(ctx context.Context, programID string, format ReportFormat) (*Report, error) {
	result, _, err := s.attainment.ProgramAttainment(ctx, programID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("PO Attainment - %s", result.Program.Name),
		Headers: []string{"Program Outcome", "Course Outcome", "Attainment (%)", "Mapping Level", "Weighted Mean (%)"},
	}

	for _, poID := range sortedPoKeys(result.PoAttainment) {
		bucket := result.PoAttainment[poID]
		var weightedSum, levelSum float64
		for _, contribution := range bucket.CoAttainments {
			weightedSum += contribution.Attainment * float64(contribution.MappingLevel)
			levelSum += float64(contribution.MappingLevel)
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Program Outcome": bucket.Po.Number,
				"Course Outcome":  contribution.Co.Number,
				"Attainment (%)":  formatPercent(contribution.Attainment),
				"Mapping Level":   strconv.Itoa(contribution.MappingLevel),
			})
		}
		var mean float64
		if levelSum > 0 {
			mean = weightedSum / levelSum
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Program Outcome":   bucket.Po.Number,
			"Course Outcome":    "ALL",
			"Weighted Mean (%)": formatPercent(mean),
		})
	}

	return s.render(dataset, fmt.Sprintf("program-attainment-%s", result.Program.ID), format)
}

func (s *ReportService) render(dataset export.Dataset, baseName string, format ReportFormat) (*Report, error) {
	switch format {
	case ReportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{FileName: baseName + ".csv", ContentType: "text/csv", Content: content}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{FileName: baseName + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}

func sortedKeys(m models.CoAttainmentMap) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedPoKeys(m map[string]*models.PoAttainment) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
