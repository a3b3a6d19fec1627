package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/notsogambhir/obe-portal-api/internal/models"
)

func newAssessmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssessmentRepositoryListByCourseAndSection(t *testing.T) {
	db, mock, cleanup := newAssessmentRepoMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	questions := []byte(`[{"q":1,"maxMarks":10,"coIds":["co-1"]}]`)
	rows := sqlmock.NewRows([]string{"id", "course_id", "section_id", "name", "type", "questions"}).
		AddRow("asm-1", "course-1", "sec-1", "Mid Term 1", "Internal", questions)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, section_id, name, type, questions FROM assessments WHERE course_id = $1 AND section_id = $2 ORDER BY id")).
		WithArgs("course-1", "sec-1").
		WillReturnRows(rows)

	assessments, err := repo.ListByCourseAndSection(context.Background(), "course-1", "sec-1")
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	require.Len(t, assessments[0].Questions, 1)
	require.Equal(t, 1, assessments[0].Questions[0].Q)
	require.Equal(t, []string{"co-1"}, assessments[0].Questions[0].CoIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newAssessmentRepoMock(t)
	defer cleanup()
	repo := NewAssessmentRepository(db)

	mock.ExpectExec("INSERT INTO assessments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assessment := &models.Assessment{
		CourseID:  "course-1",
		SectionID: "sec-1",
		Name:      "End Sem",
		Type:      "External",
		Questions: models.QuestionList{{Q: 1, MaxMarks: 50, CoIDs: []string{"co-1", "co-2"}}},
	}
	require.NoError(t, repo.Create(context.Background(), assessment))
	require.NotEmpty(t, assessment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
