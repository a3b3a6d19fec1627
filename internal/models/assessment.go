package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AssessmentType distinguishes internal and external instruments.
type AssessmentType string

// Possible assessment types.
const (
	AssessmentInternal AssessmentType = "Internal"
	AssessmentExternal AssessmentType = "External"
)

// Question is a single scored item on an assessment. A question may evaluate
// several course outcomes at once; its marks count fully toward each of them.
type Question struct {
	Q        int      `json:"q"`
	MaxMarks float64  `json:"maxMarks"`
	CoIDs    []string `json:"coIds"`
}

// QuestionList stores assessment questions as a JSONB column.
type QuestionList []Question

// Value implements driver.Valuer.
func (l QuestionList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Question{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *QuestionList) Scan(src interface{}) error {
	return scanJSON(src, l, "questions")
}

// Assessment is a scored instrument delivered to one section of a course.
type Assessment struct {
	ID        string         `db:"id" json:"id"`
	CourseID  string         `db:"course_id" json:"course_id"`
	SectionID string         `db:"section_id" json:"section_id"`
	Name      string         `db:"name" json:"name"`
	Type      AssessmentType `db:"type" json:"type"`
	Questions QuestionList   `db:"questions" json:"questions"`
}

// Score is one question's earned marks within a mark sheet.
type Score struct {
	Q     int     `json:"q"`
	Marks float64 `json:"marks"`
}

// ScoreList stores mark scores as a JSONB column.
type ScoreList []Score

// Value implements driver.Valuer.
func (l ScoreList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Score{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *ScoreList) Scan(src interface{}) error {
	return scanJSON(src, l, "scores")
}

// Mark records one student's scores for one assessment. At most one mark
// exists per (student, assessment) pair.
type Mark struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	AssessmentID string    `db:"assessment_id" json:"assessment_id"`
	Scores       ScoreList `db:"scores" json:"scores"`
}

// AssessmentFilter captures list criteria for assessments.
type AssessmentFilter struct {
	SectionID string
	CourseID  string
}

// MarkFilter captures list criteria for marks.
type MarkFilter struct {
	AssessmentID string
	StudentID    string
}

func scanJSON(src, dest interface{}, label string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported %s column type %T", label, src)
	}
}
