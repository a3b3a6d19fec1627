package models

// CourseOutcome is a learning outcome defined per course.
type CourseOutcome struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Number      string `db:"number" json:"number"`
	Description string `db:"description" json:"description"`
}

// ProgramOutcome is a program-wide learning outcome.
type ProgramOutcome struct {
	ID          string `db:"id" json:"id"`
	ProgramID   string `db:"program_id" json:"program_id"`
	Number      string `db:"number" json:"number"`
	Description string `db:"description" json:"description"`
}

// Mapping level bounds for CO-PO contributions.
const (
	MappingLevelMin = 1
	MappingLevelMax = 3
)

// CoPoMapping declares that a course outcome contributes to a program
// outcome at an integer level. At most one mapping exists per (CO, PO) pair.
type CoPoMapping struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	CoID     string `db:"co_id" json:"co_id"`
	PoID     string `db:"po_id" json:"po_id"`
	Level    int    `db:"level" json:"level"`
}
