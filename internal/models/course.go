package models

// CourseStatus represents the lifecycle of a course offering.
type CourseStatus string

// Possible course statuses.
const (
	CourseStatusActive    CourseStatus = "Active"
	CourseStatusCompleted CourseStatus = "Completed"
	CourseStatusFuture    CourseStatus = "Future"
)

// Course is a taught unit within a program. The weightage and attainment
// level fields parameterize how a presentation layer classifies attainment;
// the aggregation itself does not consume them.
type Course struct {
	ID                 string       `db:"id" json:"id"`
	Name               string       `db:"name" json:"name"`
	Code               string       `db:"code" json:"code"`
	ProgramID          string       `db:"program_id" json:"program_id"`
	Target             int          `db:"target" json:"target"`
	InternalWeightage  int          `db:"internal_weightage" json:"internal_weightage"`
	ExternalWeightage  int          `db:"external_weightage" json:"external_weightage"`
	AttainmentLevel3   int          `db:"attainment_level3" json:"attainment_level3"`
	AttainmentLevel2   int          `db:"attainment_level2" json:"attainment_level2"`
	AttainmentLevel1   int          `db:"attainment_level1" json:"attainment_level1"`
	Status             CourseStatus `db:"status" json:"status"`
	TeacherID          *string      `db:"teacher_id" json:"teacher_id,omitempty"`
}

// CourseFilter captures list criteria for courses.
type CourseFilter struct {
	ProgramID string
	Status    CourseStatus
}
