package models

// StudentStatus represents a student's standing.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusActive   StudentStatus = "Active"
	StudentStatusInactive StudentStatus = "Inactive"
)

// Student is a learner registered to a program.
type Student struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	ProgramID string        `db:"program_id" json:"program_id"`
	Status    StudentStatus `db:"status" json:"status"`
	SectionID *string       `db:"section_id" json:"section_id,omitempty"`
}

// Enrollment registers a student to a course in a specific section. At most
// one enrollment exists per (course, student) pair.
type Enrollment struct {
	ID        string  `db:"id" json:"id"`
	CourseID  string  `db:"course_id" json:"course_id"`
	StudentID string  `db:"student_id" json:"student_id"`
	SectionID *string `db:"section_id" json:"section_id,omitempty"`
}

// StudentFilter captures list criteria for students.
type StudentFilter struct {
	ProgramID string
	CollegeID string
	SectionID string
	Status    StudentStatus
}

// EnrollmentFilter captures list criteria for enrollments.
type EnrollmentFilter struct {
	CourseID  string
	StudentID string
}
