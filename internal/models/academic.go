package models

// College is the top level of the academic hierarchy.
type College struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Program is a degree program offered by a college.
type Program struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CollegeID string `db:"college_id" json:"college_id"`
	Duration  int    `db:"duration" json:"duration"`
}

// Batch groups students admitted to a program in the same year.
type Batch struct {
	ID        string `db:"id" json:"id"`
	ProgramID string `db:"program_id" json:"program_id"`
	Name      string `db:"name" json:"name"`
}

// Section is a teaching division of a batch.
type Section struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	ProgramID string `db:"program_id" json:"program_id"`
	BatchID   string `db:"batch_id" json:"batch_id"`
}

// ProgramFilter captures list criteria for programs.
type ProgramFilter struct {
	CollegeID string
}

// BatchFilter captures list criteria for batches.
type BatchFilter struct {
	ProgramID string
}

// SectionFilter captures list criteria for sections.
type SectionFilter struct {
	ProgramID string
	BatchID   string
}
