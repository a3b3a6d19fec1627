package models

// CoAttainmentMap maps a course outcome id to its attainment percentage.
// Values are derived on every query and never persisted.
type CoAttainmentMap map[string]float64

// CoContribution is one course outcome's entry inside a PO bucket.
type CoContribution struct {
	Co           CourseOutcome `json:"co"`
	Attainment   float64       `json:"attainment"`
	MappingLevel int           `json:"mapping_level"`
}

// PoAttainment groups the contributing course outcomes for one program
// outcome. Contributions appear in course-then-mapping iteration order.
type PoAttainment struct {
	Po            ProgramOutcome   `json:"po"`
	CoAttainments []CoContribution `json:"co_attainments"`
}

// ProgramAttainment is the PO roll-up result for a program.
type ProgramAttainment struct {
	Program      Program                  `json:"program"`
	PoAttainment map[string]*PoAttainment `json:"po_attainment"`
}

// CourseAttainment is the CO aggregation result for a course.
type CourseAttainment struct {
	Course       Course          `json:"course"`
	CoAttainment CoAttainmentMap `json:"co_attainment"`
}

// StudentAttainment is the per-student CO aggregation across enrollments.
type StudentAttainment struct {
	Student      Student         `json:"student"`
	CoAttainment CoAttainmentMap `json:"co_attainment"`
}
