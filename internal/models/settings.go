package models

// SystemSettings is the singleton defaults row applied to new courses.
type SystemSettings struct {
	ID                      int `db:"id" json:"id"`
	DefaultCoTarget         int `db:"default_co_target" json:"default_co_target"`
	DefaultAttainmentLevel3 int `db:"default_attainment_level3" json:"default_attainment_level3"`
	DefaultAttainmentLevel2 int `db:"default_attainment_level2" json:"default_attainment_level2"`
	DefaultAttainmentLevel1 int `db:"default_attainment_level1" json:"default_attainment_level1"`
	DefaultWeightDirect     int `db:"default_weight_direct" json:"default_weight_direct"`
	DefaultWeightIndirect   int `db:"default_weight_indirect" json:"default_weight_indirect"`
}
