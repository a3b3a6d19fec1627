package models

// AppData is the role-scoped bootstrap snapshot a client loads on startup.
// Slices are pre-filtered to the caller's visibility.
type AppData struct {
	Colleges []College       `json:"colleges"`
	Programs []Program       `json:"programs"`
	Batches  []Batch         `json:"batches"`
	Sections []Section       `json:"sections"`
	Courses  []Course        `json:"courses"`
	Students []Student       `json:"students"`
	Settings *SystemSettings `json:"settings,omitempty"`
	User     UserInfo        `json:"user"`
}
