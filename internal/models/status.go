package models

// Choice pairs a status value with its human-readable label. Each status
// enum exposes its full choice set through a static table; there is no
// dynamic dispatch behind labels.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
