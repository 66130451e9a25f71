package model

// Stats summarises the stored population.
type Stats struct {
	Players int    `json:"players"`
	Backend string `json:"backend"`
}
