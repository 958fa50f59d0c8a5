package apply

import "time"

// ActionResult records what one applied action actually did, with names
// as they stand after the mutation. Results for a note keep the order
// of the actions that produced them.
type ActionResult struct {
	Kind     string `json:"kind"`
	Group    string `json:"group,omitempty"`
	Subgroup string `json:"subgroup,omitempty"`

	// NewGroup and NewSubgroup report containers created by this very
	// action, after any folding into concurrently created entities.
	NewGroup    bool `json:"new_group,omitempty"`
	NewSubgroup bool `json:"new_subgroup,omitempty"`

	CreatedIdea  string    `json:"created_idea,omitempty"`
	DeletedCount int       `json:"deleted_count,omitempty"`
	FireAt       time.Time `json:"fire_at,omitzero"`
	Reason       string    `json:"reason,omitempty"`
}
