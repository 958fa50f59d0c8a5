package intent

import "strings"

// RawIntent is one element of a classification reply: a loosely typed
// bag of fields describing what the note asked for. A note mentioning
// several targets classifies into several RawIntents, one per target.
//
// The is-new flags are hints only. Resolution against the hierarchy
// snapshot decides new-vs-existing: a name that resolves folds into the
// existing entity even when flagged new, and a name that does not
// resolve is created even when flagged existing.
type RawIntent struct {
	// Action is the verb, "add" or "delete". Empty means "add".
	Action string `json:"action,omitempty"`
	// MakesSense is false when the note is noise (random keys, greetings
	// aimed at the assistant). Omitted means true.
	MakesSense *bool  `json:"makes_sense,omitempty"`
	Reason     string `json:"reason,omitempty"`

	Group    string `json:"group,omitempty"`
	Subgroup string `json:"subgroup,omitempty"`
	Idea     string `json:"idea,omitempty"`

	IsNewGroup         bool `json:"is_new_group,omitempty"`
	IsNewSubgroup      bool `json:"is_new_subgroup,omitempty"`
	InheritParentIdeas bool `json:"inherit_parent_ideas,omitempty"`

	// RenameGroup and RenameSubgroup ride along with an add when a new
	// entity collides with an established name, or stand alone for an
	// explicit rename request. RenameSubgroup is scoped to Group.
	RenameGroup    *RenamePair `json:"rename_group,omitempty"`
	RenameSubgroup *RenamePair `json:"rename_subgroup,omitempty"`

	// Remind carries the raw "when" wording of a reminder request,
	// e.g. "en 2 horas". Parsed during resolution.
	Remind string `json:"remind,omitempty"`
}

// RenamePair names an entity before and after a rename.
type RenamePair struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// Sensible reports the makes-sense flag, defaulting to true when the
// classifier omitted it.
func (r RawIntent) Sensible() bool {
	return r.MakesSense == nil || *r.MakesSense
}

// IsDelete reports whether the intent asks to remove something. The
// verb is matched loosely; classifiers are not trusted to emit it in
// canonical form.
func (r RawIntent) IsDelete() bool {
	return strings.EqualFold(strings.TrimSpace(r.Action), ActionDelete)
}

// Action verbs accepted in RawIntent. Anything else resolves to Ignore.
const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)
