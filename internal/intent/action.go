// Package intent turns the loosely typed field bags produced by note
// classification into a closed set of typed mutation commands. Entity
// references are resolved against a hierarchy snapshot here; the applier
// re-checks them against live state when the mutation runs.
package intent

import "time"

// Ref points at a group or subgroup. An empty ID marks an entity that
// does not exist yet and must be created under Name; a zero Ref means
// the reference is absent altogether.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// IsNew reports whether the referenced entity still has to be created.
func (r Ref) IsNew() bool { return r.ID == "" && r.Name != "" }

// IsZero reports whether the reference is absent.
func (r Ref) IsZero() bool { return r.ID == "" && r.Name == "" }

// Kind identifies one of the closed set of actions.
type Kind int

const (
	KindIgnore Kind = iota
	KindCreateIdea
	KindRenameGroup
	KindRenameSubgroup
	KindDeleteGroup
	KindDeleteSubgroup
	KindDeleteIdea
	KindSetReminder
)

var kindNames = map[Kind]string{
	KindIgnore:         "ignore",
	KindCreateIdea:     "create_idea",
	KindRenameGroup:    "rename_group",
	KindRenameSubgroup: "rename_subgroup",
	KindDeleteGroup:    "delete_group",
	KindDeleteSubgroup: "delete_subgroup",
	KindDeleteIdea:     "delete_idea",
	KindSetReminder:    "set_reminder",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one fully resolved mutation command. The set of
// implementations in this package is closed; the applier switches over
// them exhaustively.
type Action interface {
	Kind() Kind
	isAction()
}

// CreateIdea files an idea under Group (and Subgroup when set), creating
// either container first if its Ref is new. An empty Text creates the
// containers without adding an idea.
type CreateIdea struct {
	Group              Ref
	Subgroup           Ref
	Text               string
	InheritParentIdeas bool
}

// RenameGroup gives an existing group a new display name in place.
type RenameGroup struct {
	Target  Ref
	NewName string
}

// RenameSubgroup gives a subgroup of Group a new display name in place.
type RenameSubgroup struct {
	Group   Ref
	Target  Ref
	NewName string
}

// DeleteGroup removes a group and everything it contains.
type DeleteGroup struct {
	Target Ref
}

// DeleteSubgroup removes one subgroup of Group, with its ideas.
type DeleteSubgroup struct {
	Group  Ref
	Target Ref
}

// DeleteIdea removes every idea matching MatchText. Scope narrows with
// the refs: Subgroup set limits matching to it, Group alone covers the
// group and its subgroups, both zero sweeps the whole hierarchy.
type DeleteIdea struct {
	Group     Ref
	Subgroup  Ref
	MatchText string
}

// SetReminder schedules a one-shot reminder. FireAt was computed from
// the raw expression at resolve time; Expr keeps the original wording
// for the record.
type SetReminder struct {
	Group    Ref
	IdeaText string
	FireAt   time.Time
	Expr     string
}

// Ignore is the terminal no-op for notes or fragments that produced
// nothing actionable. It is a result, not an error.
type Ignore struct {
	Reason string
}

func (CreateIdea) Kind() Kind     { return KindCreateIdea }
func (RenameGroup) Kind() Kind    { return KindRenameGroup }
func (RenameSubgroup) Kind() Kind { return KindRenameSubgroup }
func (DeleteGroup) Kind() Kind    { return KindDeleteGroup }
func (DeleteSubgroup) Kind() Kind { return KindDeleteSubgroup }
func (DeleteIdea) Kind() Kind     { return KindDeleteIdea }
func (SetReminder) Kind() Kind    { return KindSetReminder }
func (Ignore) Kind() Kind         { return KindIgnore }

func (CreateIdea) isAction()     {}
func (RenameGroup) isAction()    {}
func (RenameSubgroup) isAction() {}
func (DeleteGroup) isAction()    {}
func (DeleteSubgroup) isAction() {}
func (DeleteIdea) isAction()     {}
func (SetReminder) isAction()    {}
func (Ignore) isAction()         {}
