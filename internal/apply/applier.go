// Package apply executes resolved actions against the hierarchy store.
//
// Each action runs in its own store transaction. References were resolved
// against a snapshot that may be stale by the time the lock is held, so
// every apply re-checks them against live state: a container that has
// appeared under the same normalized name in the meantime is folded into
// rather than duplicated, and a target that has vanished degrades that one
// action to an ignore instead of failing the note.
package apply

import (
	"fmt"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/internal/resolve"
)

// Applier mutates the store according to resolved actions.
type Applier struct {
	store    *hierarchy.Store
	entities *resolve.Resolver
}

// New creates an applier over the given store. The entity resolver is used
// for idea matching on deletes and reminder linking; nil selects default
// matching thresholds.
func New(store *hierarchy.Store, entities *resolve.Resolver) *Applier {
	if entities == nil {
		entities = resolve.New(0, 0)
	}
	return &Applier{store: store, entities: entities}
}

// ApplyAll applies the actions in order and returns one result per action.
func (a *Applier) ApplyAll(actions []intent.Action) []ActionResult {
	results := make([]ActionResult, len(actions))
	for i, act := range actions {
		results[i] = a.Apply(act)
	}
	return results
}

// Apply runs a single action in one store transaction and reports what
// actually happened. A target that no longer exists, or a rename onto a
// taken name, turns the result into an ignore with the reason filled in;
// Apply itself never fails.
func (a *Applier) Apply(act intent.Action) ActionResult {
	if ig, ok := act.(intent.Ignore); ok {
		return ActionResult{Kind: ig.Kind().String(), Reason: ig.Reason}
	}
	res := ActionResult{Kind: act.Kind().String()}
	err := a.store.Update(func(tx *hierarchy.Tx) error {
		switch v := act.(type) {
		case intent.CreateIdea:
			return a.applyCreate(tx, v, &res)
		case intent.RenameGroup:
			return a.applyRenameGroup(tx, v, &res)
		case intent.RenameSubgroup:
			return a.applyRenameSubgroup(tx, v, &res)
		case intent.DeleteGroup:
			return a.applyDeleteGroup(tx, v, &res)
		case intent.DeleteSubgroup:
			return a.applyDeleteSubgroup(tx, v, &res)
		case intent.DeleteIdea:
			return a.applyDeleteIdea(tx, v, &res)
		case intent.SetReminder:
			return a.applySetReminder(tx, v, &res)
		default:
			return fmt.Errorf("unhandled action kind %s", act.Kind())
		}
	})
	if err != nil {
		return ActionResult{Kind: intent.KindIgnore.String(), Reason: err.Error()}
	}
	return res
}

func (a *Applier) applyCreate(tx *hierarchy.Tx, v intent.CreateIdea, res *ActionResult) error {
	if v.Group.IsZero() {
		return fmt.Errorf("create without a destination group")
	}
	g := lookupGroup(tx, v.Group)
	if g == nil {
		created, err := tx.CreateGroup(v.Group.Name)
		if err != nil {
			return err
		}
		g = created
		res.NewGroup = true
	}
	res.Group = g.Name

	var sg *hierarchy.Subgroup
	if !v.Subgroup.IsZero() {
		sg = lookupSubgroup(tx, g, v.Subgroup)
		if sg == nil {
			created, err := tx.CreateSubgroup(g, v.Subgroup.Name, v.InheritParentIdeas)
			if err != nil {
				return err
			}
			sg = created
			res.NewSubgroup = true
		}
		res.Subgroup = sg.Name
	}

	if v.Text == "" {
		return nil
	}
	// Only containers fold; a repeated text files again as its own idea.
	idea, err := tx.AddIdea(g, sg, v.Text)
	if err != nil {
		return err
	}
	res.CreatedIdea = idea.Text
	return nil
}

func (a *Applier) applyRenameGroup(tx *hierarchy.Tx, v intent.RenameGroup, res *ActionResult) error {
	g := lookupGroup(tx, v.Target)
	if g == nil {
		return fmt.Errorf("group %q no longer exists", v.Target.Name)
	}
	if err := tx.RenameGroup(g, v.NewName); err != nil {
		return err
	}
	res.Group = g.Name
	return nil
}

func (a *Applier) applyRenameSubgroup(tx *hierarchy.Tx, v intent.RenameSubgroup, res *ActionResult) error {
	g := lookupGroup(tx, v.Group)
	if g == nil {
		return fmt.Errorf("group %q no longer exists", v.Group.Name)
	}
	sg := lookupSubgroup(tx, g, v.Target)
	if sg == nil {
		return fmt.Errorf("subgroup %q no longer exists in %q", v.Target.Name, g.Name)
	}
	if err := tx.RenameSubgroup(g, sg, v.NewName); err != nil {
		return err
	}
	res.Group = g.Name
	res.Subgroup = sg.Name
	return nil
}

func (a *Applier) applyDeleteGroup(tx *hierarchy.Tx, v intent.DeleteGroup, res *ActionResult) error {
	g := lookupGroup(tx, v.Target)
	if g == nil {
		return fmt.Errorf("group %q no longer exists", v.Target.Name)
	}
	count := len(g.Ideas)
	for _, sg := range g.Subgroups {
		count += len(sg.Ideas)
	}
	tx.DeleteGroup(g)
	res.Group = g.Name
	res.DeletedCount = count
	return nil
}

func (a *Applier) applyDeleteSubgroup(tx *hierarchy.Tx, v intent.DeleteSubgroup, res *ActionResult) error {
	g := lookupGroup(tx, v.Group)
	if g == nil {
		return fmt.Errorf("group %q no longer exists", v.Group.Name)
	}
	sg := lookupSubgroup(tx, g, v.Target)
	if sg == nil {
		return fmt.Errorf("subgroup %q no longer exists in %q", v.Target.Name, g.Name)
	}
	count := len(sg.Ideas)
	tx.DeleteSubgroup(g, sg)
	res.Group = g.Name
	res.Subgroup = sg.Name
	res.DeletedCount = count
	return nil
}

func (a *Applier) applyDeleteIdea(tx *hierarchy.Tx, v intent.DeleteIdea, res *ActionResult) error {
	var g *hierarchy.Group
	var sg *hierarchy.Subgroup
	if !v.Group.IsZero() {
		g = lookupGroup(tx, v.Group)
		if g == nil {
			return fmt.Errorf("group %q no longer exists", v.Group.Name)
		}
		res.Group = g.Name
	}
	if !v.Subgroup.IsZero() {
		if g == nil {
			return fmt.Errorf("subgroup %q referenced without a group", v.Subgroup.Name)
		}
		sg = lookupSubgroup(tx, g, v.Subgroup)
		if sg == nil {
			return fmt.Errorf("subgroup %q no longer exists in %q", v.Subgroup.Name, g.Name)
		}
		res.Subgroup = sg.Name
	}
	res.DeletedCount = tx.DeleteIdeas(g, sg, func(idea hierarchy.Idea) bool {
		return a.entities.MatchesIdea(v.MatchText, idea.Text)
	})
	return nil
}

func (a *Applier) applySetReminder(tx *hierarchy.Tx, v intent.SetReminder, res *ActionResult) error {
	message := v.IdeaText
	if message == "" {
		message = v.Expr
	}
	ideaID := ""
	if !v.Group.IsZero() && v.IdeaText != "" {
		if g := lookupGroup(tx, v.Group); g != nil {
			res.Group = g.Name
			if idea, ok := tx.FindIdea(g, func(idea hierarchy.Idea) bool {
				return a.entities.MatchesIdea(v.IdeaText, idea.Text)
			}); ok {
				ideaID = idea.ID
			}
		}
	}
	if _, err := tx.AddReminder(message, v.FireAt, ideaID); err != nil {
		return err
	}
	res.FireAt = v.FireAt
	return nil
}

// lookupGroup re-resolves a reference against live state: by ID when the
// entity still exists, falling back to the normalized name so that a
// delete-and-recreate or a concurrent identical create still lands on the
// right group.
func lookupGroup(tx *hierarchy.Tx, ref intent.Ref) *hierarchy.Group {
	if ref.ID != "" {
		for _, g := range tx.Groups() {
			if g.ID == ref.ID {
				return g
			}
		}
	}
	return tx.FindGroup(ref.Name)
}

func lookupSubgroup(tx *hierarchy.Tx, g *hierarchy.Group, ref intent.Ref) *hierarchy.Subgroup {
	if g == nil {
		return nil
	}
	if ref.ID != "" {
		for _, sg := range g.Subgroups {
			if sg.ID == ref.ID {
				return sg
			}
		}
	}
	return tx.FindSubgroup(g, ref.Name)
}
