package intent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/remind"
	"github.com/Gopher0727/Ideario/internal/resolve"
)

// Resolver maps raw intents onto typed actions against a hierarchy
// snapshot. It is stateless apart from its knobs and safe for
// concurrent use.
type Resolver struct {
	entities *resolve.Resolver

	// Now supplies the reference time for reminder expressions.
	// Production leaves the default; tests pin it.
	Now func() time.Time
}

// NewResolver builds a Resolver on top of the given entity resolver.
func NewResolver(entities *resolve.Resolver) *Resolver {
	return &Resolver{entities: entities, Now: time.Now}
}

// Resolve maps one raw intent onto its actions. It never fails:
// anything unresolvable becomes an Ignore action carrying the reason,
// so one bad fragment cannot take down the rest of the note.
func (r *Resolver) Resolve(raw RawIntent, snap []hierarchy.Group) []Action {
	if !raw.Sensible() {
		reason := raw.Reason
		if reason == "" {
			reason = "note does not express an actionable idea"
		}
		return []Action{Ignore{Reason: reason}}
	}
	if raw.IsDelete() {
		return []Action{r.resolveDelete(raw, snap)}
	}
	if verb := strings.ToLower(strings.TrimSpace(raw.Action)); verb != "" && verb != ActionAdd {
		return []Action{Ignore{Reason: fmt.Sprintf("unrecognized action %q", raw.Action)}}
	}
	return r.resolveAdd(raw, snap)
}

// resolveDelete picks the narrowest delete that matches the fields
// present: idea text deletes matching ideas, a bare subgroup deletes
// the subgroup, a bare group deletes the group. Deletes never create,
// so an unresolvable target degrades to Ignore instead of NotFound
// being treated as new.
func (r *Resolver) resolveDelete(raw RawIntent, snap []hierarchy.Group) Action {
	if raw.Group == "" {
		if raw.Idea == "" {
			return Ignore{Reason: "delete request names nothing to remove"}
		}
		// No container given: match the idea across the whole hierarchy.
		return DeleteIdea{MatchText: raw.Idea}
	}

	g, err := r.findGroup(raw.Group, snap)
	if err != nil {
		return Ignore{Reason: "cannot delete: " + unresolved("group", raw.Group, err)}
	}
	groupRef := Ref{ID: g.ID, Name: g.Name}

	if raw.Subgroup != "" {
		sg, err := r.findSubgroup(g, raw.Subgroup)
		if err != nil {
			return Ignore{Reason: "cannot delete: " + unresolved("subgroup", raw.Subgroup, err)}
		}
		subRef := Ref{ID: sg.ID, Name: sg.Name}
		if raw.Idea == "" {
			return DeleteSubgroup{Group: groupRef, Target: subRef}
		}
		return DeleteIdea{Group: groupRef, Subgroup: subRef, MatchText: raw.Idea}
	}

	if raw.Idea == "" {
		return DeleteGroup{Target: groupRef}
	}
	return DeleteIdea{Group: groupRef, MatchText: raw.Idea}
}

// resolveAdd emits, in order: any rename riding along, the create (new
// containers and/or the idea), and the reminder. A name that does not
// resolve is filed as a new entity; over-creation beats mis-filing.
func (r *Resolver) resolveAdd(raw RawIntent, snap []hierarchy.Group) []Action {
	var actions []Action

	var groupRef Ref
	var group *hierarchy.Group
	if raw.Group != "" {
		if g, err := r.findGroup(raw.Group, snap); err == nil {
			group = g
			groupRef = Ref{ID: g.ID, Name: g.Name}
		} else {
			groupRef = Ref{Name: raw.Group}
		}
	}

	if raw.RenameGroup != nil {
		actions = append(actions, r.resolveRenameGroup(*raw.RenameGroup, snap))
	}
	if raw.RenameSubgroup != nil {
		actions = append(actions, r.resolveRenameSubgroup(*raw.RenameSubgroup, group, raw.Group))
	}

	var subRef Ref
	if !groupRef.IsZero() && raw.Subgroup != "" {
		if group != nil {
			if sg, err := r.findSubgroup(group, raw.Subgroup); err == nil {
				subRef = Ref{ID: sg.ID, Name: sg.Name}
			} else {
				subRef = Ref{Name: raw.Subgroup}
			}
		} else {
			subRef = Ref{Name: raw.Subgroup}
		}
	}

	switch {
	case raw.Idea != "" && groupRef.IsZero():
		actions = append(actions, Ignore{Reason: "idea has no destination group"})
	case !groupRef.IsZero() && (raw.Idea != "" || groupRef.IsNew() || subRef.IsNew()):
		actions = append(actions, CreateIdea{
			Group:              groupRef,
			Subgroup:           subRef,
			Text:               raw.Idea,
			InheritParentIdeas: raw.InheritParentIdeas && subRef.IsNew(),
		})
	}

	if raw.Remind != "" {
		when, err := remind.Extract(raw.Remind, r.Now())
		if err != nil {
			actions = append(actions, Ignore{Reason: fmt.Sprintf("reminder expression %q not recognized", raw.Remind)})
		} else {
			actions = append(actions, SetReminder{
				Group:    groupRef,
				IdeaText: raw.Idea,
				FireAt:   when,
				Expr:     raw.Remind,
			})
		}
	}

	if len(actions) == 0 {
		actions = append(actions, Ignore{Reason: r.emptyAddReason(groupRef, subRef)})
	}
	return actions
}

func (r *Resolver) resolveRenameGroup(pair RenamePair, snap []hierarchy.Group) Action {
	if pair.OldName == "" || pair.NewName == "" {
		return Ignore{Reason: "rename request is missing a name"}
	}
	g, err := r.findGroup(pair.OldName, snap)
	if err != nil {
		return Ignore{Reason: "cannot rename: " + unresolved("group", pair.OldName, err)}
	}
	return RenameGroup{Target: Ref{ID: g.ID, Name: g.Name}, NewName: pair.NewName}
}

func (r *Resolver) resolveRenameSubgroup(pair RenamePair, group *hierarchy.Group, groupName string) Action {
	if pair.OldName == "" || pair.NewName == "" {
		return Ignore{Reason: "rename request is missing a name"}
	}
	if groupName == "" {
		return Ignore{Reason: "subgroup rename names no parent group"}
	}
	if group == nil {
		return Ignore{Reason: "cannot rename: " + unresolved("group", groupName, resolve.ErrNotFound)}
	}
	sg, err := r.findSubgroup(group, pair.OldName)
	if err != nil {
		return Ignore{Reason: "cannot rename: " + unresolved("subgroup", pair.OldName, err)}
	}
	return RenameSubgroup{
		Group:   Ref{ID: group.ID, Name: group.Name},
		Target:  Ref{ID: sg.ID, Name: sg.Name},
		NewName: pair.NewName,
	}
}

func (r *Resolver) emptyAddReason(groupRef, subRef Ref) string {
	switch {
	case groupRef.IsZero():
		return "note carries nothing to file"
	case !subRef.IsZero():
		return fmt.Sprintf("subgroup %q already exists in %q", subRef.Name, groupRef.Name)
	default:
		return fmt.Sprintf("group %q already exists", groupRef.Name)
	}
}

func (r *Resolver) findGroup(name string, snap []hierarchy.Group) (*hierarchy.Group, error) {
	cands := make([]resolve.Candidate, len(snap))
	for i, g := range snap {
		cands[i] = resolve.Candidate{ID: g.ID, Name: g.Name}
	}
	m, err := r.entities.Resolve(name, cands)
	if err != nil {
		return nil, err
	}
	for i := range snap {
		if snap[i].ID == m.ID {
			return &snap[i], nil
		}
	}
	return nil, resolve.ErrNotFound
}

func (r *Resolver) findSubgroup(g *hierarchy.Group, name string) (*hierarchy.Subgroup, error) {
	cands := make([]resolve.Candidate, len(g.Subgroups))
	for i, sg := range g.Subgroups {
		cands[i] = resolve.Candidate{ID: sg.ID, Name: sg.Name}
	}
	m, err := r.entities.Resolve(name, cands)
	if err != nil {
		return nil, err
	}
	for _, sg := range g.Subgroups {
		if sg.ID == m.ID {
			return sg, nil
		}
	}
	return nil, resolve.ErrNotFound
}

func unresolved(noun, name string, err error) string {
	if errors.Is(err, resolve.ErrAmbiguous) {
		return fmt.Sprintf("%s %q is ambiguous", noun, name)
	}
	return fmt.Sprintf("%s %q not found", noun, name)
}
