package hierarchy

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Gopher0727/Ideario/internal/resolve"
	"github.com/Gopher0727/Ideario/utils/snowflake"
)

var (
	ErrNameTaken = errors.New("name already in use")
	ErrEmptyName = errors.New("empty name")
)

// timeNow is swapped out in tests for deterministic timestamps.
var timeNow = time.Now

// Store owns the whole hierarchy behind one coarse lock. The hierarchy is
// small and request volume is human-scale, so a single RWMutex over the
// whole tree is the right tradeoff; there is no per-group locking.
//
// All mutations go through Update, which runs the given function under the
// exclusive lock so that a multi-step action (re-resolve, create, append,
// invalidate summaries) is atomic with respect to concurrent notes. Reads
// (Snapshot, Reminders, Digest) take the shared lock and return deep
// copies, never live pointers.
type Store struct {
	mu        sync.RWMutex
	groups    []*Group
	reminders []*Reminder
	ids       *snowflake.Generator
}

// NewStore creates an empty hierarchy. The generator provides IDs for
// every entity created through the store and must not be nil.
func NewStore(ids *snowflake.Generator) *Store {
	return &Store{ids: ids}
}

// Tx gives mutation primitives access to the tree while the exclusive
// lock is held. A Tx is only valid inside the Update callback that
// produced it; holding on to it, or to any pointer obtained from it,
// after Update returns is a bug.
type Tx struct {
	s *Store
}

// Update runs fn under the exclusive lock.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

// Snapshot returns a consistent deep copy of all groups, suitable for
// resolving intents without holding the lock.
func (s *Store) Snapshot() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.clone()
	}
	return out
}

// Reminders returns copies of all reminders, in creation order.
func (s *Store) Reminders() []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reminder, len(s.reminders))
	for i, r := range s.reminders {
		out[i] = *r
	}
	return out
}

// Groups exposes the live group list for re-resolution at apply time.
func (tx *Tx) Groups() []*Group {
	return tx.s.groups
}

// FindGroup looks a group up by normalized name.
func (tx *Tx) FindGroup(name string) *Group {
	key := resolve.Normalize(name)
	if key == "" {
		return nil
	}
	for _, g := range tx.s.groups {
		if resolve.Normalize(g.Name) == key {
			return g
		}
	}
	return nil
}

// CreateGroup adds a group with the given display name. If the normalized
// name is already taken the existing group is returned instead: a create
// that races an identical create folds into one entity rather than
// producing a case-variant duplicate.
func (tx *Tx) CreateGroup(name string) (*Group, error) {
	if resolve.Normalize(name) == "" {
		return nil, ErrEmptyName
	}
	if g := tx.FindGroup(name); g != nil {
		return g, nil
	}
	id, err := tx.newID()
	if err != nil {
		return nil, err
	}
	g := &Group{ID: id, Name: name}
	tx.s.groups = append(tx.s.groups, g)
	return g, nil
}

// RenameGroup changes a group's display name in place, preserving its ID,
// subgroups and ideas. Renaming onto another group's name fails with
// ErrNameTaken; changing only case or accents of the same group is
// allowed. The cached summary is invalidated because summaries usually
// mention the container's name.
func (tx *Tx) RenameGroup(g *Group, newName string) error {
	if resolve.Normalize(newName) == "" {
		return ErrEmptyName
	}
	if other := tx.FindGroup(newName); other != nil && other != g {
		return fmt.Errorf("rename %q to %q: %w", g.Name, newName, ErrNameTaken)
	}
	g.Name = newName
	g.Summary = nil
	return nil
}

// DeleteGroup removes a group and everything it contains.
func (tx *Tx) DeleteGroup(g *Group) {
	for i, cur := range tx.s.groups {
		if cur == g {
			tx.s.groups = append(tx.s.groups[:i], tx.s.groups[i+1:]...)
			return
		}
	}
}

// FindSubgroup looks a subgroup up by normalized name within its parent.
func (tx *Tx) FindSubgroup(g *Group, name string) *Subgroup {
	key := resolve.Normalize(name)
	if key == "" {
		return nil
	}
	for _, sg := range g.Subgroups {
		if resolve.Normalize(sg.Name) == key {
			return sg
		}
	}
	return nil
}

// CreateSubgroup adds a subgroup under g, folding into an existing one on
// a normalized-name collision. With inherit set, the parent's direct
// ideas are copied into the new subgroup as fresh ideas; the parent keeps
// its own.
func (tx *Tx) CreateSubgroup(g *Group, name string, inherit bool) (*Subgroup, error) {
	if resolve.Normalize(name) == "" {
		return nil, ErrEmptyName
	}
	if sg := tx.FindSubgroup(g, name); sg != nil {
		return sg, nil
	}
	id, err := tx.newID()
	if err != nil {
		return nil, err
	}
	sg := &Subgroup{ID: id, Name: name}
	if inherit {
		for _, parent := range g.Ideas {
			ideaID, err := tx.newID()
			if err != nil {
				return nil, err
			}
			sg.Ideas = append(sg.Ideas, Idea{ID: ideaID, Text: parent.Text, CreatedAt: timeNow()})
		}
	}
	g.Subgroups = append(g.Subgroups, sg)
	return sg, nil
}

// RenameSubgroup mirrors RenameGroup, scoped to the parent group.
func (tx *Tx) RenameSubgroup(g *Group, sg *Subgroup, newName string) error {
	if resolve.Normalize(newName) == "" {
		return ErrEmptyName
	}
	if other := tx.FindSubgroup(g, newName); other != nil && other != sg {
		return fmt.Errorf("rename %q to %q: %w", sg.Name, newName, ErrNameTaken)
	}
	sg.Name = newName
	sg.Summary = nil
	return nil
}

// DeleteSubgroup removes a subgroup and its ideas from the parent.
func (tx *Tx) DeleteSubgroup(g *Group, sg *Subgroup) {
	for i, cur := range g.Subgroups {
		if cur == sg {
			g.Subgroups = append(g.Subgroups[:i], g.Subgroups[i+1:]...)
			return
		}
	}
}

// AddIdea appends an idea to sg when non-nil, otherwise directly to g,
// and invalidates the summary of the container whose idea set changed.
func (tx *Tx) AddIdea(g *Group, sg *Subgroup, text string) (Idea, error) {
	id, err := tx.newID()
	if err != nil {
		return Idea{}, err
	}
	idea := Idea{ID: id, Text: text, CreatedAt: timeNow()}
	if sg != nil {
		sg.Ideas = append(sg.Ideas, idea)
		sg.Summary = nil
	} else {
		g.Ideas = append(g.Ideas, idea)
		g.Summary = nil
	}
	return idea, nil
}

// DeleteIdeas removes every idea the match function accepts and reports
// the count. Scope narrows with the arguments: a subgroup limits matching
// to that subgroup, a group alone covers its direct ideas and all of its
// subgroups, and nil/nil sweeps the entire hierarchy. Summaries are
// invalidated only for containers that actually lost ideas.
func (tx *Tx) DeleteIdeas(g *Group, sg *Subgroup, match func(Idea) bool) int {
	if sg != nil {
		return deleteFromSubgroup(sg, match)
	}
	if g != nil {
		return deleteFromGroup(g, match)
	}
	total := 0
	for _, cur := range tx.s.groups {
		total += deleteFromGroup(cur, match)
	}
	return total
}

func deleteFromGroup(g *Group, match func(Idea) bool) int {
	kept := g.Ideas[:0]
	removed := 0
	for _, idea := range g.Ideas {
		if match(idea) {
			removed++
			continue
		}
		kept = append(kept, idea)
	}
	g.Ideas = kept
	if removed > 0 {
		g.Summary = nil
	}
	for _, sg := range g.Subgroups {
		removed += deleteFromSubgroup(sg, match)
	}
	return removed
}

func deleteFromSubgroup(sg *Subgroup, match func(Idea) bool) int {
	kept := sg.Ideas[:0]
	removed := 0
	for _, idea := range sg.Ideas {
		if match(idea) {
			removed++
			continue
		}
		kept = append(kept, idea)
	}
	sg.Ideas = kept
	if removed > 0 {
		sg.Summary = nil
	}
	return removed
}

// FindIdea returns the first idea in the group, direct or in a subgroup,
// accepted by the match function.
func (tx *Tx) FindIdea(g *Group, match func(Idea) bool) (Idea, bool) {
	for _, idea := range g.Ideas {
		if match(idea) {
			return idea, true
		}
	}
	for _, sg := range g.Subgroups {
		for _, idea := range sg.Ideas {
			if match(idea) {
				return idea, true
			}
		}
	}
	return Idea{}, false
}

// SetSummaryIf installs a generated summary on the container named by
// group (and subgroup, when non-empty), but only if the container's idea
// texts still equal the snapshot the summary was generated from. It
// reports whether the summary was installed; false means the container
// changed or disappeared while the text was being generated and the
// stale summary was discarded.
func (tx *Tx) SetSummaryIf(group, subgroup, text string, ideas []string) bool {
	g := tx.FindGroup(group)
	if g == nil {
		return false
	}
	if subgroup != "" {
		sg := tx.FindSubgroup(g, subgroup)
		if sg == nil || !sameTexts(sg.Ideas, ideas) {
			return false
		}
		sg.Summary = &Summary{Text: text, GeneratedAt: timeNow()}
		return true
	}
	if !sameTexts(g.Ideas, ideas) {
		return false
	}
	g.Summary = &Summary{Text: text, GeneratedAt: timeNow()}
	return true
}

func sameTexts(ideas []Idea, texts []string) bool {
	if len(ideas) != len(texts) {
		return false
	}
	for i, idea := range ideas {
		if idea.Text != texts[i] {
			return false
		}
	}
	return true
}

// AddReminder records a reminder. The engine never mutates it afterwards.
func (tx *Tx) AddReminder(message string, fireAt time.Time, ideaID string) (Reminder, error) {
	id, err := tx.newID()
	if err != nil {
		return Reminder{}, err
	}
	r := &Reminder{ID: id, Message: message, FireAt: fireAt, IdeaID: ideaID}
	tx.s.reminders = append(tx.s.reminders, r)
	return *r, nil
}

// CollectDue marks every unsent reminder with a fire time at or before
// now as sent and returns copies of them, in creation order. Marking
// happens in the same critical section as collection so a reminder can
// never be dispatched twice.
func (tx *Tx) CollectDue(now time.Time) []Reminder {
	var due []Reminder
	for _, r := range tx.s.reminders {
		if !r.Sent && !r.FireAt.After(now) {
			r.Sent = true
			due = append(due, *r)
		}
	}
	return due
}

func (tx *Tx) newID() (string, error) {
	id, err := tx.s.ids.NextID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}
