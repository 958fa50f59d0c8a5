// Package hierarchy holds the in-memory note hierarchy: groups containing
// subgroups and ideas, plus the reminders created from them. The Store is
// the single shared mutable structure of the engine; everything handed out
// of it is a deep copy.
package hierarchy

import "time"

// Idea is a single piece of note content.
type Idea struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is a cached, lazily generated description of a container's ideas.
// It is cleared whenever the container's idea set changes or the container
// is renamed, and regenerated by an external collaborator.
type Summary struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Subgroup is a second-level container owned by exactly one Group.
// Its name is unique case-insensitively within the parent.
type Subgroup struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Ideas   []Idea   `json:"ideas"`
	Summary *Summary `json:"summary,omitempty"`
}

// Group is a top-level container. Its name is unique case-insensitively
// across the whole hierarchy. Ideas holds the ideas filed directly under
// the group, outside any subgroup. Subgroups are pointers so that a
// reference stays valid while sibling subgroups are added or removed.
type Group struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Subgroups []*Subgroup `json:"subgroups"`
	Ideas     []Idea      `json:"ideas"`
	Summary   *Summary    `json:"summary,omitempty"`
}

// Reminder is a scheduled notification extracted from a note. After
// creation the engine never touches it again; only the scheduler flips
// Sent when the fire time passes.
type Reminder struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	FireAt  time.Time `json:"fire_at"`
	Sent    bool      `json:"sent"`
	IdeaID  string    `json:"idea_id,omitempty"`
}

func (s Subgroup) clone() Subgroup {
	out := s
	out.Ideas = cloneIdeas(s.Ideas)
	out.Summary = s.Summary.clone()
	return out
}

func (g Group) clone() Group {
	out := g
	out.Ideas = cloneIdeas(g.Ideas)
	out.Summary = g.Summary.clone()
	if g.Subgroups != nil {
		out.Subgroups = make([]*Subgroup, len(g.Subgroups))
		for i, sg := range g.Subgroups {
			c := sg.clone()
			out.Subgroups[i] = &c
		}
	}
	return out
}

func (s *Summary) clone() *Summary {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneIdeas(ideas []Idea) []Idea {
	if ideas == nil {
		return nil
	}
	out := make([]Idea, len(ideas))
	copy(out, ideas)
	return out
}
