package hierarchy

import (
	"fmt"
	"strings"
)

// Digest is the compact, name-only description of the hierarchy handed to
// the classification capability. It deliberately carries no idea content,
// only enough for the model to decide new-vs-existing.
type Digest struct {
	Groups []GroupDigest `json:"groups"`
}

// GroupDigest describes one group by name, subgroup names and total idea
// count (direct ideas plus those in subgroups).
type GroupDigest struct {
	Name      string   `json:"name"`
	Subgroups []string `json:"subgroups,omitempty"`
	IdeaCount int      `json:"idea_count"`
}

// Digest builds the current hierarchy digest under the shared lock.
func (s *Store) Digest() Digest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := Digest{}
	for _, g := range s.groups {
		gd := GroupDigest{Name: g.Name, IdeaCount: len(g.Ideas)}
		for _, sg := range g.Subgroups {
			gd.Subgroups = append(gd.Subgroups, sg.Name)
			gd.IdeaCount += len(sg.Ideas)
		}
		d.Groups = append(d.Groups, gd)
	}
	return d
}

// Empty reports whether the hierarchy has no groups at all.
func (d Digest) Empty() bool { return len(d.Groups) == 0 }

// String renders the digest as one line per group, the form embedded in
// classification prompts. The placeholder for an empty hierarchy matches
// the prompt's few-shot examples.
func (d Digest) String() string {
	if d.Empty() {
		return "(sin grupos)"
	}
	var b strings.Builder
	for _, g := range d.Groups {
		fmt.Fprintf(&b, "- %s (%d ideas)", g.Name, g.IdeaCount)
		if len(g.Subgroups) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(g.Subgroups, ", "))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
