package apply

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/internal/resolve"
	"github.com/Gopher0727/Ideario/utils/snowflake"
)

func newPropApplier(rt *rapid.T) (*Applier, *hierarchy.Store) {
	gen, err := snowflake.NewGenerator(snowflake.Config{WorkerID: 1})
	if err != nil {
		rt.Fatalf("snowflake generator: %v", err)
	}
	store := hierarchy.NewStore(gen)
	return New(store, nil), store
}

// Property: No sequence of creates, whatever mix of stale ids and spelling
// variants the refs carry, ever duplicates a container; every create that
// carries text files its idea, repeats included
func TestProperty_ApplyFoldsContainersOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property test in short mode")
	}

	groups := [][]string{
		{"gimnasio", "Gimnasio", "GIMNASIO", "gimnásio"},
		{"compras", "Compras", " compras "},
		{"viajes", "Viajes", "viajés"},
	}
	subs := [][]string{
		{"dia de espalda", "Día de Espalda", "dia  de  espalda"},
		{"pierna", "Pierna"},
	}
	ideaPool := []string{"hacer bíceps", "remo con barra", "comprar pan", "reservar hotel"}

	rapid.Check(t, func(rt *rapid.T) {
		a, store := newPropApplier(rt)

		wantIdeas := 0
		numOps := rapid.IntRange(1, 60).Draw(rt, "numOps")
		for i := 0; i < numOps; i++ {
			fam := rapid.IntRange(0, len(groups)-1).Draw(rt, fmt.Sprintf("fam_%d", i))
			variant := rapid.IntRange(0, len(groups[fam])-1).Draw(rt, fmt.Sprintf("variant_%d", i))
			act := intent.CreateIdea{Group: intent.Ref{Name: groups[fam][variant]}}

			// Poison some refs with ids that never existed; the name
			// fallback must still land on the right group.
			if rapid.Bool().Draw(rt, fmt.Sprintf("stale_%d", i)) {
				act.Group.ID = fmt.Sprintf("stale_%d", i)
			}
			if rapid.Bool().Draw(rt, fmt.Sprintf("hasSub_%d", i)) {
				sf := rapid.IntRange(0, len(subs)-1).Draw(rt, fmt.Sprintf("subFam_%d", i))
				sv := rapid.IntRange(0, len(subs[sf])-1).Draw(rt, fmt.Sprintf("subVariant_%d", i))
				act.Subgroup = intent.Ref{Name: subs[sf][sv]}
			}
			if rapid.Bool().Draw(rt, fmt.Sprintf("hasIdea_%d", i)) {
				pick := rapid.IntRange(0, len(ideaPool)-1).Draw(rt, fmt.Sprintf("idea_%d", i))
				act.Text = ideaPool[pick]
				wantIdeas++
			}

			res := a.Apply(act)
			if res.Kind != "create_idea" {
				rt.Fatalf("Create degraded to %s (%s)", res.Kind, res.Reason)
			}
		}

		snap := store.Snapshot()

		// Property 1: Never more groups than distinct families
		if len(snap) > len(groups) {
			rt.Fatalf("Expected at most %d groups, got %d", len(groups), len(snap))
		}

		// Property 2: Normalized container names stay unique
		seen := make(map[string]bool)
		for _, g := range snap {
			key := resolve.Normalize(g.Name)
			if seen[key] {
				rt.Fatalf("Duplicate group %q", g.Name)
			}
			seen[key] = true
			subSeen := make(map[string]bool)
			for _, sg := range g.Subgroups {
				sk := resolve.Normalize(sg.Name)
				if subSeen[sk] {
					rt.Fatalf("Duplicate subgroup %q in %q", sg.Name, g.Name)
				}
				subSeen[sk] = true
			}
		}

		// Property 3: Every create that carried text filed an idea;
		// resubmitting a text files it again instead of folding
		gotIdeas := 0
		for _, g := range snap {
			gotIdeas += len(g.Ideas)
			for _, sg := range g.Subgroups {
				gotIdeas += len(sg.Ideas)
			}
		}
		if gotIdeas != wantIdeas {
			rt.Fatalf("Expected %d filed ideas, got %d", wantIdeas, gotIdeas)
		}
	})
}

// Property: Deletes and renames never create anything, whether or not
// their targets still exist; the group count can only shrink or hold
func TestProperty_DeletesNeverCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property test in short mode")
	}

	rapid.Check(t, func(rt *rapid.T) {
		a, store := newPropApplier(rt)

		numGroups := rapid.IntRange(1, 6).Draw(rt, "numGroups")
		err := store.Update(func(tx *hierarchy.Tx) error {
			for i := 0; i < numGroups; i++ {
				g, err := tx.CreateGroup(fmt.Sprintf("group_%d", i))
				if err != nil {
					return err
				}
				numIdeas := rapid.IntRange(0, 3).Draw(rt, fmt.Sprintf("ideas_%d", i))
				for j := 0; j < numIdeas; j++ {
					if _, err := tx.AddIdea(g, nil, fmt.Sprintf("idea_%d_%d", i, j)); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			rt.Fatalf("build failed: %v", err)
		}

		prev := len(store.Snapshot())
		numOps := rapid.IntRange(1, 20).Draw(rt, "numOps")
		for i := 0; i < numOps; i++ {
			// Target names beyond the built range so some operations
			// hit groups that never existed.
			target := fmt.Sprintf("group_%d", rapid.IntRange(0, numGroups+2).Draw(rt, fmt.Sprintf("target_%d", i)))

			var act intent.Action
			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("op_%d", i)) {
			case 0:
				act = intent.DeleteGroup{Target: intent.Ref{Name: target}}
			case 1:
				act = intent.DeleteIdea{MatchText: fmt.Sprintf("idea_%d", i)}
			default:
				act = intent.RenameGroup{Target: intent.Ref{Name: target}, NewName: fmt.Sprintf("renamed_%d", i)}
			}

			res := a.Apply(act)

			// Property 1: A delete or rename never reports a creation
			if res.NewGroup || res.NewSubgroup || res.CreatedIdea != "" {
				rt.Fatalf("Non-create action %s reported a creation: %+v", res.Kind, res)
			}

			// Property 2: The group count never grows
			cur := len(store.Snapshot())
			if cur > prev {
				rt.Fatalf("Group count grew from %d to %d after %s", prev, cur, res.Kind)
			}
			prev = cur
		}
	})
}
