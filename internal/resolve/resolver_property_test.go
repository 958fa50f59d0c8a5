package resolve

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Variants of a name that differ only in case, accents or surrounding
// whitespace must resolve to the same entity.
func TestProperty_NormalizedEqualNamesResolveAlike(t *testing.T) {
	properties := gopter.NewProperties(nil)

	names := []string{"gimnasio", "día de espalda", "compras", "vida social", "finanzas"}

	properties.Property("case and padding variants resolve to the same entity", prop.ForAll(
		func(idx int, upper bool, padLeft, padRight int) bool {
			candidates := make([]Candidate, len(names))
			for i, n := range names {
				candidates[i] = Candidate{ID: string(rune('a' + i)), Name: n}
			}
			r := New(0, 0)

			base := names[idx]
			variant := base
			if upper {
				variant = strings.ToUpper(variant)
			}
			variant = strings.Repeat(" ", padLeft) + variant + strings.Repeat(" ", padRight)

			want, err1 := r.Resolve(base, candidates)
			got, err2 := r.Resolve(variant, candidates)
			if err1 != nil || err2 != nil {
				return false
			}
			return want.ID == got.ID && got.Exact
		},
		gen.IntRange(0, len(names)-1),
		gen.Bool(),
		gen.IntRange(0, 3),
		gen.IntRange(0, 3),
	))

	properties.Property("normalization is idempotent", prop.ForAll(
		func(s string) bool {
			once := Normalize(s)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ResolveNeverInventsCandidates(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a returned match is always one of the candidates", prop.ForAll(
		func(query string, names []string) bool {
			candidates := make([]Candidate, len(names))
			known := make(map[string]bool, len(names))
			for i, n := range names {
				id := string(rune('a' + i%26))
				candidates[i] = Candidate{ID: id, Name: n}
				known[id] = true
			}
			r := New(0, 0)

			m, err := r.Resolve(query, candidates)
			if err != nil {
				return err == ErrNotFound || err == ErrAmbiguous
			}
			return known[m.ID] && m.Score >= DefaultThreshold-scoreEpsilon
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("resolving a candidate's own name is always exact", prop.ForAll(
		func(names []string) bool {
			seen := make(map[string]bool)
			var candidates []Candidate
			for i, n := range names {
				key := Normalize(n)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				candidates = append(candidates, Candidate{ID: string(rune('a' + i%26)), Name: n})
			}
			r := New(0, 0)

			for _, c := range candidates {
				m, err := r.Resolve(c.Name, candidates)
				if err != nil || !m.Exact || Normalize(m.Name) != Normalize(c.Name) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
