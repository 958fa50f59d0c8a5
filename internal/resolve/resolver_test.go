package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "Gimnasio", "gimnasio"},
		{"trim", "  compras  ", "compras"},
		{"collapse whitespace", "dia   de    espalda", "dia de espalda"},
		{"strip accents", "día de espalda", "dia de espalda"},
		{"mixed", "  Día  DE  Espalda ", "dia de espalda"},
		{"accented idea", "hacer bíceps", "hacer biceps"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"tabs and newlines", "vida\tsocial\n", "vida social"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	r := New(0, 0)
	candidates := []Candidate{
		{ID: "1", Name: "Gimnasio"},
		{ID: "2", Name: "Compras"},
		{ID: "3", Name: "Vida Social"},
	}

	t.Run("case insensitive", func(t *testing.T) {
		m, err := r.Resolve("gimnasio", candidates)
		require.NoError(t, err)
		assert.Equal(t, "1", m.ID)
		assert.Equal(t, "Gimnasio", m.Name)
		assert.True(t, m.Exact)
		assert.Equal(t, 1.0, m.Score)
	})

	t.Run("accent insensitive", func(t *testing.T) {
		m, err := r.Resolve("GIMNÁSIO", candidates)
		require.NoError(t, err)
		assert.Equal(t, "1", m.ID)
	})

	t.Run("whitespace insensitive", func(t *testing.T) {
		m, err := r.Resolve("  vida   social ", candidates)
		require.NoError(t, err)
		assert.Equal(t, "3", m.ID)
	})
}

func TestResolve_FuzzyMatch(t *testing.T) {
	r := New(0, 0)
	candidates := []Candidate{
		{ID: "1", Name: "gimnasio"},
		{ID: "2", Name: "finanzas"},
	}

	t.Run("single edit resolves", func(t *testing.T) {
		// "gimnasios" vs "gimnasio": dist 1, maxLen 9, score 0.888...
		m, err := r.Resolve("gimnasios", candidates)
		require.NoError(t, err)
		assert.Equal(t, "1", m.ID)
		assert.False(t, m.Exact)
		assert.InDelta(t, 1.0-1.0/9.0, m.Score, 1e-9)
	})

	t.Run("unrelated name is not found", func(t *testing.T) {
		_, err := r.Resolve("viajes", candidates)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty name is not found", func(t *testing.T) {
		_, err := r.Resolve("   ", candidates)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := r.Resolve("gimnasio", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	// With a 10-rune candidate, one edit scores exactly 0.9. The threshold
	// is inclusive: a score equal to it resolves, one below does not.
	candidates := []Candidate{{ID: "1", Name: "abcdefghij"}}

	t.Run("score at threshold resolves", func(t *testing.T) {
		r := New(0.9, 0.03)
		m, err := r.Resolve("abcdefghiX", candidates)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, m.Score, 1e-9)
	})

	t.Run("score below threshold does not", func(t *testing.T) {
		r := New(0.91, 0.03)
		_, err := r.Resolve("abcdefghiX", candidates)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	// A dropped rune reaches the threshold through the length pre-screen,
	// where 1-threshold is not exactly representable; the screen must keep
	// the candidate scorable instead of rounding it away.
	t.Run("one rune short at threshold resolves", func(t *testing.T) {
		r := New(0.9, 0.03)
		m, err := r.Resolve("abcdefghi", candidates)
		require.NoError(t, err)
		assert.Equal(t, "1", m.ID)
		assert.InDelta(t, 0.9, m.Score, 1e-9)
	})

	t.Run("one rune long at threshold resolves", func(t *testing.T) {
		r := New(0.8, 0.03)
		m, err := r.Resolve("abcde", []Candidate{{ID: "5", Name: "abcd"}})
		require.NoError(t, err)
		assert.Equal(t, "5", m.ID)
		assert.InDelta(t, 0.8, m.Score, 1e-9)
	})
}

func TestResolve_Ambiguity(t *testing.T) {
	r := New(0.5, 0.03)

	t.Run("near tie is ambiguous", func(t *testing.T) {
		// Both candidates are one edit away from the query.
		candidates := []Candidate{
			{ID: "1", Name: "gimnasia"},
			{ID: "2", Name: "gimnasioo"},
		}
		_, err := r.Resolve("gimnasio", candidates)
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("clear winner resolves", func(t *testing.T) {
		candidates := []Candidate{
			{ID: "1", Name: "gimnasia"},
			{ID: "2", Name: "finanzas"},
		}
		m, err := r.Resolve("gimnasio", candidates)
		require.NoError(t, err)
		assert.Equal(t, "1", m.ID)
	})

	t.Run("exact tie never resolves", func(t *testing.T) {
		candidates := []Candidate{
			{ID: "1", Name: "nota"},
			{ID: "2", Name: "note"},
		}
		_, err := r.Resolve("nots", candidates)
		assert.ErrorIs(t, err, ErrAmbiguous)
	})
}

func TestMatchesIdea(t *testing.T) {
	r := New(0, 0)

	tests := []struct {
		name   string
		target string
		idea   string
		want   bool
	}{
		{"target inside idea", "bíceps", "hacer bíceps", true},
		{"idea inside target", "hacer bíceps hoy", "hacer bíceps", true},
		{"accent fold both sides", "biceps", "hacer bíceps", true},
		{"identical", "remo con barra", "remo con barra", true},
		{"near identical", "remo con barraa", "remo con barra", true},
		{"unrelated", "pierna", "hacer bíceps", false},
		{"empty target", "", "hacer bíceps", false},
		{"empty idea", "bíceps", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.MatchesIdea(tt.target, tt.idea))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, Similarity("abcd", "abcX"), 1e-9)
}
