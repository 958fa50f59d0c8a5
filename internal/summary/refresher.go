package summary

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gopher0727/Ideario/internal/hierarchy"
)

// maxInFlight caps concurrent generations; the backend quota is small
// and a big hierarchy must not burn it in one burst.
const maxInFlight = 3

// Refresher fills in the summaries the store cleared. It does not decide
// what is stale, the store already did that by clearing them; it only
// walks containers that hold ideas but no summary and generates.
type Refresher struct {
	store      *hierarchy.Store
	summarizer Summarizer
	cache      Cache
	logger     *zap.Logger
}

// NewRefresher builds a refresher. A nil cache gets an in-memory one; a
// nil logger is replaced with a no-op.
func NewRefresher(store *hierarchy.Store, summarizer Summarizer, cache Cache, logger *zap.Logger) *Refresher {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{store: store, summarizer: summarizer, cache: cache, logger: logger}
}

// target is one container due for a summary, captured from a snapshot.
type target struct {
	group    string
	subgroup string
	ideas    []string
}

// RefreshAll regenerates every missing summary and reports how many were
// installed. Stale results (the container changed or vanished while its
// text was being generated) are discarded and not counted. The first
// generation error cancels the remaining work; summaries already
// installed stay.
func (r *Refresher) RefreshAll(ctx context.Context) (int, error) {
	targets := r.missing()
	if len(targets) == 0 {
		return 0, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxInFlight)

	var installed atomic.Int64
	for _, t := range targets {
		eg.Go(func() error {
			ok, err := r.refreshOne(ctx, t)
			if err != nil {
				return err
			}
			if ok {
				installed.Add(1)
			}
			return nil
		})
	}
	err := eg.Wait()
	return int(installed.Load()), err
}

// missing collects the containers holding ideas but no summary.
func (r *Refresher) missing() []target {
	var out []target
	for _, g := range r.store.Snapshot() {
		if g.Summary == nil && len(g.Ideas) > 0 {
			out = append(out, target{group: g.Name, ideas: ideaTexts(g.Ideas)})
		}
		for _, sg := range g.Subgroups {
			if sg.Summary == nil && len(sg.Ideas) > 0 {
				out = append(out, target{group: g.Name, subgroup: sg.Name, ideas: ideaTexts(sg.Ideas)})
			}
		}
	}
	return out
}

func (r *Refresher) refreshOne(ctx context.Context, t target) (bool, error) {
	name := t.group
	if t.subgroup != "" {
		name = t.group + " / " + t.subgroup
	}
	key := ContentKey(name, t.ideas)

	text, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		// A broken cache must not block generation.
		r.logger.Warn("summary cache get failed", zap.Error(err))
		hit = false
	}
	if !hit {
		if text, err = r.summarizer.Summarize(ctx, name, t.ideas); err != nil {
			return false, fmt.Errorf("summarize %q: %w", name, err)
		}
		if err := r.cache.Set(ctx, key, text); err != nil {
			r.logger.Warn("summary cache set failed", zap.Error(err))
		}
	}

	var ok bool
	err = r.store.Update(func(tx *hierarchy.Tx) error {
		ok = tx.SetSummaryIf(t.group, t.subgroup, text, t.ideas)
		return nil
	})
	if err != nil {
		return false, err
	}
	if !ok {
		r.logger.Debug("summary discarded as stale",
			zap.String("group", t.group),
			zap.String("subgroup", t.subgroup),
		)
	}
	return ok, nil
}

func ideaTexts(ideas []hierarchy.Idea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Text
	}
	return out
}
