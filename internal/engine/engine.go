// Package engine drives one note through the whole pipeline: hierarchy
// digest, classification, safety nets, resolution against a snapshot,
// application, and bookkeeping. Classification never runs under the
// store lock; references resolved here are re-checked at apply time, so
// a stale snapshot costs a fold, not a failure.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/Ideario/internal/apply"
	"github.com/Gopher0727/Ideario/internal/classify"
	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/internal/journal"
	"github.com/Gopher0727/Ideario/internal/metrics"
	"github.com/Gopher0727/Ideario/internal/pkg/logger"
	"github.com/Gopher0727/Ideario/internal/resolve"
)

// Config wires an Engine. Store and Classifier are required; everything
// else has a working zero value.
type Config struct {
	Store      *hierarchy.Store
	Classifier classify.Classifier

	// Entities tunes name matching; nil selects default thresholds.
	Entities *resolve.Resolver
	// Journal records processed notes; nil turns recording off.
	Journal journal.Journal
	// Metrics counts pipeline events; nil turns counting off.
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Engine owns no state of its own; all hierarchy state lives in the
// store, so engines are safe for concurrent use.
type Engine struct {
	store      *hierarchy.Store
	classifier classify.Classifier
	entities   *resolve.Resolver
	applier    *apply.Applier
	journal    journal.Journal
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	if cfg.Classifier == nil {
		return nil, errors.New("engine: classifier is required")
	}
	entities := cfg.Entities
	if entities == nil {
		entities = resolve.New(0, 0)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:      cfg.Store,
		classifier: cfg.Classifier,
		entities:   entities,
		applier:    apply.New(cfg.Store, entities),
		journal:    cfg.Journal,
		metrics:    cfg.Metrics,
		logger:     log,
	}, nil
}

// ProcessNote runs one note end to end and returns one result per
// applied action, in order. It never fails: a classification error
// yields a single Ignore result and anything unresolvable degrades to
// an Ignore carrying the reason. now anchors relative reminder
// expressions such as "en 2 horas".
func (e *Engine) ProcessNote(ctx context.Context, text string, now time.Time) []apply.ActionResult {
	start := time.Now()
	ctx = logger.WithTraceID(ctx, "")
	log := e.logger.With(zap.String("trace_id", logger.GetTraceID(ctx)))

	text = strings.TrimSpace(text)
	if text == "" {
		return e.finish(ctx, log, text, start, ignored("empty note"))
	}

	digest := e.store.Digest().String()
	raws, err := e.classifier.Classify(ctx, text, digest)
	if err != nil {
		e.metrics.ClassificationFailure()
		log.Warn("classification failed", zap.Error(err))
		return e.finish(ctx, log, text, start,
			ignored(fmt.Sprintf("classification failed: %v", err)))
	}
	if len(raws) == 0 {
		e.metrics.ClassificationFailure()
		log.Warn("classification produced no intents")
		return e.finish(ctx, log, text, start, ignored("classification produced no intents"))
	}

	// One snapshot for the whole note: every fragment resolves against
	// the same point-in-time state.
	snap := e.store.Snapshot()
	raws = classify.Sanitize(raws, text, snap)

	res := intent.NewResolver(e.entities)
	res.Now = func() time.Time { return now }

	var actions []intent.Action
	for _, raw := range raws {
		actions = append(actions, res.Resolve(raw, snap)...)
	}
	return e.finish(ctx, log, text, start, e.applier.ApplyAll(actions))
}

func ignored(reason string) []apply.ActionResult {
	return []apply.ActionResult{{Kind: intent.KindIgnore.String(), Reason: reason}}
}

func (e *Engine) finish(ctx context.Context, log *zap.Logger, note string, start time.Time, results []apply.ActionResult) []apply.ActionResult {
	took := time.Since(start)
	e.metrics.ObserveNote(took)
	for _, r := range results {
		e.metrics.ActionApplied(r.Kind)
	}
	if e.journal != nil && note != "" {
		if err := e.journal.Record(ctx, note, results); err != nil {
			log.Warn("journal record failed", zap.Error(err))
		}
	}
	log.Info("note processed",
		zap.Int("actions", len(results)),
		zap.Duration("took", took))
	return results
}
