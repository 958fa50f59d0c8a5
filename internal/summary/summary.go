// Package summary regenerates the cached descriptions the store
// invalidates when a container's ideas change. Generation is pluggable;
// results go back through the store's stale guard, so a summary computed
// from an outdated idea set is discarded instead of installed. A
// content-keyed cache keeps an unchanged idea set from spending model
// quota twice.
package summary

import (
	"context"
	"fmt"
	"strings"
)

// Summarizer produces a short description of one container's ideas.
// Implementations must be safe for concurrent use.
type Summarizer interface {
	Summarize(ctx context.Context, container string, ideas []string) (string, error)
}

// StaticSummarizer describes a container by listing its ideas, no model
// involved. It backs tests and offline runs.
type StaticSummarizer struct{}

func (StaticSummarizer) Summarize(_ context.Context, container string, ideas []string) (string, error) {
	switch len(ideas) {
	case 0:
		return fmt.Sprintf("%s está vacío.", container), nil
	case 1:
		return fmt.Sprintf("%s: %s.", container, ideas[0]), nil
	}
	listed := ideas
	var tail string
	if len(listed) > 3 {
		tail = fmt.Sprintf(" y %d más", len(listed)-3)
		listed = listed[:3]
	}
	return fmt.Sprintf("%s: %s%s.", container, strings.Join(listed, ", "), tail), nil
}
