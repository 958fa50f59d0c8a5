// Package journal keeps a history of processed notes: the raw text that
// came in and the actions that came out. The console's history view
// reads it; nothing in the engine depends on it being there.
package journal

import (
	"context"
	"time"

	"github.com/Gopher0727/Ideario/internal/apply"
)

// Entry is one processed note with its outcome.
type Entry struct {
	ID        int64                `json:"id"`
	Note      string               `json:"note"`
	Results   []apply.ActionResult `json:"results"`
	CreatedAt time.Time            `json:"created_at"`
}

// Journal records processed notes. Implementations must be safe for
// concurrent use. The engine treats a nil Journal as "recording off".
type Journal interface {
	// Record appends one processed note with its results.
	Record(ctx context.Context, note string, results []apply.ActionResult) error

	// Recent returns up to n entries, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
}
