// Package classify turns free-form note text into raw intents through a
// pluggable backend, and runs the shared safety nets over whatever the
// backend produced. The nets exist because model output drifts: groups get
// invented when one already matches, delete phrasing gets classified as an
// add, and creation commands leak into idea texts.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Gopher0727/Ideario/internal/intent"
)

// ErrNoIntent reports a reply that decoded cleanly but held no intent.
var ErrNoIntent = errors.New("no intent in reply")

// Classifier produces the raw intents for one note. The digest describes
// the current hierarchy by names and idea counts only, never content.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, note, digest string) ([]intent.RawIntent, error)
}

// Decode unmarshals a reply that is either a single intent object or a
// list of them. Multi-idea notes produce lists; everything else is a
// single object.
func Decode(data []byte) ([]intent.RawIntent, error) {
	var list []intent.RawIntent
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil, ErrNoIntent
		}
		return list, nil
	}
	var single intent.RawIntent
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return []intent.RawIntent{single}, nil
}
