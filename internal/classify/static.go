package classify

import (
	"context"
	"regexp"
	"strings"

	"github.com/Gopher0727/Ideario/internal/intent"
)

// StaticClassifier classifies with the keyword tables alone, no model and
// no network. It backs tests and offline runs; the console falls back to
// it when no model is configured. Notes land in a starter category when
// the phrasing matches one, otherwise in "general", and always as a
// single intent.
type StaticClassifier struct{}

var remindKeywords = []string{"recuérdame", "recuerdame", "recordarme", "remind me"}

// remindExprRe finds a bounded time expression inside a reminder note,
// shaped like the forms remind.Extract understands. "en" alone is too
// common a word to anchor on, so offsets require a number after it.
var remindExprRe = regexp.MustCompile(`(?i)\b(` +
	`(?:en|in|dentro de) \d+ ?\p{L}+(?: y \d+ ?\p{L}+)?` +
	`|pasado mañana(?: a las? \d{1,2}(?::\d{2})?)?` +
	`|mañana(?: a las? \d{1,2}(?::\d{2})?)?` +
	`|hoy a las? \d{1,2}(?::\d{2})?` +
	`|a las? \d{1,2}(?::\d{2})?` +
	`|el (?:pr[oó]ximo )?(?:lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)(?: a las? \d{1,2}(?::\d{2})?)?` +
	`)`)

func (StaticClassifier) Classify(_ context.Context, note, _ string) ([]intent.RawIntent, error) {
	text := strings.TrimSpace(note)
	if !wordRe.MatchString(text) {
		no := false
		return []intent.RawIntent{{MakesSense: &no, Reason: "la nota no contiene texto"}}, nil
	}

	if HasDeleteIntent(text) {
		return []intent.RawIntent{{
			Action: intent.ActionDelete,
			Idea:   deleteTarget(text),
		}}, nil
	}

	raw := intent.RawIntent{Action: intent.ActionAdd, IsNewGroup: true}

	if expr, rest, ok := splitReminder(text); ok {
		raw.Remind = expr
		text = rest
	}
	if text == "" {
		// The whole note was the reminder; no idea to file anywhere.
		raw.IsNewGroup = false
		return []intent.RawIntent{raw}, nil
	}

	if cat := guessCategory(text); cat != "" {
		raw.Group = cat
		if cat == "rutina diaria" {
			if sub := routineActivity(text); sub != "" {
				raw.Subgroup = sub
				raw.IsNewSubgroup = true
			}
		}
	} else {
		raw.Group = "general"
	}
	raw.Idea = TrimIdea(text, "")
	return []intent.RawIntent{raw}, nil
}

// deleteTarget extracts what should be removed: the text after the delete
// keyword, minus lead-in articles.
func deleteTarget(note string) string {
	lower := strings.ToLower(note)
	for _, kw := range deleteKeywords {
		idx := strings.Index(lower, kw)
		if idx == -1 {
			continue
		}
		rest := strings.TrimSpace(note[idx+len(kw):])
		for _, lead := range []string{"la idea de ", "idea de ", "lo de ", "el ", "la "} {
			if len(rest) > len(lead) && strings.EqualFold(rest[:len(lead)], lead) {
				rest = strings.TrimSpace(rest[len(lead):])
				break
			}
		}
		return rest
	}
	return strings.TrimSpace(note)
}

// splitReminder cuts the reminder keyword and its time expression out of
// the note. With no recognizable expression both returns carry the
// remainder; the extractor then rejects it and only that action degrades.
func splitReminder(note string) (expr, rest string, found bool) {
	lower := strings.ToLower(note)
	for _, kw := range remindKeywords {
		idx := strings.Index(lower, kw)
		if idx == -1 {
			continue
		}
		body := strings.TrimSpace(strings.TrimSpace(note[:idx]) + " " + strings.TrimSpace(note[idx+len(kw):]))
		if m := remindExprRe.FindStringIndex(body); m != nil {
			expr = strings.TrimSpace(body[m[0]:m[1]])
			rest = strings.Join(strings.Fields(body[:m[0]]+" "+body[m[1]:]), " ")
			return expr, rest, true
		}
		return body, body, true
	}
	return "", note, false
}
