// Package remind parses natural-language time expressions into concrete
// fire times and dispatches reminders when they come due.
package remind

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gopher0727/Ideario/internal/resolve"
)

// ErrNotRecognized marks an expression no parser understood. Callers
// degrade the requesting action to an ignore, never the whole note.
var ErrNotRecognized = errors.New("time expression not recognized")

// defaultHour is used when an expression names a day but no time.
const defaultHour = 9

var (
	segmentRe  = regexp.MustCompile(`^(\d+)\s*([a-z]+)`)
	clockRe    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s?(am|pm)?$`)
	dayMonthRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2}) (\d{1,2}):(\d{2})$`)
)

var durationUnits = map[string]time.Duration{
	"s": time.Second, "seg": time.Second, "segundo": time.Second, "segundos": time.Second,
	"sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minuto": time.Minute, "minutos": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hora": time.Hour, "horas": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "dia": 24 * time.Hour, "dias": 24 * time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "sem": 7 * 24 * time.Hour,
	"semana": 7 * 24 * time.Hour, "semanas": 7 * 24 * time.Hour,
	"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

var weekdays = map[string]time.Weekday{
	"lunes": time.Monday, "martes": time.Tuesday, "miercoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday, "sabado": time.Saturday,
	"domingo": time.Sunday,
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

// Extract resolves a time expression against the reference time. The
// result is deterministic for a given (expr, ref) pair. Spanish and
// English forms are accepted; matching runs on the accent-stripped
// lowercase form, so "mañana" and "manana" are the same word.
func Extract(expr string, ref time.Time) (time.Time, error) {
	s := resolve.Normalize(expr)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrNotRecognized)
	}
	for _, parse := range []func(string, time.Time) (time.Time, bool){
		parseRelative,
		parseDayWord,
		parseWeekday,
		parseAbsolute,
		parseClockOnly,
	} {
		if t, ok := parse(s, ref); ok {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrNotRecognized, expr)
}

// parseRelative handles offsets from the reference time: "en 2 horas",
// "in 45 minutes", "dentro de 2h30m", bare "2h".
func parseRelative(s string, ref time.Time) (time.Time, bool) {
	for _, prefix := range []string{"dentro de ", "en ", "in "} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = rest
			break
		}
	}
	d, ok := parseDurationSegments(s)
	if !ok {
		return time.Time{}, false
	}
	return ref.Add(d), true
}

// parseDurationSegments consumes the whole string as "<n><unit>"
// segments, optionally joined by spaces or "y"/"and". Anything left
// over rejects the expression rather than guessing.
func parseDurationSegments(s string) (time.Duration, bool) {
	remaining := s
	var total time.Duration
	for remaining != "" {
		m := segmentRe.FindStringSubmatch(remaining)
		if m == nil {
			return 0, false
		}
		value, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		unit, ok := durationUnits[m[2]]
		if !ok {
			return 0, false
		}
		total += time.Duration(value) * unit
		remaining = strings.TrimLeft(remaining[len(m[0]):], " ")
		remaining = strings.TrimPrefix(remaining, "y ")
		remaining = strings.TrimPrefix(remaining, "and ")
	}
	return total, total > 0
}

// parseDayWord handles "hoy", "manana", "pasado manana", "today",
// "tomorrow", each with an optional clock ("manana a las 9",
// "tomorrow at 9:30pm"). Without a clock the day defaults to 09:00.
func parseDayWord(s string, ref time.Time) (time.Time, bool) {
	dayWords := []struct {
		word string
		days int
	}{
		{"pasado manana", 2},
		{"manana", 1},
		{"tomorrow", 1},
		{"hoy", 0},
		{"today", 0},
	}
	for _, dw := range dayWords {
		if s == dw.word {
			return at(ref, dw.days, defaultHour, 0), true
		}
		if rest, ok := strings.CutPrefix(s, dw.word+" "); ok {
			hour, minute, ok := parseClock(rest)
			if !ok {
				return time.Time{}, false
			}
			return at(ref, dw.days, hour, minute), true
		}
	}
	return time.Time{}, false
}

// parseWeekday handles "el viernes [a las 10]", "on friday",
// "proximo lunes". It picks the next future occurrence; naming the
// current weekday means next week, not today.
func parseWeekday(s string, ref time.Time) (time.Time, bool) {
	for _, prefix := range []string{"el proximo ", "proximo ", "el ", "on ", "next "} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = rest
			break
		}
	}
	name, rest := s, ""
	if i := strings.IndexByte(s, ' '); i >= 0 {
		name, rest = s[:i], s[i+1:]
	}
	wd, ok := weekdays[name]
	if !ok {
		return time.Time{}, false
	}
	hour, minute := defaultHour, 0
	if rest != "" {
		if hour, minute, ok = parseClock(rest); !ok {
			return time.Time{}, false
		}
	}
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return at(ref, days, hour, minute), true
}

// parseAbsolute handles "2024-05-11 15:04", a bare "2024-05-11" (at
// 09:00) and the Spanish day/month form "11/05 15:04" in the current
// year, bumped a year when that moment has already passed.
func parseAbsolute(s string, ref time.Time) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, ref.Location()); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, ref.Location()); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), defaultHour, 0, 0, 0, ref.Location()), true
	}
	m := dayMonthRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(ref.Year(), time.Month(month), day, hour, minute, 0, 0, ref.Location())
	if !t.After(ref) {
		t = t.AddDate(1, 0, 0)
	}
	return t, true
}

// parseClockOnly handles a bare clock: "a las 17", "at 5pm". Today when
// still ahead, otherwise tomorrow.
func parseClockOnly(s string, ref time.Time) (time.Time, bool) {
	if !strings.HasPrefix(s, "a las ") && !strings.HasPrefix(s, "a la ") && !strings.HasPrefix(s, "at ") {
		return time.Time{}, false
	}
	hour, minute, ok := parseClock(s)
	if !ok {
		return time.Time{}, false
	}
	t := at(ref, 0, hour, minute)
	if !t.After(ref) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

// parseClock reads "9", "9:30", "17:05", "9pm", "9:30 pm", optionally
// led by "a las"/"a la"/"at".
func parseClock(s string) (hour, minute int, ok bool) {
	for _, prefix := range []string{"a las ", "a la ", "at "} {
		if rest, found := strings.CutPrefix(s, prefix); found {
			s = rest
			break
		}
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute, hour < 24 && minute < 60
}

func at(ref time.Time, days, hour, minute int) time.Time {
	t := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
	return t.AddDate(0, 0, days)
}
