// Package analytics is the derived-metrics engine: pure functions that turn
// raw transactions, budgets and goals into the aggregated figures every
// presentation surface consumes. Nothing here mutates its inputs or keeps
// state; calling any function twice with identical inputs yields identical
// outputs.
package analytics

import (
	"fmt"
	"strconv"
	"time"

	"fino/internal/core"
)

// Window is a trailing filter over dated records: the last N days, or
// everything.
type Window string

const (
	Window7   Window = "7"
	Window30  Window = "30"
	Window90  Window = "90"
	Window365 Window = "365"
	WindowAll Window = "all"
)

// ParseWindow validates a window label coming from a query parameter.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case Window7, Window30, Window90, Window365, WindowAll:
		return Window(s), nil
	}
	return "", fmt.Errorf("unknown time window %q", s)
}

// Days returns the window length in days, or false for the all-time window.
func (w Window) Days() (int, bool) {
	if w == WindowAll {
		return 0, false
	}
	n, err := strconv.Atoi(string(w))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Dated is any record carrying a calendar date.
type Dated interface {
	When() core.Date
}

// FilterByWindow returns the records whose date falls inside the window,
// order preserved. The cutoff is the calendar day N days before now,
// inclusive: a record dated exactly N days ago is kept. Now is evaluated
// once by the caller so every record sees the same cutoff; records with
// invalid dates are excluded, never fatal. The input slice is not mutated.
func FilterByWindow[T Dated](records []T, w Window, now time.Time) []T {
	days, bounded := w.Days()
	if !bounded {
		out := make([]T, len(records))
		copy(out, records)
		return out
	}
	cutoff := core.DateOf(now).AddDate(0, 0, -days)
	out := make([]T, 0, len(records))
	for _, r := range records {
		d := r.When()
		if !d.Valid() {
			continue
		}
		if !d.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
