// Package streak derives current-streak and completed-today flags from a
// task's completion history. A streak is the count of consecutive calendar
// days, ending today or yesterday, that have a completion record.
package streak

import (
	"time"

	"github.com/racha-app/racha/internal/localdate"
)

// Result is the derived view for one task. It is recomputed on every read;
// completions can be added or removed at any time, so nothing is cached.
type Result struct {
	Current        int
	CompletedToday bool
}

// Compute walks backward from the anchor day counting consecutive completed
// days. The anchor is today if completed, else yesterday if completed, else
// there is no streak. A gap before the anchor never extends the count.
func Compute(completions []time.Time, today time.Time) Result {
	if len(completions) == 0 {
		return Result{}
	}

	completed := make(map[string]struct{}, len(completions))
	for _, d := range completions {
		completed[localdate.Format(d)] = struct{}{}
	}

	today = localdate.Truncate(today)
	_, completedToday := completed[localdate.Format(today)]

	anchor := today
	if !completedToday {
		anchor = today.AddDate(0, 0, -1)
		if _, ok := completed[localdate.Format(anchor)]; !ok {
			return Result{}
		}
	}

	count := 0
	for day := anchor; ; day = day.AddDate(0, 0, -1) {
		if _, ok := completed[localdate.Format(day)]; !ok {
			break
		}
		count++
	}

	return Result{Current: count, CompletedToday: completedToday}
}
