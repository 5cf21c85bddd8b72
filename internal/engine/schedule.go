package engine

import (
	"fmt"
	"math/rand"
	"time"

	"todohook/internal/todoist"
	"todohook/pkg/textmark"
)

// Workday window for generated times. A task never gets scheduled before
// workdayStart:00 or after workdayEnd:00 local time.
const (
	workdayStart = 9
	workdayEnd   = 18
)

// RandInRange returns a uniform integer in [lo, hi] inclusive.
// Tests substitute a deterministic stub to pin boundary behavior.
type RandInRange func(lo, hi int) int

func stdRand(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.Intn(hi-lo+1)
}

// computeDueTime picks a local timestamp for a date-only due date.
//
// Returns "" when there is nothing to do: no due date, or a time-of-day is
// already assigned (a time separator in due.datetime is sufficient
// evidence; no deeper parsing).
//
// The result is `YYYY-MM-DDTHH:00:00` with no offset suffix; the gateway
// interprets it against the timezone passed alongside.
func computeDueTime(due *todoist.Due, loc *time.Location, now time.Time, rnd RandInRange) string {
	if due == nil || due.Date == "" {
		return ""
	}
	if due.Datetime != "" && textmark.HasTime(due.Datetime) {
		return ""
	}

	local := now.In(loc)
	currentHour := local.Hour()
	isToday := local.Format("2006-01-02") == due.Date

	var target int
	switch {
	case isToday && currentHour >= workdayEnd:
		// Past the workday: clamp to its end rather than scheduling in the past.
		target = workdayEnd
	case isToday:
		// Later today, never before workdayStart. currentHour==17 collapses
		// the range to [18,18].
		lo := currentHour + 1
		if lo < workdayStart {
			lo = workdayStart
		}
		target = rnd(lo, workdayEnd)
	default:
		target = rnd(workdayStart, workdayEnd)
	}

	return fmt.Sprintf("%sT%02d:00:00", due.Date, target)
}
