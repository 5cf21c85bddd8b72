package engine

import (
	"testing"
	"time"

	"todohook/internal/todoist"
)

// pickLow stands in for the randomness source and always returns the low
// bound, making the chosen hour predictable.
func pickLow(lo, hi int) int { return lo }

func pickHigh(lo, hi int) int { return hi }

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestComputeDueTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		due  *todoist.Due
		now  string
		rnd  RandInRange
		want string
	}{
		{
			name: "nil due",
			due:  nil,
			now:  "2024-05-01T12:00:00Z",
			rnd:  pickLow,
			want: "",
		},
		{
			name: "empty date",
			due:  &todoist.Due{},
			now:  "2024-05-01T12:00:00Z",
			rnd:  pickLow,
			want: "",
		},
		{
			name: "time already assigned",
			due:  &todoist.Due{Date: "2024-05-01", Datetime: "2024-05-01T14:00:00"},
			now:  "2024-05-01T12:00:00Z",
			rnd:  pickLow,
			want: "",
		},
		{
			name: "today after workday clamps to end",
			due:  &todoist.Due{Date: "2024-05-01"},
			now:  "2024-05-01T20:00:00Z",
			rnd:  pickLow,
			want: "2024-05-01T18:00:00",
		},
		{
			name: "today at workday end clamps to end",
			due:  &todoist.Due{Date: "2024-05-01"},
			now:  "2024-05-01T18:00:00Z",
			rnd:  pickHigh,
			want: "2024-05-01T18:00:00",
		},
		{
			name: "today last slot collapses range",
			due:  &todoist.Due{Date: "2024-05-01"},
			now:  "2024-05-01T17:30:00Z",
			rnd:  pickLow,
			want: "2024-05-01T18:00:00",
		},
		{
			name: "today before workday floors at start",
			due:  &todoist.Due{Date: "2024-05-01"},
			now:  "2024-05-01T06:00:00Z",
			rnd:  pickLow,
			want: "2024-05-01T09:00:00",
		},
		{
			name: "today midday stays in the future",
			due:  &todoist.Due{Date: "2024-05-01"},
			now:  "2024-05-01T12:00:00Z",
			rnd:  pickLow,
			want: "2024-05-01T13:00:00",
		},
		{
			name: "future date picks from full window",
			due:  &todoist.Due{Date: "2024-06-10"},
			now:  "2024-05-01T12:00:00Z",
			rnd:  pickHigh,
			want: "2024-06-10T18:00:00",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := computeDueTime(tt.due, time.UTC, mustTime(t, tt.now), tt.rnd)
			if got != tt.want {
				t.Fatalf("computeDueTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeDueTimeRespectsLocation(t *testing.T) {
	t.Parallel()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 16:30 UTC is 19:30 in Jerusalem (UTC+3 in May), so a task due today
	// there is already past the workday.
	due := &todoist.Due{Date: "2024-05-01"}
	got := computeDueTime(due, loc, mustTime(t, "2024-05-01T16:30:00Z"), pickLow)
	if got != "2024-05-01T18:00:00" {
		t.Fatalf("computeDueTime = %q, want clamp to workday end", got)
	}
}

func TestComputeDueTimeRandomRangeInWindow(t *testing.T) {
	t.Parallel()
	var gotLo, gotHi int
	rnd := func(lo, hi int) int {
		gotLo, gotHi = lo, hi
		return lo
	}
	due := &todoist.Due{Date: "2024-06-10"}
	computeDueTime(due, time.UTC, mustTime(t, "2024-05-01T12:00:00Z"), rnd)
	if gotLo != workdayStart || gotHi != workdayEnd {
		t.Fatalf("random range = [%d,%d], want [%d,%d]", gotLo, gotHi, workdayStart, workdayEnd)
	}
}
