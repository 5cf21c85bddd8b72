package textmark

import "testing"

func TestStrikeRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{name: "ascii", in: "Buy milk"},
		{name: "unicode", in: "Köp mjölk ✓"},
		{name: "single rune", in: "x"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			struck := Strike(tt.in)
			if struck == tt.in {
				t.Fatalf("Strike(%q) did not change the content", tt.in)
			}
			if !IsStruck(struck) {
				t.Fatalf("IsStruck(Strike(%q)) = false", tt.in)
			}
			if got := Unstrike(struck); got != tt.in {
				t.Fatalf("Unstrike(Strike(%q)) = %q", tt.in, got)
			}
		})
	}
}

func TestStrikeIdempotent(t *testing.T) {
	t.Parallel()
	once := Strike("Buy milk")
	if twice := Strike(once); twice != once {
		t.Fatalf("second Strike changed content: %q -> %q", once, twice)
	}
}

func TestStrikeEmpty(t *testing.T) {
	t.Parallel()
	if got := Strike(""); got != "" {
		t.Fatalf("Strike(\"\") = %q", got)
	}
	if got := Unstrike(""); got != "" {
		t.Fatalf("Unstrike(\"\") = %q", got)
	}
}

func TestUnstrikeUnmarked(t *testing.T) {
	t.Parallel()
	if got := Unstrike("plain"); got != "plain" {
		t.Fatalf("Unstrike changed unmarked content: %q", got)
	}
}

func TestAppendDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		minutes int
		want    string
	}{
		{name: "append", content: "Call Bob", minutes: 60, want: "Call Bob [60m]"},
		{name: "already annotated", content: "Call Bob [60m]", minutes: 120, want: "Call Bob [60m]"},
		{name: "zero minutes", content: "Call Bob", minutes: 0, want: "Call Bob"},
		{name: "negative minutes", content: "Call Bob", minutes: -5, want: "Call Bob"},
		{name: "bracket in middle", content: "Read [draft] notes", minutes: 30, want: "Read [draft] notes [30m]"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendDuration(tt.content, tt.minutes); got != tt.want {
				t.Fatalf("AppendDuration(%q, %d) = %q, want %q", tt.content, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestHasDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		content string
		want    bool
	}{
		{"Call Bob [60m]", true},
		{"Call Bob [60m] now", false},
		{"Call Bob", false},
		{"[15m]", false},
		{"x [15m]", true},
	}
	for _, tt := range tests {
		if got := HasDuration(tt.content); got != tt.want {
			t.Fatalf("HasDuration(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestDateOnly(t *testing.T) {
	t.Parallel()
	if got := DateOnly("2024-05-01T14:00:00"); got != "2024-05-01" {
		t.Fatalf("DateOnly = %q", got)
	}
	if got := DateOnly("2024-05-01"); got != "2024-05-01" {
		t.Fatalf("DateOnly on date-only input = %q", got)
	}
}

func TestHasTime(t *testing.T) {
	t.Parallel()
	if !HasTime("2024-05-01T14:00:00") {
		t.Fatal("HasTime missed a timed datetime")
	}
	if HasTime("2024-05-01") {
		t.Fatal("HasTime flagged a date-only string")
	}
}
