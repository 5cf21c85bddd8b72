package textmark

import "strings"

// StrikeChar is the combining long stroke overlay (U+0336). Interleaving
// it with the characters of a string renders the string struck-through in
// viewers that honor combining marks.
const StrikeChar = "̶"

// IsStruck reports whether s already carries strike marking.
// A single occurrence of the marker anywhere counts.
func IsStruck(s string) bool {
	return strings.Contains(s, StrikeChar)
}

// Strike marks every rune of s with the strike overlay.
// Already-struck content is returned unchanged.
func Strike(s string) string {
	if s == "" || IsStruck(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		b.WriteString(StrikeChar)
		b.WriteRune(r)
	}
	b.WriteString(StrikeChar)
	return b.String()
}

// Unstrike strips all strike overlays from s.
// Unmarked content is returned unchanged, so Unstrike(Strike(s)) == s.
func Unstrike(s string) string {
	if !IsStruck(s) {
		return s
	}
	return strings.ReplaceAll(s, StrikeChar, "")
}
