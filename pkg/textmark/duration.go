package textmark

import (
	"fmt"
	"regexp"
	"strings"
)

// durationSuffix matches content that ends with a " [Nm]" annotation.
var durationSuffix = regexp.MustCompile(`.* \[\d+m\]$`)

// HasDuration reports whether content already ends with a duration
// annotation such as "Call Bob [60m]".
func HasDuration(content string) bool {
	return durationSuffix.MatchString(content)
}

// AppendDuration appends " [Nm]" to content.
// Content that is already annotated is returned unchanged, regardless of
// the annotated value.
func AppendDuration(content string, minutes int) string {
	if minutes <= 0 || HasDuration(content) {
		return content
	}
	return fmt.Sprintf("%s [%dm]", content, minutes)
}

// DateOnly reduces a datetime string to its date-only prefix
// ("2024-05-01T14:00:00" -> "2024-05-01"). Strings without a time
// separator are returned as-is.
func DateOnly(datetime string) string {
	if i := strings.IndexByte(datetime, 'T'); i >= 0 {
		return datetime[:i]
	}
	return datetime
}

// HasTime reports whether a datetime string encodes a time-of-day.
// Presence of a time separator is sufficient evidence; no deeper parsing.
func HasTime(datetime string) bool {
	return strings.Contains(datetime, ":")
}
