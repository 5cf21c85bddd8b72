// Package durations maps duration labels to minute values.
//
// The vocabulary is a fixed, closed table. Labels are provisioned lazily:
// EnsureLabels creates whatever is missing and never deletes anything.
package durations

import (
	"context"
	"fmt"

	"todohook/internal/todoist"
)

// LabelColor is the color used when provisioning missing duration labels.
const LabelColor = "blue"

// Unit is the structured-duration unit attached to annotated tasks.
const Unit = "minute"

// Entry is one duration label: a display name carrying an embedded
// duration marker, and its minute value.
type Entry struct {
	Name    string
	Minutes int
}

// Table is the closed duration vocabulary, in provisioning order.
var Table = []Entry{
	{"⏲15m", 15},
	{"⏲30m", 30},
	{"⏲1h", 60},
	{"⏲2h", 120},
	{"⏲3h", 180},
	{"⏲4h", 240},
	{"⏲5h", 300},
	{"⏲6h", 360},
	{"⏲7h", 420},
	{"⏲8h", 480},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(Table))
	for _, e := range Table {
		m[e.Name] = e.Minutes
	}
	return m
}()

// Minutes returns the minute value of the first label in labels that is in
// the vocabulary, or 0 if none match. First match wins when a task
// improperly carries more than one duration label; order is the task's
// label order, so the result is deterministic.
func Minutes(labels []string) int {
	for _, name := range labels {
		if m, ok := byName[name]; ok {
			return m
		}
	}
	return 0
}

// LabelProvider is the slice of the gateway EnsureLabels needs.
type LabelProvider interface {
	GetLabels(ctx context.Context) ([]todoist.Label, error)
	CreateLabel(ctx context.Context, name, color string) (*todoist.Label, error)
}

// EnsureLabels creates any vocabulary labels the account is missing.
// It is idempotent: existence is checked by name before creating, so it
// tolerates both empty accounts (full table) and partial ones (the gap).
func EnsureLabels(ctx context.Context, gw LabelProvider) error {
	existing, err := gw.GetLabels(ctx)
	if err != nil {
		return fmt.Errorf("list labels: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, l := range existing {
		have[l.Name] = true
	}
	for _, e := range Table {
		if have[e.Name] {
			continue
		}
		if _, err := gw.CreateLabel(ctx, e.Name, LabelColor); err != nil {
			return fmt.Errorf("create label %q: %w", e.Name, err)
		}
	}
	return nil
}
