package engine

// Outcome is the explicit result of one decision procedure, so callers and
// tests can assert what happened without parsing logs.
type Outcome int

const (
	// Noop: the transform's effect is already present, or the task is not
	// eligible (no due date, no duration label, ...). Not an error.
	Noop Outcome = iota

	// Applied: at least one mutation was issued through the gateway.
	Applied

	// Failed: a gateway or store call failed. The event is still considered
	// handled; nothing retries it. The next task edit re-triggers evaluation.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Noop:
		return "noop"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
