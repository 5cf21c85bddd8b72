package todoist

import "fmt"

// APIError is the single error kind surfaced by the gateway.
//
// The engine treats any gateway failure the same way (log and abandon the
// event), so transport errors and non-2xx responses both end up here.
type APIError struct {
	StatusCode int    // 0 for transport-level failures
	Op         string // e.g. "get task"
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("todoist: %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("todoist: %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	default:
		return fmt.Sprintf("todoist: %s: status %d", e.Op, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

func transportErr(op string, err error) *APIError {
	return &APIError{Op: op, Err: err}
}

func statusErr(op string, code int, msg string) *APIError {
	return &APIError{Op: op, StatusCode: code, Message: msg}
}
