package web

import (
	"encoding/json"
	"net/http"

	"todohook/internal/eventbus"
	"todohook/pkg/logx"
)

// webhookPayload is the Todoist webhook envelope, reduced to what the
// engine needs. Everything beyond the task id and the completion flag is
// deliberately ignored: the engine re-fetches the task anyway.
type webhookPayload struct {
	EventName string `json:"event_name"`
	UserID    string `json:"user_id"`
	EventData struct {
		ID      string `json:"id"`
		Checked bool   `json:"checked"`
	} `json:"event_data"`
}

// handleWebhook acknowledges immediately and dispatches through the bus.
// Processing is fire-and-forget; Todoist retries on non-2xx, and we don't
// want retries for our own internal failures.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var p webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.log.Warn("webhook: bad payload", logx.Err(err))
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if p.UserID == "" || p.EventData.ID == "" {
		http.Error(w, "missing user or task id", http.StatusBadRequest)
		return
	}

	for _, kind := range kindsFor(p.EventName) {
		s.bus.Publish(eventbus.Event{
			Kind:      kind,
			AccountID: p.UserID,
			TaskID:    p.EventData.ID,
			Completed: completedFor(p.EventName, p.EventData.Checked),
		})
	}

	w.WriteHeader(http.StatusOK)
}

// kindsFor maps a Todoist event name to the decision procedures it
// triggers. Unknown events map to nothing and are acknowledged anyway.
func kindsFor(eventName string) []eventbus.Kind {
	switch eventName {
	case "item:added", "item:updated":
		return []eventbus.Kind{eventbus.KindTimeCheck, eventbus.KindDuration}
	case "item:completed", "item:uncompleted":
		return []eventbus.Kind{eventbus.KindCompletion}
	default:
		return nil
	}
}

func completedFor(eventName string, checked bool) bool {
	switch eventName {
	case "item:completed":
		return true
	case "item:uncompleted":
		return false
	default:
		return checked
	}
}
