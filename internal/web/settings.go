package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"todohook/pkg/logx"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentAccount(r); ok {
		http.Redirect(w, r, "/settings", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.log.Warn("web: rendering index failed", logx.Err(err))
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data := settingsData{
		FullName:  account.FullName,
		Timezone:  account.Timezone,
		Timezones: commonTimezones,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := settingsTemplate.Execute(w, data); err != nil {
		s.log.Warn("web: rendering settings failed", logx.Err(err))
	}
}

// handleSetTimezone accepts either a form post from the settings page or
// a JSON body {"timezone": "..."}.
func (s *Server) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(r)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	wantJSON := strings.Contains(r.Header.Get("Content-Type"), "application/json")
	var zone string
	if wantJSON {
		var body struct {
			Timezone string `json:"timezone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		zone = body.Timezone
	} else {
		zone = r.FormValue("timezone")
	}

	zone = strings.TrimSpace(zone)
	if zone == "" {
		if wantJSON {
			writeJSONError(w, http.StatusBadRequest, "timezone is required")
		} else {
			http.Error(w, "timezone is required", http.StatusBadRequest)
		}
		return
	}
	if _, err := time.LoadLocation(zone); err != nil {
		if wantJSON {
			writeJSONError(w, http.StatusBadRequest, "unknown timezone")
		} else {
			http.Error(w, "unknown timezone", http.StatusBadRequest)
		}
		return
	}

	if err := s.st.SetTimezone(r.Context(), account.UserID, zone); err != nil {
		s.log.Error("web: saving timezone failed",
			logx.String("account", account.UserID), logx.Err(err))
		if wantJSON {
			writeJSONError(w, http.StatusInternalServerError, "failed to save timezone")
		} else {
			http.Error(w, "failed to save timezone", http.StatusInternalServerError)
		}
		return
	}

	s.log.Info("timezone updated",
		logx.String("account", account.UserID), logx.String("timezone", zone))
	if wantJSON {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
		return
	}
	http.Redirect(w, r, "/settings", http.StatusFound)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	account, ok := s.currentAccount(r)
	if !ok {
		clearAuthCookies(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err := s.st.DeleteAccount(r.Context(), account.UserID); err != nil {
		s.log.Error("web: deleting account failed",
			logx.String("account", account.UserID), logx.Err(err))
		http.Error(w, "failed to disconnect", http.StatusInternalServerError)
		return
	}
	clearAuthCookies(w)
	s.log.Info("account disconnected", logx.String("account", account.UserID))
	http.Redirect(w, r, "/", http.StatusFound)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
