package web

import (
	"net/http"

	"todohook/internal/storage"
)

const (
	userCookie    = "user_id"
	sessionCookie = "session"
	stateCookie   = "oauth_state"

	sessionMaxAge = 30 * 24 * 60 * 60
)

func setAuthCookies(w http.ResponseWriter, userID, token string) {
	for name, value := range map[string]string{userCookie: userID, sessionCookie: token} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   sessionMaxAge,
		})
	}
}

func clearAuthCookies(w http.ResponseWriter) {
	clearCookie(w, userCookie)
	clearCookie(w, sessionCookie)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// currentAccount resolves the request's session against the store,
// requiring the cookie token to match the stored one.
func (s *Server) currentAccount(r *http.Request) (storage.Account, bool) {
	uc, err := r.Cookie(userCookie)
	if err != nil || uc.Value == "" {
		return storage.Account{}, false
	}
	sc, err := r.Cookie(sessionCookie)
	if err != nil || sc.Value == "" {
		return storage.Account{}, false
	}
	account, err := s.st.GetAccount(r.Context(), uc.Value)
	if err != nil || account.AccessToken != sc.Value {
		return storage.Account{}, false
	}
	return account, true
}
