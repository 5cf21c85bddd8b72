package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todohook/internal/storage"
	"todohook/pkg/logx"
)

// Todoist OAuth endpoints.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://todoist.com/oauth/authorize",
	TokenURL: "https://todoist.com/oauth/access_token",
}

const userEndpoint = "https://api.todoist.com/sync/v9/user"

// Scopes requested from Todoist. The engine reads and mutates tasks, so
// read_write is the minimum that works.
var Scopes = []string{"data:read_write"}

// UserInfo identifies the Todoist user a fresh token belongs to.
type UserInfo struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	TZInfo   struct {
		Timezone string `json:"timezone"`
	} `json:"tz_info"`
}

// UserInfoFunc fetches the user behind an access token.
type UserInfoFunc func(ctx context.Context, token string) (UserInfo, error)

// Authenticator runs the authorization-code flow against Todoist.
type Authenticator struct {
	cfg      *oauth2.Config
	userInfo UserInfoFunc
	log      logx.Logger
}

type AuthOption func(*Authenticator)

// WithUserInfo substitutes the user lookup (tests).
func WithUserInfo(fn UserInfoFunc) AuthOption {
	return func(a *Authenticator) { a.userInfo = fn }
}

// WithEndpoint overrides the OAuth endpoints (tests).
func WithEndpoint(ep oauth2.Endpoint) AuthOption {
	return func(a *Authenticator) { a.cfg.Endpoint = ep }
}

func NewAuthenticator(clientID, clientSecret, redirectURL string, log logx.Logger, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     Endpoint,
			Scopes:       Scopes,
		},
		log: log,
	}
	a.userInfo = a.fetchUser
	for _, o := range opts {
		o(a)
	}
	return a
}

// fetchUser resolves the token owner through the sync API; the REST API
// has no user endpoint.
func (a *Authenticator) fetchUser(ctx context.Context, token string) (UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userEndpoint, nil)
	if err != nil {
		return UserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return UserInfo{}, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return UserInfo{}, fmt.Errorf("fetch user: status %d: %s", resp.StatusCode, b)
	}

	var u UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return UserInfo{}, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return UserInfo{}, fmt.Errorf("user response missing id")
	}
	return u, nil
}

// handleAuthorize starts the flow: mint a state token, remember it in a
// short-lived cookie, and send the browser to Todoist.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, s.auth.cfg.AuthCodeURL(state), http.StatusFound)
}

// handleRedirect finishes the flow: verify state, exchange the code,
// resolve the user, persist the account, and open a session.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	if e := r.URL.Query().Get("error"); e != "" {
		s.log.Warn("oauth: provider returned error", logx.String("error", e))
		http.Error(w, "authorization failed: "+e, http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "no authorization code received", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if c, err := r.Cookie(stateCookie); err != nil || state == "" || c.Value != state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	tok, err := s.auth.cfg.Exchange(r.Context(), code)
	if err != nil {
		s.log.Warn("oauth: token exchange failed", logx.Err(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	user, err := s.auth.userInfo(r.Context(), tok.AccessToken)
	if err != nil {
		s.log.Warn("oauth: user lookup failed", logx.Err(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	account := storage.Account{
		UserID:      user.ID,
		AccessToken: tok.AccessToken,
		FullName:    user.FullName,
		Timezone:    user.TZInfo.Timezone,
	}
	if err := s.st.UpsertAccount(r.Context(), account); err != nil {
		s.log.Error("oauth: storing account failed", logx.Err(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setAuthCookies(w, user.ID, tok.AccessToken)
	clearCookie(w, stateCookie)
	s.log.Info("account connected",
		logx.String("account", user.ID), logx.String("name", user.FullName))
	http.Redirect(w, r, "/settings", http.StatusFound)
}
