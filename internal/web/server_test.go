package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"todohook/internal/eventbus"
	"todohook/internal/storage"
	"todohook/pkg/logx"
)

type fakeStore struct {
	accounts map[string]storage.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[string]storage.Account{}}
}

func (f *fakeStore) UpsertAccount(_ context.Context, a storage.Account) error {
	f.accounts[a.UserID] = a
	return nil
}

func (f *fakeStore) GetAccount(_ context.Context, userID string) (storage.Account, error) {
	a, ok := f.accounts[userID]
	if !ok {
		return storage.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) ListAccounts(_ context.Context) ([]storage.Account, error) {
	out := make([]storage.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) SetTimezone(_ context.Context, userID, tz string) error {
	a, ok := f.accounts[userID]
	if !ok {
		return storage.ErrNotFound
	}
	a.Timezone = tz
	f.accounts[userID] = a
	return nil
}

func (f *fakeStore) DeleteAccount(_ context.Context, userID string) error {
	delete(f.accounts, userID)
	return nil
}

func (f *fakeStore) Close() error { return nil }

type captureBus struct {
	events []eventbus.Event
}

func (b *captureBus) Publish(e eventbus.Event) { b.events = append(b.events, e) }

func (b *captureBus) Subscribe(int) (<-chan eventbus.Event, func()) {
	ch := make(chan eventbus.Event)
	return ch, func() { close(ch) }
}

func newTestServer(st storage.Store, bus eventbus.Bus, opts ...AuthOption) *Server {
	auth := NewAuthenticator("id", "secret", "http://localhost/redirect", logx.Nop(), opts...)
	return NewServer(Config{Addr: ":0"}, bus, st, auth, logx.Nop())
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.AddCookie(&http.Cookie{Name: userCookie, Value: "u1"})
	r.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok"})
	return r
}

func connectedStore() *fakeStore {
	st := newFakeStore()
	st.accounts["u1"] = storage.Account{
		UserID:      "u1",
		AccessToken: "tok",
		FullName:    "Dana",
		Timezone:    "Europe/Berlin",
	}
	return st
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(newFakeStore(), &captureBus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIndexOffersLogin(t *testing.T) {
	t.Parallel()
	srv := newTestServer(newFakeStore(), &captureBus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/authorize") {
		t.Fatal("index page missing login link")
	}
}

func TestIndexRedirectsConnectedUser(t *testing.T) {
	t.Parallel()
	srv := newTestServer(connectedStore(), &captureBus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/", ""))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/settings" {
		t.Fatalf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAuthorizeRedirectsWithState(t *testing.T) {
	t.Parallel()
	srv := newTestServer(newFakeStore(), &captureBus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorize", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("redirect missing state parameter")
	}

	var stateSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie && c.Value == state {
			stateSet = true
		}
	}
	if !stateSet {
		t.Fatal("state cookie does not match redirect state")
	}
}

func TestRedirectCompletesFlow(t *testing.T) {
	t.Parallel()
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"fresh-tok","token_type":"bearer"}`))
	}))
	defer token.Close()

	st := newFakeStore()
	srv := newTestServer(st, &captureBus{},
		WithEndpoint(oauth2.Endpoint{AuthURL: token.URL, TokenURL: token.URL}),
		WithUserInfo(func(_ context.Context, tok string) (UserInfo, error) {
			if tok != "fresh-tok" {
				t.Errorf("user lookup got token %q", tok)
			}
			u := UserInfo{ID: "u9", FullName: "Dana"}
			u.TZInfo.Timezone = "Asia/Tokyo"
			return u, nil
		}))

	req := httptest.NewRequest(http.MethodGet, "/redirect?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/settings" {
		t.Fatalf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
	a, ok := st.accounts["u9"]
	if !ok {
		t.Fatal("account not stored")
	}
	if a.AccessToken != "fresh-tok" || a.FullName != "Dana" || a.Timezone != "Asia/Tokyo" {
		t.Fatalf("stored account = %+v", a)
	}

	var userSet, sessionSet bool
	for _, c := range rec.Result().Cookies() {
		switch {
		case c.Name == userCookie && c.Value == "u9":
			userSet = true
		case c.Name == sessionCookie && c.Value == "fresh-tok":
			sessionSet = true
		}
	}
	if !userSet || !sessionSet {
		t.Fatal("session cookies not set")
	}
}

func TestRedirectRejectsStateMismatch(t *testing.T) {
	t.Parallel()
	srv := newTestServer(newFakeStore(), &captureBus{})
	req := httptest.NewRequest(http.MethodGet, "/redirect?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "other"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSettingsRequiresSession(t *testing.T) {
	t.Parallel()
	srv := newTestServer(connectedStore(), &captureBus{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("anonymous: status = %d", rec.Code)
	}

	// A stale session token must not pass either.
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.AddCookie(&http.Cookie{Name: userCookie, Value: "u1"})
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "wrong"})
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("stale token: status = %d", rec.Code)
	}
}

func TestSettingsPage(t *testing.T) {
	t.Parallel()
	srv := newTestServer(connectedStore(), &captureBus{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, authedRequest(http.MethodGet, "/settings", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dana") || !strings.Contains(body, "Europe/Berlin") {
		t.Fatal("settings page missing account data")
	}
}

func TestSetTimezoneForm(t *testing.T) {
	t.Parallel()
	st := connectedStore()
	srv := newTestServer(st, &captureBus{})

	req := authedRequest(http.MethodPost, "/settings/timezone", "timezone=Asia/Tokyo")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if st.accounts["u1"].Timezone != "Asia/Tokyo" {
		t.Fatalf("timezone = %q", st.accounts["u1"].Timezone)
	}
}

func TestSetTimezoneJSON(t *testing.T) {
	t.Parallel()
	st := connectedStore()
	srv := newTestServer(st, &captureBus{})

	req := authedRequest(http.MethodPost, "/settings/timezone", `{"timezone":"Asia/Tokyo"}`)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "true") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if st.accounts["u1"].Timezone != "Asia/Tokyo" {
		t.Fatalf("timezone = %q", st.accounts["u1"].Timezone)
	}
}

func TestSetTimezoneRejectsUnknownZone(t *testing.T) {
	t.Parallel()
	st := connectedStore()
	srv := newTestServer(st, &captureBus{})

	req := authedRequest(http.MethodPost, "/settings/timezone", `{"timezone":"Mars/Olympus"}`)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if st.accounts["u1"].Timezone != "Europe/Berlin" {
		t.Fatalf("timezone changed to %q", st.accounts["u1"].Timezone)
	}
}

func TestDisconnect(t *testing.T) {
	t.Parallel()
	st := connectedStore()
	srv := newTestServer(st, &captureBus{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, authedRequest(http.MethodPost, "/disconnect", ""))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := st.accounts["u1"]; ok {
		t.Fatal("account still stored")
	}

	var cleared int
	for _, c := range rec.Result().Cookies() {
		if (c.Name == userCookie || c.Name == sessionCookie) && c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Fatalf("cleared %d session cookies, want 2", cleared)
	}
}
