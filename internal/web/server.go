// Package web is the HTTP surface: the Todoist webhook sink, the OAuth
// connect flow, and the settings page.
//
// The webhook handler does not validate the sender's authenticity; that is
// a boundary concern for whatever fronts this service.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"todohook/internal/eventbus"
	"todohook/internal/storage"
	"todohook/pkg/logx"
)

type Config struct {
	Addr         string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	cfg  Config
	log  logx.Logger
	bus  eventbus.Bus
	st   storage.Store
	auth *Authenticator

	srv *http.Server
}

func NewServer(cfg Config, bus eventbus.Bus, st storage.Store, auth *Authenticator, log logx.Logger) *Server {
	s := &Server{cfg: cfg, log: log, bus: bus, st: st, auth: auth}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook", s.handleWebhook)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /authorize", s.handleAuthorize)
	mux.HandleFunc("GET /redirect", s.handleRedirect)
	mux.HandleFunc("GET /settings", s.handleSettings)
	mux.HandleFunc("POST /settings/timezone", s.handleSetTimezone)
	mux.HandleFunc("POST /disconnect", s.handleDisconnect)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("http server listening", logx.String("addr", s.cfg.Addr))
	err := s.srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
