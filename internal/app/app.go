// Package app assembles the service: config, logging, storage, the
// mutation engine, the event dispatcher, the sweep scheduler, and the
// HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"todohook/internal/config"
	"todohook/internal/dispatch"
	"todohook/internal/engine"
	"todohook/internal/eventbus"
	"todohook/internal/runtime/supervisor"
	"todohook/internal/storage"
	"todohook/internal/sweep"
	"todohook/internal/todoist"
	"todohook/internal/web"
	"todohook/pkg/logx"
)

// StopReason records why a shutdown began; it only feeds logs.
type StopReason string

const (
	StopUnknown    StopReason = "unknown"
	StopSIGINT     StopReason = "SIGINT"
	StopSIGTERM    StopReason = "SIGTERM"
	StopFatalError StopReason = "fatal_error"
)

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	engine *engine.Service
	disp   *dispatch.Service
	sweep  *sweep.Service
	server *web.Server
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	busyTimeout, err := config.ParseDurationField("database.busy_timeout", cfg.Database.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Database.Driver,
		Path:        cfg.Database.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("database is required; set database.driver and database.path")
	}
	log.Info("storage opened", logx.String("driver", cfg.Database.Driver))

	gateway, err := gatewayFactory(cfg.Todoist)
	if err != nil {
		return nil, err
	}

	eng := engine.New(store, gateway, cfg.Engine.DefaultTimezone,
		log.With(logx.String("comp", "engine")))

	bus := eventbus.New()
	disp := dispatch.New(bus, eng, log.With(logx.String("comp", "dispatch")),
		cfg.Engine.QueueSize)

	sweepSvc := sweep.New(sweep.Config{
		Enabled:  cfg.Sweep.Enabled,
		Schedule: cfg.Sweep.Schedule,
		Timezone: cfg.Sweep.Timezone,
	}, store, eng, gateway, log.With(logx.String("comp", "sweep")))

	clientID := envOr("TODOIST_CLIENT_ID", cfg.Todoist.ClientID)
	clientSecret := envOr("TODOIST_CLIENT_SECRET", cfg.Todoist.ClientSecret)
	redirectURL := strings.TrimSpace(cfg.Todoist.RedirectURL)
	if redirectURL == "" && cfg.Server.BaseURL != "" {
		redirectURL = strings.TrimRight(cfg.Server.BaseURL, "/") + "/redirect"
	}
	auth := web.NewAuthenticator(clientID, clientSecret, redirectURL,
		log.With(logx.String("comp", "oauth")))

	readTimeout, err := config.ParseDurationField("server.read_timeout", cfg.Server.ReadTimeout)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := config.ParseDurationField("server.write_timeout", cfg.Server.WriteTimeout)
	if err != nil {
		return nil, err
	}
	server := web.NewServer(web.Config{
		Addr:         cfg.Server.Addr,
		BaseURL:      cfg.Server.BaseURL,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}, bus, store, auth, log.With(logx.String("comp", "web")))

	return &App{
		cfgm:   cfgm,
		log:    log,
		logs:   logSvc,
		bus:    bus,
		store:  store,
		engine: eng,
		disp:   disp,
		sweep:  sweepSvc,
		server: server,
	}, nil
}

// gatewayFactory builds per-account Todoist clients from the shared
// client settings.
func gatewayFactory(tc config.TodoistConfig) (engine.GatewayFactory, error) {
	timeout, err := config.ParseDurationField("todoist.timeout", tc.Timeout)
	if err != nil {
		return nil, err
	}
	var opts []todoist.Option
	if timeout > 0 {
		opts = append(opts, todoist.WithTimeout(timeout))
	}
	if tc.RatePerSec > 0 {
		burst := tc.Burst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, todoist.WithRate(tc.RatePerSec, burst))
	}
	return func(token string) todoist.Gateway {
		return todoist.New(token, opts...)
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Done is closed when the app supervisor context is canceled (fatal error
// or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return cfg.Validate()
	})

	a.disp.Start(a.sup.Context())

	if a.sweep.Enabled() {
		if err := a.sweep.Start(a.sup.Context()); err != nil {
			return err
		}
	}

	a.sup.Go("web.serve", func(c context.Context) error {
		return a.server.Start(c)
	})

	// hot reload fan-out: logging is the only section applied live; the
	// rest logs a restart hint
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.logs.Apply(logx.Config{
					Level:   newCfg.Logging.Level,
					Console: newCfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: newCfg.Logging.File.Enabled,
						Path:    newCfg.Logging.File.Path,
					},
				})
				a.log.Info("config reloaded; non-logging changes need a restart")
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	// Bound each shutdown step so one component cannot stall the stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			if dl, ok := ctx.Deadline(); ok {
				if rem := time.Until(dl); rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name), logx.Err(stepCtx.Err()))
		}
	}

	step("web", 3*time.Second, func(c context.Context) error { return a.server.Stop(c) })
	step("sweep", 2*time.Second, func(c context.Context) error { return a.sweep.Stop(c) })
	step("dispatch", 2*time.Second, func(c context.Context) error { return a.disp.Stop(c) })
	step("storage", 1*time.Second, func(c context.Context) error { return a.store.Close() })
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}
