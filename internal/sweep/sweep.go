// Package sweep periodically re-evaluates every account's open tasks.
//
// Webhooks are at-most-once and mutations are best-effort, so a missed or
// failed event just waits here: the next sweep re-runs the same idempotent
// decision procedures over the full task list.
package sweep

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"todohook/internal/engine"
	"todohook/internal/storage"
	"todohook/pkg/logx"
)

type Config struct {
	Enabled  bool
	Schedule string // cron spec (five fields) or descriptor (@every, @hourly)
	Timezone string // IANA zone the schedule is evaluated in; empty = local
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	log logx.Logger

	accounts storage.Store
	eng      *engine.Service
	gateway  engine.GatewayFactory

	parser cron.Parser
	c      *cron.Cron

	running bool
}

func New(cfg Config, accounts storage.Store, eng *engine.Service, gateway engine.GatewayFactory, log logx.Logger) *Service {
	return &Service{
		cfg:      cfg,
		accounts: accounts,
		eng:      eng,
		gateway:  gateway,
		log:      log,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

func (s *Service) Enabled() bool { return s.cfg.Enabled }

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled || s.c != nil {
		return nil
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return err
		}
		loc = l
	}

	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	if _, err := c.AddFunc(s.cfg.Schedule, func() { s.runOnce(ctx) }); err != nil {
		return err
	}
	s.c = c
	c.Start()
	s.log.Info("sweep scheduled", logx.String("schedule", s.cfg.Schedule))
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runOnce walks every account. Overlapping runs are skipped rather than
// queued: a second sweep of the same tasks would be all no-ops anyway.
func (s *Service) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Debug("sweep still running; skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.log.Warn("sweep: listing accounts failed", logx.Err(err))
		return
	}

	var checked int
	for _, a := range accounts {
		if ctx.Err() != nil {
			return
		}
		checked += s.sweepAccount(ctx, a)
	}
	s.log.Info("sweep finished",
		logx.Int("accounts", len(accounts)),
		logx.Int("tasks", checked),
		logx.Duration("took", time.Since(started)))
}

func (s *Service) sweepAccount(ctx context.Context, a storage.Account) int {
	if err := s.eng.EnsureLabels(ctx, a.UserID); err != nil {
		s.log.Warn("sweep: label provisioning failed",
			logx.String("account", a.UserID), logx.Err(err))
		// Keep going; time checks don't need the vocabulary.
	}

	gw := s.gateway(a.AccessToken)
	tasks, err := gw.GetTasks(ctx)
	if err != nil {
		s.log.Warn("sweep: task listing failed",
			logx.String("account", a.UserID), logx.Err(err))
		return 0
	}

	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		s.eng.TimeCheck(ctx, a.UserID, t.ID, false)
		s.eng.DurationCheck(ctx, a.UserID, t.ID)
	}
	return len(tasks)
}
