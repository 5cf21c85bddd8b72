// Package engine decides, per task-lifecycle event, whether a mutation is
// needed and issues it through the task-store gateway.
//
// Three decision procedures share a fetch/apply skeleton. Each is
// best-effort and at-most-once: gateway failures are logged and swallowed,
// never retried. Every transform is idempotent, so duplicate or
// out-of-order delivery of the same event is harmless. Do not add a
// "processed" flag here without changing the Outcome contract.
package engine

import (
	"context"
	"time"

	"todohook/internal/durations"
	"todohook/internal/storage"
	"todohook/internal/todoist"
	"todohook/internal/tzresolve"
	"todohook/pkg/logx"
	"todohook/pkg/textmark"
)

// GatewayFactory builds a gateway bound to one account's credential.
type GatewayFactory func(token string) todoist.Gateway

type Service struct {
	accounts storage.Store
	gateway  GatewayFactory
	defZone  string
	log      logx.Logger

	now func() time.Time
	rnd RandInRange
}

type Option func(*Service)

// WithClock substitutes the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand substitutes the scheduling randomness source (tests).
func WithRand(rnd RandInRange) Option {
	return func(s *Service) { s.rnd = rnd }
}

func New(accounts storage.Store, gateway GatewayFactory, defaultZone string, log logx.Logger, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		gateway:  gateway,
		defZone:  defaultZone,
		log:      log,
		now:      time.Now,
		rnd:      stdRand,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// resolver builds a fresh batch-scoped timezone resolver backed by the
// account store. One resolver lives for one procedure invocation.
func (s *Service) resolver() *tzresolve.Resolver {
	return tzresolve.New(tzresolve.SourceFunc(func(ctx context.Context, accountID string) (string, error) {
		a, err := s.accounts.GetAccount(ctx, accountID)
		if err != nil {
			return "", err
		}
		return a.Timezone, nil
	}), s.defZone, s.log)
}

// fetch loads the account and the current task snapshot.
// Events never carry trustworthy task state, so truth is always re-derived
// from the snapshot.
func (s *Service) fetch(ctx context.Context, accountID, taskID string) (todoist.Gateway, *todoist.Task, bool) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		s.log.Warn("account lookup failed; dropping event",
			logx.String("account", accountID), logx.String("task", taskID), logx.Err(err))
		return nil, nil, false
	}
	gw := s.gateway(account.AccessToken)
	task, err := gw.GetTask(ctx, taskID)
	if err != nil {
		s.log.Warn("task fetch failed; dropping event",
			logx.String("account", accountID), logx.String("task", taskID), logx.Err(err))
		return nil, nil, false
	}
	return gw, task, true
}

// TimeCheck assigns a time-of-day to a date-only due date.
func (s *Service) TimeCheck(ctx context.Context, accountID, taskID string, completed bool) Outcome {
	if completed {
		s.log.Debug("task completed; skipping time check", logx.String("task", taskID))
		return Noop
	}
	gw, task, ok := s.fetch(ctx, accountID, taskID)
	if !ok {
		return Failed
	}

	zone, loc := s.resolver().Location(ctx, accountID)
	dt := computeDueTime(task.Due, loc, s.now(), s.rnd)
	if dt == "" {
		return Noop
	}

	err := gw.UpdateTask(ctx, taskID, todoist.UpdateTaskArgs{
		DueDate:     todoist.Str(task.Due.Date),
		DueDatetime: todoist.Str(dt),
		Timezone:    todoist.Str(zone),
	})
	if err != nil {
		s.log.Warn("due time update failed", logx.String("task", taskID), logx.Err(err))
		return Failed
	}
	s.log.Info("assigned due time",
		logx.String("task", taskID), logx.String("datetime", dt), logx.String("zone", zone))
	return Applied
}

// CompletionToggle strikes/unstrikes content and strips the due time on
// completion. The content and due-date effects are independent: either,
// both, or neither may fire per invocation.
func (s *Service) CompletionToggle(ctx context.Context, accountID, taskID string, completed bool) Outcome {
	gw, task, ok := s.fetch(ctx, accountID, taskID)
	if !ok {
		return Failed
	}

	if !completed {
		if !textmark.IsStruck(task.Content) {
			return Noop
		}
		restored := textmark.Unstrike(task.Content)
		if err := gw.UpdateTask(ctx, taskID, todoist.UpdateTaskArgs{Content: todoist.Str(restored)}); err != nil {
			s.log.Warn("unstrike update failed", logx.String("task", taskID), logx.Err(err))
			return Failed
		}
		s.log.Info("removed strikethrough", logx.String("task", taskID))
		return Applied
	}

	outcome := Noop
	if !textmark.IsStruck(task.Content) {
		struck := textmark.Strike(task.Content)
		if err := gw.UpdateTask(ctx, taskID, todoist.UpdateTaskArgs{Content: todoist.Str(struck)}); err != nil {
			s.log.Warn("strike update failed", logx.String("task", taskID), logx.Err(err))
			return Failed
		}
		s.log.Info("added strikethrough", logx.String("task", taskID))
		outcome = Applied
	}

	if task.Due != nil && task.Due.Datetime != "" && textmark.HasTime(task.Due.Datetime) {
		date := textmark.DateOnly(task.Due.Datetime)
		if err := gw.UpdateTask(ctx, taskID, todoist.UpdateTaskArgs{DueDate: todoist.Str(date)}); err != nil {
			s.log.Warn("due time removal failed", logx.String("task", taskID), logx.Err(err))
			return Failed
		}
		s.log.Info("stripped due time", logx.String("task", taskID), logx.String("date", date))
		outcome = Applied
	}
	return outcome
}

// DurationCheck annotates content with the label-derived duration and sets
// the structured duration field.
func (s *Service) DurationCheck(ctx context.Context, accountID, taskID string) Outcome {
	gw, task, ok := s.fetch(ctx, accountID, taskID)
	if !ok {
		return Failed
	}

	if task.Due == nil || task.Due.Date == "" {
		return Noop
	}
	minutes := durations.Minutes(task.Labels)
	if minutes == 0 {
		return Noop
	}
	if textmark.HasDuration(task.Content) {
		s.log.Debug("duration already annotated", logx.String("task", taskID))
		return Noop
	}

	annotated := textmark.AppendDuration(task.Content, minutes)
	if err := gw.UpdateTask(ctx, taskID, todoist.UpdateTaskArgs{Content: todoist.Str(annotated)}); err != nil {
		s.log.Warn("duration annotation failed", logx.String("task", taskID), logx.Err(err))
		return Failed
	}
	if err := gw.SetDuration(ctx, taskID, minutes, durations.Unit); err != nil {
		s.log.Warn("structured duration update failed", logx.String("task", taskID), logx.Err(err))
		return Failed
	}
	s.log.Info("set task duration", logx.String("task", taskID), logx.Int("minutes", minutes))
	return Applied
}

// EnsureLabels provisions the duration vocabulary for one account.
func (s *Service) EnsureLabels(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	return durations.EnsureLabels(ctx, s.gateway(account.AccessToken))
}
