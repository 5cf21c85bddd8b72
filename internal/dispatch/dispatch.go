// Package dispatch consumes task events and runs the engine's decision
// procedures, one goroutine per event.
//
// Dispatch is deliberately fire-and-forget: no queue beyond the bus
// buffer, no dedup, no per-task lock, no ordering between events (even for
// the same task). The engine's idempotency makes that safe.
package dispatch

import (
	"context"

	"todohook/internal/engine"
	"todohook/internal/eventbus"
	"todohook/internal/runtime/supervisor"
	"todohook/pkg/logx"
)

type Service struct {
	bus    eventbus.Bus
	eng    *engine.Service
	log    logx.Logger
	buffer int

	sup   *supervisor.Supervisor
	unsub func()
}

func New(bus eventbus.Bus, eng *engine.Service, log logx.Logger, buffer int) *Service {
	if buffer <= 0 {
		buffer = 64
	}
	return &Service{bus: bus, eng: eng, log: log, buffer: buffer}
}

func (s *Service) Start(ctx context.Context) {
	if s.sup != nil {
		return
	}
	s.sup = supervisor.New(ctx, supervisor.WithLogger(s.log))

	ch, unsub := s.bus.Subscribe(s.buffer)
	s.unsub = unsub

	s.sup.Go0("dispatch.consume", func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				// Each event is an independent unit of work; a slow gateway
				// call must not delay the next event.
				s.sup.Go0("dispatch.event", func(ctx context.Context) {
					s.handle(ctx, ev)
				})
			}
		}
	})
}

func (s *Service) Stop(ctx context.Context) error {
	if s.sup == nil {
		return nil
	}
	if s.unsub != nil {
		s.unsub()
	}
	return s.sup.Stop(ctx)
}

func (s *Service) handle(ctx context.Context, ev eventbus.Event) {
	var out engine.Outcome
	switch ev.Kind {
	case eventbus.KindTimeCheck:
		out = s.eng.TimeCheck(ctx, ev.AccountID, ev.TaskID, ev.Completed)
	case eventbus.KindCompletion:
		out = s.eng.CompletionToggle(ctx, ev.AccountID, ev.TaskID, ev.Completed)
	case eventbus.KindDuration:
		out = s.eng.DurationCheck(ctx, ev.AccountID, ev.TaskID)
	default:
		s.log.Warn("unknown event kind", logx.String("kind", string(ev.Kind)))
		return
	}
	s.log.Debug("event handled",
		logx.String("kind", string(ev.Kind)),
		logx.String("task", ev.TaskID),
		logx.String("outcome", out.String()))
}
