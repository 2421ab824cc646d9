package gateway

import (
	"context"
	"sync"
	"time"

	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

// IdleHandler runs when a channel has been quiet for a full window.
type IdleHandler func(ctx context.Context, channelID string)

// Scheduler keeps at most one single-shot inactivity timer per channel.
// After a timer fires and its handler returns, the channel is re-armed.
type Scheduler struct {
	mu      sync.Mutex
	window  time.Duration
	handler IdleHandler
	timers  map[string]*idleTimer
	seq     uint64
	stopped bool
	logger  *pkgLogger.Logger
}

type idleTimer struct {
	timer *time.Timer
	gen   uint64
}

// NewScheduler creates a scheduler that calls handler after window of
// silence on an armed channel.
func NewScheduler(window time.Duration, handler IdleHandler, logger *pkgLogger.Logger) *Scheduler {
	return &Scheduler{
		window:  window,
		handler: handler,
		timers:  make(map[string]*idleTimer),
		logger:  logger.WithComponent("inactivity"),
	}
}

// Window returns the configured quiet period.
func (s *Scheduler) Window() time.Duration {
	return s.window
}

// Arm replaces any pending timer for the channel with a fresh one.
func (s *Scheduler) Arm(ctx context.Context, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.timers[channelID]; ok {
		prev.timer.Stop()
	}

	s.seq++
	gen := s.seq
	s.timers[channelID] = &idleTimer{
		gen:   gen,
		timer: time.AfterFunc(s.window, func() { s.fire(ctx, channelID, gen) }),
	}
	s.logger.DebugWithIntention(pkgLogger.IntentionInactivity, "Armed inactivity timer", "channel", channelID, "window", s.window)
}

// Armed reports whether the channel has a pending timer.
func (s *Scheduler) Armed(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[channelID]
	return ok
}

// Stop cancels every pending timer. No handler starts after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.timers {
		t.timer.Stop()
		delete(s.timers, id)
	}
}

// fire runs the handler if gen is still the channel's current timer. A
// timer.Stop that loses the race with expiry leaves a stale callback
// behind; the generation check discards it.
func (s *Scheduler) fire(ctx context.Context, channelID string, gen uint64) {
	s.mu.Lock()
	cur, ok := s.timers[channelID]
	if s.stopped || !ok || cur.gen != gen || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	delete(s.timers, channelID)
	s.mu.Unlock()

	s.logger.InfoWithIntention(pkgLogger.IntentionInactivity, "Channel inactive", "channel", channelID, "window", s.window)
	s.handler(ctx, channelID)

	if ctx.Err() == nil {
		s.Arm(ctx, channelID)
	}
}
