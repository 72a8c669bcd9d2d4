package workers

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"quotewatch/internal/metrics"
	"quotewatch/pkg/errors"
	"quotewatch/pkg/logger"
)

// State of the refresh scheduler
type State int

const (
	// StateIdle has no timer armed
	StateIdle State = iota
	// StateScheduled waits for the one-shot grace timer
	StateScheduled
	// StateRefreshing runs the worker on every recurring tick
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// ActiveFunc reports whether ticks should do work right now
type ActiveFunc func() bool

// SchedulerConfig configures a RefreshScheduler
type SchedulerConfig struct {
	GraceDelay time.Duration
	Clock      Clock
}

// RefreshScheduler runs a worker on a two stage cadence: nothing for
// GraceDelay after ScheduleToStart, then once per worker Interval. A tick
// only runs the worker while the active predicate holds; inactive ticks are
// skipped, never queued.
type RefreshScheduler struct {
	mu     sync.Mutex
	clock  Clock
	grace  time.Duration
	worker Worker
	active ActiveFunc
	log    *logger.Logger

	state      State
	startTimer Timer
	tickTimer  Timer
	startGen   uint64
	tickGen    uint64
	ctx        context.Context

	inflight sync.WaitGroup
}

// NewRefreshScheduler creates an idle scheduler
func NewRefreshScheduler(worker Worker, active ActiveFunc, cfg SchedulerConfig) (*RefreshScheduler, error) {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.GraceDelay <= 0 || worker.Interval() <= 0 {
		return nil, errors.NewValidationError("scheduler", "grace delay and interval must be positive", cfg.GraceDelay)
	}
	if worker.Interval() >= cfg.GraceDelay {
		return nil, errors.NewValidationError("interval", "must be shorter than the grace delay", worker.Interval())
	}
	if active == nil {
		active = func() bool { return true }
	}

	return &RefreshScheduler{
		clock:  cfg.Clock,
		grace:  cfg.GraceDelay,
		worker: worker,
		active: active,
		log:    logger.Get().With("component", "refresh_scheduler", "worker", worker.Name()),
		ctx:    context.Background(),
	}, nil
}

// State returns the current state
func (s *RefreshScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ScheduleToStart (re)arms the grace timer. Any pending grace timer and any
// recurring timer are cancelled up front, not when the grace timer fires, so
// no tick lands inside the grace window and every reschedule buys a full
// quiet period. Ticks resume once the grace delay passes without another
// call. Runs use ctx.
func (s *RefreshScheduler) ScheduleToStart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	s.cancelStartLocked()
	s.cancelTickLocked()

	gen := s.startGen
	s.startTimer = s.clock.AfterFunc(s.grace, func() { s.onStart(gen) })
	s.setStateLocked(StateScheduled)
}

// StopScheduleTimer cancels a pending grace timer. Safe in any state.
func (s *RefreshScheduler) StopScheduleTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelStartLocked()
	if s.state == StateScheduled {
		s.setStateLocked(StateIdle)
	}
}

// StopRefreshingTimer cancels the recurring timer. A run already in progress
// is allowed to finish. Safe in any state.
func (s *RefreshScheduler) StopRefreshingTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTickLocked()
	if s.state == StateRefreshing {
		s.setStateLocked(StateIdle)
	}
}

// Stop cancels both timers
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelStartLocked()
	s.cancelTickLocked()
	s.setStateLocked(StateIdle)
}

// Wait blocks until in-flight runs finish or ctx is done
func (s *RefreshScheduler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RefreshScheduler) onStart(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.startGen || s.state != StateScheduled {
		return
	}
	s.startTimer = nil
	s.cancelTickLocked()
	s.armTickLocked()
	s.setStateLocked(StateRefreshing)
	s.log.Debugw("Grace delay elapsed, refreshing", "interval", s.worker.Interval())
}

func (s *RefreshScheduler) onTick(gen uint64) {
	s.mu.Lock()
	if gen != s.tickGen || s.state != StateRefreshing {
		s.mu.Unlock()
		return
	}
	// re-arm first so a slow run never delays the cadence
	s.armTickLocked()
	ctx := s.ctx
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	s.runOnce(ctx)
}

func (s *RefreshScheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("Worker panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if !s.worker.Enabled() || !s.active() {
		if sk, ok := s.worker.(interface{ RecordSkip() }); ok {
			sk.RecordSkip()
		}
		return
	}

	if err := s.worker.Run(ctx); err != nil {
		s.log.Warnw("Worker execution failed", "error", err)
	}
}

func (s *RefreshScheduler) armTickLocked() {
	gen := s.tickGen
	s.tickTimer = s.clock.AfterFunc(s.worker.Interval(), func() { s.onTick(gen) })
}

func (s *RefreshScheduler) cancelStartLocked() {
	s.startGen++
	if s.startTimer != nil {
		s.startTimer.Stop()
		s.startTimer = nil
	}
}

func (s *RefreshScheduler) cancelTickLocked() {
	s.tickGen++
	if s.tickTimer != nil {
		s.tickTimer.Stop()
		s.tickTimer = nil
	}
}

func (s *RefreshScheduler) setStateLocked(state State) {
	if s.state != state {
		s.log.Debugw("Scheduler state changed", "from", s.state, "to", state)
	}
	s.state = state
	metrics.SchedulerState.Set(float64(state))
}
