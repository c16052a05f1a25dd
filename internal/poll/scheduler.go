// Package poll runs named tasks on fixed cadences.
//
// Each task is invoked once immediately and then on every tick of its
// interval until cancelled. Invocations of one task never overlap: a tick
// that arrives while the previous invocation is still running is dropped
// and counted as skipped. Cancelling a handle is synchronous; an
// invocation already in flight may finish, but the context it was given is
// cancelled so it can drop its result instead of applying it.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/autosense/senseboard/internal/logger"
)

// Action is the work performed on every tick. ctx is cancelled when the
// task is cancelled.
type Action func(ctx context.Context)

// Scheduler owns a set of running tasks.
type Scheduler struct {
	clock clockwork.Clock
	log   logger.Logger

	mu      sync.Mutex
	handles map[*Handle]struct{}
	stopped bool

	wg sync.WaitGroup
}

// New creates a scheduler driven by clock. A nil clock means wall time.
func New(clock clockwork.Clock, log logger.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		clock:   clock,
		log:     logger.OrDefault(log),
		handles: make(map[*Handle]struct{}),
	}
}

// Clock returns the clock driving the scheduler.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Schedule starts action under name, invoking it now and then every
// interval. A non-positive interval runs the action exactly once; the
// handle then cancels itself and stops counting as active.
// Scheduling on a stopped scheduler returns an already-cancelled handle.
func (s *Scheduler) Schedule(name string, interval time.Duration, action Action) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		name:     name,
		interval: interval,
		action:   action,
		sched:    s,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		h.cancelled = true
		cancel()
		return h
	}
	s.handles[h] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	var ticker clockwork.Ticker
	if interval > 0 {
		// Created before returning so fake clocks see the ticker immediately.
		ticker = s.clock.NewTicker(interval)
	}

	s.log.Debug("poll: scheduled %s every %s", name, interval)
	go s.loop(h, ticker)
	return h
}

func (s *Scheduler) loop(h *Handle, ticker clockwork.Ticker) {
	defer s.wg.Done()

	s.fire(h)
	if ticker == nil {
		return
	}
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.Chan():
			s.fire(h)
		}
	}
}

// fire starts one invocation unless the task is cancelled or still busy.
func (s *Scheduler) fire(h *Handle) {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	if h.inFlight {
		h.skipped++
		h.mu.Unlock()
		s.log.Debug("poll: %s still running, tick skipped", h.name)
		return
	}
	h.inFlight = true
	h.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("poll: %s panicked: %v", h.name, r)
			}
			h.mu.Lock()
			h.inFlight = false
			h.runs++
			h.mu.Unlock()
			// A one-shot task is finished after its only run.
			if h.interval <= 0 {
				h.Cancel()
			}
		}()
		h.action(h.ctx)
	}()
}

// Cancel stops h. Equivalent to h.Cancel().
func (s *Scheduler) Cancel(h *Handle) {
	if h != nil {
		h.Cancel()
	}
}

// CancelAll stops every task. The scheduler stays usable.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
	if len(handles) > 0 {
		s.log.Debug("poll: cancelled %d task(s)", len(handles))
	}
}

// Active returns the number of tasks that have not been cancelled.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Stop cancels every task, refuses new ones, and waits for running
// invocations to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.CancelAll()
	s.wg.Wait()
}

func (s *Scheduler) forget(h *Handle) {
	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
}

// Handle controls one scheduled task.
type Handle struct {
	name     string
	interval time.Duration
	action   Action
	sched    *Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
	inFlight  bool
	runs      int
	skipped   int
}

// Cancel stops future invocations and cancels the context handed to the
// current one. Safe to call more than once.
func (h *Handle) Cancel() {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.cancelled = true
	h.mu.Unlock()

	h.cancel()
	h.sched.forget(h)
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Done is closed when the task is cancelled.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Runs returns how many invocations have completed.
func (h *Handle) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}

// Skipped returns how many ticks were dropped because an invocation was
// still running.
func (h *Handle) Skipped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.skipped
}

func (h *Handle) Name() string           { return h.name }
func (h *Handle) Interval() time.Duration { return h.interval }
