package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SpinnerState is where a spinner is in its life.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

// spinnerInterval is the time between animation frames.
const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner shows one network round trip on a single terminal line:
// an animated frame while it runs, then ✓ or ✗ with the elapsed time.
type Spinner struct {
	w     io.Writer
	label string
	clock clockwork.Clock

	mu      sync.Mutex
	state   SpinnerState
	frame   int
	started time.Time
	ended   time.Time
	drawn   int // visible width of the last frame line
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label, clock: clockwork.NewRealClock()}
}

// WithClock replaces the clock driving frames and timing.
func (s *Spinner) WithClock(clock clockwork.Clock) *Spinner {
	s.clock = clock
	return s
}

// Start draws the first frame and animates until Success or Fail.
// Calling it again is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state != SpinnerPending {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.started = s.clock.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	ticker := s.clock.NewTicker(spinnerInterval)
	s.drawFrameLocked()
	s.mu.Unlock()

	go s.animate(ticker)
}

func (s *Spinner) animate(ticker clockwork.Ticker) {
	defer close(s.done)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.Chan():
			s.mu.Lock()
			if s.state == SpinnerInProgress {
				s.frame = (s.frame + 1) % len(spinnerFrames)
				s.drawFrameLocked()
			}
			s.mu.Unlock()
		}
	}
}

// Success ends the spinner with a check mark.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess, "")
}

// Fail ends the spinner with a cross and, if given, the reason.
func (s *Spinner) Fail(reason string) {
	s.finish(SpinnerFailed, reason)
}

func (s *Spinner) finish(state SpinnerState, reason string) {
	s.mu.Lock()
	if s.state != SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.ended = s.clock.Now()
	close(s.stop)
	s.mu.Unlock()

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	symbol, style := SymbolSuccess, SuccessStyle()
	if state == SpinnerFailed {
		symbol, style = SymbolFail, ErrorStyle()
	}
	line := style.Render(symbol) + " " + s.label
	if reason != "" {
		line += ": " + reason
	}
	line += " " + MutedStyle().Render(formatDuration(s.ended.Sub(s.started)))
	s.clearLocked()
	fmt.Fprintln(s.w, line)
}

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed is the run time so far, or the total once finished.
func (s *Spinner) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case SpinnerPending:
		return 0
	case SpinnerInProgress:
		return s.clock.Since(s.started)
	}
	return s.ended.Sub(s.started)
}

func (s *Spinner) drawFrameLocked() {
	s.clearLocked()
	frame := InfoStyle().Render(spinnerFrames[s.frame])
	line := frame + " " + s.label + "…"
	fmt.Fprint(s.w, line)
	s.drawn = len([]rune(spinnerFrames[s.frame] + " " + s.label + "…"))
}

func (s *Spinner) clearLocked() {
	if s.drawn == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
