package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer lets the test read what the animation goroutine writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns what was written with color sequences removed.
func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return stripANSI(b.buf.String())
}

func newTestSpinner(label string) (*Spinner, *lockedBuffer, *clockwork.FakeClock) {
	out := &lockedBuffer{}
	clock := clockwork.NewFakeClock()
	return NewSpinner(out, label).WithClock(clock), out, clock
}

func TestSpinnerStartDrawsFirstFrame(t *testing.T) {
	s, out, _ := newTestSpinner("Fetching status")
	assert.Equal(t, SpinnerPending, s.State())
	assert.Equal(t, time.Duration(0), s.Elapsed())

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	assert.Contains(t, out.String(), spinnerFrames[0])
	assert.Contains(t, out.String(), "Fetching status…")
	s.Success()
}

func TestSpinnerAnimatesOnClockTicks(t *testing.T) {
	s, out, clock := newTestSpinner("Signing in")
	s.Start()

	clock.Advance(spinnerInterval)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), spinnerFrames[1])
	}, time.Second, 5*time.Millisecond)

	// Each new frame wipes the previous one first.
	assert.Contains(t, out.String(), "\r")
	s.Success()
}

func TestSpinnerSuccess(t *testing.T) {
	s, out, clock := newTestSpinner("Signing in")
	s.Start()
	clock.Advance(1500 * time.Millisecond)
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Equal(t, 1500*time.Millisecond, s.Elapsed())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\r")
	last := lines[len(lines)-1]
	assert.Contains(t, last, SymbolSuccess+" Signing in")
	assert.Contains(t, last, "1.5s")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestSpinnerFailShowsReason(t *testing.T) {
	s, out, _ := newTestSpinner("Fetching status")
	s.Start()
	s.Fail("backend unreachable")

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, out.String(), SymbolFail+" Fetching status: backend unreachable")
}

func TestSpinnerFinishIsOnce(t *testing.T) {
	s, out, _ := newTestSpinner("x")

	// Finishing a spinner that never started prints nothing.
	s.Success()
	assert.Empty(t, out.String())
	assert.Equal(t, SpinnerPending, s.State())

	s.Start()
	s.Start()
	s.Success()
	s.Fail("late")
	assert.Equal(t, SpinnerSuccess, s.State())
	assert.NotContains(t, out.String(), "late")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestSpinnerConcurrentReads(t *testing.T) {
	s, _, clock := newTestSpinner("x")
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.State()
			_ = s.Elapsed()
		}()
	}
	clock.Advance(spinnerInterval)
	wg.Wait()
	s.Success()

	assert.Equal(t, SpinnerSuccess, s.State())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0.00s"},
		{50 * time.Millisecond, "0.05s"},
		{100 * time.Millisecond, "0.1s"},
		{1500 * time.Millisecond, "1.5s"},
		{10 * time.Second, "10.0s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.duration))
		})
	}
}
