package views

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/session"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// uiLoop stands in for the program: posted functions run when drained.
type uiLoop struct {
	mu  sync.Mutex
	fns []func()
}

func (q *uiLoop) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *uiLoop) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return n
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		fn()
		n++
	}
}

// calls records the paths the fake backend saw.
type calls struct {
	mu    sync.Mutex
	paths []string
}

func (c *calls) add(p string) {
	c.mu.Lock()
	c.paths = append(c.paths, p)
	c.mu.Unlock()
}

func (c *calls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func replyJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	Deps
	loop    *uiLoop
	clock   *clockwork.FakeClock
	calls   *calls
	reloads *calls
	ctx     context.Context
	cancel  context.CancelFunc
}

// newHarness wires page dependencies against a fake backend. Paths
// missing from routes answer 404.
func newHarness(t *testing.T, token string, routes map[string]http.HandlerFunc) *harness {
	t.Helper()
	seen := &calls{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Method + " " + r.URL.Path)
		if h, ok := routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		replyJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}))
	t.Cleanup(srv.Close)

	guard := session.NewGuard(session.NewMemoryStore(token), logger.Noop())
	require.NoError(t, guard.Load())
	client, err := api.NewClient(api.Options{
		BaseURL:        srv.URL,
		Timeout:        2 * time.Second,
		MaxRPS:         1000,
		Token:          guard.Token,
		OnUnauthorized: guard.ClearSession,
		Logger:         logger.Noop(),
	})
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	sched := poll.New(clock, logger.Noop())
	t.Cleanup(sched.Stop)

	reloads := &calls{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &harness{
		Deps: Deps{
			Client: client,
			Guard:  guard,
			Store:  NewStore(clock),
			Sched:  sched,
			Reload: func(tag string) bool { reloads.add(tag); return true },
			Log:    logger.Noop(),
		},
		loop:    &uiLoop{},
		clock:   clock,
		calls:   seen,
		reloads: reloads,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// settle waits for the page's async work and applies its continuations.
func (h *harness) settle(b interface{ Wait() }) {
	b.Wait()
	h.loop.Drain()
}
