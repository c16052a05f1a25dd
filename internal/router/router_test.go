package router

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/refresh"
	"github.com/autosense/senseboard/internal/session"
)

// queue stands in for the UI loop: posted functions run when drained.
type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *queue) Drain() {
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		fn()
	}
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeView struct {
	id        ID
	log       *journal
	mountErr  error
	resources []Resource
	onMount   func(ctx context.Context, c Container)
	onUnmount func()
}

func (v *fakeView) Mount(ctx context.Context, c Container) error {
	v.log.add("mount:" + string(v.id))
	if v.onMount != nil {
		v.onMount(ctx, c)
	}
	return v.mountErr
}

func (v *fakeView) Unmount() {
	if v.onUnmount != nil {
		v.onUnmount()
	}
	v.log.add("unmount:" + string(v.id))
}

func (v *fakeView) Resources() []Resource { return v.resources }

type fixture struct {
	guard  *session.Guard
	q      *queue
	log    *journal
	clock  *clockwork.FakeClock
	cache  *refresh.Cache
	sched  *poll.Scheduler
	router *Router
	events []Event
	evMu   sync.Mutex
	views  map[ID]*fakeView
}

func newFixture(t *testing.T, token string, customize func(f *fixture)) *fixture {
	t.Helper()

	f := &fixture{
		guard: session.NewGuard(session.NewMemoryStore(token), logger.Noop()),
		q:     &queue{},
		log:   &journal{},
		clock: clockwork.NewFakeClock(),
		cache: refresh.NewCache(),
		views: map[ID]*fakeView{},
	}
	require.NoError(t, f.guard.Load())
	f.sched = poll.New(f.clock, logger.Noop())
	t.Cleanup(f.sched.Stop)

	for _, id := range append([]ID{Login}, SidebarOrder...) {
		f.views[id] = &fakeView{id: id, log: f.log}
	}
	if customize != nil {
		customize(f)
	}

	factories := make(map[ID]Factory, len(f.views))
	for id := range f.views {
		id := id
		factories[id] = func() View {
			// fresh instance sharing the template's behaviour
			tpl := f.views[id]
			cp := *tpl
			return &cp
		}
	}

	f.router = New(f.guard, f.q, factories, Options{
		Clock:     f.clock,
		Cache:     f.cache,
		Policy:    refresh.Policy{Default: refresh.DefaultTTL},
		Scheduler: f.sched,
		Logger:    logger.Noop(),
		OnEvent: func(e Event) {
			f.evMu.Lock()
			f.events = append(f.events, e)
			f.evMu.Unlock()
		},
	})
	t.Cleanup(f.router.Close)
	return f
}

func (f *fixture) eventKinds() []string {
	f.evMu.Lock()
	defer f.evMu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind.String()+":"+string(e.View))
	}
	return out
}

func (f *fixture) resetEvents() {
	f.evMu.Lock()
	f.events = nil
	f.evMu.Unlock()
}

func TestStartWithoutSessionShowsLogin(t *testing.T) {
	f := newFixture(t, "", nil)

	assert.Equal(t, Login, f.router.Start())
	assert.Equal(t, Login, f.router.Active())
	assert.Equal(t, Unauthenticated, f.router.State())
}

func TestStartWithSessionShowsHome(t *testing.T) {
	f := newFixture(t, "tok", nil)

	assert.Equal(t, Home, f.router.Start())
	assert.Equal(t, Active, f.router.State())
	assert.Equal(t, []string{"mount:home"}, f.log.list())
}

func TestNavigateResolution(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		target ID
		want   ID
	}{
		{"known view", "tok", Security, Security},
		{"unknown view falls back to home", "tok", ID("settings"), Home},
		{"empty id falls back to home", "tok", "", Home},
		{"login while authenticated goes home", "tok", Login, Home},
		{"no session forces login", "", Apps, Login},
		{"no session unknown view forces login", "", ID("nope"), Login},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.token, nil)
			f.router.Start()

			assert.Equal(t, tt.want, f.router.Navigate(tt.target))
			assert.Equal(t, tt.want, f.router.Active())
		})
	}
}

func TestUnmountCompletesBeforeMount(t *testing.T) {
	var homeTask *poll.Handle
	var sawCancelled atomic.Bool

	f := newFixture(t, "tok", nil)
	f.views[Home].onMount = func(ctx context.Context, _ Container) {
		homeTask = f.sched.Schedule("home-poll", time.Second, func(context.Context) {})
	}
	f.views[Home].onUnmount = func() { homeTask.Cancel() }
	f.views[Security].onMount = func(context.Context, Container) {
		sawCancelled.Store(homeTask.Cancelled())
	}

	f.router.Start()
	f.resetEvents()
	f.router.Navigate(Security)

	assert.True(t, sawCancelled.Load(), "home's task must be cancelled before security mounts")
	assert.Equal(t, []string{"mount:home", "unmount:home", "mount:security"}, f.log.list())
	assert.Equal(t, []string{"unmounted:home", "loading:security", "mounted:security"}, f.eventKinds())
	assert.Equal(t, 0, f.sched.Active())
}

func TestUnmountCancelsMountContext(t *testing.T) {
	f := newFixture(t, "tok", nil)

	var homeCtx context.Context
	f.views[Home].onMount = func(ctx context.Context, _ Container) { homeCtx = ctx }

	f.router.Start()
	require.NoError(t, homeCtx.Err())

	f.router.Navigate(Apps)
	assert.ErrorIs(t, homeCtx.Err(), context.Canceled)
}

func TestFreshInstancePerNavigation(t *testing.T) {
	f := newFixture(t, "tok", nil)
	f.router.Start()

	first := f.router.ActiveView()
	f.router.Navigate(Apps)
	f.router.Navigate(Home)

	assert.NotSame(t, first, f.router.ActiveView())
}

func TestClearSessionReturnsToLogin(t *testing.T) {
	f := newFixture(t, "tok", nil)
	f.router.Start()
	f.router.Navigate(Security)

	widget := f.sched.Schedule("gauges", 3*time.Second, func(context.Context) {})

	f.guard.ClearSession()
	f.q.Drain()

	assert.Equal(t, Login, f.router.Active())
	assert.Equal(t, Unauthenticated, f.router.State())
	assert.True(t, widget.Cancelled(), "dashboard-wide tasks stop on session loss")
	assert.Equal(t, 0, f.sched.Active())

	// Every non-login route now lands on login.
	for _, id := range SidebarOrder {
		assert.Equal(t, Login, f.router.Navigate(id), string(id))
	}
}

func TestSetSessionGoesHome(t *testing.T) {
	f := newFixture(t, "", nil)
	f.router.Start()
	require.Equal(t, Login, f.router.Active())

	require.NoError(t, f.guard.SetSession("fresh"))
	f.q.Drain()

	assert.Equal(t, Home, f.router.Active())
	assert.Equal(t, Active, f.router.State())
}

func TestMountFailureIsRecordedNotRetried(t *testing.T) {
	boom := stderrors.New("boom")
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Disk].mountErr = boom
	})
	f.router.Start()
	f.resetEvents()

	assert.Equal(t, Disk, f.router.Navigate(Disk))
	assert.ErrorIs(t, f.router.LastError(), boom)
	assert.Equal(t, Disk, f.router.Active())
	assert.Contains(t, f.eventKinds(), "mount-failed:disk")

	mounts := 0
	for _, e := range f.log.list() {
		if e == "mount:disk" {
			mounts++
		}
	}
	assert.Equal(t, 1, mounts)

	f.router.Navigate(Home)
	assert.NoError(t, f.router.LastError())
}

func TestPlaceholderShownBetweenViews(t *testing.T) {
	f := newFixture(t, "tok", nil)
	f.router.placeholder = func() View { return &fakeView{id: "placeholder", log: f.log} }

	f.router.Start()

	assert.Equal(t, []string{"mount:placeholder", "unmount:placeholder", "mount:home"}, f.log.list())
}

func TestStaleResourcesLoadOnActivation(t *testing.T) {
	var loads atomic.Int32
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Security].resources = []Resource{{
			Tag: "security",
			Load: func(context.Context) error {
				loads.Add(1)
				return nil
			},
		}}
	})
	f.router.Start()

	f.router.Navigate(Security)
	f.router.Wait()
	assert.Equal(t, int32(1), loads.Load())

	// Back within the TTL: cached, no fetch.
	f.router.Navigate(Home)
	f.clock.Advance(200 * time.Second)
	f.router.Navigate(Security)
	f.router.Wait()
	assert.Equal(t, int32(1), loads.Load())

	// Past the TTL: fetched again.
	f.clock.Advance(101 * time.Second)
	f.router.Navigate(Home)
	f.router.Navigate(Security)
	f.router.Wait()
	assert.Equal(t, int32(2), loads.Load())
}

func TestFailedLoadIsNotMarkedFresh(t *testing.T) {
	var loads atomic.Int32
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Apps].resources = []Resource{{
			Tag: "apps",
			Load: func(context.Context) error {
				loads.Add(1)
				return stderrors.New("503")
			},
		}}
	})
	f.router.Start()

	f.router.Navigate(Apps)
	f.router.Wait()
	_, marked := f.cache.LastRefreshed("apps")
	assert.False(t, marked)

	f.router.Navigate(Home)
	f.router.Navigate(Apps)
	f.router.Wait()
	assert.Equal(t, int32(2), loads.Load())
}

func TestResourceTTLOverridesPolicy(t *testing.T) {
	var loads atomic.Int32
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Optimizer].resources = []Resource{{
			Tag: "forecast",
			TTL: 10 * time.Second,
			Load: func(context.Context) error {
				loads.Add(1)
				return nil
			},
		}}
	})
	f.router.Start()

	f.router.Navigate(Optimizer)
	f.router.Wait()
	f.clock.Advance(10 * time.Second)
	f.router.Navigate(Home)
	f.router.Navigate(Optimizer)
	f.router.Wait()

	assert.Equal(t, int32(2), loads.Load())
}

func TestReloadDedupesConcurrentLoads(t *testing.T) {
	release := make(chan struct{})
	var loads atomic.Int32
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Disk].resources = []Resource{{
			Tag: "partitions",
			Load: func(ctx context.Context) error {
				loads.Add(1)
				<-release
				return nil
			},
		}}
	})
	f.router.Start()
	f.router.Navigate(Disk)

	require.Eventually(t, func() bool { return loads.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, f.router.Reload("partitions"))
	assert.True(t, f.router.Reload("partitions"))
	assert.False(t, f.router.Reload("unknown"))

	close(release)
	f.router.Wait()
	assert.Equal(t, int32(1), loads.Load())

	// A reload after completion ignores the TTL.
	assert.True(t, f.router.Reload("partitions"))
	f.router.Wait()
	assert.Equal(t, int32(2), loads.Load())
}

func TestSessionLossCancelsInFlightLoads(t *testing.T) {
	loadCtx := make(chan context.Context, 1)
	f := newFixture(t, "tok", func(f *fixture) {
		f.views[Apps].resources = []Resource{{
			Tag: "processes",
			Load: func(ctx context.Context) error {
				loadCtx <- ctx
				<-ctx.Done()
				return ctx.Err()
			},
		}}
	})
	f.router.Start()
	f.router.Navigate(Apps)

	ctx := <-loadCtx
	f.guard.ClearSession()
	f.q.Drain()
	f.router.Wait()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	_, marked := f.cache.LastRefreshed("processes")
	assert.False(t, marked)
}

func TestLifetimeGuardsContinuations(t *testing.T) {
	f := newFixture(t, "tok", nil)

	applied := false
	f.views[Home].onMount = func(ctx context.Context, c Container) {
		life := LifetimeOf(ctx)
		c.Post(life.Guard(func() { applied = true }))
	}

	f.router.Start()
	f.router.Navigate(Cleaner)
	f.q.Drain()

	assert.False(t, applied, "continuation from an unmounted view must not run")
}

func TestViewsSidebarOrder(t *testing.T) {
	f := newFixture(t, "tok", nil)
	assert.Equal(t, []ID{Home, Cleaner, Apps, Security, Optimizer, Disk}, f.router.Views())
}

func TestNewPanicsWithoutRequiredFactories(t *testing.T) {
	g := session.NewGuard(nil, logger.Noop())
	assert.Panics(t, func() {
		New(g, &queue{}, map[ID]Factory{Home: func() View { return nil }}, Options{})
	})
}

func TestLifetimeZeroValue(t *testing.T) {
	var l Lifetime
	assert.False(t, l.Alive())
	assert.NotNil(t, l.Context())
}

func TestIDTitle(t *testing.T) {
	assert.Equal(t, "Dashboard", Home.Title())
	assert.Equal(t, "custom", ID("custom").Title())
}
