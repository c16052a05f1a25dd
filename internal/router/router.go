// Package router keeps exactly one view mounted and moves between views.
//
// Navigation is strictly sequential: the current view is unmounted (its
// context cancelled, its tasks stopped) before the next one is mounted.
// Routes are gated by the session guard: without a token only the login
// view is reachable, and losing the token at any time forces the router
// back to login and cancels every scheduled task.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/refresh"
	"github.com/autosense/senseboard/internal/session"
)

// State is the router's position in its lifecycle.
type State int

const (
	Unauthenticated State = iota
	Navigating
	Active
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Navigating:
		return "navigating"
	case Active:
		return "active"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EventKind identifies a lifecycle step.
type EventKind int

const (
	EventUnmounted EventKind = iota
	EventLoading
	EventMounted
	EventMountFailed
	EventRefreshed
	EventRefreshFailed
)

func (k EventKind) String() string {
	switch k {
	case EventUnmounted:
		return "unmounted"
	case EventLoading:
		return "loading"
	case EventMounted:
		return "mounted"
	case EventMountFailed:
		return "mount-failed"
	case EventRefreshed:
		return "refreshed"
	case EventRefreshFailed:
		return "refresh-failed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event describes one lifecycle step, for observers and tests.
type Event struct {
	Kind EventKind
	View ID
	Tag  string
	Err  error
}

// Options configures a Router. Zero values pick sensible defaults.
type Options struct {
	Clock     clockwork.Clock
	Cache     *refresh.Cache
	Policy    refresh.Policy
	Scheduler *poll.Scheduler
	// Placeholder is shown between unmounting one view and mounting the next.
	Placeholder Factory
	Logger      logger.Logger
	// OnEvent, when set, is called synchronously for every lifecycle step.
	OnEvent func(Event)
}

// Router owns the active view.
type Router struct {
	guard     *session.Guard
	container Container
	factories map[ID]Factory

	clock       clockwork.Clock
	cache       *refresh.Cache
	policy      refresh.Policy
	sched       *poll.Scheduler
	placeholder Factory
	log         logger.Logger
	onEvent     func(Event)

	// navMu serializes navigations so unmount always finishes before the
	// next mount starts.
	navMu sync.Mutex

	mu          sync.Mutex
	state       State
	activeID    ID
	active      View
	cancelMount context.CancelFunc
	lastErr     error
	baseCtx     context.Context
	baseCancel  context.CancelFunc

	loads       singleflight.Group
	loadsWG     sync.WaitGroup
	unsubscribe func()
}

// New creates a router. Nothing is mounted until Start. factories must
// include Login and DefaultView.
func New(guard *session.Guard, container Container, factories map[ID]Factory, opts Options) *Router {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Cache == nil {
		opts.Cache = refresh.NewCache()
	}

	for _, required := range []ID{Login, DefaultView} {
		if factories[required] == nil {
			panic(fmt.Sprintf("router: no factory registered for %s", required))
		}
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	fs := make(map[ID]Factory, len(factories))
	for id, f := range factories {
		fs[id] = f
	}

	return &Router{
		guard:       guard,
		container:   container,
		factories:   fs,
		clock:       opts.Clock,
		cache:       opts.Cache,
		policy:      opts.Policy,
		sched:       opts.Scheduler,
		placeholder: opts.Placeholder,
		log:         logger.OrDefault(opts.Logger),
		onEvent:     opts.OnEvent,
		state:       Unauthenticated,
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
	}
}

// Start subscribes to the session guard and mounts the initial view:
// home when a session exists, login otherwise.
func (r *Router) Start() ID {
	r.unsubscribe = r.guard.Subscribe(func(authenticated bool) {
		// The guard may fire from any goroutine (a 401 in a fetch); route
		// changes happen on the UI loop.
		r.container.Post(func() { r.onSessionChange(authenticated) })
	})
	return r.Navigate(DefaultView)
}

// Close unmounts the active view, cancels outstanding loads and waits for them.
func (r *Router) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}

	r.navMu.Lock()
	r.unmountActive()
	r.mu.Lock()
	r.baseCancel()
	r.state = Unauthenticated
	r.mu.Unlock()
	r.navMu.Unlock()

	r.loadsWG.Wait()
}

// Navigate switches to target and returns the view actually mounted.
// Unknown ids go to the default view, any view but login requires a
// session, and login is skipped when already authenticated.
func (r *Router) Navigate(target ID) ID {
	r.navMu.Lock()
	defer r.navMu.Unlock()
	return r.navigate(target)
}

func (r *Router) navigate(target ID) ID {
	id := r.resolve(target)

	r.mu.Lock()
	r.state = Navigating
	r.mu.Unlock()

	r.unmountActive()
	r.showPlaceholder(id)

	view := r.factories[id]()
	ctx, cancel := context.WithCancel(r.base())

	err := view.Mount(ctx, r.container)

	r.mu.Lock()
	r.active = view
	r.activeID = id
	r.cancelMount = cancel
	r.lastErr = err
	if id == Login {
		r.state = Unauthenticated
	} else {
		r.state = Active
	}
	r.mu.Unlock()

	if err != nil {
		// The view renders its own error; no retry.
		r.log.Warn("router: mount %s failed: %v", id, err)
		r.emit(Event{Kind: EventMountFailed, View: id, Err: err})
	} else {
		r.log.Debug("router: mounted %s", id)
		r.emit(Event{Kind: EventMounted, View: id})
		if rf, ok := view.(Refresher); ok {
			r.refreshStale(id, rf.Resources())
		}
	}

	r.container.Post(func() {})
	return id
}

func (r *Router) resolve(target ID) ID {
	if _, ok := r.factories[target]; !ok {
		if target != "" {
			r.log.Debug("router: unknown view %q, using %s", target, DefaultView)
		}
		target = DefaultView
	}

	authed := r.guard.HasSession()
	switch {
	case !authed:
		return Login
	case target == Login:
		return DefaultView
	}
	return target
}

// unmountActive cancels the active view's context and unmounts it.
// Idempotent.
func (r *Router) unmountActive() {
	r.mu.Lock()
	view, id, cancel := r.active, r.activeID, r.cancelMount
	r.active = nil
	r.cancelMount = nil
	r.mu.Unlock()

	if view == nil {
		return
	}
	cancel()
	view.Unmount()
	r.log.Debug("router: unmounted %s", id)
	r.emit(Event{Kind: EventUnmounted, View: id})
}

func (r *Router) showPlaceholder(next ID) {
	r.emit(Event{Kind: EventLoading, View: next})
	if r.placeholder == nil {
		return
	}

	p := r.placeholder()
	ctx, cancel := context.WithCancel(r.base())
	if err := p.Mount(ctx, r.container); err != nil {
		r.log.Debug("router: placeholder mount failed: %v", err)
	}
	cancel()
	p.Unmount()
}

func (r *Router) base() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseCtx
}

func (r *Router) ttl(res Resource) time.Duration {
	if res.TTL > 0 {
		return res.TTL
	}
	return r.policy.TTL(res.Tag)
}

// refreshStale loads every resource whose tag is stale, in the background.
func (r *Router) refreshStale(id ID, resources []Resource) {
	now := r.clock.Now()
	for _, res := range resources {
		if !r.cache.ShouldRefresh(res.Tag, r.ttl(res), now) {
			r.log.Debug("router: %s fresh, skipping fetch", res.Tag)
			continue
		}
		r.load(id, res)
	}
}

// load runs res.Load once per tag at a time and marks the tag fresh only
// after it succeeds. A call for a tag that is already loading joins the
// running load instead of starting another.
func (r *Router) load(id ID, res Resource) {
	ctx := r.base()
	r.loadsWG.Add(1)
	ch := r.loads.DoChan(res.Tag, func() (interface{}, error) {
		if err := res.Load(ctx); err != nil {
			r.log.Warn("router: loading %s failed: %v", res.Tag, err)
			r.emit(Event{Kind: EventRefreshFailed, View: id, Tag: res.Tag, Err: err})
			return nil, err
		}
		if ctx.Err() != nil {
			// The session ended while loading; nothing is fresh any more.
			return nil, ctx.Err()
		}
		r.cache.MarkRefreshed(res.Tag, r.clock.Now())
		r.emit(Event{Kind: EventRefreshed, View: id, Tag: res.Tag})
		return nil, nil
	})
	go func() {
		defer r.loadsWG.Done()
		<-ch
		r.container.Post(func() {})
	}()
}

// Reload forces a fetch of tag for the active view regardless of its age.
// Returns false when the active view declares no such resource.
func (r *Router) Reload(tag string) bool {
	r.mu.Lock()
	view, id := r.active, r.activeID
	r.mu.Unlock()

	rf, ok := view.(Refresher)
	if !ok {
		return false
	}
	for _, res := range rf.Resources() {
		if res.Tag == tag {
			r.load(id, res)
			return true
		}
	}
	return false
}

// Wait blocks until every background load started so far has finished.
func (r *Router) Wait() {
	r.loadsWG.Wait()
}

func (r *Router) onSessionChange(authenticated bool) {
	if authenticated {
		r.Navigate(DefaultView)
		return
	}
	r.reset()
}

// reset tears everything down after the session is lost and shows login.
func (r *Router) reset() {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	r.unmountActive()

	r.mu.Lock()
	r.baseCancel()
	r.baseCtx, r.baseCancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	if r.sched != nil {
		r.sched.CancelAll()
	}
	r.log.Info("router: session ended, returning to login")
	r.navigate(Login)
}

func (r *Router) emit(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Active returns the mounted view's id.
func (r *Router) Active() ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// ActiveView returns the mounted view, or nil.
func (r *Router) ActiveView() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// LastError returns the error from the most recent mount, if it failed.
func (r *Router) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Views returns the navigable views in sidebar order.
func (r *Router) Views() []ID {
	ids := make([]ID, 0, len(SidebarOrder))
	for _, id := range SidebarOrder {
		if _, ok := r.factories[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
