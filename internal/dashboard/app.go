// Package dashboard is the Bubble Tea front end: it owns the UI loop,
// wires the router, scheduler and shared store together, runs the
// always-live widgets, and draws the chrome around the active page.
package dashboard

import (
	"github.com/jonboulle/clockwork"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/refresh"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/session"
	"github.com/autosense/senseboard/internal/views"
)

// Options configures an App.
type Options struct {
	Client *api.Client
	Guard  *session.Guard
	// Clock drives polling, the refresh cache and notices. Nil means wall time.
	Clock  clockwork.Clock
	Policy refresh.Policy

	Intervals     Intervals
	GaugePoints   int
	NetworkPoints int

	// InitialView is opened after start when a session exists.
	InitialView router.ID
	Logger      logger.Logger
}

// App holds everything that outlives a single page.
type App struct {
	client *api.Client
	guard  *session.Guard
	log    logger.Logger

	queue   *Queue
	store   *views.Store
	cache   *refresh.Cache
	sched   *poll.Scheduler
	router  *router.Router
	widgets *Widgets

	initial     router.ID
	unsubscribe func()
}

// New wires an App. Nothing runs until Start.
func New(opts Options) *App {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	log := logger.OrDefault(opts.Logger)

	a := &App{
		client:  opts.Client,
		guard:   opts.Guard,
		log:     log,
		queue:   NewQueue(),
		store:   views.NewStore(clock),
		cache:   refresh.NewCache(),
		sched:   poll.New(clock, log),
		initial: opts.InitialView,
	}

	deps := views.Deps{
		Client: a.client,
		Guard:  a.guard,
		Store:  a.store,
		Sched:  a.sched,
		Log:    log,
		// The router does not exist yet when the factories capture deps.
		Reload: func(tag string) bool {
			return a.router != nil && a.router.Reload(tag)
		},
	}

	a.router = router.New(a.guard, a.queue, views.Factories(deps), router.Options{
		Clock:       clock,
		Cache:       a.cache,
		Policy:      opts.Policy,
		Scheduler:   a.sched,
		Placeholder: views.Placeholder(deps),
		Logger:      log,
	})
	a.widgets = NewWidgets(a.client, a.store, a.sched, a.queue.Post,
		opts.Intervals, opts.GaugePoints, opts.NetworkPoints, log)
	return a
}

// Start mounts the first page and, with a session, starts the widgets.
func (a *App) Start() router.ID {
	id := a.router.Start()
	// Subscribed after the router so our continuations queue behind its
	// own: a reset always cancels tasks before widgets are restarted.
	a.unsubscribe = a.guard.Subscribe(func(authenticated bool) {
		a.queue.Post(func() { a.onSessionChange(authenticated) })
	})

	if a.guard.HasSession() {
		a.widgets.Start()
		if a.initial != "" && a.initial != id {
			id = a.router.Navigate(a.initial)
		}
	}
	return id
}

func (a *App) onSessionChange(authenticated bool) {
	if authenticated {
		a.widgets.Start()
		return
	}
	a.widgets.Stop()
	a.widgets.Reset()
	a.store.Reset()
	// The cache never shrinks otherwise; a new session starts cold.
	a.cache.Reset()
}

// Close tears everything down and waits for background work.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.widgets.Stop()
	a.router.Close()
	a.sched.Stop()
	a.queue.Close()
}

// Navigate switches pages.
func (a *App) Navigate(id router.ID) router.ID {
	return a.router.Navigate(id)
}

// ReloadActive forces a refresh of every resource the active page declares.
// It returns how many loads were started.
func (a *App) ReloadActive() int {
	rf, ok := a.router.ActiveView().(router.Refresher)
	if !ok {
		return 0
	}
	n := 0
	for _, res := range rf.Resources() {
		if a.router.Reload(res.Tag) {
			n++
		}
	}
	return n
}

// Logout ends the session. The guard observers do the rest.
func (a *App) Logout() {
	a.guard.ClearSession()
}

func (a *App) Client() *api.Client          { return a.client }
func (a *App) Guard() *session.Guard         { return a.guard }
func (a *App) Queue() *Queue                 { return a.queue }
func (a *App) Store() *views.Store           { return a.store }
func (a *App) Cache() *refresh.Cache         { return a.cache }
func (a *App) Scheduler() *poll.Scheduler    { return a.sched }
func (a *App) Router() *router.Router        { return a.router }
func (a *App) Widgets() *Widgets             { return a.widgets }
