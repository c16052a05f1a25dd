// Package views holds the pages of the dashboard. Every page is a
// router.View: built fresh per navigation, mounted once, unmounted once.
// Pages keep remote data in the shared Store and only view-local state
// (cursors, filters, pending prompts) on themselves.
package views

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autosense/senseboard/internal/api"
	"github.com/autosense/senseboard/internal/logger"
	"github.com/autosense/senseboard/internal/poll"
	"github.com/autosense/senseboard/internal/router"
	"github.com/autosense/senseboard/internal/session"
)

// Renderer draws a page into the given area.
type Renderer interface {
	Render(width, height int) string
}

// KeyHandler is implemented by pages that react to keys. handled reports
// whether the key was consumed.
type KeyHandler interface {
	HandleKey(msg tea.KeyMsg) (handled bool, cmd tea.Cmd)
}

// Helper lists the page's own key bindings for the footer.
type Helper interface {
	Bindings() []key.Binding
}

// InputCapturer is implemented by pages with text inputs. While it
// returns true the dashboard forwards every key except ctrl+c.
type InputCapturer interface {
	CapturesInput() bool
}

// Deps are the collaborators every page shares.
type Deps struct {
	Client *api.Client
	Guard  *session.Guard
	Store  *Store
	Sched  *poll.Scheduler
	// Reload forces a refresh of one resource tag.
	Reload func(tag string) bool
	Log    logger.Logger
}

func (d Deps) reload(tags ...string) {
	if d.Reload == nil {
		return
	}
	for _, t := range tags {
		d.Reload(t)
	}
}

// prompt is a pending yes/no confirmation.
type prompt struct {
	text string
	run  func()
}

// Base carries the lifecycle plumbing shared by all pages: the mount
// lifetime, the UI container, the poll handles the page owns, async work
// bookkeeping, and the confirmation prompt.
type Base struct {
	Deps

	life      router.Lifetime
	container router.Container

	mu      sync.Mutex
	handles []*poll.Handle
	work    sync.WaitGroup

	pending *prompt
	busy    string
}

// Mount records the lifetime and container. Pages embedding Base call it
// first from their own Mount.
func (b *Base) Mount(ctx context.Context, c router.Container) error {
	b.life = router.LifetimeOf(ctx)
	b.container = c
	if b.Log == nil {
		b.Log = logger.Noop()
	}
	return nil
}

// Unmount cancels every task the page scheduled. The mount context is
// cancelled by the router, which kills the lifetime.
func (b *Base) Unmount() {
	b.mu.Lock()
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
	b.pending = nil
}

// Alive reports whether the page is still mounted.
func (b *Base) Alive() bool {
	return b.life.Alive()
}

// Every schedules a task owned by this page. It is cancelled on unmount.
func (b *Base) Every(name string, interval time.Duration, action poll.Action) *poll.Handle {
	h := b.Sched.Schedule(name, interval, action)
	b.mu.Lock()
	b.handles = append(b.handles, h)
	b.mu.Unlock()
	return h
}

// Handles returns the live tasks owned by this page.
func (b *Base) Handles() []*poll.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*poll.Handle, len(b.handles))
	copy(out, b.handles)
	return out
}

// Go runs work off the UI loop with the mount context. The function it
// returns, if any, is posted back to the UI loop and applied only while
// the page is still mounted.
func (b *Base) Go(work func(ctx context.Context) func()) {
	ctx := b.life.Context()
	c := b.container
	b.work.Add(1)
	go func() {
		defer b.work.Done()
		apply := work(ctx)
		if apply == nil || c == nil {
			return
		}
		c.Post(b.life.Guard(apply))
	}()
}

// Wait blocks until all work started with Go has returned.
func (b *Base) Wait() {
	b.work.Wait()
}

// Post queues fn on the UI loop, guarded by the page lifetime.
func (b *Base) Post(fn func()) {
	if b.container == nil {
		return
	}
	b.container.Post(b.life.Guard(fn))
}

// Action runs a mutating call, reports its outcome as a notice, and
// reloads the given tags on success. label names the call while it runs.
func (b *Base) Action(label string, call func(ctx context.Context) (api.ActionResult, error), reload ...string) {
	if b.busy != "" {
		return
	}
	b.busy = label
	store := b.Store
	deps := b.Deps
	b.Go(func(ctx context.Context) func() {
		res, err := call(ctx)
		switch {
		case err != nil:
			store.SetNotice(label+": "+api.Message(err), true)
		case res.Failure() != "":
			store.SetNotice(label+": "+res.Failure(), true)
		default:
			msg := res.Message
			if msg == "" {
				msg = "done"
			}
			store.SetNotice(label+": "+msg, false)
			deps.reload(reload...)
		}
		return func() { b.busy = "" }
	})
}

// Busy returns the label of the running action, or "".
func (b *Base) Busy() string {
	return b.busy
}

// Confirm asks a yes/no question; run is called on "y".
func (b *Base) Confirm(text string, run func()) {
	b.pending = &prompt{text: text, run: run}
}

// Prompting reports whether a confirmation is pending.
func (b *Base) Prompting() bool {
	return b.pending != nil
}

// HandleConfirm consumes the key when a confirmation is pending.
func (b *Base) HandleConfirm(msg tea.KeyMsg) bool {
	if b.pending == nil {
		return false
	}
	p := b.pending
	b.pending = nil
	if key.Matches(msg, keyYes) {
		p.run()
	}
	return true
}

// PromptLine renders the pending question, or "".
func (b *Base) PromptLine() string {
	if b.pending == nil {
		if b.busy != "" {
			return WarningStyle.Render(SpinnerFrames[0] + " " + b.busy + "…")
		}
		return ""
	}
	return PromptStyle.Render(b.pending.text + " [y/N]")
}
