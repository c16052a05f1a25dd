// Package session holds the authentication token and tells interested
// parties when it appears or goes away.
//
// The Guard is the single source of truth for "is the user logged in".
// Anything that receives an unauthorized response from the API must call
// ClearSession and must not try to interpret the response body.
package session

import (
	"sync"

	"github.com/autosense/senseboard/internal/errors"
	"github.com/autosense/senseboard/internal/logger"
)

// ErrEmptyToken is returned by SetSession when given an empty token.
var ErrEmptyToken = errors.New(errors.ErrSession,
	"Refusing to store an empty session token",
	"Log in again to obtain a token")

// Observer is called with the new authentication state.
type Observer func(authenticated bool)

// Guard owns the session token.
type Guard struct {
	store Store
	log   logger.Logger

	mu    sync.RWMutex
	token string

	obsMu     sync.Mutex
	observers []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Observer
}

// NewGuard creates a guard persisting through store. A nil store keeps the
// token in memory only.
func NewGuard(store Store, log logger.Logger) *Guard {
	if store == nil {
		store = NewMemoryStore("")
	}
	return &Guard{store: store, log: logger.OrDefault(log)}
}

// Load restores the persisted token. Observers are not notified; this is
// meant to run before anything subscribes.
func (g *Guard) Load() error {
	token, err := g.store.Load()
	if err != nil {
		g.log.Warn("session: load failed: %v", err)
		return err
	}

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()

	if token != "" {
		g.log.Debug("session: restored saved session")
	}
	return nil
}

// HasSession reports whether a non-empty token is held.
func (g *Guard) HasSession() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token != ""
}

// Token returns the current token, or "".
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// SetSession stores token, persists it, and notifies observers. A failure
// to persist is logged and does not undo the in-memory login.
func (g *Guard) SetSession(token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	g.mu.Lock()
	g.token = token
	g.mu.Unlock()

	if err := g.store.Save(token); err != nil {
		g.log.Warn("session: could not persist token: %v", err)
	}

	g.log.Debug("session: authenticated")
	g.notify(true)
	return nil
}

// ClearSession erases the token and its persisted copy. Observers are
// notified only when a session was actually held, so repeated 401s from
// concurrent requests produce a single logout.
func (g *Guard) ClearSession() {
	g.mu.Lock()
	had := g.token != ""
	g.token = ""
	g.mu.Unlock()

	if err := g.store.Clear(); err != nil {
		g.log.Warn("session: could not remove persisted token: %v", err)
	}

	if had {
		g.log.Info("session: cleared")
		g.notify(false)
	}
}

// Subscribe registers fn for state changes and returns a func that
// removes it. Observers run on the goroutine that changed the state,
// outside the guard's locks, in subscription order.
func (g *Guard) Subscribe(fn Observer) (unsubscribe func()) {
	g.obsMu.Lock()
	id := g.nextID
	g.nextID++
	g.observers = append(g.observers, subscription{id: id, fn: fn})
	g.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.obsMu.Lock()
			defer g.obsMu.Unlock()
			for i, s := range g.observers {
				if s.id == id {
					g.observers = append(g.observers[:i], g.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (g *Guard) notify(authenticated bool) {
	g.obsMu.Lock()
	subs := make([]subscription, len(g.observers))
	copy(subs, g.observers)
	g.obsMu.Unlock()

	for _, s := range subs {
		s.fn(authenticated)
	}
}
