package router

import (
	"context"
	"time"
)

// ID names a navigable view.
type ID string

const (
	Login     ID = "login"
	Home      ID = "home"
	Cleaner   ID = "cleaner"
	Apps      ID = "apps"
	Security  ID = "security"
	Optimizer ID = "optimizer"
	Disk      ID = "disk"
)

// DefaultView is where unknown routes and fresh logins land.
const DefaultView = Home

// SidebarOrder is the fixed order of the navigable views.
var SidebarOrder = []ID{Home, Cleaner, Apps, Security, Optimizer, Disk}

// Title returns a display name for the view.
func (id ID) Title() string {
	switch id {
	case Login:
		return "Login"
	case Home:
		return "Dashboard"
	case Cleaner:
		return "Cleaner"
	case Apps:
		return "Apps"
	case Security:
		return "Security"
	case Optimizer:
		return "Optimizer"
	case Disk:
		return "Disk"
	}
	return string(id)
}

// Container queues work onto the single UI loop. Post must not block and
// must run the functions in the order they were posted.
type Container interface {
	Post(fn func())
}

// ContainerFunc adapts a plain function to Container.
type ContainerFunc func(fn func())

func (f ContainerFunc) Post(fn func()) { f(fn) }

// View is a page with an explicit lifecycle. A fresh instance is built for
// every navigation; Mount is called once, Unmount at most once.
//
// ctx stays live exactly as long as the view is mounted. Results of work
// started during the mount must be checked against it (see Lifetime)
// before they are applied.
type View interface {
	Mount(ctx context.Context, c Container) error
	Unmount()
}

// Resource is one piece of remote data a view depends on. The router loads
// it on activation when the refresh cache says the tag is stale.
type Resource struct {
	Tag string
	// TTL overrides the router's refresh policy when positive.
	TTL  time.Duration
	Load func(ctx context.Context) error
}

// Refresher is implemented by views that declare cached resources.
type Refresher interface {
	Resources() []Resource
}

// Factory builds a fresh view instance.
type Factory func() View

// Lifetime is the liveness flag captured when a view mounts.
type Lifetime struct {
	ctx context.Context
}

// LifetimeOf wraps a mount context.
func LifetimeOf(ctx context.Context) Lifetime {
	return Lifetime{ctx: ctx}
}

// Alive reports whether the view that owns this lifetime is still mounted.
func (l Lifetime) Alive() bool {
	return l.ctx != nil && l.ctx.Err() == nil
}

// Context returns the underlying mount context.
func (l Lifetime) Context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

// Guard returns fn wrapped so it only runs while the lifetime is alive.
// Use it for continuations handed to Container.Post.
func (l Lifetime) Guard(fn func()) func() {
	return func() {
		if l.Alive() {
			fn()
		}
	}
}
