package dashboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// postedMsg wakes Update to run queued functions.
type postedMsg struct{}

// Queue is the router.Container for the Bubble Tea program. Post never
// blocks, so it is safe to call from inside Update as well as from fetch
// goroutines; queued functions run on the UI loop in posting order.
type Queue struct {
	mu     sync.Mutex
	fns    []func()
	notify chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post appends fn to the queue.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of functions waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// Drain runs queued functions until the queue is empty, including any
// they post themselves. It returns how many ran.
func (q *Queue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		fns := q.fns
		q.fns = nil
		q.mu.Unlock()
		if len(fns) == 0 {
			return ran
		}
		for _, fn := range fns {
			fn()
		}
		ran += len(fns)
	}
}

// Wait returns a command that resolves once something is posted.
func (q *Queue) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-q.notify:
			return postedMsg{}
		case <-q.done:
			return nil
		}
	}
}

// Close releases any pending Wait.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
