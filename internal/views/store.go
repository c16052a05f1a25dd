package views

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tags of the shared resources. Views and widgets read and write the
// Store under these keys; the router's refresh cache uses the same names.
const (
	TagStatus     = "status"
	TagPredict    = "predict"
	TagSecurity   = "security"
	TagNetwork    = "network"
	TagSpecs      = "specs"
	TagRecords    = "records"
	TagJunk       = "junk"
	TagLargeFiles = "large-files"
	TagProcesses  = "processes"
	TagStartup    = "startup"
	TagInstalled  = "installed"
	TagFirewall   = "firewall"
	TagPorts      = "ports"
	TagForecast   = "forecast"
	TagPartitions = "partitions"
	TagAutoMode   = "auto-mode"
)

// Entry is the last known state of one tag. A failed refresh keeps the
// previous Value and records Err next to it.
type Entry struct {
	Value   interface{}
	Err     error
	Updated time.Time
}

// Notice is a transient one-line message, usually the outcome of an action.
type Notice struct {
	Text string
	Err  bool
	At   time.Time
}

// Store holds fetched data so it outlives the view instances that show it.
// Safe for concurrent use.
type Store struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]Entry
	notice  Notice
}

// NewStore creates an empty store. A nil clock means the real clock.
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{clock: clock, entries: make(map[string]Entry)}
}

// Put records a successful fetch.
func (s *Store) Put(tag string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tag] = Entry{Value: v, Updated: s.clock.Now()}
}

// Fail records a failed fetch without dropping the last good value.
func (s *Store) Fail(tag string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entries[tag]
	e.Err = err
	e.Updated = s.clock.Now()
	s.entries[tag] = e
}

// PutIf records a successful fetch only if alive still reports true. The
// check and the write happen under the store lock, so a writer whose
// owner was cancelled before Reset can never land after it.
func (s *Store) PutIf(alive func() bool, tag string, v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !alive() {
		return false
	}
	s.entries[tag] = Entry{Value: v, Updated: s.clock.Now()}
	return true
}

// FailIf is Fail guarded the same way as PutIf.
func (s *Store) FailIf(alive func() bool, tag string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !alive() {
		return false
	}
	e := s.entries[tag]
	e.Err = err
	e.Updated = s.clock.Now()
	s.entries[tag] = e
	return true
}

// Get returns the entry for tag.
func (s *Store) Get(tag string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[tag]
	return e, ok
}

// Err returns the error of the last fetch of tag, if it failed.
func (s *Store) Err(tag string) error {
	e, _ := s.Get(tag)
	return e.Err
}

// Delete forgets tag.
func (s *Store) Delete(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tag)
}

// Reset forgets everything, notice included. Called when the session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	s.notice = Notice{}
}

// SetNotice replaces the current notice.
func (s *Store) SetNotice(text string, isErr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = Notice{Text: text, Err: isErr, At: s.clock.Now()}
}

// Notice returns the current notice, or the zero Notice when it is older than maxAge.
func (s *Store) Notice(maxAge time.Duration) Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice.Text == "" {
		return Notice{}
	}
	if maxAge > 0 && s.clock.Since(s.notice.At) > maxAge {
		return Notice{}
	}
	return s.notice
}

// Value returns the typed value stored under tag. ok is false when nothing
// was stored yet or the stored value has a different type.
func Value[T any](s *Store, tag string) (v T, ok bool) {
	e, found := s.Get(tag)
	if !found || e.Value == nil {
		return v, false
	}
	v, ok = e.Value.(T)
	return v, ok
}
