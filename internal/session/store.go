package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/autosense/senseboard/internal/errors"
)

const (
	// DefaultDir is the per-user directory holding session and log files.
	DefaultDir = ".config/senseboard"
	// DefaultFile is the session file name inside DefaultDir.
	DefaultFile = "session.yaml"
)

// Store persists the session token between runs.
type Store interface {
	// Load returns the saved token, or "" when nothing is saved.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// record is the on-disk shape of a saved session.
type record struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// DefaultPath returns ~/.config/senseboard/session.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultDir, DefaultFile)
	}
	return filepath.Join(home, DefaultDir, DefaultFile)
}

// FileStore keeps the token in a YAML file readable only by the owner.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by path. An empty path uses DefaultPath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path, now: time.Now}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WrapWithCode(err, errors.ErrSession,
			"Couldn't read the saved session",
			"Check permissions on "+s.path+" or run 'senseboard logout' to reset it")
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSession,
			"Saved session file is corrupt",
			"Run 'senseboard logout' and log in again")
	}
	return rec.Token, nil
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrSession,
			"Couldn't create the session directory",
			"Check permissions on "+filepath.Dir(s.path))
	}

	data, err := yaml.Marshal(record{Token: token, SavedAt: s.now().UTC()})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSession, "Couldn't encode the session", "")
	}

	// Write to a sibling temp file first so a crash never leaves half a token.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrSession,
			"Couldn't save the session",
			"Check permissions on "+filepath.Dir(s.path))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapWithCode(err, errors.ErrSession,
			"Couldn't save the session",
			"Check permissions on "+filepath.Dir(s.path))
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrSession,
			"Couldn't remove the saved session",
			"Delete "+s.path+" manually")
	}
	return nil
}

// MemoryStore keeps the token in memory. Used in tests and when
// persistence is disabled.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	// Err, when set, is returned from every operation.
	Err error
}

// NewMemoryStore creates a store preloaded with token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.token = ""
	return nil
}

// Saved returns the stored token regardless of Err.
func (m *MemoryStore) Saved() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
