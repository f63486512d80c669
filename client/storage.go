package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// sessionFileName is the fixed key the durable session record lives under.
const sessionFileName = "auth.json"

// SessionStorage is the durable home of the session record. Only the session
// store reads or writes it; everything else observes session state through the
// store's accessors.
type SessionStorage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileStorage keeps the session record in a JSON file.
type FileStorage struct {
	path string
}

// NewFileStorage creates file-backed storage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultFileStorage places the session record under the user config dir.
func DefaultFileStorage() (*FileStorage, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &FileStorage{path: filepath.Join(dir, "freelancehub", sessionFileName)}, nil
}

// Load returns the stored record, or nil when none exists.
func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes the record, creating the parent directory if needed.
func (s *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the record. A missing record is not an error.
func (s *FileStorage) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage is an in-memory SessionStorage for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage creates empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored record, or nil when none exists.
func (s *MemoryStorage) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Save stores a copy of data.
func (s *MemoryStorage) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// Clear drops the stored record.
func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
