package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a small key-value surface the ordering client persists through.
// Reads never fail; writes report errors for the caller to log and swallow.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore keeps keys in memory and mirrors them into a JSON file.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// NewFileStore loads the store backing file at path. A missing or corrupt
// file yields an empty store.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return s
	}
	s.values = values

	return s
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.flush()
}

// Wipe discards every key and removes the backing file. Used when a
// session-scoped store is released.
func (s *FileStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot remove store file: %w", err)
	}
	return nil
}

// flush writes the whole map. Callers hold the lock.
func (s *FileStore) flush() error {
	raw, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("cannot encode store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create store dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("cannot write store file: %w", err)
	}
	return nil
}

// NoopStore is used when no writable location exists; every operation
// succeeds and nothing is retained.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) Get(string) (string, bool) { return "", false }

func (s *NoopStore) Set(string, string) error { return nil }

func (s *NoopStore) Delete(string) error { return nil }
