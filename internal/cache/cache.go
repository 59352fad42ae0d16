// Package cache is a file-backed key/value store for discovery results.
//
// All keys live in one JSON object at <data_dir>/cache.json, each value an
// opaque JSON document. Every operation runs as a transaction under an
// in-process mutex and an exclusive lock on <data_dir>/cache.lock, so
// overlapping wtp invocations never lose each other's updates. Nothing in
// here expires: content stays authoritative until a caller removes it.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gofrs/flock"

	"github.com/raphi011/wtp/internal/storage"
)

// Well-known keys.
const (
	KeyProjects       = "projects"
	KeyWorktrees      = "worktrees"
	KeyDirectories    = "directories"
	KeyLastProjectDir = "lastProjectDir"
)

const (
	fileName     = "cache.json"
	lockFileName = "cache.lock"
)

// ErrCorrupt is returned when cache.json cannot be decoded.
// Run `wtp cache clear` to recover.
var ErrCorrupt = errors.New("cache file is corrupt")

// Store is the cache file of one data directory.
type Store struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// Open returns the store in dataDir. The file is created lazily on first write.
func Open(dataDir string) *Store {
	return &Store{
		path: filepath.Join(dataDir, fileName),
		lock: flock.New(filepath.Join(dataDir, lockFileName)),
	}
}

// Path returns the location of the cache file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	var (
		val json.RawMessage
		ok  bool
	)
	err := s.transact(func(entries map[string]json.RawMessage) (bool, error) {
		val, ok = entries[key]
		return false, nil
	})
	return val, ok, err
}

// Set stores v under key.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.transact(func(entries map[string]json.RawMessage) (bool, error) {
		entries[key] = data
		return true, nil
	})
}

// Remove deletes keys. Missing keys are ignored.
func (s *Store) Remove(keys ...string) error {
	return s.transact(func(entries map[string]json.RawMessage) (bool, error) {
		changed := false
		for _, k := range keys {
			if _, ok := entries[k]; ok {
				delete(entries, k)
				changed = true
			}
		}
		return changed, nil
	})
}

// Clear deletes every key. It does not read the current file, so it also
// recovers from a corrupt cache.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	return storage.SaveJSON(s.path, map[string]json.RawMessage{})
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.transact(func(entries map[string]json.RawMessage) (bool, error) {
		for k := range entries {
			keys = append(keys, k)
		}
		return false, nil
	})
	slices.Sort(keys)
	return keys, err
}

// Update reads key, passes its raw value (nil when absent) to fn and stores
// what fn returns. A nil return leaves the cache untouched.
func (s *Store) Update(key string, fn func(current json.RawMessage) (any, error)) error {
	return s.transact(func(entries map[string]json.RawMessage) (bool, error) {
		next, err := fn(entries[key])
		if err != nil || next == nil {
			return false, err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return false, fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = data
		return true, nil
	})
}

// GetValue decodes the value under key into a T.
func GetValue[T any](s *Store, key string) (T, bool, error) {
	var v T
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("%w: key %s: %v", ErrCorrupt, key, err)
	}
	return v, true, nil
}

// UpdateValue is Update with typed values. fn receives nil when key is
// absent; returning nil skips the write.
func UpdateValue[T any](s *Store, key string, fn func(current *T) (*T, error)) error {
	return s.Update(key, func(raw json.RawMessage) (any, error) {
		var current *T
		if raw != nil {
			current = new(T)
			if err := json.Unmarshal(raw, current); err != nil {
				return nil, fmt.Errorf("%w: key %s: %v", ErrCorrupt, key, err)
			}
		}
		next, err := fn(current)
		if err != nil || next == nil {
			return nil, err
		}
		return next, nil
	})
}

// transact loads the entries under lock, runs fn and saves when fn reports a change.
func (s *Store) transact(fn func(entries map[string]json.RawMessage) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	changed, err := fn(entries)
	if err != nil || !changed {
		return err
	}
	return storage.SaveJSON(s.path, entries)
}

func (s *Store) acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire cache lock: %w", err)
	}
	return nil
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	entries := map[string]json.RawMessage{}
	err := storage.LoadJSON(s.path, &entries)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return map[string]json.RawMessage{}, nil
	case err != nil:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if entries == nil {
		entries = map[string]json.RawMessage{}
	}
	return entries, nil
}
