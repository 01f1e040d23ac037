package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"k8s.io/utils/clock"
)

const (
	entryFileExtension = ".json"
	// maxFileKeyLen is the longest sanitized key used verbatim as a file name.
	maxFileKeyLen = 64
)

// Store errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as one JSON file per key. It is safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int
	clock      clock.PassiveClock
	logger     zerolog.Logger

	mu sync.RWMutex
}

// StoreOption customizes a FileStore.
type StoreOption func(*FileStore)

// WithClock sets the clock used for expiry.
func WithClock(clk clock.PassiveClock) StoreOption {
	return func(s *FileStore) { s.clock = clk }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *FileStore) { s.logger = logger.With().Str("component", "cache").Logger() }
}

// NewFileStore creates the store described by settings, creating its directory.
// A disabled store is returned without touching the filesystem.
func NewFileStore(settings Settings, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{
		directory:  settings.Directory,
		enabled:    settings.Enabled,
		ttlSeconds: settings.TTLSeconds,
		clock:      clock.RealClock{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttlSeconds == 0 {
		s.ttlSeconds = DefaultTTLSeconds
	}
	if !s.enabled {
		return s, nil
	}

	if s.directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(s.directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return s, nil
}

// Get returns the entry for key. Expired entries are removed and reported as ErrExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	if entry.Key != key {
		// Distinct keys can share a file name.
		return nil, ErrNotFound
	}
	if entry.ExpiredAt(s.clock.Now()) {
		_ = os.Remove(path)
		return nil, ErrExpired
	}
	return &entry, nil
}

// Set stores data under key, replacing any previous entry. The file is written
// to a temporary name and renamed into place.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	entryData, err := json.Marshal(NewEntry(key, data, s.ttlSeconds, s.clock.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.keyToFilePath(key)
	tempPath := path + ".tmp"
	if err = os.WriteFile(tempPath, entryData, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// SetValue marshals v as JSON and stores it under key.
func (s *FileStore) SetValue(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.Set(key, data)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	_, err := s.sweep(func(*Entry) bool { return true })
	return err
}

// CleanupExpired removes expired entries and returns how many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	now := s.clock.Now()
	return s.sweep(func(e *Entry) bool { return e.ExpiredAt(now) })
}

// sweep removes every entry for which remove returns true. Files that cannot be
// decoded are removed too.
func (s *FileStore) sweep(remove func(*Entry) bool) (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != entryFileExtension {
			continue
		}
		path := filepath.Join(s.directory, f.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(data, &entry) == nil && !remove(&entry) {
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", f.Name(), rmErr)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("cache entries removed")
	}
	return removed, nil
}

// Count returns the number of stored entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}
	count := 0
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == entryFileExtension {
			count++
		}
	}
	return count, nil
}

// Enabled reports whether the store persists anything.
func (s *FileStore) Enabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the lifetime given to new entries, in seconds.
func (s *FileStore) TTL() int { return s.ttlSeconds }

// keyToFilePath maps key to a file name. Short keys stay readable; long keys
// are replaced by their hash.
func (s *FileStore) keyToFilePath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(key)
	if len(safe) > maxFileKeyLen {
		safe = "h" + strconv.FormatUint(xxhash.Sum64String(key), 16)
	}
	return filepath.Join(s.directory, safe+entryFileExtension)
}
