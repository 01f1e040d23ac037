package cache

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

const scrollKeyPrefix = "scroll:"

type scrollRecord struct {
	ScrollTop float64 `json:"scroll_top"`
}

// ScrollStore persists vertical scroll offsets by key. PersistScrollTop never
// blocks: values are coalesced per key and written by a background goroutine,
// and a failed write is logged and dropped.
type ScrollStore struct {
	store  *FileStore
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]float64
	written int

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScrollStore starts the writer goroutine. Call Close to flush and stop it.
func NewScrollStore(store *FileStore, logger zerolog.Logger) *ScrollStore {
	s := &ScrollStore{
		store:   store,
		logger:  logger.With().Str("component", "scroll_store").Logger(),
		pending: make(map[string]float64),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// PersistScrollTop records top for key. Only the latest value per key is written.
func (s *ScrollStore) PersistScrollTop(key string, top float64) {
	if key == "" || !s.store.Enabled() {
		return
	}
	s.mu.Lock()
	s.pending[key] = top
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Restore returns the stored offset for key.
func (s *ScrollStore) Restore(key string) (float64, bool) {
	if key == "" || !s.store.Enabled() {
		return 0, false
	}
	entry, err := s.store.Get(scrollKeyPrefix + key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
			s.logger.Debug().Err(err).Str("key", key).Msg("scroll offset unreadable")
		}
		return 0, false
	}
	var rec scrollRecord
	if err = entry.Decode(&rec); err != nil {
		return 0, false
	}
	return rec.ScrollTop, true
}

// Written returns the number of offsets written so far.
func (s *ScrollStore) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Close writes anything still pending and stops the writer. Safe to call more than once.
func (s *ScrollStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *ScrollStore) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *ScrollStore) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]float64)
	s.mu.Unlock()

	n := 0
	for key, top := range batch {
		if err := s.store.SetValue(scrollKeyPrefix+key, scrollRecord{ScrollTop: top}); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to persist scroll offset")
			continue
		}
		n++
	}

	s.mu.Lock()
	s.written += n
	s.mu.Unlock()
}
