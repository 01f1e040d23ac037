package dataset

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports changes to a set of files. Events for one file are coalesced:
// Changes delivers at most one pending notification.
type Watcher struct {
	fw      *fsnotify.Watcher
	files   map[string]bool
	changes chan struct{}
	logger  zerolog.Logger

	wg   sync.WaitGroup
	once sync.Once
}

// NewWatcher watches paths. The parent directories are watched so editors that
// replace files by rename are still seen.
func NewWatcher(paths []string, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fw:      fw,
		files:   make(map[string]bool, len(paths)),
		changes: make(chan struct{}, 1),
		logger:  logger.With().Str("component", "dataset_watch").Logger(),
	}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, absErr := filepath.Abs(p)
		if absErr != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, absErr)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if addErr := fw.Add(dir); addErr != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, addErr)
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes is signalled after a watched file is written, created or renamed.
// It is closed by Close.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.changes)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("dataset changed")
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watch error")
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
