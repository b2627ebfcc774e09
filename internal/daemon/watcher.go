package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
)

// DefaultDebounce is the quiet period after the last database change before
// a sync is triggered.
const DefaultDebounce = 2 * time.Second

// DatabaseWatcher calls a function once a burst of changes to the Trac
// database has settled.
type DatabaseWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
}

// NewDatabaseWatcher prepares a watcher for dbPath.
func NewDatabaseWatcher(dbPath string, debounce time.Duration, onChange func(), logger *slog.Logger) (*DatabaseWatcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.RuntimeError("failed to resolve database path").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	return &DatabaseWatcher{path: abs, debounce: debounce, onChange: onChange, logger: logger, watcher: w}, nil
}

// Start watches the database directory until ctx is done or Stop is called.
// The directory is watched rather than the file since SQLite replaces and
// appends companion files.
func (dw *DatabaseWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(dw.path)
	if err := dw.watcher.Add(dir); err != nil {
		return errors.RuntimeError("failed to watch database directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	dw.logger.Info("Watching trac database", logfields.Path(dw.path))
	go dw.loop(ctx)
	return nil
}

// Stop closes the watcher and cancels a pending trigger.
func (dw *DatabaseWatcher) Stop() error {
	dw.mu.Lock()
	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.mu.Unlock()
	return dw.watcher.Close()
}

func (dw *DatabaseWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !dw.relevant(event) {
				continue
			}
			dw.logger.Debug("Trac database changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			dw.schedule()
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Error("Database watcher error", logfields.Error(err))
		}
	}
}

// relevant reports whether event touches the database or its journal files.
func (dw *DatabaseWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasPrefix(filepath.Base(event.Name), filepath.Base(dw.path))
}

func (dw *DatabaseWatcher) schedule() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.timer = time.AfterFunc(dw.debounce, dw.onChange)
}
