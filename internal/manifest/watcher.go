package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// ReloadEvent reports a catalog refresh triggered by a manifest change.
type ReloadEvent struct {
	// Assets is the catalog size after the reload.
	Assets int

	// Timestamp is when the reload finished.
	Timestamp time.Time
}

// Watcher keeps a Catalog in sync with manifest changes on disk.
type Watcher struct {
	catalog *Catalog
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	events  chan ReloadEvent
	stop    chan struct{}
}

// NewWatcher creates a watcher for the catalog's asset trees.
func NewWatcher(catalog *Catalog, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		catalog: catalog,
		watcher: fw,
		logger:  logger,
		events:  make(chan ReloadEvent, 10),
		stop:    make(chan struct{}),
	}, nil
}

// Start begins watching. Watches cover the asset tree roots and every
// asset directory; new asset directories are picked up as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	for _, kind := range []Kind{KindData, KindModel} {
		dir := filepath.Join(w.catalog.Root(), kind.Dir())
		if err := w.addTree(dir); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

// Events returns the channel reload notifications are delivered on.
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.events
}

// addTree watches dir and its immediate asset subdirectories. Missing
// trees are skipped; they gain a watch once created under a watched root.
func (w *Watcher) addTree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.watcher.Add(filepath.Join(dir, entry.Name())); err != nil {
				w.logger.Warn("failed to watch asset directory",
					zap.String("dir", entry.Name()),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("manifest watcher error", zap.Error(err))
		}
	}
}

// handleEvent reloads the catalog when a manifest or asset directory
// changes. Writes to unrelated files inside asset directories are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// A created directory needs its own watch before its manifest shows up.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					zap.String("dir", event.Name),
					zap.Error(err))
			}
		}
	}

	isManifest := filepath.Base(event.Name) == FileName
	if !isManifest && event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if err := w.catalog.Reload(); err != nil {
		w.logger.Warn("catalog reload failed", zap.Error(err))
		return
	}

	w.logger.Debug("catalog reloaded",
		zap.String("trigger", event.Name),
		zap.Int("assets", w.catalog.Len()))

	select {
	case w.events <- ReloadEvent{Assets: w.catalog.Len(), Timestamp: time.Now()}:
	default:
		// Channel full, skip notification.
	}
}
