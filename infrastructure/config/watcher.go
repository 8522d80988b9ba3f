package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when its overlay file changes and hands
// the new value to the registered callbacks. Only the fields that are safe to
// change at runtime (cache TTLs, log level) are expected to be applied.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher starts watching the overlay file of initial. It returns a
// watcher that never fires when no file is configured.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		path:     initial.ConfigFile,
		debounce: defaultDebounce,
		logger:   logger,
		config:   initial,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	if w.path == "" {
		close(w.done)
		logger.Debug("Configuration hot reloading disabled")
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// editors replace files on save, so watch the directory
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled", zap.String("file", w.path))
	return w, nil
}

// WithDebounce sets the quiet period before a reload
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
	return w
}

// OnChange registers a callback to be called when configuration changes
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// Current returns the latest valid configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.done
	return nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	target := filepath.Clean(w.path)
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.mu.RLock()
			delay := w.debounce
			w.mu.RUnlock()
			debounceTimer = time.AfterFunc(delay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	next, err := Reload(w.path)
	if err != nil {
		// keep serving with the last valid configuration
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	previous := w.config
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logChanges(previous, next)

	for i, cb := range callbacks {
		w.notify(i, cb, next)
	}
}

func (w *Watcher) notify(idx int, cb func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Callback panicked",
				zap.Int("callback_index", idx),
				zap.Any("panic", r),
			)
		}
	}()
	cb(cfg)
}

func (w *Watcher) logChanges(old, next *Config) {
	changes := make([]string, 0)
	if old.LogLevel != next.LogLevel {
		changes = append(changes, fmt.Sprintf("log_level: %s -> %s", old.LogLevel, next.LogLevel))
	}
	if old.Cache.TTLList != next.Cache.TTLList {
		changes = append(changes, fmt.Sprintf("cache.ttl_list: %s -> %s", old.Cache.TTLList, next.Cache.TTLList))
	}
	if old.Cache.TTLDetail != next.Cache.TTLDetail {
		changes = append(changes, fmt.Sprintf("cache.ttl_detail: %s -> %s", old.Cache.TTLDetail, next.Cache.TTLDetail))
	}
	if old.Cache.TTLReference != next.Cache.TTLReference {
		changes = append(changes, fmt.Sprintf("cache.ttl_reference: %s -> %s", old.Cache.TTLReference, next.Cache.TTLReference))
	}

	w.logger.Info("Configuration reloaded", zap.Strings("changes", changes))
}
