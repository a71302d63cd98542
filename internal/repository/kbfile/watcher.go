package kbfile

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symcheck/internal/metrics"
)

// Editors fire several events per save; one timer coalesces them.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the knowledge base when its file changes. A failed reload
// keeps the previous snapshot active.
type Watcher struct {
	path     string
	provider *Provider
	logger   *zap.Logger
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher starts watching the file at path. The parent directory is
// watched so save-via-rename still produces events.
func NewWatcher(path string, provider *Provider, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		provider: provider,
		logger:   logger,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. The active snapshot stays available.
func (w *Watcher) Close() error {
	close(w.done)
	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) loop() {
	debounce := time.NewTimer(reloadDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(reloadDebounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("KB watcher error", zap.Error(err))
		case <-debounce.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		metrics.KBReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error("KB reload failed, keeping previous snapshot",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}

	w.provider.Swap(next)
	metrics.KBReloadsTotal.WithLabelValues("ok").Inc()
	metrics.KBConditions.Set(float64(next.ConditionCount()))
	w.logger.Info("KB reloaded",
		zap.String("path", w.path),
		zap.Int("conditions", next.ConditionCount()),
	)
}
