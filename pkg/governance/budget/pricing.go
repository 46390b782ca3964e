package budget

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadRates reads a YAML pricing table mapping model names to per-1K
// token rates:
//
//	gpt-4o:
//	  input: 0.0025
//	  output: 0.010
func LoadRates(path string) (map[string]ModelRate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing file %q: %w", path, err)
	}

	var rates map[string]ModelRate
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse pricing file %q: %w", path, err)
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("pricing file %q contains no rates", path)
	}

	for model, rate := range rates {
		if rate.Input < 0 || rate.Output < 0 {
			return nil, fmt.Errorf("pricing file %q: negative rate for model %q", path, model)
		}
	}

	return rates, nil
}

// RateWatcher hot-reloads a pricing file into an Estimator whenever the
// file changes. Reload failures keep the previous rates and log a
// warning.
type RateWatcher struct {
	path      string
	estimator *Estimator
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	// debounce collapses editor write bursts into one reload.
	debounce time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewRateWatcher creates a watcher for the pricing file at path. The
// file must be loadable at creation time; its rates are applied
// immediately.
func NewRateWatcher(path string, estimator *Estimator) (*RateWatcher, error) {
	rates, err := LoadRates(path)
	if err != nil {
		return nil, err
	}
	estimator.UpdateRates(rates)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory: editors and config tools typically replace
	// the file, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch pricing directory: %w", err)
	}

	return &RateWatcher{
		path:      path,
		estimator: estimator,
		watcher:   watcher,
		logger:    slog.Default().With("component", "budget.pricing"),
		debounce:  100 * time.Millisecond,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Calling Start on a
// running watcher is a no-op.
func (w *RateWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)

	w.logger.Info("pricing watcher started", "path", w.path)
}

func (w *RateWatcher) run(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case <-reload:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("pricing watcher error", "error", err)
		}
	}
}

func (w *RateWatcher) reload() {
	rates, err := LoadRates(w.path)
	if err != nil {
		w.logger.Warn("pricing reload failed, keeping previous rates", "error", err)
		return
	}

	w.estimator.UpdateRates(rates)
	w.logger.Info("pricing table reloaded", "path", w.path, "models", len(rates))
}

// Stop stops the watcher and releases its resources.
func (w *RateWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.watcher.Close()
}
