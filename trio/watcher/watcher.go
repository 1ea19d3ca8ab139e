// Package watcher delivers filesystem change events for facade paths. It
// is a thin lifecycle around fsnotify: events are translated into facade
// paths, filtered against optional ignore patterns, and coalesced per
// path within a configurable quiet window. Watching is only meaningful on
// the OS filesystem backend.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	internal "github.com/Hanaasagi/trio/trio"
	"github.com/Hanaasagi/trio/trio/config"
	"github.com/Hanaasagi/trio/trio/pathfs"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreChecker filters paths that should not produce events.
type IgnoreChecker interface {
	MatchesPath(path string) bool
}

// Config configures a Watcher.
type Config struct {
	QueueCapacity int    // Event channel capacity
	DebounceMs    int    // Quiet window for coalescing; 0 uses the default, negative disables
	IgnoreFile    string // Optional gitignore-style file with paths to skip
}

// Event is one filesystem change on a watched path.
type Event struct {
	Path *pathfs.Path
	Op   fsnotify.Op
	Time time.Time
}

// Watcher watches facade paths and emits Events on a buffered channel.
type Watcher struct {
	watcher  *fsnotify.Watcher
	events   chan Event
	errors   chan error
	ignored  IgnoreChecker
	env      *pathfs.Env
	debounce *debouncer

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	watched map[string]bool
	started bool
}

// New creates a watcher. Events carry paths bound to env; a nil env uses
// the default environment.
func New(cfg Config, env *pathfs.Env) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = internal.DefaultWatcherQueueCapacity
	}
	if cfg.DebounceMs == 0 {
		cfg.DebounceMs = internal.DefaultWatcherDebounceMs
	}
	if env == nil {
		env = pathfs.DefaultEnv()
	}

	w := &Watcher{
		watcher: fsWatcher,
		events:  make(chan Event, cfg.QueueCapacity),
		errors:  make(chan error, 10),
		env:     env,
		watched: make(map[string]bool),
	}
	if cfg.DebounceMs > 0 {
		w.debounce = newDebouncer(time.Duration(cfg.DebounceMs)*time.Millisecond, w.send)
	}

	if cfg.IgnoreFile != "" {
		ignored, err := ignore.CompileIgnoreFile(cfg.IgnoreFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error reading ignore file %s: %w", cfg.IgnoreFile, err)
			}
		} else {
			w.ignored = ignored
		}
	}

	logger := internal.GetLogger()
	logger.Debug().
		Int("queue_capacity", cfg.QueueCapacity).
		Int("debounce_ms", cfg.DebounceMs).
		Msg("watcher created")

	return w, nil
}

// NewFromConfig builds a watcher from the loaded application configuration.
func NewFromConfig(cfg *config.Config, env *pathfs.Env) (*Watcher, error) {
	return New(Config{
		QueueCapacity: cfg.Trio.Watcher.QueueCapacity,
		DebounceMs:    cfg.Trio.Watcher.DebounceMs,
	}, env)
}

// Start begins watching the given paths and launches the event loop.
func (w *Watcher) Start(ctx context.Context, paths ...*pathfs.Path) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("watcher already started")
	}

	for _, p := range paths {
		if err := w.watcher.Add(p.String()); err != nil {
			slog.Warn("Failed to add path to watcher", "path", p.String(), "error", err)
			continue
		}
		w.watched[p.String()] = true
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true

	w.wg.Add(1)
	go w.watchLoop(loopCtx)

	slog.Info("Watcher started", "paths", len(w.watched))
	return nil
}

// Add watches an additional path.
func (w *Watcher) Add(p *pathfs.Path) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.watcher.Add(p.String()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", p.String(), err)
	}
	w.watched[p.String()] = true
	return nil
}

// Events returns the event channel. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop cancels the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = false
	w.mu.Unlock()

	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()

	// Silence pending debounce timers before closing the channel they
	// deliver on.
	if w.debounce != nil {
		w.debounce.close()
	}
	close(w.events)
	close(w.errors)

	slog.Info("Watcher stopped")
	return err
}

// send enqueues an event without blocking the loop; a full queue drops.
func (w *Watcher) send(e Event) {
	select {
	case w.events <- e:
	default:
		slog.Warn("Event queue full, dropping event", "path", e.Path.String())
	}
}

// watchLoop translates fsnotify events into facade events until the
// context is cancelled or the underlying watcher closes.
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored != nil && w.ignored.MatchesPath(event.Name) {
				slog.Debug("Ignoring event", "path", event.Name)
				continue
			}

			p, err := pathfs.NewIn(w.env, event.Name)
			if err != nil {
				slog.Warn("Failed to wrap event path", "path", event.Name, "error", err)
				continue
			}
			out := Event{
				Path: p,
				Op:   event.Op,
				Time: time.Now(),
			}
			if w.debounce != nil {
				w.debounce.add(out)
			} else {
				w.send(out)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				slog.Warn("Error queue full, dropping error", "error", err)
			}
		}
	}
}
