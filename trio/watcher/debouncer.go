package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// maxWaitFactor bounds how long a sustained burst can postpone delivery:
// a pending path is flushed no later than maxWaitFactor quiet windows
// after its first event.
const maxWaitFactor = 4

// debouncer coalesces rapid successive events on the same path into a
// single event delivered once the path has been quiet for one window.
// The coalesced event carries the union of the observed ops and the
// payload of the last event seen.
type debouncer struct {
	window time.Duration
	emit   func(Event)

	mu      sync.Mutex
	pending map[string]*pendingEvent
	closed  bool
}

type pendingEvent struct {
	event    Event
	ops      fsnotify.Op
	timer    *time.Timer
	deadline time.Time
}

func newDebouncer(window time.Duration, emit func(Event)) *debouncer {
	return &debouncer{
		window:  window,
		emit:    emit,
		pending: make(map[string]*pendingEvent),
	}
}

// add merges e into the pending batch for its path and restarts the quiet
// window, clamped to the batch deadline.
func (d *debouncer) add(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	key := e.Path.String()
	p, ok := d.pending[key]
	if !ok {
		p = &pendingEvent{deadline: time.Now().Add(maxWaitFactor * d.window)}
		d.pending[key] = p
	}
	p.event = e
	p.ops |= e.Op

	if p.timer != nil {
		p.timer.Stop()
	}
	delay := d.window
	if remaining := time.Until(p.deadline); remaining < delay {
		delay = remaining
		if delay < 0 {
			delay = 0
		}
	}
	p.timer = time.AfterFunc(delay, func() { d.flush(key) })
}

// flush delivers the pending batch for key. Emitting under the lock keeps
// close ordering sound: once close returns, no further emit can run.
func (d *debouncer) flush(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	p, ok := d.pending[key]
	if !ok {
		return
	}
	delete(d.pending, key)

	out := p.event
	out.Op = p.ops
	d.emit(out)
}

// close stops all pending timers and discards undelivered batches.
func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for _, p := range d.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	d.pending = nil
}
