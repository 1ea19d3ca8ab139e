package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hanaasagi/trio/trio/config"
	"github.com/Hanaasagi/trio/trio/pathfs"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherEmitsCreateEvent(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{QueueCapacity: 16}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	require.NoError(t, w.Start(context.Background(), pathfs.MustNew(dir)))

	target := filepath.Join(dir, "created.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			require.True(t, ok, "event channel closed before the create event arrived")
			if event.Path.Name() != "created.txt" {
				continue
			}
			assert.True(t, event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write))
			require.NoError(t, w.Stop())
			return
		case <-deadline:
			t.Fatal("no event received for created file")
		}
	}
}

func TestWatcherIgnoresMatchingPaths(t *testing.T) {
	dir := t.TempDir()
	ignoreFile := filepath.Join(dir, ".trioignore")
	require.NoError(t, os.WriteFile(ignoreFile, []byte("*.tmp\n"), 0o644))

	w, err := New(Config{QueueCapacity: 16, IgnoreFile: ignoreFile}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	require.NoError(t, w.Start(context.Background(), pathfs.MustNew(dir)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.txt"), []byte("x"), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case event, ok := <-w.Events():
			require.True(t, ok)
			assert.NotEqual(t, "scratch.tmp", event.Path.Name(), "ignored path produced an event")
			if event.Path.Name() == "kept.txt" {
				require.NoError(t, w.Stop())
				return
			}
		case <-deadline:
			t.Fatal("no event received for kept file")
		}
	}
}

func TestDebouncerCoalescesRapidEvents(t *testing.T) {
	out := make(chan Event, 8)
	d := newDebouncer(30*time.Millisecond, func(e Event) { out <- e })
	defer d.close()

	p := pathfs.MustNew("burst.txt")
	for i := 0; i < 5; i++ {
		d.add(Event{Path: p, Op: fsnotify.Write, Time: time.Now()})
	}
	d.add(Event{Path: p, Op: fsnotify.Chmod, Time: time.Now()})

	select {
	case e := <-out:
		assert.True(t, e.Op.Has(fsnotify.Write))
		assert.True(t, e.Op.Has(fsnotify.Chmod))
		assert.Equal(t, "burst.txt", e.Path.Name())
	case <-time.After(2 * time.Second):
		t.Fatal("coalesced event not delivered")
	}

	select {
	case e := <-out:
		t.Fatalf("burst produced a second event: %v", e.Op)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncerKeepsPathsIndependent(t *testing.T) {
	out := make(chan Event, 8)
	d := newDebouncer(20*time.Millisecond, func(e Event) { out <- e })
	defer d.close()

	d.add(Event{Path: pathfs.MustNew("a.txt"), Op: fsnotify.Write, Time: time.Now()})
	d.add(Event{Path: pathfs.MustNew("b.txt"), Op: fsnotify.Create, Time: time.Now()})

	seen := make(map[string]fsnotify.Op)
	deadline := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case e := <-out:
			seen[e.Path.Name()] = e.Op
		case <-deadline:
			t.Fatalf("expected events for both paths, got %v", seen)
		}
	}
	assert.True(t, seen["a.txt"].Has(fsnotify.Write))
	assert.True(t, seen["b.txt"].Has(fsnotify.Create))
}

func TestDebouncerDropsEventsAfterClose(t *testing.T) {
	out := make(chan Event, 1)
	d := newDebouncer(10*time.Millisecond, func(e Event) { out <- e })

	d.add(Event{Path: pathfs.MustNew("late.txt"), Op: fsnotify.Write, Time: time.Now()})
	d.close()
	d.add(Event{Path: pathfs.MustNew("later.txt"), Op: fsnotify.Write, Time: time.Now()})

	select {
	case e := <-out:
		t.Fatalf("event delivered after close: %v", e.Path)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebounceConfigWiring(t *testing.T) {
	w, err := New(Config{}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Stop() //nolint:errcheck
	assert.NotNil(t, w.debounce, "zero DebounceMs should enable the default window")

	disabled, err := New(Config{DebounceMs: -1}, nil)
	require.NoError(t, err)
	defer disabled.Stop() //nolint:errcheck
	assert.Nil(t, disabled.debounce)

	cfg := &config.Config{}
	cfg.Trio.Watcher.QueueCapacity = 8
	cfg.Trio.Watcher.DebounceMs = 25
	fromCfg, err := NewFromConfig(cfg, nil)
	require.NoError(t, err)
	defer fromCfg.Stop() //nolint:errcheck
	assert.NotNil(t, fromCfg.debounce)
	assert.Equal(t, 25*time.Millisecond, fromCfg.debounce.window)
}

func TestRapidWritesCoalesceThroughWatcher(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{QueueCapacity: 16, DebounceMs: 100}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	require.NoError(t, w.Start(context.Background(), pathfs.MustNew(dir)))

	target := filepath.Join(dir, "hot.txt")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	var got []Event
	deadline := time.After(5 * time.Second)
	for len(got) == 0 {
		select {
		case event, ok := <-w.Events():
			require.True(t, ok)
			if event.Path.Name() == "hot.txt" {
				got = append(got, event)
			}
		case <-deadline:
			t.Fatal("no event received for hot file")
		}
	}

	// The burst is quieter than the window, so it arrives as one event.
	select {
	case event, ok := <-w.Events():
		if ok && event.Path.Name() == "hot.txt" {
			t.Fatalf("burst produced a second event: %v", event.Op)
		}
	case <-time.After(300 * time.Millisecond):
	}
	require.NoError(t, w.Stop())
}

func TestStopWithoutStart(t *testing.T) {
	w, err := New(Config{}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	assert.NoError(t, w.Stop())
}

func TestStartTwiceFails(t *testing.T) {
	w, err := New(Config{}, nil)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Stop() //nolint:errcheck

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
}
