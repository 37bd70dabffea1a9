package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()

	w, err := New(slog.New(slog.DiscardHandler), Options{SettleDelay: 30 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()

	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "added", EventAdded.String())
	assert.Equal(t, "modified", EventModified.String())
	assert.Equal(t, "removed", EventRemoved.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	opts.setDefaults()
	assert.Equal(t, 100*time.Millisecond, opts.SettleDelay)
}

func TestWatcher_WatchMissingDirectory(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	err = w.Watch(filepath.Join(t.TempDir(), "nope", "catalog.json"))
	assert.Error(t, err)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_ModifiedAndRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w := newTestWatcher(t)
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(path, []byte(`{"events":[]}`), 0o644))

	event := waitEvent(t, w)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, int64(13), event.Size)

	require.NoError(t, os.Remove(path))

	event = waitEvent(t, w)
	assert.Equal(t, EventRemoved, event.Type)
}

func TestWatcher_AddedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	w := newTestWatcher(t)
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	event := waitEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w := newTestWatcher(t)
	require.NoError(t, w.Watch(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(200 * time.Millisecond):
	}
}
