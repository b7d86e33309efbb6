package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestFSNotifyWatcher_WatchUnwatch(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.js")
	b := filepath.Join(dir, "b.js")
	require.NoError(t, os.WriteFile(a, []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("2"), 0o644))

	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(b))
	assert.ErrorIs(t, w.Watch(a), ErrAlreadyWatching)
	assert.Equal(t, []string{a, b}, w.WatchedPaths())
	assert.Equal(t, 2, w.dirs[dir])

	require.NoError(t, w.Unwatch(a))
	assert.False(t, w.IsWatching(a))
	assert.True(t, w.IsWatching(b))
	assert.ErrorIs(t, w.Unwatch(a), ErrNotWatching)

	require.NoError(t, w.Unwatch(b))
	assert.Empty(t, w.dirs)
}

func TestFSNotifyWatcher_WatchErrors(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()

	assert.ErrorIs(t, w.Watch(filepath.Join(dir, "missing.js")), ErrPathNotExist)
	assert.Error(t, w.Watch(dir))

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(filepath.Join(dir, "x")), ErrWatcherClosed)
	assert.ErrorIs(t, w.Unwatch(filepath.Join(dir, "x")), ErrWatcherClosed)
}

func TestFSNotifyWatcher_ReportsWrites(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "main.css")
	other := filepath.Join(dir, "other.css")
	require.NoError(t, os.WriteFile(target, []byte("a{}"), 0o644))
	require.NoError(t, w.Watch(target))

	// Traffic for siblings in the same directory is filtered out.
	require.NoError(t, os.WriteFile(other, []byte("b{}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("c{}"), 0o644))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case e := <-w.Events():
			require.Equal(t, target, e.Path)
			if e.Op.Has(OpWrite) || e.Op.Has(OpCreate) {
				return
			}
		case <-deadline:
			t.Fatal("no write event for watched file")
		}
	}
}

func TestFSNotifyWatcher_CloseClosesChannels(t *testing.T) {
	w, err := NewFSNotifyWatcher(WithBufferSize(1))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}
