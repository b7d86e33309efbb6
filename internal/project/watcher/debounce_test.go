package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWatcher is a Watcher whose events are pushed by the test.
type mockWatcher struct {
	mu       sync.Mutex
	events   chan Event
	errors   chan error
	watching map[string]bool
	closed   bool
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		events:   make(chan Event, 100),
		errors:   make(chan error, 100),
		watching: make(map[string]bool),
	}
}

func (m *mockWatcher) Watch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching[path] {
		return ErrAlreadyWatching
	}
	m.watching[path] = true
	return nil
}

func (m *mockWatcher) Unwatch(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.watching[path] {
		return ErrNotWatching
	}
	delete(m.watching, path)
	return nil
}

func (m *mockWatcher) Events() <-chan Event { return m.events }
func (m *mockWatcher) Errors() <-chan error { return m.errors }

func (m *mockWatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
		close(m.errors)
	}
	return nil
}

func (m *mockWatcher) IsWatching(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watching[path]
}

func (m *mockWatcher) WatchedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.watching {
		out = append(out, p)
	}
	return out
}

func receive(t *testing.T, ch <-chan Event, within time.Duration) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(within):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestDebounced_Coalesces(t *testing.T) {
	m := newMockWatcher()
	d := NewDebounced(m, 30*time.Millisecond)
	defer d.Close()

	m.events <- Event{Path: "/a.js", Op: OpCreate}
	m.events <- Event{Path: "/a.js", Op: OpWrite}
	m.events <- Event{Path: "/a.js", Op: OpWrite}

	e := receive(t, d.Events(), time.Second)
	assert.Equal(t, "/a.js", e.Path)
	assert.Equal(t, OpCreate|OpWrite, e.Op)

	select {
	case extra := <-d.Events():
		t.Fatalf("unexpected second event %+v", extra)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebounced_SeparatePaths(t *testing.T) {
	m := newMockWatcher()
	d := NewDebounced(m, 20*time.Millisecond)
	defer d.Close()

	m.events <- Event{Path: "/a.js", Op: OpWrite}
	m.events <- Event{Path: "/b.js", Op: OpWrite}

	seen := map[string]bool{}
	seen[receive(t, d.Events(), time.Second).Path] = true
	seen[receive(t, d.Events(), time.Second).Path] = true
	assert.Equal(t, map[string]bool{"/a.js": true, "/b.js": true}, seen)
}

func TestDebounced_Flush(t *testing.T) {
	m := newMockWatcher()
	d := NewDebounced(m, time.Hour)
	defer d.Close()

	m.events <- Event{Path: "/a.js", Op: OpWrite}
	require.Eventually(t, func() bool { return d.PendingCount() == 1 }, time.Second, 5*time.Millisecond)

	d.Flush()
	e := receive(t, d.Events(), time.Second)
	assert.Equal(t, "/a.js", e.Path)
	assert.Equal(t, 0, d.PendingCount())
}

func TestDebounced_ForwardsErrorsAndWatch(t *testing.T) {
	m := newMockWatcher()
	d := NewDebounced(m, 0)
	defer d.Close()

	require.NoError(t, d.Watch("/a.js"))
	assert.ErrorIs(t, d.Watch("/a.js"), ErrAlreadyWatching)
	assert.True(t, d.IsWatching("/a.js"))
	assert.Equal(t, []string{"/a.js"}, d.WatchedPaths())
	require.NoError(t, d.Unwatch("/a.js"))
	assert.False(t, d.IsWatching("/a.js"))

	m.errors <- assert.AnError
	select {
	case err := <-d.Errors():
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(time.Second):
		t.Fatal("error not forwarded")
	}
}

func TestDebounced_CloseDiscardsPending(t *testing.T) {
	m := newMockWatcher()
	d := NewDebounced(m, time.Hour)

	m.events <- Event{Path: "/a.js", Op: OpWrite}
	require.Eventually(t, func() bool { return d.PendingCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	assert.Equal(t, 0, d.PendingCount())

	_, ok := <-d.Events()
	assert.False(t, ok)
	assert.True(t, m.closed)
}
