package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return condition()
}

func TestWatcherTriggersOnChange(t *testing.T) {
	corpus := t.TempDir()

	var fired atomic.Int32
	w := New([]string{corpus}, 50*time.Millisecond, func(context.Context) {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)

	skillDir := filepath.Join(corpus, "new-skill")
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte("---\nname: new-skill\ndescription: d\n---\nbody\n"), 0o644))

	assert.True(t, waitFor(t, 3*time.Second, func() bool { return fired.Load() >= 1 }),
		"expected change callback to fire")

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	corpus := t.TempDir()
	skillDir := filepath.Join(corpus, "busy-skill")
	require.NoError(t, os.MkdirAll(skillDir, 0o755))

	var fired atomic.Int32
	w := New([]string{corpus}, 200*time.Millisecond, func(context.Context) {
		fired.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	// A burst of writes within the debounce window
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte("---\nname: busy-skill\ndescription: d\n---\nrev\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.True(t, waitFor(t, 3*time.Second, func() bool { return fired.Load() >= 1 }))

	// Settle and confirm the burst collapsed into few callbacks
	time.Sleep(400 * time.Millisecond)
	assert.LessOrEqual(t, fired.Load(), int32(2))
}

func TestWatcherNoWatchableDirs(t *testing.T) {
	w := New([]string{"/nonexistent/path/one", "/nonexistent/path/two"}, 0, func(context.Context) {})

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no corpus directories")
}

func TestRelevant(t *testing.T) {
	// Dotfiles and non-markdown files with extensions are ignored
	assert.False(t, relevantFor(".hidden.md"))
	assert.False(t, relevantFor("notes.txt"))
	assert.True(t, relevantFor("SKILL.md"))
	assert.True(t, relevantFor("some-dir"))
}

func relevantFor(name string) bool {
	return relevant(fsnotify.Event{Name: filepath.Join("/corpus", name), Op: fsnotify.Write})
}
