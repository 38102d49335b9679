package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) rebuild(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func startWatcher(t *testing.T, root string, rec *recorder) {
	t.Helper()
	w, err := New(root, rec.rebuild, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
		w.Close()
	})
}

func TestWatcher_RebuildsOnSourceChange(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(src, 0o755))

	rec := &recorder{}
	startWatcher(t, root, rec)

	path := filepath.Join(src, "Hello.wh")
	require.NoError(t, os.WriteFile(path, []byte("<Text>hi</Text>"), 0o644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, rec.snapshot()[0], path)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	rec := &recorder{}
	startWatcher(t, root, rec)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "notes.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	rec := &recorder{}
	startWatcher(t, root, rec)

	dir := filepath.Join(root, "src", "screens")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// give the watcher a moment to register the new directory
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(dir, "Home.wh")
	require.NoError(t, os.WriteFile(path, []byte("<Text>home</Text>"), 0o644))

	require.Eventually(t, func() bool {
		for _, call := range rec.snapshot() {
			for _, p := range call {
				if p == path {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNew_MissingSourceDir(t *testing.T) {
	_, err := New(t.TempDir(), func(context.Context, []string) error { return nil })
	require.Error(t, err)
}

func TestRelevant(t *testing.T) {
	type tc struct {
		event fsnotify.Event
		want  bool
	}

	tests := map[string]tc{
		"write source":  {event: fsnotify.Event{Name: "a/B.wh", Op: fsnotify.Write}, want: true},
		"remove source": {event: fsnotify.Event{Name: "a/B.wh", Op: fsnotify.Remove}, want: true},
		"chmod source":  {event: fsnotify.Event{Name: "a/B.wh", Op: fsnotify.Chmod}, want: false},
		"write kotlin":  {event: fsnotify.Event{Name: "a/B.kt", Op: fsnotify.Write}, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
