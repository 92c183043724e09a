package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sgk/internal/testutil"
)

func startWatch(t *testing.T, root string, opts Options) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	opts.Logger = testutil.Logger()
	go func() {
		defer close(done)
		_ = Watch(ctx, root, opts)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	var changes atomic.Int32
	var mu sync.Mutex
	var events []string

	startWatch(t, root, Options{
		Debounce: 200 * time.Millisecond,
		OnChange: func(context.Context) { changes.Add(1) },
		OnEvent: func(kind, path string) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, kind+":"+path)
		},
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "toan-6.md"), []byte("# Chương"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return changes.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load(), "burst collapses into one change")

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, events, "created:toan-6.md")
}

func TestWatch_IgnoresHiddenFiles(t *testing.T) {
	root := t.TempDir()
	var changes atomic.Int32
	startWatch(t, root, Options{
		Debounce: 100 * time.Millisecond,
		OnChange: func(context.Context) { changes.Add(1) },
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, ".sgk-tmp-123"), []byte("x"), 0o644))
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load())
}

func TestWatch_NewDirectory(t *testing.T) {
	root := t.TempDir()
	var changes atomic.Int32
	startWatch(t, root, Options{
		Debounce: 100 * time.Millisecond,
		OnChange: func(context.Context) { changes.Add(1) },
	})

	sub := filepath.Join(root, "lop-8")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return changes.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := changes.Load()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "lich-su-8.md"), []byte("# Bài 1"), 0o644))
	assert.Eventually(t, func() bool { return changes.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_BadRoot(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{Logger: testutil.Logger()})
	assert.Error(t, err)
}
