package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/render"
)

// start runs w in the background and returns a stop func that waits for it.
func start(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestRegeneratesOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w := New(dir, Regenerate(generator.New(nil), core.DocBRD, render.HTML), WithDebounce(30*time.Millisecond))
	stop := start(t, w)
	defer stop()

	in := filepath.Join(dir, "campaign-hub.yaml")
	require.NoError(t, os.WriteFile(in, []byte("requirements: |\n  Launch promotion journeys\n"), 0o644))

	out := filepath.Join(dir, "campaign-hub.html")
	require.Eventually(t, func() bool {
		_, err := os.Stat(out)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Campaign Hub")
	assert.Contains(t, string(body), "EPIC-01")
}

func TestDebounceCoalescesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	handle := func(_ context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		calls[filepath.Base(path)]++
		return nil
	}

	w := New(dir, handle, WithDebounce(150*time.Millisecond))
	stop := start(t, w)

	path := filepath.Join(dir, "a.yml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("project: A\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	require.Eventually(t, func() bool { return w.Stats().Runs >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"a.yml": 1}, calls)
}

func TestHandlerErrorsAreCounted(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	w := New(dir, func(context.Context, string) error { return errors.New("bad input") }, WithDebounce(20*time.Millisecond))
	stop := start(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("project: X\n"), 0o644))
	require.Eventually(t, func() bool { return w.Stats().Errors == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestRunMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}

func TestRegenerateMarkdown(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "flight-ops.yaml")
	require.NoError(t, os.WriteFile(in, []byte("requirements: Book flights online for passengers at the airport\n"), 0o644))

	handle := Regenerate(generator.New(nil), core.DocFRD, render.Markdown)
	require.NoError(t, handle(context.Background(), in))

	body, err := os.ReadFile(filepath.Join(dir, "flight-ops.md"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Flight Ops")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nope: 1\n"), 0o644))
	var ie *generator.InputError
	assert.ErrorAs(t, handle(context.Background(), bad), &ie)
}
