// Package watcher regenerates documents when their input files change.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/render"
)

// Handler is called once per debounced change of a watched file.
type Handler func(ctx context.Context, path string) error

// Stats counts handled changes.
type Stats struct {
	Runs   int64
	Errors int64
}

// Watcher debounces fsnotify events for input files in one directory.
type Watcher struct {
	dir        string
	handle     Handler
	debounce   time.Duration
	extensions []string
	log        *zap.Logger

	pending map[string]time.Time
	runs    atomic.Int64
	errors  atomic.Int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New creates a watcher for .yaml and .yml files in dir.
func New(dir string, handle Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:        dir,
		handle:     handle,
		debounce:   500 * time.Millisecond, // editors write in bursts
		extensions: []string{".yaml", ".yml"},
		log:        zap.NewNop(),
		pending:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns handled and failed run counts.
func (w *Watcher) Stats() Stats {
	return Stats{Runs: w.runs.Load(), Errors: w.errors.Load()}
}

// Run watches until ctx is cancelled. Handler errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.watched(event) {
				w.pending[event.Name] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) watched(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)

		w.runs.Add(1)
		if err := w.handle(ctx, path); err != nil {
			w.errors.Add(1)
			w.log.Error("regenerate failed", zap.String("path", path), zap.Error(err))
			continue
		}
		w.log.Info("regenerated", zap.String("path", path))
	}
}

// Regenerate returns a handler that turns <name>.yaml into <name>.html (or
// <name>.md for markdown) next to it.
func Regenerate(gen *generator.Generator, t core.DocType, f render.Format) Handler {
	ext := ".html"
	if f == render.Markdown {
		ext = ".md"
	}
	return func(ctx context.Context, path string) error {
		in, err := generator.LoadInput(path)
		if err != nil {
			return err
		}
		res, err := gen.Generate(ctx, generator.Request{Name: path, Input: in, Type: t, Format: f})
		if err != nil {
			return err
		}
		out := strings.TrimSuffix(path, filepath.Ext(path)) + ext
		if err := os.WriteFile(out, []byte(res.Document.HTML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return nil
	}
}
