// Package watch rebuilds a project whenever one of its sources changes.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/grindlemire/whitehall/internal/logger"
	"github.com/grindlemire/whitehall/internal/project"
)

// DefaultDebounce is how long the watcher waits after the last change
// before rebuilding.
const DefaultDebounce = 100 * time.Millisecond

// RebuildFunc rebuilds the project. changed lists the source files that
// triggered the rebuild, sorted and deduplicated.
type RebuildFunc func(ctx context.Context, changed []string) error

// Watcher watches the src/ tree of a project.
type Watcher struct {
	dir      string
	rebuild  RebuildFunc
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New watches root/src and every directory below it.
func New(root string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	w := &Watcher{
		dir:      filepath.Join(root, "src"),
		rebuild:  rebuild,
		debounce: DefaultDebounce,
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.addTree(w.dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "watch %s", dir)
	}
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced rebuilds until ctx is done. Rebuild failures are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Logger.Warnw("cannot watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("watcher error", "error", err)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}

			logger.Logger.Infow("rebuilding", "changed", len(changed))
			if err := w.rebuild(ctx, changed); err != nil {
				logger.Logger.Errorw("rebuild failed", "error", err)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != project.SourceExt {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
