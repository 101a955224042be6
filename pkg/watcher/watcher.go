// Package watcher re-indexes the skill corpus when documents change on
// disk. Filesystem events are debounced so a burst of writes (an editor
// save, a bundle install) triggers a single rebuild.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/logger"
)

// DefaultDebounce is the quiet period after the last event before the
// change callback fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches corpus directories for skill document changes.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	onChange func(context.Context)
}

// New creates a Watcher over the given corpus directories. onChange is
// invoked after changes settle.
func New(dirs []string, debounce time.Duration, onChange func(context.Context)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		onChange: onChange,
	}
}

// Run watches until the context is canceled. Corpus directories that do
// not exist yet are skipped; directories created later under a watched
// root are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create filesystem watcher")
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if err := addRecursive(fsw, dir); err != nil {
			logger.G(ctx).WithField("dir", dir).WithError(err).Debug("skipping unwatchable directory")
			continue
		}
		watched++
	}
	if watched == 0 {
		return errors.New("no corpus directories could be watched")
	}

	logger.G(ctx).WithField("dirs", watched).Info("watching corpus for changes")

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}

			// New skill or references directories need their own watch
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(fsw, event.Name)
				}
			}

			logger.G(ctx).WithField("path", event.Name).WithField("op", event.Op.String()).Debug("corpus change detected")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("filesystem watcher error")
		}
	}
}

// relevant filters events down to Markdown documents and directory
// structure changes.
func relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(base, ".md") {
		return true
	}

	// Directory events carry no extension; creation and removal of skill
	// directories matter.
	return filepath.Ext(base) == ""
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
