package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/logging"
)

const watchOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

// Watch calls run once, then again whenever a file in dirs changes and
// debounce passes with no further change. It returns nil when ctx is
// cancelled.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, log *logging.Logger, run func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "start watcher")
	}
	defer w.Close()

	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return errors.Wrapf(err, "watch %s", d)
		}
	}

	run(ctx)
	announce := func() {
		log.Info("Watching %s for changes (Ctrl-C to stop)", strings.Join(dirs, ", "))
	}
	announce()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			log.Debug("Change: %s %s", ev.Op, filepath.Base(ev.Name))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watch error: %v", err)
		case <-fire:
			fire = nil
			if ctx.Err() != nil {
				return nil
			}
			run(ctx)
			announce()
		}
	}
}

// relevant drops events for hidden files, which include in-progress temp
// files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&watchOps == 0 {
		return false
	}
	return !strings.HasPrefix(filepath.Base(ev.Name), ".")
}
