package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const debounce = 200 * time.Millisecond

// watchFiles calls fn once, then again after every change to files, until ctx
// is cancelled or the process is interrupted. Failed runs are reported to w.
func watchFiles(ctx context.Context, files []string, w io.Writer, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot watch files")
	}
	defer watcher.Close()

	// Editors replace files on save, so the directories are watched.
	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "cannot watch %s", dir)
		}
	}

	report := func() {
		if err := fn(); err != nil && err != errFailed {
			fmt.Fprintln(w, "amdahl:", err)
		}
	}
	report()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !watched[abs] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(w, "amdahl: watch:", err)
		case <-timer:
			timer = nil
			report()
		}
	}
}
