// Package watch reports files as they arrive in a directory.
//
// Dir watches with fsnotify and falls back to polling when the platform
// watcher is unavailable. A file is reported once, after its size has stopped
// changing for the settle interval, so half-copied PDFs are not parsed:
//
//	files, err := watch.Dir(ctx, "inbox", watch.Options{Ext: ".pdf"})
//	for path := range files {
//	    process(path)
//	}
//
// Files present when watching starts are not reported. The channel is closed
// when ctx is done.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/randalmurphal/shipdoc/logging"
)

// Options configures Dir.
type Options struct {
	// Ext filters file names by extension, case-insensitively, with or
	// without the leading dot. Empty means every file.
	Ext string

	// Settle is how long a file's size must stay unchanged. Default 500ms.
	Settle time.Duration

	// Poll is the directory scan interval when polling. Default 1s.
	Poll time.Duration

	// forcePoll skips fsnotify. Tests use it to exercise the fallback.
	forcePoll bool
}

func (o Options) withDefaults() Options {
	if o.Settle <= 0 {
		o.Settle = 500 * time.Millisecond
	}
	if o.Poll <= 0 {
		o.Poll = time.Second
	}
	return o
}

// pending tracks a file that has been seen but not yet reported.
type pending struct {
	size    int64
	changed time.Time
}

type watcher struct {
	dir     string
	opts    Options
	log     *slog.Logger
	seen    map[string]bool
	pending map[string]pending
}

// Dir watches dir for new files and sends their paths on the returned
// channel.
func Dir(ctx context.Context, dir string, opts Options) (<-chan string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	w := &watcher{
		dir:     dir,
		opts:    opts.withDefaults(),
		log:     logging.FromContext(ctx).With(slog.String("dir", dir)),
		seen:    make(map[string]bool),
		pending: make(map[string]pending),
	}
	// The watch is registered before the snapshot so that a file created
	// after Dir returns always produces an event.
	var fw *fsnotify.Watcher
	if !w.opts.forcePoll {
		if fw, err = notify(dir); err != nil {
			w.log.Warn("fsnotify unavailable, polling", slog.Any("error", err))
		}
	}
	for _, name := range w.list() {
		w.seen[name] = true
	}

	ch := make(chan string)
	go func() {
		defer close(ch)

		if fw != nil {
			defer fw.Close()
			w.runWatcher(ctx, ch, fw)
			return
		}
		w.runPolling(ctx, ch)
	}()

	return ch, nil
}

func notify(dir string) (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

func (w *watcher) runWatcher(ctx context.Context, ch chan<- string, fw *fsnotify.Watcher) {
	ticker := time.NewTicker(w.opts.Settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if w.match(name) && !w.seen[name] {
				w.touch(name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", slog.Any("error", err))

		case <-ticker.C:
			if !w.flush(ctx, ch) {
				return
			}
		}
	}
}

func (w *watcher) runPolling(ctx context.Context, ch chan<- string) {
	ticker := time.NewTicker(min(w.opts.Poll, w.opts.Settle/2))
	defer ticker.Stop()

	last := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			if now.Sub(last) >= w.opts.Poll {
				last = now
				for _, name := range w.list() {
					if !w.seen[name] {
						w.touch(name)
					}
				}
			}
			if !w.flush(ctx, ch) {
				return
			}
		}
	}
}

// touch records the current size of name, restarting its settle timer when
// the size changed.
func (w *watcher) touch(name string) {
	info, err := os.Stat(filepath.Join(w.dir, name))
	if err != nil || info.IsDir() {
		delete(w.pending, name)
		return
	}
	p, ok := w.pending[name]
	if !ok || p.size != info.Size() {
		w.pending[name] = pending{size: info.Size(), changed: time.Now()}
	}
}

// flush reports settled files. It returns false when ctx ended.
func (w *watcher) flush(ctx context.Context, ch chan<- string) bool {
	for name, p := range w.pending {
		w.touch(name)
		cur, ok := w.pending[name]
		if !ok || cur.size != p.size || time.Since(cur.changed) < w.opts.Settle {
			continue
		}

		delete(w.pending, name)
		w.seen[name] = true
		path := filepath.Join(w.dir, name)
		w.log.Debug("file arrived", slog.String("file", name))

		select {
		case ch <- path:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *watcher) list() []string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("read directory", slog.Any("error", err))
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && w.match(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names
}

func (w *watcher) match(name string) bool {
	ext := strings.TrimPrefix(w.opts.Ext, ".")
	return ext == "" || strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), ext)
}
