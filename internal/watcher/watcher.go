// Package watcher emits filesystem events for document files appearing
// in a watched directory, driving automatic ingestion.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/askdoc-labs/askdoc-cli/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// reported. Editors and downloads produce bursts of write events; only
// the settled file is worth ingesting.
const DefaultDebounce = 500 * time.Millisecond

// watchedExtensions are the document formats worth ingesting.
var watchedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// Watcher reports document files created or modified under a directory.
type Watcher struct {
	dir      string
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a file is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for the given directory.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch streams paths of settled document files until ctx is cancelled.
// The returned channel is closed when watching stops.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	out := make(chan string)

	go func() {
		defer fsw.Close()

		var mu sync.Mutex
		var pending sync.WaitGroup
		timers := make(map[string]*time.Timer)

		// A debounce timer armed just before shutdown may still fire
		// while out is being closed. Stop every pending timer, wait for
		// callbacks that already fired, and only then close out.
		defer func() {
			mu.Lock()
			for path, timer := range timers {
				if timer.Stop() {
					pending.Done()
				}
				delete(timers, path)
			}
			mu.Unlock()
			pending.Wait()
			close(out)
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !watchedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}

				// Restart the debounce timer for this path.
				path := event.Name
				mu.Lock()
				if timer, exists := timers[path]; exists {
					if timer.Stop() {
						pending.Done()
					}
				}
				pending.Add(1)
				var timer *time.Timer
				timer = time.AfterFunc(w.debounce, func() {
					defer pending.Done()

					mu.Lock()
					if timers[path] == timer {
						delete(timers, path)
					}
					mu.Unlock()

					select {
					case out <- path:
					case <-ctx.Done():
					}
				})
				timers[path] = timer
				mu.Unlock()

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error on %s: %v", w.dir, err)
			}
		}
	}()

	return out, nil
}
