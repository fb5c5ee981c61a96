// Package watch reports changed source files so they can be recompiled.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher
type Options struct {
	// Debounce is how long a file must stay quiet before it is reported.
	Debounce time.Duration
	// Filter selects the files to report; nil reports every file.
	Filter func(path string) bool
	Stdout io.Writer
	Stderr io.Writer
}

// Watcher monitors directory trees and single files for changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	roots    []string
	files    map[string]bool // roots that are plain files
	dirs     []string        // roots that are directories, watched recursively
	opts     Options
	onChange func(path string)

	mu        sync.Mutex
	pending   map[string]*time.Timer
	changeSeq uint64
	closed    bool

	fire sync.Mutex // serializes onChange calls
	done chan struct{}
}

// New creates a watcher over roots. onChange is called once per settled
// change with the path of the changed file.
func New(roots []string, onChange func(path string), opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Watcher{
		watcher:  fsWatcher,
		roots:    roots,
		files:    make(map[string]bool),
		opts:     opts,
		onChange: onChange,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start adds every root to the watch list and begins processing events in
// the background until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			w.files[filepath.Clean(root)] = true
			if err := w.watcher.Add(filepath.Dir(root)); err != nil {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			w.logInfo("watching file: %s", root)
			continue
		}
		w.dirs = append(w.dirs, filepath.Clean(root))
		if err := w.watchDirRecursive(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		w.logInfo("watching: %s", root)
	}

	go w.eventLoop(ctx)
	return nil
}

// Run starts the watcher and blocks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		w.Close()
		return err
	}
	<-w.done
	return w.Close()
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if isHidden(d.Name()) && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)
	if !w.covered(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !isHidden(info.Name()) {
				if err := w.watchDirRecursive(path); err != nil {
					w.logError("failed to watch %s: %v", path, err)
				}
			}
			return
		}
	}

	if w.opts.Filter != nil && !w.opts.Filter(path) {
		return
	}
	w.schedule(path)
}

// covered reports whether path is a watched file or lies under a watched
// directory without passing through a hidden one.
func (w *Watcher) covered(path string) bool {
	if w.files[path] {
		return true
	}
	for _, dir := range w.dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		hidden := false
		for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
			if isHidden(part) {
				hidden = true
				break
			}
		}
		if !hidden {
			return true
		}
	}
	return false
}

// schedule reports path once it has been quiet for the debounce period
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.changeSeq++
		w.mu.Unlock()

		w.fire.Lock()
		defer w.fire.Unlock()
		w.logInfo("changed: %s", path)
		w.onChange(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ChangeSeq returns the number of changes reported so far
func (w *Watcher) ChangeSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changeSeq
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.stopTimers()
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.opts.Stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.opts.Stderr, "[WATCH ERROR] "+format+"\n", args...)
}
