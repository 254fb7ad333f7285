// Package watch signals when any of a set of input files changes, so the
// qrbrand command can re-render on edit.
//
// Directories containing the files are watched with fsnotify rather than the
// files themselves, which keeps working when an editor saves by writing a
// temp file and renaming it over the original. If fsnotify is unavailable or
// fails, the watcher falls back to polling file stats.
package watch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval used in polling mode.
const DefaultPollInterval = 2 * time.Second

// ErrNoPaths is returned when a watcher is created without any files.
var ErrNoPaths = errors.New("watch: no paths")

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors files for changes using fsnotify with a polling fallback.
type Watcher struct {
	// files is the set of absolute, cleaned paths being monitored.
	files map[string]struct{}
	// dirs are the distinct parent directories of files.
	dirs []string
	// events delivers a signal each time a watched file changes.
	// The channel is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close] to signal goroutines to exit.
	done chan struct{}
	// mu guards fsw, which the event loop clears when falling back.
	mu sync.Mutex
	// fsw is the underlying fsnotify watcher; nil when polling.
	fsw *fsnotify.Watcher
	// once ensures [Watcher.Close] is idempotent.
	once sync.Once
	// polling is true when the watcher has fallen back to stat-based polling.
	polling atomic.Bool
	// pollInterval is the duration between stat calls in polling mode.
	pollInterval time.Duration
}

// New creates a Watcher for the given files. Files that do not exist yet are
// picked up once they are created, as long as their directory exists.
func New(paths ...string) (*Watcher, error) {
	w, err := newWatcher(paths, DefaultPollInterval)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			slog.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}

	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// newWatcher resolves paths and builds an idle Watcher.
func newWatcher(paths []string, interval time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	w := &Watcher{
		files:        make(map[string]struct{}, len(paths)),
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: interval,
	}
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Files returns the absolute paths being watched, in no particular order.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	return out
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when a watched file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

// ///////////////////////////////////////////////
// Event Loops
// ///////////////////////////////////////////////

// watch loops over fsnotify events and forwards write, create and rename
// notifications for watched files to the events channel. If fsnotify
// reports an error, watch closes the native watcher and falls back to
// [Watcher.poll].
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.watched(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

// watched reports whether name is one of the monitored files.
func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}

// startPolling switches the watcher to stat-based polling.
func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// stamp identifies one observed version of a file.
type stamp struct {
	mod  time.Time
	size int64
	ok   bool
}

// snapshot stats every watched file.
func (w *Watcher) snapshot() map[string]stamp {
	out := make(map[string]stamp, len(w.files))
	for f := range w.files {
		info, err := os.Stat(f)
		if err != nil {
			out[f] = stamp{}
			continue
		}
		out[f] = stamp{mod: info.ModTime(), size: info.Size(), ok: true}
	}
	return out
}

// poll periodically stats the watched files and sends a notification when
// any of them appears, or changes modification time or size. Files that
// disappear are not reported until they come back.
func (w *Watcher) poll() {
	last := w.snapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			cur := w.snapshot()
			changed := false
			for f, s := range cur {
				prev := last[f]
				if s.ok && (!prev.ok || !s.mod.Equal(prev.mod) || s.size != prev.size) {
					changed = true
				}
			}
			last = cur
			if changed {
				w.notify()
			}
		}
	}
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
