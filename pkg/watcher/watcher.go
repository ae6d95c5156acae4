// Package watcher follows a deck on disk. It watches either a single deck
// file or a discovery directory, where any candidate deck file appearing,
// changing or disappearing counts as a change. Events come from fsnotify on
// the directory; remote filesystems and GTMDECK_FORCE_POLLING fall back to
// polling the followed files.
package watcher

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/gtmdeck/internal/datasource"
	"github.com/vanderheijden86/gtmdeck/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrDeckRemoved    = errors.New("deck file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

// WithOnChange sets the callback invoked when a followed deck file changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// fileStamp is what polling compares between ticks.
type fileStamp struct {
	mod  time.Time
	size int64
}

func (a fileStamp) equal(b fileStamp) bool {
	return a.mod.Equal(b.mod) && a.size == b.size
}

// Watcher reports changes to the deck files it follows.
type Watcher struct {
	path      string
	dir       string
	names     []string
	discovery bool

	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	debouncer *Debouncer

	mu      sync.Mutex
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher
	polling bool
	seen    map[string]fileStamp
}

// NewWatcher follows path. A directory is followed as a discovery
// directory: every file name datasource discovery probes there is watched.
// Anything else, including a file that does not exist yet, is followed on
// its own.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:         abs,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		w.dir, w.names, w.discovery = abs, datasource.CandidateNames(), true
	} else {
		w.dir, w.names = filepath.Dir(abs), []string{filepath.Base(abs)}
	}

	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the followed file or discovery directory.
func (w *Watcher) Path() string {
	return w.path
}

// Discovery reports whether a whole discovery directory is followed.
func (w *Watcher) Discovery() bool {
	return w.discovery
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrAlreadyStarted
	}
	if !w.discovery {
		if _, err := os.Stat(w.path); os.IsPermission(err) {
			return ErrPermission
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.seen = w.stamps()

	w.polling = w.forcePoll || envBool("GTMDECK_FORCE_POLLING") || envBool("GTMDECK_FORCE_POLL")
	if fs := detectFilesystemTypeFunc(w.dir); isRemoteFilesystem(fs) {
		debug.Log("watcher: %s is on %s, polling", w.dir, fs)
		w.polling = true
	}

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// The directory, not the file: editors replace deck files by rename.
			if err = fsw.Add(w.dir); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify on %s: %v, polling", w.dir, err)
			w.polling = true
		} else {
			w.fsw = fsw
			go w.watchEvents(ctx, fsw)
		}
	}
	if w.polling {
		go w.poll(ctx)
	}
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Cancel()
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// stamps stats every followed file. Missing files are left out.
func (w *Watcher) stamps() map[string]fileStamp {
	out := make(map[string]fileStamp, len(w.names))
	for _, name := range w.names {
		info, err := os.Stat(filepath.Join(w.dir, name))
		if err != nil || info.IsDir() {
			continue
		}
		out[name] = fileStamp{mod: info.ModTime(), size: info.Size()}
	}
	return out
}

func (w *Watcher) watchEvents(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !slices.Contains(w.names, filepath.Base(ev.Name)) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove) && !w.discovery:
				w.onError(ErrDeckRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0:
				// In a discovery directory a removal means another
				// candidate may now be the best source.
				w.debouncer.Trigger(w.notify)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !w.discovery {
			if _, err := os.Stat(w.path); err != nil && !os.IsNotExist(err) {
				if os.IsPermission(err) {
					err = ErrPermission
				}
				w.onError(err)
				continue
			}
		}

		now := w.stamps()
		w.mu.Lock()
		prev := w.seen
		w.seen = now
		w.mu.Unlock()

		if maps.EqualFunc(prev, now, fileStamp.equal) {
			continue
		}
		if !w.discovery && len(now) == 0 {
			w.onError(ErrDeckRemoved)
			continue
		}
		w.debouncer.Trigger(w.notify)
	}
}

// notify reports a settled change unless the watcher was stopped meanwhile.
func (w *Watcher) notify() {
	w.mu.Lock()
	running := w.cancel != nil
	w.mu.Unlock()
	if running {
		w.onChange()
	}
}
