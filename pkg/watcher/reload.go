package watcher

import (
	"sync"

	"github.com/vanderheijden86/gtmdeck/internal/datasource"
	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
)

// Reload is the outcome of re-reading a watched deck. On error Deck is nil
// and the previous deck stays current.
type Reload struct {
	Deck   *deck.Deck
	Source datasource.DataSource
	Diff   datasource.DeckDiff
	Err    error
}

// LoadFunc reads the deck at path, a deck file or a discovery directory.
type LoadFunc func(path string) (*deck.Deck, datasource.DataSource, error)

// Reloader re-reads the deck whenever the watcher reports a change and
// publishes the result. For a discovery directory every change re-runs
// source selection, so a fresher candidate file takes over. Saves that leave
// the deck unchanged are not published.
type Reloader struct {
	w    *Watcher
	load LoadFunc

	mu      sync.Mutex
	current *deck.Deck

	updates chan Reload
	done    chan struct{}
	once    sync.Once
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithLoader replaces the datasource reader.
func WithLoader(fn LoadFunc) ReloaderOption {
	return func(r *Reloader) {
		r.load = fn
	}
}

// NewReloader watches path; current is the deck already on screen.
func NewReloader(path string, current *deck.Deck, opts []ReloaderOption, watchOpts ...WatcherOption) (*Reloader, error) {
	r := &Reloader{
		current: current,
		updates: make(chan Reload, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	watchOpts = append(watchOpts,
		WithOnChange(r.reload),
		WithOnError(func(err error) { r.publish(Reload{Err: err}) }),
	)
	w, err := NewWatcher(path, watchOpts...)
	if err != nil {
		return nil, err
	}
	r.w = w
	if r.load == nil {
		// A discovery directory that loses its last deck keeps the deck on
		// screen rather than dropping to the embedded one.
		r.load = datasource.LoadDeck
		if w.Discovery() {
			r.load = datasource.LoadBest
		}
	}
	return r, nil
}

// Start begins watching.
func (r *Reloader) Start() error {
	return r.w.Start()
}

// Watcher exposes the underlying file watcher.
func (r *Reloader) Watcher() *Watcher {
	return r.w
}

// Wait blocks until the next reload. It returns false once Close was called.
func (r *Reloader) Wait() (Reload, bool) {
	select {
	case rl := <-r.updates:
		return rl, true
	case <-r.done:
		return Reload{}, false
	}
}

// Close stops watching and releases any Wait.
func (r *Reloader) Close() {
	r.once.Do(func() {
		r.w.Stop()
		close(r.done)
	})
}

func (r *Reloader) reload() {
	defer metrics.Timer(metrics.DeckLoad)()

	d, src, err := r.load(r.w.Path())
	if err != nil {
		debug.Log("watcher: reload %s: %v", r.w.Path(), err)
		r.publish(Reload{Err: err})
		return
	}

	r.mu.Lock()
	var diff datasource.DeckDiff
	if r.current != nil {
		diff = datasource.DiffDecks(r.current, d)
	} else {
		diff = datasource.DiffDecks(&deck.Deck{}, d)
	}
	if diff.Empty() {
		r.mu.Unlock()
		return
	}
	r.current = d
	r.mu.Unlock()

	debug.Log("watcher: %s: %s", r.w.Path(), diff.Summary())
	r.publish(Reload{Deck: d, Source: src, Diff: diff})
}

// publish keeps only the newest pending reload.
func (r *Reloader) publish(rl Reload) {
	for {
		select {
		case r.updates <- rl:
			return
		case <-r.done:
			return
		default:
		}
		select {
		case <-r.updates:
		default:
		}
	}
}
