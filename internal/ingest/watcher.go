// Package ingest watches the ingest directory and reports the messages that
// land in it.
//
// It stands in for the broadcast scheduler when none is attached: each file
// written to the directory is reported once it settles, with its header
// decoded when one is present.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/ingestsim/internal/header"
)

const (
	// DefaultDebounce is how long a file must go unmodified before it is
	// reported. A delivery produces a create and one or more writes.
	DefaultDebounce = 250 * time.Millisecond

	// MaxHeaderScan bounds how much of each file is read to find the header.
	MaxHeaderScan = 64 << 10

	defaultBuffer = 64
)

// Op names the first filesystem event seen for a file in a settle window.
type Op string

const (
	OpCreate Op = "CREATE"
	OpWrite  Op = "WRITE"
)

// Arrival is a settled file in the ingest directory.
// Header is nil when Err is set.
type Arrival struct {
	Path   string
	Op     Op
	At     time.Time
	Size   int64
	Header *header.Record
	Err    error
}

// Options configures a Watcher. Zero values select defaults.
type Options struct {
	Debounce time.Duration
	Buffer   int
	Logger   *slog.Logger
}

type pending struct {
	op   Op
	last time.Time
}

// Watcher reports arrivals in one directory.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	pending  map[string]*pending
	arrivals chan Arrival
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool
}

// New creates a watcher on dir. The directory must already exist; the
// watcher never creates it.
func New(dir string, opts Options) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ingest directory %s is not a directory", dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Watcher{
		watcher:  fw,
		dir:      dir,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		pending:  make(map[string]*pending),
		arrivals: make(chan Arrival, opts.Buffer),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Arrivals returns the channel arrivals are sent on. It is closed once the
// watcher stops.
func (w *Watcher) Arrivals() <-chan Arrival {
	return w.arrivals
}

// Start runs the event loop in a goroutine until ctx is cancelled or Stop is
// called. Starting a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.running {
		return nil
	}
	w.running = true

	go w.run(ctx)
	w.logger.Info("watching ingest directory", "dir", w.dir)
	return nil
}

// Stop ends the event loop, releases the fsnotify watcher, and waits for
// the loop to exit. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	} else {
		close(w.arrivals)
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", "error", err)
	}
	w.logger.Info("ingest watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.arrivals)

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
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
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			if !w.flush(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	default:
		return
	}

	w.logger.Debug("ingest event", "op", op, "path", event.Name)

	now := time.Now()
	if p, ok := w.pending[event.Name]; ok {
		p.last = now
		return
	}
	w.pending[event.Name] = &pending{op: op, last: now}
}

// flush reports every file that has settled. It returns false when the
// watcher is shutting down.
func (w *Watcher) flush(ctx context.Context) bool {
	now := time.Now()
	for path, p := range w.pending {
		if now.Sub(p.last) < w.debounce {
			continue
		}
		delete(w.pending, path)

		arrival, ok := inspect(path, p.op)
		if !ok {
			continue
		}

		select {
		case w.arrivals <- arrival:
		case <-ctx.Done():
			return false
		case <-w.stopCh:
			return false
		}
	}
	return true
}

// inspect reads the start of path and decodes its header. ok is false when
// the file is gone or is not a regular file.
func inspect(path string, op Op) (Arrival, bool) {
	arrival := Arrival{Path: path, Op: op, At: time.Now().UTC()}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return arrival, false
		}
		arrival.Err = err
		return arrival, true
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		arrival.Err = err
		return arrival, true
	}
	if !info.Mode().IsRegular() {
		return arrival, false
	}
	arrival.Size = info.Size()

	data, err := io.ReadAll(io.LimitReader(f, MaxHeaderScan))
	if err != nil {
		arrival.Err = err
		return arrival, true
	}

	arrival.Header, arrival.Err = header.Parse(string(data))
	return arrival, true
}
