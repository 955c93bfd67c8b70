// Package watch reloads a mesh file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fsnotify/fsnotify"

	"jsonmesh-renderer/internal/mesh"
)

// Defaults for Watcher tunables.
const (
	DefaultDebounce   = 150 * time.Millisecond
	DefaultMaxRetries = 5
)

// Watcher watches the directory of one mesh file, so editors that replace the file by
// rename are followed too.
type Watcher struct {
	// Debounce is the quiet period after the last event before reloading.
	Debounce time.Duration
	// MaxRetries bounds reload attempts per change; a half-written file fails to parse.
	MaxRetries uint64
	// Load parses the file; mesh.Load when nil.
	Load func(path string) (*mesh.Model, error)

	path string
	fsw  *fsnotify.Watcher
}

// New starts watching path. Events that happen after New returns are seen by Run.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		Debounce:   DefaultDebounce,
		MaxRetries: DefaultMaxRetries,
		path:       abs,
		fsw:        fsw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching. Run returns once it notices.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers every successfully reloaded model to onReload until ctx is cancelled or
// the watcher is closed. Reload failures are logged and the previous model stays in use.
func (w *Watcher) Run(ctx context.Context, onReload func(*mesh.Model)) error {
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(w.Debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.Debounce)
			}
			fire = debounce.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] %v", err)

		case <-fire:
			fire = nil
			m, err := w.reload(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[watch] reload %s: %v", w.path, err)
				continue
			}
			log.Printf("[watch] reloaded %s (%d vertices, %d faces)", filepath.Base(w.path), len(m.Vertices), len(m.Faces))
			onReload(m)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reload(ctx context.Context) (*mesh.Model, error) {
	load := w.Load
	if load == nil {
		load = mesh.Load
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 50 * time.Millisecond
	eb.MaxInterval = time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, w.MaxRetries), ctx)

	var m *mesh.Model
	err := backoff.Retry(func() error {
		var err error
		m, err = load(w.path)
		return err
	}, b)
	return m, err
}
