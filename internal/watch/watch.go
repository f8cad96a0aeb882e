// Package watch re-runs export passes when the note store changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long the store must stay quiet before a pass runs.
const DefaultDebounce = 2 * time.Second

// PassFunc runs one export pass.
type PassFunc func(ctx context.Context) error

// Watcher triggers export passes on writes to a SQLite database file.
type Watcher struct {
	dbPath   string
	debounce time.Duration
	pass     PassFunc
}

// New creates a Watcher for the database at dbPath.
func New(dbPath string, debounce time.Duration, pass PassFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dbPath: dbPath, debounce: debounce, pass: pass}
}

// Run performs one pass immediately, then one pass per burst of store
// writes, until ctx is cancelled. Passes never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.dbPath)
	if err != nil {
		return fmt.Errorf("resolve db path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// SQLite replaces and appends to sibling files, so watch the directory.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("Watching %s for changes", abs)

	trigger := make(chan struct{}, 1)
	trigger <- struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.watchEvents(ctx, fw, filepath.Base(abs), trigger) })
	g.Go(func() error { return w.runPasses(ctx, trigger) })
	return g.Wait()
}

func (w *Watcher) watchEvents(ctx context.Context, fw *fsnotify.Watcher, base string, trigger chan<- struct{}) error {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timerC:
			timerC = nil
			select {
			case trigger <- struct{}{}:
			default:
				// A pass is already queued.
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isStoreWrite(ev, base) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) runPasses(ctx context.Context, trigger <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			if err := w.pass(ctx); err != nil {
				log.Printf("Export pass failed: %v", err)
			}
		}
	}
}

// isStoreWrite reports whether ev changes the database or its WAL.
func isStoreWrite(ev fsnotify.Event, base string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == base || strings.HasPrefix(name, base+"-wal") || strings.HasPrefix(name, base+"-journal")
}
