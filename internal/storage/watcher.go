// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// DefaultDebounce coalesces the burst of writes sqlite makes for one change.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a store's files on disk. A login or logout made
// by another process (for example `wayne logout` in a second terminal)
// surfaces as a value on Changes.
//
// The watcher also fires for this process's own writes; consumers compare the
// stored value against their state and ignore no-ops.
type Watcher struct {
	watcher  *fsnotify.Watcher
	base     string
	debounce time.Duration
	changes  chan struct{}
	log      logrus.FieldLogger

	mu      sync.Mutex
	pending time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a watcher for the store file at path. It watches the
// containing directory so that the WAL and journal files are covered.
func NewWatcher(path string, debounce time.Duration, log logrus.FieldLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fw,
		base:     filepath.Base(path),
		debounce: debounce,
		changes:  make(chan struct{}, 1),
		log:      log,
		done:     make(chan struct{}),
	}, nil
}

// Changes delivers one value per debounced burst of changes. It is closed
// when the watcher stops.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins processing events until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()
	go w.processEvents()
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
		<-w.done
	}
	return w.watcher.Close()
}

func (w *Watcher) relevant(name string) bool {
	return strings.HasPrefix(filepath.Base(name), w.base)
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	defer close(w.done)
	defer close(w.changes)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.WithError(err).Warn("storage watcher error")
			}

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if fire {
				select {
				case w.changes <- struct{}{}:
				default:
				}
			}
		}
	}
}
