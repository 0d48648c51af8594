package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/epifaneia/engine/core"
)

var ErrWatcherClosed = errors.New("document watcher already closed")

// DocumentWatcher reports writes to a single file. It watches the parent
// directory so that editors replacing the file by rename are seen too.
type DocumentWatcher struct {
	path string

	mutex    sync.Mutex
	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan string
	errors   chan error
}

func NewDocumentWatcher(path string) (*DocumentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("could not watch %s: %w", filepath.Dir(abs), err)
	}

	dw := &DocumentWatcher{
		path:     filepath.Clean(abs),
		fsnotify: fsWatch,
		// Buffered by one: pending changes coalesce.
		changes: make(chan string, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	go dw.start()

	core.LogDebug("watching %s", dw.path)
	return dw, nil
}

func (dw *DocumentWatcher) Path() string {
	return dw.path
}

// Failed returns, without blocking, the last error reported by the
// underlying watcher, or nil. Changes may have been missed when it is not nil.
func (dw *DocumentWatcher) Failed() error {
	select {
	case err := <-dw.errors:
		return err
	default:
		return nil
	}
}

// Changed reports, without blocking, whether a change is pending and
// consumes it.
func (dw *DocumentWatcher) Changed() bool {
	select {
	case <-dw.changes:
		return true
	default:
		return false
	}
}

// Wait blocks until the document changes or ctx is done.
func (dw *DocumentWatcher) Wait(ctx context.Context) error {
	select {
	case <-dw.changes:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-dw.done:
		return ErrWatcherClosed
	}
}

func (dw *DocumentWatcher) Close() error {
	dw.mutex.Lock()
	defer dw.mutex.Unlock()
	if dw.isClosed {
		return ErrWatcherClosed
	}
	dw.isClosed = true
	close(dw.done)
	return nil
}

// report keeps the latest error when the previous one was not consumed.
func (dw *DocumentWatcher) report(err error) {
	for {
		select {
		case dw.errors <- err:
			return
		default:
		}
		select {
		case <-dw.errors:
		default:
		}
	}
}

func (dw *DocumentWatcher) start() {
	for {
		select {
		case e, ok := <-dw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != dw.path {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			core.LogDebug("document event %s", e)
			select {
			case dw.changes <- dw.path:
			default:
			}

		case err, ok := <-dw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("document watcher: %s", err)
			dw.report(err)

		case <-dw.done:
			dw.fsnotify.Close()
			return
		}
	}
}
