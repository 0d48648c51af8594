/*
Epifaneia renders the SDF shader of a JSON document at progressively higher
resolution and shows it in a window.

Usage:

	epifaneia <document.json>
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/epifaneia/engine"
	"github.com/spaghettifunk/epifaneia/engine/assets"
	"github.com/spaghettifunk/epifaneia/engine/config"
	"github.com/spaghettifunk/epifaneia/engine/core"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s <document.json>\n", os.Args[0])
		return 2
	}
	documentPath := args[0]

	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		core.LogError(err.Error())
		return 1
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		core.LogError(err.Error())
		return 1
	}

	// signal context to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	var watcher *assets.DocumentWatcher
	if cfg.Session.WatchDocument {
		watcher, err = assets.NewDocumentWatcher(documentPath)
		if err != nil {
			core.LogWarn("document will not be reloaded on change: %s", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	appConfig := engine.NewApplicationConfig(cfg, documentPath)
	for {
		reason, err := runSession(ctx, appConfig, watcher)
		if err != nil {
			core.LogError("session failed: %s", err)
			if watcher == nil || errors.Is(err, core.ErrNoAdapter) {
				return 1
			}
			core.LogInfo("waiting for %s to change", documentPath)
			if err := watcher.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return 0
				}
				core.LogError(err.Error())
				return 1
			}
			continue
		}

		switch reason {
		case engine.EndReasonInterrupted:
			return 0
		case engine.EndReasonClosed:
			if !cfg.Session.ReopenOnClose {
				return 0
			}
			core.LogInfo("window closed, reopening")
		case engine.EndReasonDocumentChanged:
		}
	}
}

// runSession runs one engine from load to shutdown. The document is re-read
// every time.
func runSession(ctx context.Context, cfg *engine.ApplicationConfig, watcher *assets.DocumentWatcher) (engine.EndReason, error) {
	var changes engine.ChangeNotifier
	if watcher != nil {
		// Changes seen before loading are covered by this load.
		for watcher.Changed() {
		}
		changes = watcher
	}

	e, err := engine.New(cfg, assets.JSONLoader{}, changes)
	if err != nil {
		return engine.EndReasonClosed, err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown: %s", err)
		}
	}()

	if err := e.Initialize(); err != nil {
		return engine.EndReasonClosed, err
	}
	return e.Run(ctx)
}
