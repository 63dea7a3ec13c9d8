package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/shadegrid/internal/preview"
)

// debounceWindow coalesces the burst of filesystem events editors emit on
// a single save.
const debounceWindow = 150 * time.Millisecond

// serve runs watch-and-preview mode: compile once, start the preview
// server, and recompile+broadcast whenever the catalog or graph document
// changes on disk.
func (a *App) serve(ctx context.Context) error {
	srv := preview.New(a.logger)

	var lastFingerprint string
	compileAndBroadcast := func() {
		result, err := a.compileOnce(ctx)
		if err != nil {
			// A broken document mid-edit is routine in watch mode; keep
			// the previous broadcast and wait for the next save.
			a.logger.Warn("Compile failed, keeping previous document.", "error", err)
			return
		}
		if result.Fingerprint == lastFingerprint {
			a.logger.Debug("Document unchanged, skipping broadcast.", "fingerprint", result.Fingerprint)
			return
		}
		lastFingerprint = result.Fingerprint
		srv.Broadcast(&preview.Document{
			Backend:     string(result.Output.Backend),
			Fingerprint: result.Fingerprint,
			Texts:       result.Output.Texts(),
		})
		a.logger.Info("Recompiled and broadcast.", "backend", a.backend, "fingerprint", result.Fingerprint[:20])
	}

	compileAndBroadcast()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories, not files: editors replace files on save, which
	// drops a file-level watch.
	watchPaths := []string{a.config.CatalogPath, filepath.Dir(a.config.GraphPath)}
	for _, p := range watchPaths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	a.logger.Info("Watching for changes.", "paths", watchPaths)

	addr := fmt.Sprintf(":%d", a.config.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
	go func() {
		a.logger.Info("Preview server starting.", "address", fmt.Sprintf("http://localhost%s/", addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Preview server failed.", "error", err)
		}
	}()
	defer httpSrv.Close()

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			a.logger.Debug("Filesystem event.", "event", event.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Watcher error.", "error", err)
		case <-pending:
			compileAndBroadcast()
		}
	}
}
