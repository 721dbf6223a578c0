package rag

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"

	"github.com/RainingDaemons/chateai/internal/common"
)

// debounceWindow coalesces bursts of filesystem events (editors write
// multiple times per save) into one reindex
const debounceWindow = 2 * time.Second

// Watcher triggers a background reindex when ingestable files under the
// document roots change
type Watcher struct {
	manager *Manager
	roots   []string
	logger  arbor.ILogger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a filesystem watcher over the given roots
func NewWatcher(manager *Manager, roots []string, logger arbor.ILogger) (*Watcher, error) {
	if logger == nil {
		logger = common.GetLogger()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager: manager,
		roots:   roots,
		logger:  logger,
		watcher: fsw,
		done:    make(chan struct{}),
	}, nil
}

// Start registers the roots (and their subdirectories) and launches the
// event loop. Missing roots are skipped with a warning.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		if err := w.addRecursive(root); err != nil {
			w.logger.Warn().Err(err).Str("root", root).Msg("Failed to watch document root, skipping")
		}
	}

	common.SafeGo(w.logger, "docs-watcher", func() {
		w.loop(ctx)
	})

	w.logger.Info().Strs("roots", w.roots).Msg("Document watcher started")
	return nil
}

// Stop shuts down the event loop and releases the watcher
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Document change detected")

			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					w.logger.Info().Msg("Document roots changed, starting background reindex")
					w.manager.ReindexAsync(ctx)
				})
			} else {
				timer.Reset(debounceWindow)
			}

			// Newly created directories need their own watch
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Document watcher error")
		}
	}
}

// relevant filters events to operations on ingestable file extensions
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".txt", ".md", ".pdf":
		return true
	}
	// Directory events carry no extension; a new directory may bring files
	return filepath.Ext(event.Name) == ""
}
