package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/session"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// editors write a file in several steps
const settleDelay = 100 * time.Millisecond

// watchFile reloads path each time it is written until ctx is done.
func watchFile(ctx context.Context, ctrl *session.Controller, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// watch the directory so that replace-by-rename keeps working
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	reload := func() {
		report, err := ctrl.LoadFile(abs)
		if err != nil {
			logger.Warn("reload", zap.Error(err))
			return
		}
		printReport(os.Stdout, path, report)
	}
	reload()

	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("changed", zap.Stringer("op", event.Op))
				timer.Reset(settleDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch", zap.Error(err))
		case <-timer.C:
			reload()
		}
	}
}
