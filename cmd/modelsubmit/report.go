package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/YashubuStudio/Vconf-webgl-glTF/capture"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/session"
	"github.com/YashubuStudio/Vconf-webgl-glTF/validator"
	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
	"go.uber.org/zap"
)

func printReport(w io.Writer, name string, r *validator.Report) {
	fmt.Fprintf(w, "%s\n", name)
	for _, c := range r.Checks {
		fmt.Fprintf(w, "  %s\n", c)
	}
	if r.Accepted {
		fmt.Fprintln(w, "  提出可能です")
	} else {
		fmt.Fprintln(w, r.FailureMessage())
	}
}

// writeSnapshots captures the current preview without uploading.
func writeSnapshots(ctx context.Context, ctrl *session.Controller, dir string) error {
	sess := ctrl.Session()
	if sess == nil || sess.Surface == nil {
		return session.ErrNotAccepted
	}
	shots, err := capture.Capture(ctx, sess.Surface)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, v := range viewport.Views {
		path := filepath.Join(dir, v.Field+".png")
		if err := os.WriteFile(path, shots[i], 0644); err != nil {
			return err
		}
		logger.Info("snapshot", zap.String("view", v.Name), zap.String("path", path))
	}
	return nil
}
