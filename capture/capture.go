// Package capture grabs the three preview views from a rendered surface as PNG images.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotReady   = errors.New("surface not ready")
	ErrEmptyImage = errors.New("PNG生成失敗")
)

// Surface is a drawable that renders the three views in the regions given by
// viewport.Layout of its device size.
type Surface interface {
	DeviceSize() (width, height int)
	// WaitFrame blocks until a frame rendered after the call is committed.
	WaitFrame(ctx context.Context) error
	// ReadPixels returns the last committed frame, top row first.
	ReadPixels() (image.Image, error)
}

// Error is a failed capture. It is distinct from upload errors so the caller can
// keep the session and let the presenter retry.
type Error struct {
	Op   string
	View viewport.View
	Err  error
}

func (e *Error) Error() string {
	if e.View >= 0 {
		return fmt.Sprintf("capture %s %s: %v", e.Op, e.View, e.Err)
	}
	return fmt.Sprintf("capture %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Snapshots holds one PNG per view, indexed by viewport.View.
type Snapshots [viewport.Count][]byte

func (s *Snapshots) Main() []byte       { return s[viewport.Main] }
func (s *Snapshots) SideTop() []byte    { return s[viewport.SideTop] }
func (s *Snapshots) SideBottom() []byte { return s[viewport.SideBottom] }

// Capture waits for a fresh frame and crops the three views out of it.
func Capture(ctx context.Context, s Surface) (*Snapshots, error) {
	if s == nil {
		return nil, &Error{Op: "wait", View: -1, Err: ErrNotReady}
	}
	if err := s.WaitFrame(ctx); err != nil {
		return nil, &Error{Op: "wait", View: -1, Err: err}
	}
	img, err := s.ReadPixels()
	if err != nil {
		return nil, &Error{Op: "read", View: -1, Err: err}
	}
	width, height := s.DeviceSize()
	if width <= 0 || height <= 0 {
		return nil, &Error{Op: "read", View: -1, Err: ErrNotReady}
	}

	var shots Snapshots
	var g errgroup.Group
	for i, r := range viewport.Layout(width, height) {
		v, rect := viewport.View(i), r.ImageRect(height)
		g.Go(func() error {
			data, err := cropPNG(img, rect)
			if err != nil {
				return &Error{Op: "crop", View: v, Err: err}
			}
			shots[v] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("captured views",
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("main", len(shots[viewport.Main])),
		zap.Int("sideTop", len(shots[viewport.SideTop])),
		zap.Int("sideBottom", len(shots[viewport.SideBottom])))
	return &shots, nil
}

// cropPNG encodes the part of img inside rect, given relative to the image origin.
func cropPNG(img image.Image, rect image.Rectangle) ([]byte, error) {
	b := img.Bounds()
	rect = rect.Add(b.Min)
	if rect.Empty() {
		return nil, ErrEmptyImage
	}
	if !rect.In(b) {
		return nil, fmt.Errorf("region %v outside image %v", rect, b)
	}
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, transform.Crop(img, rect)); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyImage
	}
	return buf.Bytes(), nil
}
