// Package preview renders a loaded model into the three preview views without a GPU.
//
// A Renderer owns one drawable surface split by viewport.Layout. Its render loop
// draws into a back buffer and swaps it in under a lock, so readers only ever see
// complete frames.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
	"github.com/anthonynsimon/bild/clone"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

var (
	ErrClosed  = errors.New("preview closed")
	ErrNoFrame = errors.New("no frame rendered yet")
)

var Background = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}

type Options struct {
	Width      int     `yaml:"width"`  // CSS pixels
	Height     int     `yaml:"height"` // CSS pixels
	PixelRatio float64 `yaml:"pixel_ratio"`
	FPS        int     `yaml:"fps"`
}

var DefaultOptions = Options{Width: 800, Height: 600, PixelRatio: 1, FPS: 30}

type Renderer struct {
	width, height int
	interval      time.Duration
	tris          []triangle
	center        geom.Vector3
	size          float32
	light         geom.Vector3

	mu        sync.Mutex
	cameras   [viewport.Count]Camera
	front     *image.RGBA
	started   uint64
	committed uint64
	frame     chan struct{} // closed on every commit
	closed    bool

	// owned by whoever holds renderMu
	renderMu sync.Mutex
	back     *image.RGBA
	depth    []float32

	startOnce sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// New prepares a renderer for doc. The render loop does not run until Start.
func New(doc *gltf.Document, opts Options) (*Renderer, error) {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = DefaultOptions.PixelRatio
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultOptions.FPS
	}
	w, h := viewport.DeviceSize(opts.Width, opts.Height, opts.PixelRatio)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("preview: invalid size %dx%d", opts.Width, opts.Height)
	}

	tris, bounds, err := buildTriangles(doc)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	r := &Renderer{
		width:    w,
		height:   h,
		interval: time.Second / time.Duration(opts.FPS),
		tris:     tris,
		center:   *bounds.Center(),
		size:     bounds.Size().Len(),
		front:    image.NewRGBA(image.Rect(0, 0, w, h)),
		back:     image.NewRGBA(image.Rect(0, 0, w, h)),
		depth:    make([]float32, w*h),
		frame:    make(chan struct{}),
		stop:     make(chan struct{}),
	}
	if r.size == 0 {
		r.size = 1
	}
	r.light = *geom.NewVector3(1, 1, 1).Normalize()
	r.resetCameras()
	logger.Debug("preview ready",
		zap.Int("width", w), zap.Int("height", h),
		zap.Int("triangles", len(tris)), zap.Float32("size", r.size))
	return r, nil
}

func (r *Renderer) DeviceSize() (int, int) {
	return r.width, r.height
}

// resetCameras places every view camera at its preset around the model.
func (r *Renderer) resetCameras() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range viewport.Views {
		off := geom.NewVector3FromArray(v.Camera.Offset).Scale(r.size)
		r.cameras[i] = Camera{
			Eye:    *r.center.Add(off),
			Target: r.center,
			FovY:   v.Camera.FovY,
			Near:   r.size * 0.01,
			Far:    r.size * 10,
		}
	}
}

// Start runs the render loop until Close.
func (r *Renderer) Start() {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.loop()
	})
}

func (r *Renderer) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if err := r.RenderFrame(); err != nil {
			return
		}
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}
	}
}

// RenderFrame draws all views with the current cameras and commits the result.
func (r *Renderer) RenderFrame() error {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.started++
	seq := r.started
	cams := r.cameras
	r.mu.Unlock()

	clearImage(r.back, r.depth, Background)
	for i, region := range viewport.Layout(r.width, r.height) {
		if region.Empty() {
			continue
		}
		vp := cams[i].ViewProjection(float32(region.Width) / float32(region.Height))
		drawTriangles(r.back, r.depth, region.ImageRect(r.height), vp, r.tris, &r.light)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.front, r.back = r.back, r.front
	r.committed = seq
	close(r.frame)
	r.frame = make(chan struct{})
	return nil
}

// WaitFrame blocks until a frame started after the call has been committed.
func (r *Renderer) WaitFrame(ctx context.Context) error {
	r.mu.Lock()
	target := r.started + 1
	for {
		if r.closed {
			r.mu.Unlock()
			return ErrClosed
		}
		if r.committed >= target {
			r.mu.Unlock()
			return nil
		}
		ch := r.frame
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		r.mu.Lock()
	}
}

// ReadPixels returns a copy of the last committed frame.
func (r *Renderer) ReadPixels() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if r.committed == 0 {
		return nil, ErrNoFrame
	}
	return clone.AsRGBA(r.front), nil
}

// Close stops the loop and releases the frame buffers. Pending WaitFrame calls return ErrClosed.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.stop)
	close(r.frame)
	r.mu.Unlock()

	r.wg.Wait()

	r.renderMu.Lock()
	r.back, r.depth = nil, nil
	r.renderMu.Unlock()
	r.mu.Lock()
	r.front = nil
	r.mu.Unlock()
	return nil
}
