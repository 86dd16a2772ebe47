// Package session owns the model currently being prepared for submission: its
// validation report, its live preview and the capture and upload steps.
package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/capture"
	"github.com/YashubuStudio/Vconf-webgl-glTF/gltfutil"
	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/preview"
	"github.com/YashubuStudio/Vconf-webgl-glTF/upload"
	"github.com/YashubuStudio/Vconf-webgl-glTF/validator"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

var (
	ErrSuperseded  = errors.New("superseded by a newer load")
	ErrNotAccepted = errors.New("no accepted model to submit")
	ErrBusy        = errors.New("submission in progress")
	ErrNoUploader  = errors.New("no uploader configured")
)

// Surface is a live preview that can be captured.
type Surface interface {
	capture.Surface
	Close() error
}

// SurfaceFactory creates the preview for an accepted document.
type SurfaceFactory func(doc *gltf.Document) (Surface, error)

// PreviewFactory renders accepted models with a running preview.Renderer.
func PreviewFactory(opts preview.Options) SurfaceFactory {
	return func(doc *gltf.Document) (Surface, error) {
		r, err := preview.New(doc, opts)
		if err != nil {
			return nil, err
		}
		r.Start()
		return r, nil
	}
}

type Uploader interface {
	Submit(ctx context.Context, p *upload.Payload) (*upload.Result, error)
}

// Session is one loaded file. Surface is nil for rejected models.
type Session struct {
	Model   *gltfutil.Model
	Report  *validator.Report
	Surface Surface
}

func (s *Session) close() {
	if s != nil && s.Surface != nil {
		if err := s.Surface.Close(); err != nil {
			logger.Warn("close preview", zap.Error(err))
		}
		s.Surface = nil
	}
}

type Options struct {
	Limits   validator.Limits
	Surfaces SurfaceFactory
	Uploader Uploader
	Now      func() time.Time
}

// Controller serialises loads and submissions. Decoding, validation, capture
// and upload run outside the lock; their results are dropped when a newer load
// started in the meantime.
type Controller struct {
	opts Options

	mu      sync.Mutex
	gen     uint64
	state   State
	session *Session
	status  string
}

func New(opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status is the user-facing result text of the last action.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) CanSubmit() bool {
	return c.State().CanSubmit()
}

// reset tears down the current session and starts a new generation.
func (c *Controller) reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.session.close()
	c.session = nil
	c.state = Idle
	c.status = ""
	return c.gen
}

// LoadFile loads a model from disk. A .gltf resolves its buffers and textures
// from the directory it sits in.
func (c *Controller) LoadFile(path string) (*validator.Report, error) {
	return c.load(filepath.Base(path), func() (*gltfutil.Model, error) {
		return gltfutil.LoadFile(path)
	})
}

// Load replaces the current session with name. The report is returned for
// rejected models too; only unreadable files are errors.
func (c *Controller) Load(name string, data []byte) (*validator.Report, error) {
	return c.load(name, func() (*gltfutil.Model, error) {
		return gltfutil.Load(name, data)
	})
}

func (c *Controller) load(name string, read func() (*gltfutil.Model, error)) (*validator.Report, error) {
	gen := c.reset()
	log := logger.Log.With(zap.String("model", name), zap.Uint64("gen", gen))

	model, err := read()
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		c.status = "❌ " + err.Error()
		c.mu.Unlock()
		log.Warn("load failed", zap.Error(err))
		return nil, err
	}
	c.state = Loaded
	c.mu.Unlock()

	report, err := validator.Validate(model, c.opts.Limits)
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state = Idle
			c.status = "❌ " + err.Error()
		}
		c.mu.Unlock()
		return nil, err
	}

	sess := &Session{Model: model, Report: report}
	if report.Accepted && c.opts.Surfaces != nil {
		if sess.Surface, err = c.opts.Surfaces(model.Doc); err != nil {
			// capture reports the missing surface when submitting
			log.Error("preview failed", zap.Error(err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		sess.close()
		return nil, ErrSuperseded
	}
	c.session = sess
	if report.Accepted {
		c.state = Accepted
	} else {
		c.state = Rejected
		c.status = report.FailureMessage()
	}
	log.Info("loaded", zap.Stringer("state", c.state), zap.String("kind", model.Kind.String()))
	return report, nil
}

func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// Submit captures the three views and uploads them with the model. A presenter
// id without letters or digits is rejected before capturing.
func (c *Controller) Submit(ctx context.Context, presenterID, passcode string) (*upload.Result, error) {
	if c.opts.Uploader == nil {
		return nil, ErrNoUploader
	}
	if upload.SanitizePresenterID(presenterID) == "" {
		c.setStatus("❌ " + upload.ErrInvalidPresenterID.Error())
		return nil, upload.ErrInvalidPresenterID
	}

	c.mu.Lock()
	switch {
	case c.state == Capturing || c.state == Uploading:
		c.mu.Unlock()
		return nil, ErrBusy
	case !c.state.CanSubmit():
		c.mu.Unlock()
		return nil, ErrNotAccepted
	}
	gen, sess := c.gen, c.session
	c.state = Capturing
	c.status = ""
	c.mu.Unlock()

	var surface capture.Surface
	if sess.Surface != nil {
		surface = sess.Surface
	}
	shots, err := capture.Capture(ctx, surface)
	if err != nil {
		c.finish(gen, Accepted, "❌ キャプチャ失敗: "+err.Error())
		return nil, err
	}

	payload, err := upload.NewPayload(c.opts.Now(), presenterID, passcode, sess.Model.Name, sess.Model.Data, *shots)
	if err != nil {
		c.finish(gen, Accepted, "❌ "+err.Error())
		return nil, err
	}
	if !c.transition(gen, Uploading) {
		return nil, ErrSuperseded
	}

	res, err := c.opts.Uploader.Submit(ctx, payload)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "不明なエラー"
		}
		c.finish(gen, Failed, "❌ アップロード失敗: "+msg)
		return nil, err
	}
	id := res.PresenterID
	if id == "" {
		id = "送信成功"
	}
	c.finish(gen, Succeeded, "✅ アップロード完了: "+id)
	return res, nil
}

func (c *Controller) transition(gen uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.state = s
	return true
}

func (c *Controller) finish(gen uint64, s State, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = s
	c.status = status
	logger.Info("submission", zap.Stringer("state", s), zap.String("status", status))
	if s == Failed {
		// the model is still accepted; keep the status and allow a resubmit
		c.state = Accepted
	}
}

// Close releases the preview. In-flight loads and submissions are discarded.
func (c *Controller) Close() {
	c.reset()
}
