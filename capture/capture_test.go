package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewColors = [viewport.Count]color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
}

type fakeSurface struct {
	width, height int
	img           image.Image
	waitErr       error
	calls         []string
}

func (s *fakeSurface) DeviceSize() (int, int) { return s.width, s.height }

func (s *fakeSurface) WaitFrame(ctx context.Context) error {
	s.calls = append(s.calls, "wait")
	if s.waitErr != nil {
		return s.waitErr
	}
	return ctx.Err()
}

func (s *fakeSurface) ReadPixels() (image.Image, error) {
	s.calls = append(s.calls, "read")
	return s.img, nil
}

// paintedSurface fills each region with its own colour, converting device rows to image rows.
func paintedSurface(w, h int) *fakeSurface {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := viewAt(w, h, x, h-1-y)
			img.SetRGBA(x, y, viewColors[v])
		}
	}
	return &fakeSurface{width: w, height: h, img: img}
}

// viewAt finds the view under device pixel (x, y); device rows count from the bottom.
func viewAt(w, h, x, y int) viewport.View {
	for i, r := range viewport.Layout(w, h) {
		if x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height {
			return viewport.View(i)
		}
	}
	return -1
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func assertUniform(t *testing.T, img image.Image, c color.RGBA) {
	t.Helper()
	b := img.Bounds()
	for _, p := range []image.Point{b.Min, {b.Max.X - 1, b.Min.Y}, {b.Min.X, b.Max.Y - 1}, {b.Max.X - 1, b.Max.Y - 1}} {
		r, g, bb, a := img.At(p.X, p.Y).RGBA()
		assert.Equal(t, c, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8), uint8(a >> 8)}, "pixel %v", p)
	}
}

func TestCapture(t *testing.T) {
	s := paintedSurface(800, 600)
	shots, err := Capture(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"wait", "read"}, s.calls)

	main := decode(t, shots.Main())
	assert.Equal(t, image.Rect(0, 0, 600, 600), main.Bounds())
	assertUniform(t, main, viewColors[viewport.Main])

	top := decode(t, shots.SideTop())
	assert.Equal(t, image.Rect(0, 0, 200, 300), top.Bounds())
	assertUniform(t, top, viewColors[viewport.SideTop])

	bottom := decode(t, shots.SideBottom())
	assert.Equal(t, image.Rect(0, 0, 200, 300), bottom.Bounds())
	assertUniform(t, bottom, viewColors[viewport.SideBottom])
}

func TestCaptureOddSize(t *testing.T) {
	s := paintedSurface(333, 201)
	shots, err := Capture(context.Background(), s)
	require.NoError(t, err)
	for v := range shots {
		img := decode(t, shots[v])
		assertUniform(t, img, viewColors[v])
	}
	assert.Equal(t, 249, decode(t, shots.Main()).Bounds().Dx())
	assert.Equal(t, 101, decode(t, shots.SideTop()).Bounds().Dy())
	assert.Equal(t, 100, decode(t, shots.SideBottom()).Bounds().Dy())
}

func TestCaptureImageWithOffset(t *testing.T) {
	s := paintedSurface(40, 20)
	shifted := image.NewRGBA(image.Rect(10, 10, 50, 30))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			shifted.Set(x+10, y+10, s.img.At(x, y))
		}
	}
	s.img = shifted
	shots, err := Capture(context.Background(), s)
	require.NoError(t, err)
	assertUniform(t, decode(t, shots.SideTop()), viewColors[viewport.SideTop])
}

func TestCaptureErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := paintedSurface(80, 60)
	_, err := Capture(ctx, s)
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "wait", ce.Op)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"wait"}, s.calls)

	s = paintedSurface(80, 60)
	s.width = 160
	_, err = Capture(context.Background(), s)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "crop", ce.Op)

	s = paintedSurface(80, 60)
	s.width, s.height = 0, 0
	_, err = Capture(context.Background(), s)
	assert.True(t, errors.Is(err, ErrNotReady))

	_, err = Capture(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestCaptureEmptyRegion(t *testing.T) {
	// a 1 pixel tall surface leaves SideBottom without rows
	s := paintedSurface(4, 1)
	_, err := Capture(context.Background(), s)
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, viewport.SideBottom, ce.View)
	assert.True(t, errors.Is(err, ErrEmptyImage))
}
