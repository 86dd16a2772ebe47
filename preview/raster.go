package preview

import (
	"image"
	"image/color"

	"github.com/YashubuStudio/Vconf-webgl-glTF/geom"
	"github.com/chewxy/math32"
)

const (
	ambientIntensity     = 0.7
	directionalIntensity = 1.2
)

type Camera struct {
	Eye    geom.Vector3
	Target geom.Vector3
	Up     geom.Vector3 // zero means +Y
	FovY   float32      // degrees
	Near   float32
	Far    float32
}

func (c *Camera) ViewProjection(aspect float32) *geom.Matrix4 {
	up := c.Up
	if up.LenSqr() == 0 {
		up = geom.Vector3{Y: 1}
	}
	view := geom.NewLookAtMatrix4(&c.Eye, &c.Target, &up)
	proj := geom.NewPerspectiveMatrix4(c.FovY*math32.Pi/180, aspect, c.Near, c.Far)
	return proj.Mul(view)
}

func clearImage(img *image.RGBA, depth []float32, bg color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	for i := range depth {
		depth[i] = math32.Inf(1)
	}
}

func toSRGB(c float32) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(math32.Pow(c, 1/2.2)*255 + 0.5)
}

// shade lights both faces of t with one ambient and one directional light.
func shade(t *triangle, light *geom.Vector3) color.RGBA {
	k := float32(1)
	if !t.unlit {
		k = ambientIntensity + directionalIntensity*math32.Abs(t.normal.Dot(light))
	}
	return color.RGBA{toSRGB(t.color[0] * k), toSRGB(t.color[1] * k), toSRGB(t.color[2] * k), 255}
}

// drawTriangles rasterises tris into rect of img, rect given in image (top-down) coordinates.
func drawTriangles(img *image.RGBA, depth []float32, rect image.Rectangle, vp *geom.Matrix4, tris []triangle, light *geom.Vector3) {
	stride := img.Bounds().Dx()
	w, h := float32(rect.Dx()), float32(rect.Dy())
	for i := range tris {
		t := &tris[i]
		var sp [3]geom.Vector2
		var sz [3]float32
		visible := true
		for k := range t.v {
			x, y, z, cw := vp.ApplyToW(&t.v[k])
			if cw <= 0 {
				// behind the camera; no near plane clipping
				visible = false
				break
			}
			sp[k] = geom.Vector2{
				X: float32(rect.Min.X) + (x/cw+1)/2*w,
				Y: float32(rect.Min.Y) + (1-y/cw)/2*h,
			}
			sz[k] = z / cw
		}
		if !visible {
			continue
		}

		minX := math32.Floor(math32.Min(sp[0].X, math32.Min(sp[1].X, sp[2].X)))
		maxX := math32.Ceil(math32.Max(sp[0].X, math32.Max(sp[1].X, sp[2].X)))
		minY := math32.Floor(math32.Min(sp[0].Y, math32.Min(sp[1].Y, sp[2].Y)))
		maxY := math32.Ceil(math32.Max(sp[0].Y, math32.Max(sp[1].Y, sp[2].Y)))
		x0, x1 := clamp(int(minX), rect.Min.X, rect.Max.X), clamp(int(maxX), rect.Min.X, rect.Max.X)
		y0, y1 := clamp(int(minY), rect.Min.Y, rect.Max.Y), clamp(int(maxY), rect.Min.Y, rect.Max.Y)
		if x0 >= x1 || y0 >= y1 || geom.EdgeFunction(&sp[0], &sp[1], &sp[2]) == 0 {
			continue
		}

		c := shade(t, light)
		for py := y0; py < y1; py++ {
			for px := x0; px < x1; px++ {
				p := geom.Vector2{X: float32(px) + 0.5, Y: float32(py) + 0.5}
				w0, w1, w2, _ := geom.Barycentric(&p, &sp[0], &sp[1], &sp[2])
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				z := w0*sz[0] + w1*sz[1] + w2*sz[2]
				if z < -1 || z > 1 {
					continue
				}
				di := py*stride + px
				if z >= depth[di] {
					continue
				}
				depth[di] = z
				img.SetRGBA(px, py, c)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
