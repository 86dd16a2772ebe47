package geom

import "github.com/chewxy/math32"

type Vector2 struct {
	X Element
	Y Element
}

func NewVector2(x, y float32) *Vector2 {
	return &Vector2{X: x, Y: y}
}

func (v *Vector2) Add(v2 *Vector2) *Vector2 {
	return &Vector2{X: v.X + v2.X, Y: v.Y + v2.Y}
}

func (v *Vector2) Sub(v2 *Vector2) *Vector2 {
	return &Vector2{X: v.X - v2.X, Y: v.Y - v2.Y}
}

func (v *Vector2) Scale(s Element) *Vector2 {
	return &Vector2{X: v.X * s, Y: v.Y * s}
}

func (v *Vector2) Dot(v2 *Vector2) Element {
	return v.X*v2.X + v.Y*v2.Y
}

// Cross returns the z component of the 3D cross product. Positive when v2 is counter-clockwise from v.
func (v *Vector2) Cross(v2 *Vector2) Element {
	return v.X*v2.Y - v.Y*v2.X
}

func (v *Vector2) Len() Element {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v *Vector2) LenSqr() Element {
	return v.X*v.X + v.Y*v.Y
}

// EdgeFunction returns twice the signed area of the triangle (a, b, p).
func EdgeFunction(a, b, p *Vector2) Element {
	return b.Sub(a).Cross(p.Sub(a))
}

// Barycentric returns the weights of p relative to triangle (a, b, c), or ok=false
// for a degenerate triangle. p is inside when all weights are >= 0.
func Barycentric(p, a, b, c *Vector2) (w0, w1, w2 Element, ok bool) {
	area := EdgeFunction(a, b, c)
	if area == 0 {
		return 0, 0, 0, false
	}
	w0 = EdgeFunction(b, c, p) / area
	w1 = EdgeFunction(c, a, p) / area
	w2 = EdgeFunction(a, b, p) / area
	return w0, w1, w2, true
}
