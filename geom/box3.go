package geom

import "github.com/chewxy/math32"

// Box3 is an axis aligned bounding box. The zero value is not empty; use NewBox3.
type Box3 struct {
	Min Vector3
	Max Vector3
}

func NewBox3() *Box3 {
	inf := math32.Inf(1)
	return &Box3{
		Min: Vector3{X: inf, Y: inf, Z: inf},
		Max: Vector3{X: -inf, Y: -inf, Z: -inf},
	}
}

func (b *Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

func (b *Box3) ExpandByPoint(p *Vector3) *Box3 {
	b.Min = *b.Min.Min(p)
	b.Max = *b.Max.Max(p)
	return b
}

func (b *Box3) Union(b2 *Box3) *Box3 {
	if b2.IsEmpty() {
		return b
	}
	b.Min = *b.Min.Min(&b2.Min)
	b.Max = *b.Max.Max(&b2.Max)
	return b
}

// Size returns the extent on each axis. An empty box has zero size.
func (b *Box3) Size() *Vector3 {
	if b.IsEmpty() {
		return &Vector3{}
	}
	return b.Max.Sub(&b.Min)
}

func (b *Box3) Center() *Vector3 {
	if b.IsEmpty() {
		return &Vector3{}
	}
	return b.Min.Add(&b.Max).Scale(0.5)
}

// ApplyMatrix4 returns the box enclosing the eight transformed corners of b.
func (b *Box3) ApplyMatrix4(mat *Matrix4) *Box3 {
	r := NewBox3()
	if b.IsEmpty() {
		return r
	}
	for i := 0; i < 8; i++ {
		c := Vector3{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		r.ExpandByPoint(mat.ApplyTo(&c))
	}
	return r
}
