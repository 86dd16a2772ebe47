package geom

import (
	"testing"
)

func TestVector3(t *testing.T) {
	zero := NewVector3(0, 0, 0)
	if zero.Len() != 0 || zero.LenSqr() != 0 || zero.Dot(zero) != 0 {
		t.Error("len != 0")
	}

	if *zero.Normalize() != *NewVector3(1, 0, 0) {
		t.Error("Normalize shoud returns unit vector.", zero.Normalize())
	}

	if *NewVector3(1, 0, 0).Add(NewVector3(0, 1, 0)) != *NewVector3(1, 1, 0) {
		t.Error("Vector.Add()")
	}

	if *NewVector3(1, 0, 0).Cross(NewVector3(0, 1, 0)) != *NewVector3(0, 0, 1) {
		t.Error("Vector.Cross()")
	}

	if *NewVector3(1, 5, -2).Min(NewVector3(3, -1, 0)) != *NewVector3(1, -1, -2) {
		t.Error("Vector.Min()")
	}
	if *NewVector3(1, 5, -2).Max(NewVector3(3, -1, 0)) != *NewVector3(3, 5, 0) {
		t.Error("Vector.Max()")
	}
}

func TestVector4(t *testing.T) {
	zero := NewQuaternion(0, 0, 0, 0)
	if zero.Len() != 0 {
		t.Error("len != 0")
	}

	if *zero.Normalize() != *NewQuaternion(0, 0, 0, 1) {
		t.Error("Normalize shoud returns unit vector.", zero.Normalize())
	}
}
