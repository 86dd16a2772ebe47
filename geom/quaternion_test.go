package geom

import (
	"math"
	"testing"
)

func TestQuaternion(t *testing.T) {
	const eps = 0.000001

	{
		q := NewQuaternion(0, 0, 0, 1)
		v1 := NewVector3(1, 2, 3)
		v2 := q.ApplyTo(v1)
		if v2.Sub(v1).Len() > eps {
			t.Error("v1 != v2: ", v1, v2)
		}
	}

	{
		q := NewQuaternionFromAxisAngle(NewVector3(0, 1, 0), math.Pi/2)
		v2 := q.ApplyTo(NewVector3(1, 0, 0))
		if v2.Sub(NewVector3(0, 0, -1)).Len() > eps {
			t.Error("rotate +X 90deg around Y: ", v2)
		}
	}

	{
		q := NewQuaternionFromAxisAngle(NewVector3(0, 0, 1), math.Pi/2)
		v2 := q.ApplyTo(NewVector3(1, 0, 0))
		if v2.Sub(NewVector3(0, 1, 0)).Len() > eps {
			t.Error("rotate +X 90deg around Z: ", v2)
		}
	}
}
