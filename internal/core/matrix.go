package core

import (
	"fmt"
	"math"
)

// TransformationMatrix is a 4x4 affine transform stored as three rows of
// four; the implicit fourth row is always [0,0,0,1].
type TransformationMatrix struct {
	m [3][4]float64
}

// IdentityMatrix returns the identity transform.
func IdentityMatrix() TransformationMatrix {
	var t TransformationMatrix
	t.m[0][0], t.m[1][1], t.m[2][2] = 1, 1, 1
	return t
}

// NewMatrixFromRows builds a matrix directly from its three rows of four.
func NewMatrixFromRows(rows [3][4]float64) (TransformationMatrix, error) {
	for _, row := range rows {
		for _, v := range row {
			if !isFinite(v) {
				return TransformationMatrix{}, fmt.Errorf("%w: non-finite matrix entry", ErrInvalidValue)
			}
		}
	}
	return TransformationMatrix{m: rows}, nil
}

// Row returns row i (0-based, 0..2) of the matrix.
func (t TransformationMatrix) Row(i int) [4]float64 {
	return t.m[i]
}

// RotationX returns a rotation of degrees around the X axis.
func RotationX(degrees float64) (TransformationMatrix, error) {
	return axisRotation(degrees, func(s, c float64) [3][4]float64 {
		return [3][4]float64{
			{1, 0, 0, 0},
			{0, c, -s, 0},
			{0, s, c, 0},
		}
	})
}

// RotationY returns a rotation of degrees around the Y axis.
func RotationY(degrees float64) (TransformationMatrix, error) {
	return axisRotation(degrees, func(s, c float64) [3][4]float64 {
		return [3][4]float64{
			{c, 0, s, 0},
			{0, 1, 0, 0},
			{-s, 0, c, 0},
		}
	})
}

// RotationZ returns a rotation of degrees around the Z axis.
func RotationZ(degrees float64) (TransformationMatrix, error) {
	return axisRotation(degrees, func(s, c float64) [3][4]float64 {
		return [3][4]float64{
			{c, -s, 0, 0},
			{s, c, 0, 0},
			{0, 0, 1, 0},
		}
	})
}

func axisRotation(degrees float64, build func(s, c float64) [3][4]float64) (TransformationMatrix, error) {
	if !isFinite(degrees) {
		return TransformationMatrix{}, fmt.Errorf("%w: rotation degrees must be finite", ErrInvalidValue)
	}
	rad := degrees * math.Pi / 180
	return TransformationMatrix{m: build(math.Sin(rad), math.Cos(rad))}, nil
}

// Translation returns a pure translation by (dx, dy, dz).
func Translation(dx, dy, dz float64) (TransformationMatrix, error) {
	if !isFinite(dx) || !isFinite(dy) || !isFinite(dz) {
		return TransformationMatrix{}, fmt.Errorf("%w: translation must be finite", ErrInvalidValue)
	}
	t := IdentityMatrix()
	t.m[0][3], t.m[1][3], t.m[2][3] = dx, dy, dz
	return t, nil
}

// Magnification returns a uniform scaling transform.
func Magnification(factor float64) (TransformationMatrix, error) {
	if !isFinite(factor) {
		return TransformationMatrix{}, fmt.Errorf("%w: magnification factor must be finite", ErrInvalidValue)
	}
	var t TransformationMatrix
	t.m[0][0], t.m[1][1], t.m[2][2] = factor, factor, factor
	return t, nil
}

// Combine returns a transform equivalent to applying t first, then other.
func (t TransformationMatrix) Combine(other TransformationMatrix) TransformationMatrix {
	a := t.full()
	b := other.full()
	var r [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += b[i][k] * a[k][j]
			}
			r[i][j] = sum
		}
	}
	var out TransformationMatrix
	for i := 0; i < 3; i++ {
		copy(out.m[i][:], r[i][:])
	}
	return out
}

func (t TransformationMatrix) full() [4][4]float64 {
	return [4][4]float64{
		t.m[0], t.m[1], t.m[2],
		{0, 0, 0, 1},
	}
}

// Apply transforms the point (x, y, z) and returns the transformed
// coordinates.
func (t TransformationMatrix) Apply(x, y, z float64) (float64, float64, float64) {
	rx := t.m[0][0]*x + t.m[0][1]*y + t.m[0][2]*z + t.m[0][3]
	ry := t.m[1][0]*x + t.m[1][1]*y + t.m[1][2]*z + t.m[1][3]
	rz := t.m[2][0]*x + t.m[2][1]*y + t.m[2][2]*z + t.m[2][3]
	return rx, ry, rz
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
