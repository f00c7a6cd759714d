package core

import "fmt"

// UnitCell stores the six raw crystallographic cell parameters. It performs
// no derived computation (volume, reciprocal cell, ...): that is out of the
// core contract per spec.
type UnitCell struct {
	A, B, C          float64
	Alpha, Beta, Gamma float64 // degrees
}

// NewUnitCell validates that all six parameters are finite.
func NewUnitCell(a, b, c, alpha, beta, gamma float64) (UnitCell, error) {
	for _, v := range []float64{a, b, c, alpha, beta, gamma} {
		if !isFinite(v) {
			return UnitCell{}, fmt.Errorf("%w: unit cell parameters must be finite", ErrInvalidValue)
		}
	}
	return UnitCell{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}, nil
}
