package pdb

import "pdbtbx/internal/core"

// matrixBuilder accumulates the three numbered rows of a SCALEn/ORIGXn
// record set; the matrix becomes valid only once all three rows are set
// (§4.5).
type matrixBuilder struct {
	rows [3][4]float64
	set  [3]bool
}

func (b *matrixBuilder) setRow(n int, row [4]float64) {
	if n < 1 || n > 3 {
		return
	}
	b.rows[n-1] = row
	b.set[n-1] = true
}

func (b *matrixBuilder) complete() bool {
	return b.set[0] && b.set[1] && b.set[2]
}

func (b *matrixBuilder) build() (core.TransformationMatrix, error) {
	return core.NewMatrixFromRows(b.rows)
}

// ncsBuilder is the same accumulation, keyed by in-record serial, plus the
// "given" flag, set when any of the three rows marks it.
type ncsBuilder struct {
	matrixBuilder
	serial int
	given  bool
}
