// Package spatial names the collaborator interface for an optional,
// externally supplied spatial index over atom coordinates (§6.5). The core
// module never builds or depends on a concrete tree implementation — only
// the input shape and the expected query are specified here.
package spatial

// Point is a bare (x, y, z) coordinate, the only input a spatial index
// needs from an atom.
type Point struct {
	X, Y, Z float64
}

// Index is implemented by an externally supplied, bulk-loaded spatial tree
// (k-d tree, R-tree, ...). Construction from a slice of Points is left to
// the implementation; only the query contract is specified here.
type Index interface {
	// LocateWithinDistance returns the indices (into the slice the Index
	// was built from) of every point within radiusSquared of center.
	LocateWithinDistance(center Point, radiusSquared float64) []int
}

// Builder constructs an Index from a flat slice of points, e.g. the
// Cartesian positions of every atom in a container.
type Builder func(points []Point) Index
