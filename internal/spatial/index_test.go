package spatial

import "testing"

// bruteForceIndex is a minimal Index implementation used only to exercise
// the Builder/Index contract; it is not something the module ships.
type bruteForceIndex struct{ points []Point }

func (b bruteForceIndex) LocateWithinDistance(center Point, radiusSquared float64) []int {
	var out []int
	for i, p := range b.points {
		dx, dy, dz := p.X-center.X, p.Y-center.Y, p.Z-center.Z
		if dx*dx+dy*dy+dz*dz <= radiusSquared {
			out = append(out, i)
		}
	}
	return out
}

func bruteForceBuilder(points []Point) Index { return bruteForceIndex{points: points} }

func TestBuilderProducesQueryableIndex(t *testing.T) {
	var build Builder = bruteForceBuilder
	points := []Point{{0, 0, 0}, {1, 0, 0}, {10, 0, 0}}
	idx := build(points)

	got := idx.LocateWithinDistance(Point{0, 0, 0}, 1.5)
	if len(got) != 2 {
		t.Fatalf("got %d points within radius, want 2 (indices 0 and 1): %v", len(got), got)
	}
	seen := map[int]bool{}
	for _, i := range got {
		seen[i] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected indices 0 and 1, got %v", got)
	}
}
