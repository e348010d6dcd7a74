package dotcluster

import (
	"cmp"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// CoordKey is the lookup identity of an element: its exact position.
// Two keys are equal only when both coordinates compare equal as floats.
type CoordKey struct {
	X, Y float64
}

// Less orders keys by X, then by Y.
func (k CoordKey) Less(o CoordKey) bool {
	return k.X < o.X || (k.X == o.X && k.Y < o.Y)
}

// CompareKeys is the three-way form of Less, for use with slices.SortFunc.
func CompareKeys(a, b CoordKey) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// CircleContains reports whether (px, py) lies within radius of (cx, cy),
// widened by the fudge tolerance when it is enabled.
func (c Config) CircleContains(cx, cy, radius, px, py float64) bool {
	d := r2.Norm(r2.Sub(r2.Vec{X: cx, Y: cy}, r2.Vec{X: px, Y: py}))
	return d <= radius+c.tolerance()
}

// centroid returns the unweighted mean of keys, or the origin for none.
// keys must already be in a deterministic order so that repeated calls over
// the same set produce bit-identical results.
func centroid(keys []CoordKey) CoordKey {
	if len(keys) == 0 {
		return CoordKey{}
	}
	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		xs[i] = k.X
		ys[i] = k.Y
	}
	n := float64(len(keys))
	return CoordKey{X: floats.Sum(xs) / n, Y: floats.Sum(ys) / n}
}
