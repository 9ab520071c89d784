// Package testutil provides shared test helpers and point-cloud fixtures.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// LinePoints returns n points p_i = (i, 2i, -i).
func LinePoints(n int) []r3.Vec {
	pts := make([]r3.Vec, n)
	for i := range pts {
		f := float64(i)
		pts[i] = r3.Vec{X: f, Y: 2 * f, Z: -f}
	}
	return pts
}

// GridPoints returns an nx by ny by nz lattice with the given spacing,
// X varying fastest.
func GridPoints(nx, ny, nz int, spacing float64) []r3.Vec {
	pts := make([]r3.Vec, 0, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				pts = append(pts, r3.Vec{X: float64(i) * spacing, Y: float64(j) * spacing, Z: float64(k) * spacing})
			}
		}
	}
	return pts
}

// NearlyEqual reports whether a and b differ by at most eps in every
// coordinate.
func NearlyEqual(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
