package rigidify

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Barycenter returns the arithmetic mean of points.
func Barycenter(points []r3.Vec) (r3.Vec, error) {
	if len(points) == 0 {
		return r3.Vec{}, fmt.Errorf("barycenter: %w", ErrEmptyInput)
	}
	var sum r3.Vec
	for _, p := range points {
		sum = r3.Add(sum, p)
	}
	return r3.Scale(1/float64(len(points)), sum), nil
}
