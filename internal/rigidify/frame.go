package rigidify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FrameSpec describes how a rigid body's frame is chosen. It is one of
// EulerOffset, QuaternionOffset, EulerPose or QuaternionPose.
//
// The offset variants place the frame at the barycenter of the group's
// points; the pose variants carry an explicit position.
type FrameSpec interface {
	// Arity is the number of scalars of the raw encoding (3, 4, 6 or 7).
	Arity() int
	// Values returns the raw scalar encoding accepted by ParseFrameSpec.
	Values() []float64
}

// EulerOffset is an orientation given as Euler angles in degrees.
type EulerOffset struct {
	RX, RY, RZ float64
}

// QuaternionOffset is an orientation given as a quaternion (x, y, z, w).
type QuaternionOffset struct {
	X, Y, Z, W float64
}

// EulerPose is an explicit position plus Euler angles in degrees.
type EulerPose struct {
	Position   r3.Vec
	RX, RY, RZ float64
}

// QuaternionPose is an explicit position plus a quaternion (x, y, z, w).
type QuaternionPose struct {
	Position   r3.Vec
	X, Y, Z, W float64
}

func (EulerOffset) Arity() int      { return 3 }
func (QuaternionOffset) Arity() int { return 4 }
func (EulerPose) Arity() int        { return 6 }
func (QuaternionPose) Arity() int   { return 7 }

func (s EulerOffset) Values() []float64 { return []float64{s.RX, s.RY, s.RZ} }
func (s QuaternionOffset) Values() []float64 {
	return []float64{s.X, s.Y, s.Z, s.W}
}
func (s EulerPose) Values() []float64 {
	return []float64{s.Position.X, s.Position.Y, s.Position.Z, s.RX, s.RY, s.RZ}
}
func (s QuaternionPose) Values() []float64 {
	return []float64{s.Position.X, s.Position.Y, s.Position.Z, s.X, s.Y, s.Z, s.W}
}

// ParseFrameSpec converts a raw scalar encoding into a FrameSpec:
//
//	[rx, ry, rz]                -> EulerOffset
//	[qx, qy, qz, qw]            -> QuaternionOffset
//	[x, y, z, rx, ry, rz]       -> EulerPose
//	[x, y, z, qx, qy, qz, qw]   -> QuaternionPose
//
// Any other length fails with ErrFrameFormat.
func ParseFrameSpec(v []float64) (FrameSpec, error) {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: value %d is not finite", ErrFrameFormat, i)
		}
	}
	switch len(v) {
	case 3:
		return EulerOffset{RX: v[0], RY: v[1], RZ: v[2]}, nil
	case 4:
		return QuaternionOffset{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
	case 6:
		return EulerPose{Position: r3.Vec{X: v[0], Y: v[1], Z: v[2]}, RX: v[3], RY: v[4], RZ: v[5]}, nil
	case 7:
		return QuaternionPose{Position: r3.Vec{X: v[0], Y: v[1], Z: v[2]}, X: v[3], Y: v[4], Z: v[5], W: v[6]}, nil
	default:
		return nil, fmt.Errorf("%w: %d values (want 3, 4, 6 or 7)", ErrFrameFormat, len(v))
	}
}

// DefaultFrameSpecs returns n identity Euler offsets.
func DefaultFrameSpecs(n int) []FrameSpec {
	specs := make([]FrameSpec, n)
	for i := range specs {
		specs[i] = EulerOffset{}
	}
	return specs
}

// EulerToQuat converts Euler angles in degrees to a unit quaternion.
// Rotations are about the static X, then Y, then Z axes, so the result
// is qz * qy * qx.
func EulerToQuat(rx, ry, rz float64) quat.Number {
	qx := axisAngle(r3.Vec{X: 1}, rx)
	qy := axisAngle(r3.Vec{Y: 1}, ry)
	qz := axisAngle(r3.Vec{Z: 1}, rz)
	return quat.Mul(qz, quat.Mul(qy, qx))
}

func axisAngle(axis r3.Vec, deg float64) quat.Number {
	half := deg * math.Pi / 360
	s := math.Sin(half)
	return quat.Number{Real: math.Cos(half), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// normalize scales q to unit length.
func normalize(q quat.Number) (quat.Number, error) {
	n := quat.Abs(q)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return quat.Number{}, fmt.Errorf("%w: quaternion norm %v cannot be normalised", ErrFrameFormat, n)
	}
	return quat.Scale(1/n, q), nil
}

// Synthesize resolves spec into a canonical Frame. Offset variants take
// their position from the barycenter of fallback; pose variants ignore it.
// The orientation is always returned normalised.
func Synthesize(spec FrameSpec, fallback []r3.Vec) (Frame, error) {
	var (
		pos    r3.Vec
		orient quat.Number
		err    error
	)
	switch s := spec.(type) {
	case EulerOffset:
		orient = EulerToQuat(s.RX, s.RY, s.RZ)
		pos, err = Barycenter(fallback)
	case QuaternionOffset:
		orient = quat.Number{Real: s.W, Imag: s.X, Jmag: s.Y, Kmag: s.Z}
		pos, err = Barycenter(fallback)
	case EulerPose:
		orient = EulerToQuat(s.RX, s.RY, s.RZ)
		pos = s.Position
	case QuaternionPose:
		orient = quat.Number{Real: s.W, Imag: s.X, Jmag: s.Y, Kmag: s.Z}
		pos = s.Position
	case nil:
		return Frame{}, fmt.Errorf("%w: nil frame spec", ErrFrameFormat)
	default:
		return Frame{}, fmt.Errorf("%w: unknown frame spec %T", ErrFrameFormat, spec)
	}
	if err != nil {
		return Frame{}, err
	}
	if !finite(pos) {
		return Frame{}, fmt.Errorf("%w: position %v is not finite", ErrFrameFormat, pos)
	}
	if orient, err = normalize(orient); err != nil {
		return Frame{}, err
	}
	return Frame{Position: pos, Orientation: orient}, nil
}

// rotate applies q to v.
func rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// ToLocal expresses the world point p in frame f.
func (f Frame) ToLocal(p r3.Vec) r3.Vec {
	return rotate(quat.Conj(f.Orientation), r3.Sub(p, f.Position))
}

// ToWorld maps a point expressed in frame f back to world coordinates.
func (f Frame) ToWorld(local r3.Vec) r3.Vec {
	return r3.Add(rotate(f.Orientation, local), f.Position)
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
