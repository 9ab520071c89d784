package rigidify

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// IndexGroup lists the global indices of the points owned by one rigid body,
// in the order supplied by the caller.
type IndexGroup []int

// Frame is a rigid pose: a position and a unit quaternion orientation.
// Orientation.Real is the scalar (w) part.
type Frame struct {
	Position    r3.Vec
	Orientation quat.Number
}

// IdentityFrame returns a frame at the origin with no rotation.
func IdentityFrame() Frame {
	return Frame{Orientation: quat.Number{Real: 1}}
}

// Rigid3 returns the frame as the 7-scalar layout used by rigid pose
// containers: x, y, z, qx, qy, qz, qw.
func (f Frame) Rigid3() [7]float64 {
	q := f.Orientation
	return [7]float64{f.Position.X, f.Position.Y, f.Position.Z, q.Imag, q.Jmag, q.Kmag, q.Real}
}

// MarshalJSON encodes the frame as {"position":[x,y,z],"orientation":[qx,qy,qz,qw]}.
func (f Frame) MarshalJSON() ([]byte, error) {
	q := f.Orientation
	return json.Marshal(struct {
		Position    [3]float64 `json:"position"`
		Orientation [4]float64 `json:"orientation"`
	}{
		Position:    [3]float64{f.Position.X, f.Position.Y, f.Position.Z},
		Orientation: [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real},
	})
}

// UnmarshalJSON decodes the layout written by MarshalJSON.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw struct {
		Position    [3]float64 `json:"position"`
		Orientation [4]float64 `json:"orientation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, o := raw.Position, raw.Orientation
	f.Position = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	f.Orientation = quat.Number{Real: o[3], Imag: o[0], Jmag: o[1], Kmag: o[2]}
	return nil
}

// RigidBody is one rigid part of the partitioned body. Ordinal is its
// position in the caller's group list.
type RigidBody struct {
	Ordinal int        `json:"ordinal"`
	Frame   Frame      `json:"frame"`
	Indices IndexGroup `json:"indices"`
}

// Source is a snapshot of a deformable body: a stable identifier and its
// point positions, where a point's global index is its slice position.
type Source struct {
	ID        string
	Positions []r3.Vec
}

// Descriptor is the output of a rigidification: everything an adapter needs
// to build the free container, the rigid pose container, the rigidified
// container with its rigid mapping, and the multi-source recombination
// mapping.
type Descriptor struct {
	Name       string `json:"name"`
	SourceID   string `json:"source_id"`
	PointCount int    `json:"point_count"`

	Partition Partition `json:"partition"`

	// FreePositions is ordered by Free local index.
	FreePositions []r3.Vec `json:"free_positions"`
	// RigidBodies is ordered by ordinal.
	RigidBodies []RigidBody `json:"rigid_bodies"`
	// RigidifiedPositions is ordered by Rigidified local index.
	RigidifiedPositions []r3.Vec `json:"rigidified_positions"`
	// RigidIndexPerPoint[k] is the ordinal of the body owning rigidified point k.
	RigidIndexPerPoint []int `json:"rigid_index_per_point"`
	// LocalOffsets[k] is rigidified point k expressed in its owner's frame.
	LocalOffsets []r3.Vec `json:"local_offsets"`

	IndexMap IndexMap `json:"-"`
	// IndexPairs is the flattened (subspace, local) sequence in ascending
	// global index order.
	IndexPairs []int `json:"index_pairs"`
}

// UnmarshalJSON decodes a descriptor and rebuilds IndexMap from IndexPairs.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	type plain Descriptor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	pairs, err := DecodeIndexPairs(p.IndexPairs)
	if err != nil {
		return fmt.Errorf("descriptor %q: %w", p.Name, err)
	}
	p.IndexMap = IndexMap{entries: pairs}
	*d = Descriptor(p)
	return nil
}

// Frames returns the rigid frames in ordinal order.
func (d *Descriptor) Frames() []Frame {
	out := make([]Frame, len(d.RigidBodies))
	for i, rb := range d.RigidBodies {
		out[i] = rb.Frame
	}
	return out
}

// Reconstruct recombines the free and rigidified containers into the original
// global point order, the same way the recombination mapping does.
func (d *Descriptor) Reconstruct() []r3.Vec {
	out := make([]r3.Vec, d.IndexMap.Len())
	for g := range out {
		e, _ := d.IndexMap.Lookup(g)
		if e.Subspace == SubspaceFree {
			out[g] = d.FreePositions[e.Local]
		} else {
			out[g] = d.RigidifiedPositions[e.Local]
		}
	}
	return out
}
