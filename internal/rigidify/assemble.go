package rigidify

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Assemble builds the Descriptor for points split by groups, with one frame
// spec per group. A nil frames slice defaults to an identity Euler offset per
// group. Groups must be disjoint and in range.
func Assemble(points []r3.Vec, groups []IndexGroup, frames []FrameSpec, name string) (*Descriptor, error) {
	if frames == nil {
		frames = DefaultFrameSpecs(len(groups))
	}
	if len(frames) != len(groups) {
		return nil, fmt.Errorf("%w: %d groups, %d frames", ErrArityMismatch, len(groups), len(frames))
	}

	n := len(points)
	part, err := PartitionIndices(n, groups)
	if err != nil {
		return nil, err
	}
	if err := CheckDisjoint(n, groups); err != nil {
		return nil, err
	}

	bodies := make([]RigidBody, len(groups))
	var total int
	for i, g := range groups {
		total += len(g)
		selected := make([]r3.Vec, len(g))
		for k, idx := range g {
			selected[k] = points[idx]
		}
		f, err := Synthesize(frames[i], selected)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		bodies[i] = RigidBody{Ordinal: i, Frame: f, Indices: g}
	}

	idxMap, pairs, err := BuildIndexMap(n, part.Free, groups)
	if err != nil {
		return nil, err
	}

	free := make([]r3.Vec, len(part.Free))
	for k, idx := range part.Free {
		free[k] = points[idx]
	}

	rigidified := make([]r3.Vec, 0, total)
	owners := make([]int, 0, total)
	offsets := make([]r3.Vec, 0, total)
	for _, rb := range bodies {
		for _, idx := range rb.Indices {
			p := points[idx]
			rigidified = append(rigidified, p)
			owners = append(owners, rb.Ordinal)
			offsets = append(offsets, rb.Frame.ToLocal(p))
		}
	}

	return &Descriptor{
		Name:                name,
		PointCount:          n,
		Partition:           part,
		FreePositions:       free,
		RigidBodies:         bodies,
		RigidifiedPositions: rigidified,
		RigidIndexPerPoint:  owners,
		LocalOffsets:        offsets,
		IndexMap:            idxMap,
		IndexPairs:          pairs,
	}, nil
}
