package rigidify

import "fmt"

// Partition divides a point cloud's global indices into the free set and
// the rigid groups.
type Partition struct {
	// Free holds the unclaimed global indices in ascending order.
	Free []int `json:"free"`
	// Groups holds one IndexGroup per rigid body, in declaration order.
	Groups []IndexGroup `json:"groups"`
}

// PartitionIndices computes the free set of {0..totalCount-1} left over once
// groups are removed. Every group index must lie in [0, totalCount).
// Disjointness of groups is not checked here; see CheckDisjoint.
func PartitionIndices(totalCount int, groups []IndexGroup) (Partition, error) {
	if totalCount < 0 {
		return Partition{}, fmt.Errorf("%w: negative point count %d", ErrIndexOutOfRange, totalCount)
	}
	claimed := make([]bool, totalCount)
	for gi, g := range groups {
		for _, idx := range g {
			if idx < 0 || idx >= totalCount {
				return Partition{}, fmt.Errorf("%w: group %d references index %d (point count %d)",
					ErrIndexOutOfRange, gi, idx, totalCount)
			}
			claimed[idx] = true
		}
	}

	free := make([]int, 0, totalCount)
	for i, c := range claimed {
		if !c {
			free = append(free, i)
		}
	}
	return Partition{Free: free, Groups: groups}, nil
}

// CheckDisjoint fails with ErrOverlappingGroup if any index appears more
// than once across all groups, including twice within the same group.
// Indices are assumed to be in range.
func CheckDisjoint(totalCount int, groups []IndexGroup) error {
	owner := make([]int, totalCount)
	for i := range owner {
		owner[i] = -1
	}
	for gi, g := range groups {
		for _, idx := range g {
			if prev := owner[idx]; prev >= 0 {
				return fmt.Errorf("%w: index %d claimed by group %d and group %d",
					ErrOverlappingGroup, idx, prev, gi)
			}
			owner[idx] = gi
		}
	}
	return nil
}
