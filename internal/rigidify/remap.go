package rigidify

import "fmt"

// Subspace tags which reconstructed container a point lives in. The numeric
// values are the tags emitted in the flattened index-pair sequence.
type Subspace uint8

const (
	SubspaceFree       Subspace = 0
	SubspaceRigidified Subspace = 1
)

func (s Subspace) String() string {
	switch s {
	case SubspaceFree:
		return "free"
	case SubspaceRigidified:
		return "rigidified"
	default:
		return fmt.Sprintf("subspace(%d)", uint8(s))
	}
}

// IndexPair locates one point inside a reconstructed container.
type IndexPair struct {
	Subspace Subspace
	Local    int
}

// IndexMap is a bijection from global index to IndexPair, backed by a slice
// indexed by global index.
type IndexMap struct {
	entries []IndexPair
}

// Len returns the number of global indices covered.
func (m IndexMap) Len() int { return len(m.entries) }

// Lookup returns the container location of global index g.
func (m IndexMap) Lookup(g int) (IndexPair, bool) {
	if g < 0 || g >= len(m.entries) {
		return IndexPair{}, false
	}
	return m.entries[g], true
}

// Pairs returns a copy of the entries in ascending global index order.
func (m IndexMap) Pairs() []IndexPair {
	out := make([]IndexPair, len(m.entries))
	copy(out, m.entries)
	return out
}

// Flatten returns the interleaved (subspace, local) sequence consumed by a
// multi-source recombination mapping, in ascending global index order.
func (m IndexMap) Flatten() []int {
	out := make([]int, 0, 2*len(m.entries))
	for _, e := range m.entries {
		out = append(out, int(e.Subspace), e.Local)
	}
	return out
}

// BuildIndexMap assigns local indices: the k-th free index gets Free local
// k, and the k-th index of the concatenated groups (declaration order, then
// caller order within a group) gets Rigidified local k. It returns the map
// and its flattened pair sequence.
func BuildIndexMap(totalCount int, free []int, groups []IndexGroup) (IndexMap, []int, error) {
	entries := make([]IndexPair, totalCount)
	seen := make([]bool, totalCount)

	assign := func(g int, e IndexPair) error {
		if g < 0 || g >= totalCount {
			return fmt.Errorf("%w: index %d (point count %d)", ErrIndexOutOfRange, g, totalCount)
		}
		if seen[g] {
			return fmt.Errorf("%w: index %d assigned twice", ErrOverlappingGroup, g)
		}
		seen[g] = true
		entries[g] = e
		return nil
	}

	for k, g := range free {
		if err := assign(g, IndexPair{Subspace: SubspaceFree, Local: k}); err != nil {
			return IndexMap{}, nil, err
		}
	}
	k := 0
	for _, grp := range groups {
		for _, g := range grp {
			if err := assign(g, IndexPair{Subspace: SubspaceRigidified, Local: k}); err != nil {
				return IndexMap{}, nil, err
			}
			k++
		}
	}
	for g, ok := range seen {
		if !ok {
			return IndexMap{}, nil, fmt.Errorf("%w: index %d is neither free nor rigidified", ErrIncompletePartition, g)
		}
	}

	m := IndexMap{entries: entries}
	return m, m.Flatten(), nil
}

// DecodeIndexPairs parses a flattened pair sequence back into IndexPairs.
func DecodeIndexPairs(flat []int) ([]IndexPair, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("index pair sequence has odd length %d", len(flat))
	}
	out := make([]IndexPair, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		if flat[i] != int(SubspaceFree) && flat[i] != int(SubspaceRigidified) {
			return nil, fmt.Errorf("index pair %d: unknown subspace tag %d", i/2, flat[i])
		}
		if flat[i+1] < 0 {
			return nil, fmt.Errorf("index pair %d: negative local index %d", i/2, flat[i+1])
		}
		out = append(out, IndexPair{Subspace: Subspace(flat[i]), Local: flat[i+1]})
	}
	return out, nil
}
