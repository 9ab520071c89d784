package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rigidify/internal/monitoring"
	"github.com/banshee-data/rigidify/internal/rigidify"
)

// Component and node names shared with the host engine's templates.
const (
	DofsName           = "dofs"
	MappingName        = "mapping"
	FreeNodeName       = "DeformableParts"
	RigidNodeName      = "RigidParts"
	RigidifiedNodeName = "RigidifiedParticules"

	// AltMappingName names the coupling mapping when the body already has
	// an unrelated component called MappingName.
	AltMappingName = "subsetMapping"

	TypeMechanicalObject   = "MechanicalObject"
	TypeRigidMapping       = "RigidMapping"
	TypeSubsetMultiMapping = "SubsetMultiMapping"
)

// SolverComponents are removed from the source body when it is rigidified;
// the body becomes a mapped output of the free and rigidified containers.
var SolverComponents = []string{"solver", "integration", "LinearSolverConstraintCorrection"}

// Body locates a deformable body in the graph: its node and the name of
// its point container.
type Body struct {
	Node NodeID
	Dofs string
}

func (b Body) dofs() string {
	if b.Dofs == "" {
		return DofsName
	}
	return b.Dofs
}

// Apply builds the mixed rigid/deformable structure for d under parent and
// rewires body to be driven by it. It returns the new structure's node.
//
// Resulting layout:
//
//	parent/<d.Name>/DeformableParts        dofs (Vec3, free positions)
//	parent/<d.Name>/RigidParts             dofs (Rigid3d, one frame per body)
//	parent/<d.Name>/RigidParts/RigidifiedParticules
//	                                       dofs (Vec3) + RigidMapping
//	body                                   SubsetMultiMapping, solver removed
//
// A body that already carries the recombination mapping fails with
// rigidify.ErrAlreadyRigidified before anything is changed.
func Apply(g Graph, parent NodeID, body Body, d *rigidify.Descriptor) (NodeID, error) {
	if d == nil {
		return "", fmt.Errorf("apply: nil descriptor")
	}
	mappingName, done := couplingMappingName(g, body.Node)
	if done {
		return "", fmt.Errorf("apply %q: %w", d.SourceID, rigidify.ErrAlreadyRigidified)
	}
	if mappingName == "" {
		return "", fmt.Errorf("apply %q: body already has components named %s and %s", d.SourceID, MappingName, AltMappingName)
	}

	root, err := g.AddChild(parent, d.Name)
	if err != nil {
		return "", fmt.Errorf("add %s node: %w", d.Name, err)
	}

	free, err := g.AddChild(root, FreeNodeName)
	if err != nil {
		return "", fmt.Errorf("add %s node: %w", FreeNodeName, err)
	}
	if err := g.AddObject(free, Object{
		Type: TypeMechanicalObject,
		Name: DofsName,
		Params: map[string]interface{}{
			"template": "Vec3",
			"position": vecRows(d.FreePositions),
		},
	}); err != nil {
		return "", fmt.Errorf("add free dofs: %w", err)
	}

	rigid, err := g.AddChild(root, RigidNodeName)
	if err != nil {
		return "", fmt.Errorf("add %s node: %w", RigidNodeName, err)
	}
	frames := make([][7]float64, len(d.RigidBodies))
	for i, rb := range d.RigidBodies {
		frames[i] = rb.Frame.Rigid3()
	}
	if err := g.AddObject(rigid, Object{
		Type: TypeMechanicalObject,
		Name: DofsName,
		Params: map[string]interface{}{
			"template": "Rigid3d",
			"reserve":  len(frames),
			"position": frames,
		},
	}); err != nil {
		return "", fmt.Errorf("add rigid dofs: %w", err)
	}

	rigidified, err := g.AddChild(rigid, RigidifiedNodeName)
	if err != nil {
		return "", fmt.Errorf("add %s node: %w", RigidifiedNodeName, err)
	}
	if err := g.AddObject(rigidified, Object{
		Type: TypeMechanicalObject,
		Name: DofsName,
		Params: map[string]interface{}{
			"template": "Vec3",
			"position": vecRows(d.RigidifiedPositions),
		},
	}); err != nil {
		return "", fmt.Errorf("add rigidified dofs: %w", err)
	}
	if err := g.AddObject(rigidified, Object{
		Type: TypeRigidMapping,
		Name: MappingName,
		Params: map[string]interface{}{
			"globalToLocalCoords": true,
			"rigidIndexPerPoint":  append([]int(nil), d.RigidIndexPerPoint...),
		},
	}); err != nil {
		return "", fmt.Errorf("add rigid mapping: %w", err)
	}

	for _, name := range SolverComponents {
		if !g.HasObject(body.Node, name) {
			monitoring.Logf("scene: %s has no %s component to remove", d.SourceID, name)
			continue
		}
		if err := g.RemoveObject(body.Node, name); err != nil {
			return "", fmt.Errorf("remove %s: %w", name, err)
		}
		monitoring.Logf("scene: removed %s from %s", name, d.SourceID)
	}

	if err := g.AddObject(body.Node, Object{
		Type: TypeSubsetMultiMapping,
		Name: mappingName,
		Params: map[string]interface{}{
			"template": "Vec3,Vec3",
			"input": []string{
				g.LinkPath(free, DofsName),
				g.LinkPath(rigidified, DofsName),
			},
			"output":     g.LinkPath(body.Node, body.dofs()),
			"indexPairs": append([]int(nil), d.IndexPairs...),
		},
	}); err != nil {
		return "", fmt.Errorf("add coupling mapping: %w", err)
	}

	if err := g.AttachChild(rigidified, body.Node); err != nil {
		return "", fmt.Errorf("attach body under %s: %w", RigidifiedNodeName, err)
	}
	if err := g.AttachChild(free, body.Node); err != nil {
		return "", fmt.Errorf("attach body under %s: %w", FreeNodeName, err)
	}
	return root, nil
}

// couplingMappingName reports whether node already carries a coupling
// mapping, and otherwise the name a new one should use ("" if none is free).
func couplingMappingName(g Graph, node NodeID) (name string, done bool) {
	for _, n := range []string{MappingName, AltMappingName} {
		if o, ok := g.Object(node, n); ok && o.Type == TypeSubsetMultiMapping {
			return n, true
		}
	}
	for _, n := range []string{MappingName, AltMappingName} {
		if !g.HasObject(node, n) {
			return n, false
		}
	}
	return "", false
}

func vecRows(pts []r3.Vec) [][3]float64 {
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}
