package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rigidify/internal/monitoring"
	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/testutil"
)

func setupBody(t *testing.T) (*MemoryGraph, Body, *rigidify.Descriptor) {
	t.Helper()
	pts := testutil.LinePoints(5)
	g := NewMemoryGraph()
	body, err := AddDeformableBody(g, g.Root(), "Maze", pts)
	require.NoError(t, err)

	d, err := rigidify.Rigidify(rigidify.Source{ID: "Maze", Positions: pts},
		[]rigidify.IndexGroup{{1, 3}}, rigidify.Options{Name: "RigidifiedMaze"})
	require.NoError(t, err)
	return g, body, d
}

func TestApply_Layout(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	g, body, d := setupBody(t)
	root, err := Apply(g, g.Root(), body, d)
	require.NoError(t, err)
	assert.Equal(t, "RigidifiedMaze", g.Name(root))

	free, ok := g.Child(root, FreeNodeName)
	require.True(t, ok)
	rigid, ok := g.Child(root, RigidNodeName)
	require.True(t, ok)
	rigidified, ok := g.Child(rigid, RigidifiedNodeName)
	require.True(t, ok)

	freeDofs, ok := g.Object(free, DofsName)
	require.True(t, ok)
	assert.Equal(t, "Vec3", freeDofs.Params["template"])
	assert.Equal(t, [][3]float64{{0, 0, 0}, {2, 4, -2}, {4, 8, -4}}, freeDofs.Params["position"])

	rigidDofs, ok := g.Object(rigid, DofsName)
	require.True(t, ok)
	assert.Equal(t, "Rigid3d", rigidDofs.Params["template"])
	assert.Equal(t, [][7]float64{{2, 4, -2, 0, 0, 0, 1}}, rigidDofs.Params["position"])

	rm, ok := g.Object(rigidified, MappingName)
	require.True(t, ok)
	assert.Equal(t, TypeRigidMapping, rm.Type)
	assert.Equal(t, []int{0, 0}, rm.Params["rigidIndexPerPoint"])
	assert.Equal(t, true, rm.Params["globalToLocalCoords"])

	for _, name := range SolverComponents {
		assert.False(t, g.HasObject(body.Node, name), "%s should be removed", name)
	}

	sm, ok := g.Object(body.Node, MappingName)
	require.True(t, ok)
	assert.Equal(t, TypeSubsetMultiMapping, sm.Type)
	assert.Equal(t, []int{0, 0, 1, 0, 0, 1, 1, 1, 0, 2}, sm.Params["indexPairs"])
	assert.Equal(t, []string{
		"@/RigidifiedMaze/DeformableParts/dofs",
		"@/RigidifiedMaze/RigidParts/RigidifiedParticules/dofs",
	}, sm.Params["input"])
	assert.Equal(t, "@/Maze/dofs", sm.Params["output"])

	assert.Contains(t, g.Children(rigidified), body.Node)
	assert.Contains(t, g.Children(free), body.Node)
}

func TestApply_Twice(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	g, body, d := setupBody(t)
	_, err := Apply(g, g.Root(), body, d)
	require.NoError(t, err)

	before := len(g.Children(g.Root()))
	_, err = Apply(g, g.Root(), body, d)
	assert.ErrorIs(t, err, rigidify.ErrAlreadyRigidified)
	assert.Equal(t, before, len(g.Children(g.Root())), "second Apply must not mutate the graph")
}

func TestApply_MissingSolverComponents(t *testing.T) {
	lines, restore := monitoring.Capture()
	defer restore()

	g, body, d := setupBody(t)
	require.NoError(t, g.RemoveObject(body.Node, "solver"))

	_, err := Apply(g, g.Root(), body, d)
	require.NoError(t, err)
	assert.Contains(t, (*lines)[0], "has no solver")
}

func TestApply_NilDescriptor(t *testing.T) {
	g := NewMemoryGraph()
	_, err := Apply(g, g.Root(), Body{Node: g.Root()}, nil)
	assert.Error(t, err)
}

func TestMemoryGraph_Errors(t *testing.T) {
	g := NewMemoryGraph()
	_, err := g.AddChild("nope", "x")
	assert.Error(t, err)

	require.NoError(t, g.AddObject(g.Root(), Object{Name: "a"}))
	assert.Error(t, g.AddObject(g.Root(), Object{Name: "a"}), "duplicate name")
	assert.Error(t, g.RemoveObject(g.Root(), "b"))
	assert.Error(t, g.AttachChild(g.Root(), "nope"))
	assert.Equal(t, "@/x", g.LinkPath(g.Root(), "x"))
}

func TestApply_UnrelatedMappingOnBody(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	g, body, d := setupBody(t)
	require.NoError(t, g.AddObject(body.Node, Object{Type: "BarycentricMapping", Name: MappingName}))

	_, err := Apply(g, g.Root(), body, d)
	require.NoError(t, err)

	existing, ok := g.Object(body.Node, MappingName)
	require.True(t, ok)
	assert.Equal(t, "BarycentricMapping", existing.Type)
	coupling, ok := g.Object(body.Node, AltMappingName)
	require.True(t, ok)
	assert.Equal(t, TypeSubsetMultiMapping, coupling.Type)

	// The coupling mapping under its alternate name still blocks a rerun.
	_, err = Apply(g, g.Root(), body, d)
	assert.ErrorIs(t, err, rigidify.ErrAlreadyRigidified)
}

func TestApply_NoFreeMappingName(t *testing.T) {
	g, body, d := setupBody(t)
	require.NoError(t, g.AddObject(body.Node, Object{Type: "BarycentricMapping", Name: MappingName}))
	require.NoError(t, g.AddObject(body.Node, Object{Type: "IdentityMapping", Name: AltMappingName}))

	before := len(g.Children(g.Root()))
	_, err := Apply(g, g.Root(), body, d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, rigidify.ErrAlreadyRigidified)
	assert.Equal(t, before, len(g.Children(g.Root())))
}
