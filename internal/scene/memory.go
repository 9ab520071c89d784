package scene

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

type memNode struct {
	name     string
	parent   NodeID
	children []NodeID
	objects  []Object
}

// MemoryGraph is an in-process Graph. It backs dry runs and tests; it
// records structure only and simulates nothing.
type MemoryGraph struct {
	mu    sync.Mutex
	root  NodeID
	nodes map[NodeID]*memNode
}

// NewMemoryGraph returns a graph holding a single node called root.
func NewMemoryGraph() *MemoryGraph {
	root := NodeID(uuid.NewString())
	return &MemoryGraph{
		root:  root,
		nodes: map[NodeID]*memNode{root: {name: "root"}},
	}
}

// Root returns the root node.
func (g *MemoryGraph) Root() NodeID { return g.root }

func (g *MemoryGraph) node(id NodeID) (*memNode, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unknown node %s", id)
	}
	return n, nil
}

func (g *MemoryGraph) AddChild(parent NodeID, name string) (NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.node(parent)
	if err != nil {
		return "", err
	}
	id := NodeID(uuid.NewString())
	g.nodes[id] = &memNode{name: name, parent: parent}
	p.children = append(p.children, id)
	return id, nil
}

func (g *MemoryGraph) AttachChild(parent, child NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.node(parent)
	if err != nil {
		return err
	}
	if _, err := g.node(child); err != nil {
		return err
	}
	for _, c := range p.children {
		if c == child {
			return nil
		}
	}
	p.children = append(p.children, child)
	return nil
}

func (g *MemoryGraph) AddObject(node NodeID, obj Object) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.node(node)
	if err != nil {
		return err
	}
	for _, o := range n.objects {
		if o.Name == obj.Name {
			return fmt.Errorf("node %s already has an object named %q", n.name, obj.Name)
		}
	}
	n.objects = append(n.objects, obj)
	return nil
}

func (g *MemoryGraph) RemoveObject(node NodeID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, err := g.node(node)
	if err != nil {
		return err
	}
	for i, o := range n.objects {
		if o.Name == name {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("node %s has no object named %q", n.name, name)
}

func (g *MemoryGraph) HasObject(node NodeID, name string) bool {
	_, ok := g.Object(node, name)
	return ok
}

// Object returns the object called name on node.
func (g *MemoryGraph) Object(node NodeID, name string) (Object, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[node]
	if !ok {
		return Object{}, false
	}
	for _, o := range n.objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// Children returns the child nodes of node in insertion order.
func (g *MemoryGraph) Children(node NodeID) []NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[node]
	if !ok {
		return nil
	}
	return append([]NodeID(nil), n.children...)
}

// Child returns the first child of node called name.
func (g *MemoryGraph) Child(node NodeID, name string) (NodeID, bool) {
	for _, c := range g.Children(node) {
		if g.Name(c) == name {
			return c, true
		}
	}
	return "", false
}

// Name returns a node's name.
func (g *MemoryGraph) Name(node NodeID) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[node]; ok {
		return n.name
	}
	return ""
}

// LinkPath returns "@/a/b/name", following each node's creating parent.
func (g *MemoryGraph) LinkPath(node NodeID, name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var parts []string
	for id := node; id != g.root && id != ""; {
		n, ok := g.nodes[id]
		if !ok {
			break
		}
		parts = append([]string{n.name}, parts...)
		id = n.parent
	}
	parts = append(parts, name)
	return "@/" + strings.Join(parts, "/")
}

// AddDeformableBody creates a node holding a Vec3 point container and the
// time-integration components a deformable body carries before it is
// rigidified.
func AddDeformableBody(g Graph, parent NodeID, name string, positions []r3.Vec) (Body, error) {
	node, err := g.AddChild(parent, name)
	if err != nil {
		return Body{}, err
	}
	objs := []Object{
		{Type: "EulerImplicitSolver", Name: "integration"},
		{Type: "SparseLDLSolver", Name: "solver"},
		{Type: TypeMechanicalObject, Name: DofsName, Params: map[string]interface{}{
			"template": "Vec3",
			"position": vecRows(positions),
		}},
		{Type: "LinearSolverConstraintCorrection", Name: "LinearSolverConstraintCorrection"},
	}
	for _, o := range objs {
		if err := g.AddObject(node, o); err != nil {
			return Body{}, err
		}
	}
	return Body{Node: node, Dofs: DofsName}, nil
}
