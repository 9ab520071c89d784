package scene

// NodeID identifies a structural node in a scene graph.
type NodeID string

// Object is a component attached to a node: a point container, a mapping,
// a solver. Params are engine-specific data fields.
type Object struct {
	Type   string
	Name   string
	Params map[string]interface{}
}

// Graph is the scene-graph capability set Apply needs from the host engine.
type Graph interface {
	// AddChild creates a new node named name under parent.
	AddChild(parent NodeID, name string) (NodeID, error)
	// AttachChild adds an existing node as an extra child of parent.
	AttachChild(parent, child NodeID) error
	// AddObject attaches obj to node. Names are unique per node.
	AddObject(node NodeID, obj Object) error
	// RemoveObject detaches the object called name from node.
	RemoveObject(node NodeID, name string) error
	// HasObject reports whether node has an object called name.
	HasObject(node NodeID, name string) bool
	// Object returns the object called name on node.
	Object(node NodeID, name string) (Object, bool)
	// LinkPath returns the engine link path of object name on node.
	LinkPath(node NodeID, name string) string
}
