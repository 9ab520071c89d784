// Package scene applies a rigidify.Descriptor to a simulation scene graph.
//
// The graph itself belongs to the host simulation engine and is reached
// only through the Graph interface. Apply is the single place where a
// body's solver components are removed, so it is also where the
// exactly-once rule is enforced for live scenes.
package scene
