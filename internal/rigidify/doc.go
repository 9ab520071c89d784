// Package rigidify splits a deformable body's point cloud into a free
// (still deformable) subset and one or more rigid subsets.
//
// Responsibilities: barycenter computation, frame synthesis from the four
// accepted frame encodings, index partitioning, and the global-to-local
// index bookkeeping that lets a multi-source mapping recombine the free and
// rigidified containers in the original point order.
// Key types: Frame, FrameSpec, Partition, IndexMap, Descriptor.
//
// Dependency rule: this package performs no scene-graph I/O. Turning a
// Descriptor into live simulation components is the job of
// internal/scene. No SQL/database code is allowed in this package.
package rigidify
