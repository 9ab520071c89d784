package rigidify

import "errors"

// Every error returned by this package wraps one of these sentinels.
// All of them are fatal: no partial Descriptor is ever returned.
var (
	// ErrEmptyInput is returned when a barycenter is requested on zero points.
	ErrEmptyInput = errors.New("empty point set")
	// ErrFrameFormat is returned for a frame specification that cannot be
	// interpreted (unsupported arity, non-finite values, zero quaternion).
	ErrFrameFormat = errors.New("unsupported frame format")
	// ErrArityMismatch is returned when the number of frame specifications
	// differs from the number of groups.
	ErrArityMismatch = errors.New("frame count does not match group count")
	// ErrIndexOutOfRange is returned when a group references an index
	// outside the point cloud.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrOverlappingGroup is returned when a global index is claimed more
	// than once across (or within) the rigid groups.
	ErrOverlappingGroup = errors.New("overlapping rigid groups")
	// ErrIncompletePartition is returned when a global index belongs to
	// neither the free set nor any rigid group.
	ErrIncompletePartition = errors.New("incomplete partition")
	// ErrAlreadyRigidified is returned when a source body is rigidified a
	// second time.
	ErrAlreadyRigidified = errors.New("source already rigidified")
)
