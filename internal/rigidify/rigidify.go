package rigidify

import (
	"fmt"
	"sync"

	"github.com/banshee-data/rigidify/internal/monitoring"
)

// Options carries the optional parameters of a rigidification.
type Options struct {
	// Frames holds one frame spec per group. Nil means an identity Euler
	// offset for every group.
	Frames []FrameSpec
	// FrameOrientation is the legacy name for Frames.
	//
	// Deprecated: use Frames. When set it takes precedence over Frames and a
	// deprecation diagnostic is logged.
	FrameOrientation []FrameSpec
	// Name of the produced substructure; defaults to the source ID.
	Name string
}

// resolveFrames picks the frame list once, logging a single deprecation
// diagnostic when the legacy field is used.
func (o Options) resolveFrames() []FrameSpec {
	if o.FrameOrientation == nil {
		return o.Frames
	}
	if o.Frames != nil {
		monitoring.Logf("rigidify: FrameOrientation is deprecated, use Frames instead; Frames is ignored because FrameOrientation is set")
	} else {
		monitoring.Logf("rigidify: FrameOrientation is deprecated, use Frames instead")
	}
	return o.FrameOrientation
}

// Rigidify partitions src into free and rigid parts. It is a pure function
// of its inputs; use a Rigidifier to enforce exactly-once per source.
func Rigidify(src Source, groups []IndexGroup, opts Options) (*Descriptor, error) {
	name := opts.Name
	if name == "" {
		name = src.ID
	}
	desc, err := Assemble(src.Positions, groups, opts.resolveFrames(), name)
	if err != nil {
		return nil, fmt.Errorf("rigidify %q: %w", src.ID, err)
	}
	desc.SourceID = src.ID
	return desc, nil
}

// Ledger records which sources have been rigidified.
type Ledger interface {
	// Rigidified reports whether sourceID has already been rigidified.
	Rigidified(sourceID string) (bool, error)
	// MarkRigidified records sourceID, failing with ErrAlreadyRigidified if
	// it is already recorded.
	MarkRigidified(sourceID string) error
}

// MemoryLedger is an in-process Ledger.
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryLedger returns an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]struct{})}
}

func (l *MemoryLedger) Rigidified(sourceID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[sourceID]
	return ok, nil
}

func (l *MemoryLedger) MarkRigidified(sourceID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[sourceID]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyRigidified, sourceID)
	}
	l.seen[sourceID] = struct{}{}
	return nil
}

// Rigidifier runs Rigidify at most once per source ID.
type Rigidifier struct {
	ledger Ledger
}

// NewRigidifier returns a Rigidifier backed by ledger, or by a fresh
// MemoryLedger when ledger is nil.
func NewRigidifier(ledger Ledger) *Rigidifier {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	return &Rigidifier{ledger: ledger}
}

// Rigidify fails fast with ErrAlreadyRigidified for a source seen before.
// A source is only recorded once its transformation succeeds.
func (r *Rigidifier) Rigidify(src Source, groups []IndexGroup, opts Options) (*Descriptor, error) {
	done, err := r.ledger.Rigidified(src.ID)
	if err != nil {
		return nil, fmt.Errorf("check ledger: %w", err)
	}
	if done {
		return nil, fmt.Errorf("rigidify %q: %w", src.ID, ErrAlreadyRigidified)
	}

	desc, err := Rigidify(src, groups, opts)
	if err != nil {
		return nil, err
	}
	if err := r.ledger.MarkRigidified(src.ID); err != nil {
		return nil, fmt.Errorf("rigidify %q: %w", src.ID, err)
	}

	monitoring.Logf("rigidify: %s -> %q: %d points, %d free, %d rigid bodies, %d rigidified",
		src.ID, desc.Name, desc.PointCount, len(desc.FreePositions), len(desc.RigidBodies), len(desc.RigidifiedPositions))
	return desc, nil
}
