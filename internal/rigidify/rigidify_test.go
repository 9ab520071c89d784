package rigidify

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rigidify/internal/monitoring"
)

func testSource(id string) Source {
	return Source{ID: id, Positions: fivePoints()}
}

func TestRigidify_NameDefaultsToSourceID(t *testing.T) {
	d, err := Rigidify(testSource("finger"), []IndexGroup{{1, 3}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "finger", d.Name)
	assert.Equal(t, "finger", d.SourceID)

	d, err = Rigidify(testSource("finger"), []IndexGroup{{1, 3}}, Options{Name: "rigid"})
	require.NoError(t, err)
	assert.Equal(t, "rigid", d.Name)
}

func TestRigidify_ErrorNamesSource(t *testing.T) {
	_, err := Rigidify(testSource("finger"), []IndexGroup{{1}}, Options{Frames: []FrameSpec{}})
	require.ErrorIs(t, err, ErrArityMismatch)
	assert.Contains(t, err.Error(), `"finger"`)
}

func TestRigidify_LegacyFrameOrientation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantMsg string
	}{
		{"legacy only", Options{FrameOrientation: []FrameSpec{EulerPose{Position: r3.Vec{X: 9}}}}, "deprecated"},
		{"both", Options{
			Frames:           []FrameSpec{EulerOffset{}},
			FrameOrientation: []FrameSpec{EulerPose{Position: r3.Vec{X: 9}}},
		}, "Frames is ignored"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, restore := monitoring.Capture()
			defer restore()

			d, err := Rigidify(testSource("s"), []IndexGroup{{0}}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 9.0, d.RigidBodies[0].Frame.Position.X, "legacy frames must win")

			require.Len(t, *lines, 1, "exactly one deprecation diagnostic")
			assert.Contains(t, (*lines)[0], tt.wantMsg)
		})
	}
}

func TestRigidify_NoDiagnosticWithoutLegacy(t *testing.T) {
	lines, restore := monitoring.Capture()
	defer restore()

	_, err := Rigidify(testSource("s"), []IndexGroup{{0}}, Options{Frames: []FrameSpec{EulerOffset{}}})
	require.NoError(t, err)
	assert.Empty(t, *lines)
}

func TestRigidifier_ExactlyOnce(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	r := NewRigidifier(nil)
	_, err := r.Rigidify(testSource("body"), []IndexGroup{{1, 3}}, Options{})
	require.NoError(t, err)

	d, err := r.Rigidify(testSource("body"), []IndexGroup{{1, 3}}, Options{})
	assert.ErrorIs(t, err, ErrAlreadyRigidified)
	assert.Nil(t, d)

	_, err = r.Rigidify(testSource("other"), []IndexGroup{{0}}, Options{})
	assert.NoError(t, err)
}

func TestRigidifier_FailedRunIsNotRecorded(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	ledger := NewMemoryLedger()
	r := NewRigidifier(ledger)
	_, err := r.Rigidify(testSource("body"), []IndexGroup{{99}}, Options{})
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	done, err := ledger.Rigidified("body")
	require.NoError(t, err)
	assert.False(t, done)

	_, err = r.Rigidify(testSource("body"), []IndexGroup{{1}}, Options{})
	assert.NoError(t, err)
}

type failingLedger struct{}

func (failingLedger) Rigidified(string) (bool, error) { return false, errors.New("disk on fire") }
func (failingLedger) MarkRigidified(string) error     { return nil }

func TestRigidifier_LedgerError(t *testing.T) {
	_, err := NewRigidifier(failingLedger{}).Rigidify(testSource("x"), []IndexGroup{{0}}, Options{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk on fire"))
}

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()
	require.NoError(t, l.MarkRigidified("a"))
	assert.ErrorIs(t, l.MarkRigidified("a"), ErrAlreadyRigidified)
	done, _ := l.Rigidified("a")
	assert.True(t, done)
	done, _ = l.Rigidified("b")
	assert.False(t, done)
}
