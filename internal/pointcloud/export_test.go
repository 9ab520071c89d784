package pointcloud

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/rigidify/internal/fsutil"
	"github.com/banshee-data/rigidify/internal/monitoring"
	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/testutil"
)

func TestExportDescriptor(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	pts := testutil.LinePoints(6)
	d, err := rigidify.Rigidify(rigidify.Source{ID: "beam", Positions: pts},
		[]rigidify.IndexGroup{{4, 1}, {5}}, rigidify.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := ExportDescriptor(fsutil.OSFileSystem{}, dir, d)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "beam_free.asc"), paths[0])

	free, err := LoadASC(fsutil.OSFileSystem{}, paths[0])
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{pts[0], pts[2], pts[3]}, free)

	rigid, err := LoadASC(fsutil.OSFileSystem{}, paths[1])
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{pts[4], pts[1], pts[5]}, rigid)

	frames, err := LoadASC(fsutil.OSFileSystem{}, paths[2])
	require.NoError(t, err)
	assert.Len(t, frames, 2)

	raw, err := os.ReadFile(paths[3])
	require.NoError(t, err)
	var decoded struct {
		Name       string `json:"name"`
		IndexPairs []int  `json:"index_pairs"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "beam", decoded.Name)
	assert.Equal(t, d.IndexPairs, decoded.IndexPairs)
}

func TestExportDescriptor_Nil(t *testing.T) {
	_, err := ExportDescriptor(fsutil.NewMemoryFileSystem(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestExportDescriptor_MemoryFileSystem(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	pts := testutil.LinePoints(4)
	d, err := rigidify.Rigidify(rigidify.Source{ID: "beam", Positions: pts},
		[]rigidify.IndexGroup{{0, 3}}, rigidify.Options{})
	require.NoError(t, err)

	fsys := fsutil.NewMemoryFileSystem()
	paths, err := ExportDescriptor(fsys, "/virtual/out", d)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/virtual/out/beam_free.asc",
		"/virtual/out/beam_rigidified.asc",
		"/virtual/out/beam_frames.asc",
		"/virtual/out/beam_descriptor.json",
	}, paths)
	assert.ElementsMatch(t, paths, fsys.Names())

	free, err := LoadASC(fsys, paths[0])
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{pts[1], pts[2]}, free)
}
