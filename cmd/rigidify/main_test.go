package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rigidify/internal/monitoring"
	"github.com/banshee-data/rigidify/internal/rigidify"
)

const testJob = `{
  "name": "Rigidified",
  "source_id": "maze",
  "group_indices": [[1, 3], [4]],
  "frames": [[0, 0, 0], [1, 2, 3, 0, 0, 0, 1]]
}`

func writeJob(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	var asc strings.Builder
	asc.WriteString("# X Y Z\n")
	for i := 0; i < 5; i++ {
		f := float64(i)
		asc.WriteString(strings.Join([]string{ftoa(f), ftoa(2 * f), ftoa(-f)}, " ") + "\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maze.asc"), []byte(asc.String()), 0o644))
	cfgPath = filepath.Join(dir, "job.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testJob), 0o644))
	return dir, cfgPath
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func quiet(t *testing.T) {
	t.Helper()
	_, restore := monitoring.Capture()
	t.Cleanup(restore)
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out))
	assert.Contains(t, out.String(), "rigidify")
}

func TestRun_RequiresConfig(t *testing.T) {
	err := run(nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-config")
}

func TestRun_FullJob(t *testing.T) {
	quiet(t)
	dir, cfgPath := writeJob(t)
	db := filepath.Join(dir, "rigidify.db")
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	err := run([]string{
		"-config", cfgPath,
		"-points", filepath.Join(dir, "maze.asc"),
		"-db", db,
		"-out", outDir,
		"-html", filepath.Join(dir, "report.html"),
		"-png", filepath.Join(dir, "report.png"),
		"-preview",
	}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Rigidified: 5 points, 2 free, 2 rigid bodies, 3 rigidified")
	assert.Contains(t, text, "recorded")
	assert.Contains(t, text, "RigidifiedParticules")
	for _, name := range []string{"out/Rigidified_free.asc", "out/Rigidified_descriptor.json", "report.html", "report.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// The ledger lives in the database, so a second run is refused.
	err = run([]string{"-config", cfgPath, "-points", filepath.Join(dir, "maze.asc"), "-db", db}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, rigidify.ErrAlreadyRigidified), "err = %v", err)

	var list bytes.Buffer
	require.NoError(t, run([]string{"-db", db, "-list", "-source-id", "maze"}, &list))
	lines := strings.Split(strings.TrimSpace(list.String()), "\n")
	require.Len(t, lines, 1)
	runID := strings.Fields(lines[0])[0]

	var show bytes.Buffer
	require.NoError(t, run([]string{"-db", db, "-show", runID}, &show))
	assert.Contains(t, show.String(), `"run_id": "`+runID+`"`)
	assert.Contains(t, show.String(), `"bodies"`)
}

func TestRun_WithoutDatabase(t *testing.T) {
	quiet(t)
	dir, cfgPath := writeJob(t)
	args := []string{"-config", cfgPath, "-points", filepath.Join(dir, "maze.asc")}

	// Without -db nothing is recorded, so repeated runs both succeed.
	require.NoError(t, run(args, &bytes.Buffer{}))
	require.NoError(t, run(args, &bytes.Buffer{}))
}

func TestRun_HistoryRequiresDB(t *testing.T) {
	err := run([]string{"-list"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-db")
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"-no-such-flag"}, &bytes.Buffer{}))
}

func TestRun_FailedJobCanBeRetried(t *testing.T) {
	quiet(t)
	dir, cfgPath := writeJob(t)
	db := filepath.Join(dir, "rigidify.db")
	points := filepath.Join(dir, "maze.asc")

	// A regular file where the export directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := run([]string{"-config", cfgPath, "-points", points, "-db", db, "-out", filepath.Join(blocker, "sub")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, rigidify.ErrAlreadyRigidified), "err = %v", err)

	var list bytes.Buffer
	require.NoError(t, run([]string{"-db", db, "-list"}, &list))
	assert.Empty(t, strings.TrimSpace(list.String()), "failed job left a run behind")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cfgPath, "-points", points, "-db", db, "-out", filepath.Join(dir, "out")}, &out))
	assert.Contains(t, out.String(), "recorded")

	err = run([]string{"-config", cfgPath, "-points", points, "-db", db}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, rigidify.ErrAlreadyRigidified), "err = %v", err)
}
