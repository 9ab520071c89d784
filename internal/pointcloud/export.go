package pointcloud

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/rigidify/internal/fsutil"
	"github.com/banshee-data/rigidify/internal/monitoring"
	"github.com/banshee-data/rigidify/internal/rigidify"
	"github.com/banshee-data/rigidify/internal/security"
)

// ExportDescriptor writes a descriptor's containers under dir:
//
//	<name>_free.asc        X Y Z GlobalIndex
//	<name>_rigidified.asc  X Y Z GlobalIndex RigidIndex
//	<name>_frames.asc      X Y Z QX QY QZ QW (one row per rigid body)
//	<name>_descriptor.json the full descriptor
//
// It returns the written paths.
func ExportDescriptor(fsys fsutil.FileSystem, dir string, d *rigidify.Descriptor) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("nil descriptor")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	free := make([]PointASC, len(d.FreePositions))
	for k, p := range d.FreePositions {
		free[k] = PointASC{Position: p, Extra: []interface{}{d.Partition.Free[k]}}
	}

	rigidified := make([]PointASC, 0, len(d.RigidifiedPositions))
	for _, g := range d.Partition.Groups {
		for _, idx := range g {
			k := len(rigidified)
			rigidified = append(rigidified, PointASC{
				Position: d.RigidifiedPositions[k],
				Extra:    []interface{}{idx, d.RigidIndexPerPoint[k]},
			})
		}
	}

	frames := make([]PointASC, len(d.RigidBodies))
	for i, rb := range d.RigidBodies {
		q := rb.Frame.Orientation
		frames[i] = PointASC{Position: rb.Frame.Position, Extra: []interface{}{q.Imag, q.Jmag, q.Kmag, q.Real}}
	}

	var written []string
	write := func(suffix string, fn func(io.Writer) error) error {
		path, err := outputPath(fsys, dir, d.Name+suffix)
		if err != nil {
			return err
		}
		f, err := fsys.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	steps := []struct {
		suffix string
		fn     func(io.Writer) error
	}{
		{"_free.asc", func(w io.Writer) error { return WriteASC(w, free, " GlobalIndex") }},
		{"_rigidified.asc", func(w io.Writer) error { return WriteASC(w, rigidified, " GlobalIndex RigidIndex") }},
		{"_frames.asc", func(w io.Writer) error { return WriteASC(w, frames, " QX QY QZ QW") }},
		{"_descriptor.json", func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}},
	}
	for _, s := range steps {
		if err := write(s.suffix, s.fn); err != nil {
			return written, err
		}
	}

	monitoring.Logf("export: wrote %d files for %q to %s", len(written), d.Name, dir)
	return written, nil
}

// outputPath checks containment against the real disk for OSFileSystem.
// Other filesystems only get the lexical checks.
func outputPath(fsys fsutil.FileSystem, dir, name string) (string, error) {
	if _, ok := fsys.(fsutil.OSFileSystem); ok {
		return security.OutputPath(dir, name)
	}
	return security.JoinFilename(dir, name)
}
