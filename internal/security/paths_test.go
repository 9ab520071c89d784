package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	for _, d := range []string{safeDir, unsafeDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	if err := os.Symlink(unsafeDir, filepath.Join(safeDir, "evil")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		wantError bool
	}{
		{"direct child", filepath.Join(safeDir, "free.asc"), false},
		{"nested new file", filepath.Join(safeDir, "run1", "free.asc"), false},
		{"dot dot escape", filepath.Join(safeDir, "..", "unsafe", "x"), true},
		{"symlink escape", filepath.Join(safeDir, "evil", "x.asc"), true},
		{"absolute elsewhere", "/etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q) err = %v, wantError %v", tt.filePath, err, tt.wantError)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	p, err := OutputPath(dir, "../../maze body.asc")
	if err != nil {
		t.Fatalf("OutputPath: %v", err)
	}
	if want := filepath.Join(dir, "maze_body.asc"); p != want {
		t.Errorf("OutputPath = %q, want %q", p, want)
	}

	for _, bad := range []string{"..", "."} {
		if _, err := OutputPath(dir, bad); err == nil {
			t.Errorf("OutputPath(%q) accepted", bad)
		}
	}
	if _, err := OutputPath("", "x.asc"); err == nil {
		t.Error("empty dir accepted")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RigidParts", "RigidParts"},
		{"maze body/../x", "maze_body_.._x"},
		{"__.hidden.", "hidden"},
		{"", "unknown"},
		{"///", "unknown"},
		{"a  b", "a_b"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJoinFilename(t *testing.T) {
	p, err := JoinFilename("/virtual/out", "../maze body.asc")
	if err != nil {
		t.Fatalf("JoinFilename: %v", err)
	}
	if want := filepath.Join("/virtual/out", "maze_body.asc"); p != want {
		t.Errorf("JoinFilename = %q, want %q", p, want)
	}
	if _, err := JoinFilename("", "x.asc"); err == nil {
		t.Error("empty dir accepted")
	}
	if _, err := JoinFilename("/virtual", ".."); err == nil {
		t.Error("dot dot accepted")
	}
}
