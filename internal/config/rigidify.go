package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/rigidify/internal/fsutil"
	"github.com/banshee-data/rigidify/internal/monitoring"
)

// ExampleConfigPath is the checked-in example job file.
const ExampleConfigPath = "config/rigidify.example.json"

// maxConfigSize caps the size of a job file.
const maxConfigSize = 1 * 1024 * 1024 // 1MB

// RigidifyConfig describes one rigidification job. Optional scalar fields
// are pointers so an omitted key falls back to the Get* default.
type RigidifyConfig struct {
	// Name of the produced substructure; defaults to the source ID.
	Name *string `json:"name,omitempty"`
	// SourceID identifies the deformable body. Used for the exactly-once rule.
	SourceID *string `json:"source_id,omitempty"`
	// PointsPath is the .asc file holding the body's positions.
	PointsPath *string `json:"points_path,omitempty"`

	// GroupIndices holds one list of global indices per rigid body.
	GroupIndices [][]int `json:"group_indices"`
	// Frames holds one raw frame per group: 3 (Euler deg), 4 (quaternion),
	// 6 (position + Euler deg) or 7 (position + quaternion) scalars.
	Frames [][]float64 `json:"frames,omitempty"`
	// FrameOrientation is the legacy spelling of Frames.
	//
	// Deprecated: use Frames.
	FrameOrientation [][]float64 `json:"frame_orientation,omitempty"`

	// Output params
	ExportDir    *string `json:"export_dir,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
	ReportHTML   *string `json:"report_html,omitempty"`
	ReportPNG    *string `json:"report_png,omitempty"`
}

func ptrString(v string) *string { return &v }

// LoadRigidifyConfig loads a job file from disk.
func LoadRigidifyConfig(path string) (*RigidifyConfig, error) {
	return LoadRigidifyConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadRigidifyConfigFS loads a job file from fsys. The file must have a
// .json extension, be at most 1MB and pass Validate.
func LoadRigidifyConfigFS(fsys fsutil.FileSystem, path string) (*RigidifyConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RigidifyConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks structural constraints. Frame arity and index range are
// checked by the transformation itself, which knows the point count.
func (c *RigidifyConfig) Validate() error {
	if len(c.GroupIndices) == 0 {
		return fmt.Errorf("group_indices must name at least one group")
	}
	for gi, g := range c.GroupIndices {
		for _, idx := range g {
			if idx < 0 {
				return fmt.Errorf("group_indices[%d] contains negative index %d", gi, idx)
			}
		}
	}
	if c.SourceID != nil && *c.SourceID == "" {
		return fmt.Errorf("source_id must not be empty when set")
	}
	return nil
}

// ResolveFrames returns the frame list to use. When the deprecated
// frame_orientation key is present it wins, and a single deprecation
// diagnostic is logged.
func (c *RigidifyConfig) ResolveFrames() [][]float64 {
	if c.FrameOrientation == nil {
		return c.Frames
	}
	if c.Frames != nil {
		monitoring.Logf("config: frame_orientation is deprecated, use frames instead; frames is ignored because frame_orientation is set")
	} else {
		monitoring.Logf("config: frame_orientation is deprecated, use frames instead")
	}
	return c.FrameOrientation
}

// GetName returns the configured name, or "" to fall back to the source ID.
func (c *RigidifyConfig) GetName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}

// GetSourceID returns the source ID, defaulting to the points file's base
// name without extension, then to "body".
func (c *RigidifyConfig) GetSourceID() string {
	if c.SourceID != nil {
		return *c.SourceID
	}
	if p := c.GetPointsPath(); p != "" {
		base := filepath.Base(p)
		if stem := base[:len(base)-len(filepath.Ext(base))]; stem != "" {
			return stem
		}
	}
	return "body"
}

// GetPointsPath returns the points file path or "".
func (c *RigidifyConfig) GetPointsPath() string {
	if c.PointsPath == nil {
		return ""
	}
	return *c.PointsPath
}

// GetExportDir returns the export directory; "" disables .asc export.
func (c *RigidifyConfig) GetExportDir() string {
	if c.ExportDir == nil {
		return ""
	}
	return *c.ExportDir
}

// GetDatabasePath returns the SQLite path; "" disables persistence.
func (c *RigidifyConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return ""
	}
	return *c.DatabasePath
}

// GetReportHTML returns the HTML report path; "" disables it.
func (c *RigidifyConfig) GetReportHTML() string {
	if c.ReportHTML == nil {
		return ""
	}
	return *c.ReportHTML
}

// GetReportPNG returns the PNG report path; "" disables it.
func (c *RigidifyConfig) GetReportPNG() string {
	if c.ReportPNG == nil {
		return ""
	}
	return *c.ReportPNG
}

// WithOverrides returns a copy of c with non-empty command-line values
// applied on top.
func (c *RigidifyConfig) WithOverrides(pointsPath, sourceID, dbPath string) *RigidifyConfig {
	out := *c
	if pointsPath != "" {
		out.PointsPath = ptrString(pointsPath)
	}
	if sourceID != "" {
		out.SourceID = ptrString(sourceID)
	}
	if dbPath != "" {
		out.DatabasePath = ptrString(dbPath)
	}
	return &out
}
