package main

import (
	"fmt"

	"github.com/banshee-data/rigidify/internal/config"
	"github.com/banshee-data/rigidify/internal/rigidify"
)

// optionsFromConfig converts a loaded job file into rigidify.Options. The
// legacy frame_orientation key is resolved here, once.
func optionsFromConfig(cfg *config.RigidifyConfig) (rigidify.Options, error) {
	raw := cfg.ResolveFrames()
	var frames []rigidify.FrameSpec
	if raw != nil {
		frames = make([]rigidify.FrameSpec, len(raw))
		for i, v := range raw {
			spec, err := rigidify.ParseFrameSpec(v)
			if err != nil {
				return rigidify.Options{}, fmt.Errorf("frame %d: %w", i, err)
			}
			frames[i] = spec
		}
	}
	return rigidify.Options{Frames: frames, Name: cfg.GetName()}, nil
}

func groupsFromConfig(cfg *config.RigidifyConfig) []rigidify.IndexGroup {
	groups := make([]rigidify.IndexGroup, len(cfg.GroupIndices))
	for i, g := range cfg.GroupIndices {
		groups[i] = rigidify.IndexGroup(g)
	}
	return groups
}
