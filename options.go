package voxphys

import (
	"os"

	"github.com/voxelforge/voxphys/entity"
	"github.com/voxelforge/voxphys/oerror"
	"gopkg.in/yaml.v3"
)

// Options tune the engine's movement resolution. Zero or negative values are
// replaced with the defaults, so a partially filled options file is valid.
type Options struct {
	// ShortMoveThreshold is the step distance below which a movement is
	// resolved in a single sweep. Longer movements are sub-stepped.
	ShortMoveThreshold float32 `yaml:"short_move_threshold"`
	// SubStepLength is the target distance covered by one sub-step of a
	// long movement.
	SubStepLength float32 `yaml:"sub_step_length"`
	// MaxSubSteps caps the sub-step count of a single movement, bounding
	// the cost of extreme teleports.
	MaxSubSteps int `yaml:"max_sub_steps"`
	// StepHeight is how far a grounded mover may step up over a horizontal
	// obstruction. 0 disables step-up resolution.
	StepHeight float32 `yaml:"step_height"`
	// EntitySearchMargin widens the entity broad-phase window beyond the
	// swept path.
	EntitySearchMargin float32 `yaml:"entity_search_margin"`
	// IndexCellSize is the grid cell edge of a spatial index created for
	// this engine.
	IndexCellSize float32 `yaml:"index_cell_size"`
}

// DefaultOptions returns the tuning used when no options file is given.
func DefaultOptions() Options {
	return Options{
		ShortMoveThreshold: 1.0,
		SubStepLength:      4.0,
		MaxSubSteps:        16,
		StepHeight:         0.6,
		EntitySearchMargin: 0.25,
		IndexCellSize:      entity.DefaultCellSize,
	}
}

// LoadOptions reads an options YAML file over the defaults.
func LoadOptions(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, oerror.New("read engine options: %v", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, oerror.New("parse engine options %s: %v", path, err)
	}
	opts.sanitize()
	return opts, nil
}

func (o *Options) sanitize() {
	def := DefaultOptions()
	if o.ShortMoveThreshold <= 0 {
		o.ShortMoveThreshold = def.ShortMoveThreshold
	}
	if o.SubStepLength <= 0 {
		o.SubStepLength = def.SubStepLength
	}
	if o.MaxSubSteps <= 0 {
		o.MaxSubSteps = def.MaxSubSteps
	}
	if o.StepHeight < 0 {
		o.StepHeight = 0
	}
	if o.EntitySearchMargin < 0 {
		o.EntitySearchMargin = 0
	}
	if o.IndexCellSize <= 0 {
		o.IndexCellSize = def.IndexCellSize
	}
}
