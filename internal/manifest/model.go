package manifest

import (
	"fmt"

	"github.com/vk/buildgridgo/internal/artifact"
	"github.com/vk/buildgridgo/internal/matrix"
)

// defaultWorkers bounds build parallelism when the settings block does not
// say otherwise.
const defaultWorkers = 4

// defaultTargetDimension is the axis whose value selects a job's artifact
// spec.
const defaultTargetDimension = "target"

// Settings are the run-wide knobs after defaulting.
type Settings struct {
	Workers           int
	FailFast          bool
	ArtifactsRequired bool
	TargetDimension   string
	QualifierDims     []string
}

// Model is the fully validated, read-only configuration for one
// orchestration run.
type Model struct {
	Registry  *matrix.Registry
	Excludes  []matrix.Rule
	Includes  []matrix.Rule
	Artifacts map[string]*artifact.Spec
	Settings  Settings
}

// ArtifactFor looks up the artifact spec for a cell by its build-target
// dimension value. A nil return means no artifact exists for that target and
// routing is a no-op.
func (m *Model) ArtifactFor(cell matrix.Cell) *artifact.Spec {
	target, ok := cell.Value(m.Settings.TargetDimension)
	if !ok {
		return nil
	}
	return m.Artifacts[target]
}

// translate converts the merged gridfile into the model, running every
// before-start validation.
func translate(grid *GridFile) (*Model, error) {
	if len(grid.Dimensions) == 0 {
		return nil, &matrix.ConfigurationError{Reason: "gridfile declares no dimensions"}
	}
	dims := make([]matrix.Dimension, len(grid.Dimensions))
	for i, block := range grid.Dimensions {
		dims[i] = matrix.Dimension{Name: block.Name, Values: block.Values}
	}
	registry, err := matrix.NewRegistry(dims...)
	if err != nil {
		return nil, err
	}

	excludes := make([]matrix.Rule, len(grid.Excludes))
	for i, block := range grid.Excludes {
		excludes[i] = matrix.Rule(block.Where)
	}
	includes := make([]matrix.Rule, len(grid.Includes))
	for i, block := range grid.Includes {
		includes[i] = matrix.Rule(block.Cell)
	}
	if err := matrix.ValidateRules(registry, excludes, includes); err != nil {
		return nil, err
	}

	artifacts := make(map[string]*artifact.Spec, len(grid.Artifacts))
	for _, block := range grid.Artifacts {
		if block.Target == "" {
			return nil, &matrix.ConfigurationError{Reason: "artifact block has an empty target label"}
		}
		if _, dup := artifacts[block.Target]; dup {
			return nil, &matrix.ConfigurationError{Reason: fmt.Sprintf("duplicate artifact block for target %q", block.Target)}
		}

		strategy, err := artifact.ParseStrategy(block.Strategy)
		if err != nil {
			return nil, &matrix.ConfigurationError{Reason: fmt.Sprintf("artifact %q: %v", block.Target, err)}
		}
		spec := &artifact.Spec{
			Destination: block.Destination,
			Source:      block.Source,
			Strategy:    strategy,
			Pages:       block.Pages,
		}
		if err := spec.Validate(); err != nil {
			return nil, &matrix.ConfigurationError{Reason: fmt.Sprintf("artifact %q: %v", block.Target, err)}
		}
		artifacts[block.Target] = spec
	}

	settings := Settings{
		Workers:         defaultWorkers,
		TargetDimension: defaultTargetDimension,
	}
	if grid.Settings != nil {
		if grid.Settings.Workers < 0 {
			return nil, &matrix.ConfigurationError{Reason: "settings.workers must not be negative"}
		}
		if grid.Settings.Workers > 0 {
			settings.Workers = grid.Settings.Workers
		}
		settings.FailFast = grid.Settings.FailFast
		settings.ArtifactsRequired = grid.Settings.ArtifactsRequired
		if grid.Settings.TargetDimension != "" {
			settings.TargetDimension = grid.Settings.TargetDimension
		}
		settings.QualifierDims = grid.Settings.QualifierDims
	}
	if len(artifacts) > 0 && !registry.Has(settings.TargetDimension) {
		return nil, &matrix.ConfigurationError{Reason: fmt.Sprintf("target dimension %q is not declared", settings.TargetDimension)}
	}

	return &Model{
		Registry:  registry,
		Excludes:  excludes,
		Includes:  includes,
		Artifacts: artifacts,
		Settings:  settings,
	}, nil
}
