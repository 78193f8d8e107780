// Package report assembles the user-visible outcome of one orchestration
// run: every job with its build state and artifact stage, every error with
// the identity it belongs to, and the overall verdict.
package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vk/buildgridgo/internal/artifact"
	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/dispatch"
	"gopkg.in/yaml.v3"
)

// JobReport is one job's line in the run report.
type JobReport struct {
	Job           string            `yaml:"job"`
	Cell          map[string]string `yaml:"cell"`
	Build         string            `yaml:"build"`
	BuildError    string            `yaml:"build_error,omitempty"`
	Artifact      string            `yaml:"artifact,omitempty"`
	ArtifactError string            `yaml:"artifact_error,omitempty"`
}

// Report is the final record of an orchestration run.
type Report struct {
	RunID    string      `yaml:"run_id"`
	Started  time.Time   `yaml:"started"`
	Finished time.Time   `yaml:"finished"`
	OK       bool        `yaml:"ok"`
	Jobs     []JobReport `yaml:"jobs"`
}

// Builder accumulates results while the run progresses.
type Builder struct {
	runID             string
	started           time.Time
	order             []string
	artifactsRequired bool
	jobs              []JobReport
	buildsOK          bool
	artifactsOK       bool
}

// NewBuilder starts a report with a fresh run identifier.
func NewBuilder(order []string, artifactsRequired bool) *Builder {
	return &Builder{
		runID:             uuid.NewString(),
		started:           time.Now().UTC(),
		order:             order,
		artifactsRequired: artifactsRequired,
		buildsOK:          true,
		artifactsOK:       true,
	}
}

// RunID returns the run identifier, usable in logs before the report closes.
func (b *Builder) RunID() string {
	return b.runID
}

// AddJob records one job's build result and artifact outcome.
func (b *Builder) AddJob(result dispatch.Result, outcome artifact.Outcome) {
	cell := make(map[string]string, len(b.order))
	for _, name := range b.order {
		if value, ok := result.Cell.Value(name); ok {
			cell[name] = value
		}
	}

	jr := JobReport{
		Job:      result.Identity,
		Cell:     cell,
		Build:    result.State.String(),
		Artifact: outcome.Stage.String(),
	}
	if result.Err != nil {
		jr.BuildError = result.Err.Error()
	}
	if outcome.Err != nil {
		jr.ArtifactError = outcome.Err.Error()
	}
	b.jobs = append(b.jobs, jr)

	if result.State != dispatch.StateSucceeded {
		b.buildsOK = false
	}
	if outcome.Err != nil {
		b.artifactsOK = false
	}
}

// Finish closes the report. The run is overall successful only if every
// job's build succeeded; artifact-stage failures downgrade to warnings
// unless artifacts are configured as mandatory.
func (b *Builder) Finish() *Report {
	ok := b.buildsOK
	if b.artifactsRequired && !b.artifactsOK {
		ok = false
	}
	return &Report{
		RunID:    b.runID,
		Started:  b.started,
		Finished: time.Now().UTC(),
		OK:       ok,
		Jobs:     b.jobs,
	}
}

// Log emits the report through the run logger, one line per job plus a
// summary line. Artifact errors log at warning level when they do not fail
// the run.
func (r *Report) Log(ctx context.Context, artifactsRequired bool) {
	logger := ctxlog.FromContext(ctx).With("runID", r.RunID)

	for _, job := range r.Jobs {
		attrs := []any{"job", job.Job, "build", job.Build, "artifact", job.Artifact}
		switch {
		case job.BuildError != "":
			logger.Error("Job failed.", append(attrs, "error", job.BuildError)...)
		case job.ArtifactError != "" && artifactsRequired:
			logger.Error("Job artifact failed.", append(attrs, "error", job.ArtifactError)...)
		case job.ArtifactError != "":
			logger.Warn("Job artifact failed.", append(attrs, "error", job.ArtifactError)...)
		default:
			logger.Info("Job completed.", attrs...)
		}
	}

	if r.OK {
		logger.Info("🏁 Run succeeded", "jobs", len(r.Jobs), "duration", r.Finished.Sub(r.Started).String())
	} else {
		logger.Error("Run failed.", "jobs", len(r.Jobs), "duration", r.Finished.Sub(r.Started).String())
	}
}

// WriteYAML renders the report to a YAML file.
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}
