package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/dispatch"
	"github.com/vk/buildgridgo/internal/extract"
	"github.com/vk/buildgridgo/internal/publish"
)

// Stage is the last completed step of a job's artifact lifecycle:
// Built → {Skipped | Extracted → Published [+ SitePublished]} → Done.
type Stage int

const (
	// StageNone means an extraction was attempted and failed before any
	// artifact materialized.
	StageNone Stage = iota
	// StageSkipped means routing was a no-op: the build failed or no spec
	// exists for the job's target.
	StageSkipped
	// StageExtracted means the artifact reached the staging directory.
	StageExtracted
	// StagePublished means the artifact reached the generic channel.
	StagePublished
	// StageSitePublished means the artifact also reached the site channel.
	StageSitePublished
)

// String renders the stage for logs and reports.
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageSkipped:
		return "skipped"
	case StageExtracted:
		return "extracted"
	case StagePublished:
		return "published"
	case StageSitePublished:
		return "site-published"
	default:
		return "unknown"
	}
}

// Outcome records how far one job's artifact travelled and the error that
// stopped it, if any.
type Outcome struct {
	Identity string
	Stage    Stage
	Err      error
}

// Router applies the artifact-handling decision to each completed job.
//
// The staging directory is shared across concurrent jobs; every job writes
// under its own identity-derived subpath, and the pre-clean of that subpath
// is scoped per job so one job can never delete another's in-flight output.
type Router struct {
	// Staging is the local artifact staging root.
	Staging string
	// Images and Files are the extraction collaborators.
	Images extract.ImageSource
	Files  extract.FileSource
	// Store is the generic publication channel; Pages the site channel.
	Store publish.Store
	Pages publish.PagesStore
	// QualifierDims names the dimensions whose values qualify the generic
	// channel address. Defaults to ("profile", "featureset").
	QualifierDims []string
}

// defaultQualifierDims matches the standard gridfile axes.
var defaultQualifierDims = []string{"profile", "featureset"}

// Route runs the artifact state machine for one job result. It never
// returns an error for sibling consumption; everything terminal is folded
// into the Outcome.
func (r *Router) Route(ctx context.Context, result dispatch.Result, spec *Spec) Outcome {
	logger := ctxlog.FromContext(ctx).With("job", result.Identity)

	if result.State != dispatch.StateSucceeded || spec == nil {
		logger.Debug("Artifact routing skipped.", "buildState", result.State.String(), "hasSpec", spec != nil)
		return Outcome{Identity: result.Identity, Stage: StageSkipped}
	}

	staged, err := r.extractToStaging(ctx, result, spec)
	if err != nil {
		logger.Error("Artifact extraction failed.", "error", err)
		return Outcome{Identity: result.Identity, Stage: StageNone, Err: err}
	}
	logger.Info("📦 Artifact extracted", "path", staged)

	qualifier := r.qualifier(result)
	if err := r.Store.Put(ctx, qualifier, spec.Destination, staged); err != nil {
		pubErr := &PublicationError{Job: result.Identity, Channel: "generic", Err: err}
		logger.Error("Artifact publication failed.", "error", pubErr)
		return Outcome{Identity: result.Identity, Stage: StageExtracted, Err: pubErr}
	}
	logger.Info("🚚 Artifact published", "qualifier", qualifier, "name", spec.Destination)

	if !spec.Pages {
		return Outcome{Identity: result.Identity, Stage: StagePublished}
	}

	if err := r.Pages.Publish(ctx, spec.Destination, staged); err != nil {
		pubErr := &PublicationError{Job: result.Identity, Channel: "site", Err: err}
		logger.Error("Site publication failed.", "error", pubErr)
		return Outcome{Identity: result.Identity, Stage: StagePublished, Err: pubErr}
	}
	logger.Info("🌐 Artifact site-published", "name", spec.Destination)

	return Outcome{Identity: result.Identity, Stage: StageSitePublished}
}

// extractToStaging runs the selected extraction strategy into the job's own
// staging subdirectory and returns the staged file path.
//
// The strategy writes to a temporary name and the result is renamed into
// place, so a partially written file is never visible under the final
// destination name.
func (r *Router) extractToStaging(ctx context.Context, result dispatch.Result, spec *Spec) (string, error) {
	jobDir := filepath.Join(r.Staging, filepath.FromSlash(result.Identity))
	// Per-job pre-clean only; a global clean would race sibling jobs.
	if err := os.RemoveAll(jobDir); err != nil {
		return "", fmt.Errorf("cleaning staging subpath %s: %w", jobDir, err)
	}
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging subpath %s: %w", jobDir, err)
	}

	final := filepath.Join(jobDir, spec.Destination)
	partial := final + ".partial"

	var err error
	switch spec.Strategy {
	case StrategyImageFile:
		err = r.Images.CopyOut(ctx, result.Handle, spec.SourcePath(), partial)
	case StrategyWholeImage:
		// Whole-image has no source-path concept; a configured source is
		// ignored.
		err = r.Images.Save(ctx, result.Handle, partial)
	case StrategyRunnerFile:
		err = r.Files.Move(ctx, spec.SourcePath(), partial)
	default:
		err = fmt.Errorf("invalid strategy %d", int(spec.Strategy))
	}
	if err != nil {
		os.Remove(partial)
		return "", &ExtractionError{Job: result.Identity, Source: spec.SourcePath(), Err: err}
	}

	if err := os.Rename(partial, final); err != nil {
		os.Remove(partial)
		return "", &ExtractionError{Job: result.Identity, Source: spec.SourcePath(), Err: err}
	}
	return final, nil
}

// qualifier combines the cell's qualifier dimension values so artifacts from
// different cells for the same target never collide in the generic channel.
func (r *Router) qualifier(result dispatch.Result) string {
	dims := r.QualifierDims
	if len(dims) == 0 {
		dims = defaultQualifierDims
	}

	var parts []string
	for _, name := range dims {
		if value, ok := result.Cell.Value(name); ok && value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, "-")
}
