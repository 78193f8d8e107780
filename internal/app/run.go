package app

import (
	"context"
	"fmt"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/dispatch"
	"github.com/vk/buildgridgo/internal/jobid"
	"github.com/vk/buildgridgo/internal/matrix"
	"github.com/vk/buildgridgo/internal/report"
)

// Run executes one orchestration run: expand the matrix, apply overrides,
// resolve identities, dispatch builds, route artifacts, and report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	registry := a.model.Registry
	settings := a.model.Settings

	candidates := registry.Expand()
	a.logger.Info("Matrix expanded.", "registry", registry.String(), "candidates", len(candidates))

	cells := matrix.Filter(ctx, candidates, a.model.Excludes, a.model.Includes)
	a.logger.Info("Override rules applied.", "jobs", len(cells), "excluded", len(candidates)-len(cells)+countIncluded(candidates, cells))

	order := registry.Order()
	identities, err := jobid.ResolveAll(order, cells)
	if err != nil {
		return fmt.Errorf("resolving job identities: %w", err)
	}

	if len(cells) == 0 {
		a.logger.Warn("Matrix is empty, no jobs to run.")
	}

	jobs := make([]dispatch.Job, len(cells))
	for i := range cells {
		jobs[i] = dispatch.Job{Identity: identities[i], Cell: cells[i]}
	}

	workers := settings.Workers
	if a.config.Workers > 0 {
		workers = a.config.Workers
	}
	failFast := settings.FailFast || a.config.FailFast

	builder := report.NewBuilder(order, settings.ArtifactsRequired)
	a.logger.Info("🚀 Starting matrix run", "runID", builder.RunID(), "jobs", len(jobs), "workers", workers, "failFast", failFast)

	pool := dispatch.NewPool(a.runner, workers, failFast)
	results := pool.Run(ctx, jobs)

	for _, result := range results {
		outcome := a.router.Route(ctx, result, a.model.ArtifactFor(result.Cell))
		builder.AddJob(result, outcome)
	}

	runReport := builder.Finish()
	runReport.Log(ctx, settings.ArtifactsRequired)

	if a.config.ReportPath != "" {
		if err := runReport.WriteYAML(a.config.ReportPath); err != nil {
			return err
		}
		a.logger.Info("Run report written.", "path", a.config.ReportPath)
	}

	if !runReport.OK {
		return fmt.Errorf("matrix run %s failed", runReport.RunID)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// countIncluded counts cells in the final set that were not part of the
// expansion, so the log line separates excluded from injected cells.
func countIncluded(candidates, final []matrix.Cell) int {
	included := 0
	for _, cell := range final {
		found := false
		for _, candidate := range candidates {
			if candidate.Equal(cell) {
				found = true
				break
			}
		}
		if !found {
			included++
		}
	}
	return included
}
