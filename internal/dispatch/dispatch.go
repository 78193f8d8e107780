package dispatch

import (
	"context"
	"sync"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/matrix"
)

// Runner is the narrow interface to the external build operation: run the
// build for one cell and return an opaque handle addressable by the job's
// identity, or a failure.
type Runner interface {
	RunBuild(ctx context.Context, cell matrix.Cell) (handle string, err error)
}

// State is the terminal outcome of one job's build.
type State int

const (
	// StateSucceeded means the external build returned a handle.
	StateSucceeded State = iota
	// StateFailed means the external build reported a failure.
	StateFailed
	// StateCancelled means the job never ran: a sibling failed in
	// fail-fast mode, or the run context was cancelled.
	StateCancelled
)

// String renders the state for logs and reports.
func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job pairs a resolved identity with its cell.
type Job struct {
	Identity string
	Cell     matrix.Cell
}

// Result records one job's build outcome.
type Result struct {
	Identity string
	Cell     matrix.Cell
	State    State
	Handle   string
	Err      error
}

// Pool executes a job set with bounded parallelism.
type Pool struct {
	runner   Runner
	workers  int
	failFast bool
}

// NewPool builds a pool over the given runner. workers is clamped to at
// least one.
func NewPool(runner Runner, workers int, failFast bool) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{runner: runner, workers: workers, failFast: failFast}
}

// Run executes every job and returns one result per job, in input order
// regardless of completion order, so reports stay deterministic.
//
// In fail-fast mode the first failure cancels the shared run context;
// workers observing a cancelled context record the remaining jobs as
// Cancelled without invoking the runner. An in-flight build is allowed to
// finish and its real outcome is kept.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	logger := ctxlog.FromContext(ctx)

	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexes := make(chan int, len(jobs))
	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	logger.Debug("Starting build worker pool.", "workers", workers, "jobs", len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			p.worker(runCtx, cancel, workerID, jobs, indexes, results)
		}(w)
	}
	wg.Wait()

	return results
}

// worker is the processing loop for a single concurrent worker. Each result
// slot is written by exactly one worker, so no locking is needed.
func (p *Pool) worker(ctx context.Context, cancel context.CancelFunc, workerID int, jobs []Job, indexes <-chan int, results []Result) {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID)

	for i := range indexes {
		job := jobs[i]
		jobLogger := logger.With("job", job.Identity)

		if ctx.Err() != nil {
			jobLogger.Warn("Run cancelled, job will not be built.")
			results[i] = Result{Identity: job.Identity, Cell: job.Cell, State: StateCancelled, Err: ctx.Err()}
			continue
		}

		jobLogger.Info("▶️ Starting build")
		handle, err := p.runner.RunBuild(ctx, job.Cell)
		if err != nil {
			jobLogger.Error("Build failed.", "error", err)
			results[i] = Result{Identity: job.Identity, Cell: job.Cell, State: StateFailed, Err: err}
			if p.failFast {
				cancel()
			}
			continue
		}

		jobLogger.Info("✅ Build finished", "handle", handle)
		results[i] = Result{Identity: job.Identity, Cell: job.Cell, State: StateSucceeded, Handle: handle}
	}
}
