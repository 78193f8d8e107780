// Package dispatch fans the final job set out to the external build
// operation through a bounded worker pool.
//
// Jobs share no mutable state and have no ordering constraints between each
// other; the only ordering guarantee is that a job's result is produced
// strictly after its own build call returns. The pool supports two
// caller-selected failure policies: fail-fast (first failure cancels every
// job that has not started) and best-effort (every job runs to completion).
package dispatch
