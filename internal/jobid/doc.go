// Package jobid derives the deterministic identity that addresses one matrix
// cell's build output.
//
// The canonical format joins the cell's dimension values with "/" in the
// fixed dimension order established at registry construction, e.g.
// "server/release/stable/full/linux/amd64/builder-a". The package enforces
// the identifier schema and centralizes all formatting and parsing logic.
package jobid
