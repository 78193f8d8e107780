// Package app wires the orchestrator together: configuration, logging, the
// gridfile model, and the expand → filter → identify → dispatch → route →
// report pipeline.
package app
