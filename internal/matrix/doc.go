// Package matrix implements the build-matrix core: dimension registries,
// cartesian expansion into cells, and the override filter that applies
// exclusion and inclusion rules to the expanded candidate set.
//
// Everything in this package is pure and synchronous. Registries, rules and
// cells are constructed once per run and never mutated afterwards.
package matrix
