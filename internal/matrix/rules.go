package matrix

import (
	"context"
	"sort"
	"strings"

	"github.com/vk/buildgridgo/internal/ctxlog"
)

// Rule is a partial dimension-name to value predicate. A rule matches a cell
// iff every key in the rule is present in the cell with an equal value;
// unconstrained dimensions are wildcards. The same record serves exclusion
// (remove matching cells) and inclusion (inject the cell it describes).
type Rule map[string]string

// Matches reports whether every key of the rule is assigned the required
// value in the cell.
func (r Rule) Matches(cell Cell) bool {
	for name, want := range r {
		got, ok := cell.Value(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Cell materializes the rule as a cell. Only meaningful for inclusion rules,
// which are validated to assign every dimension.
func (r Rule) Cell() Cell {
	return NewCell(r)
}

// String renders the rule's assignments in sorted key order for diagnostics.
func (r Rule) String() string {
	keys := make([]string, 0, len(r))
	for name := range r {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(r[name])
	}
	sb.WriteByte('}')
	return sb.String()
}

// ValidateRules checks the override rules against the registry before any
// expansion happens. Violations are configuration errors and fail the whole
// run.
//
// A rule with zero keys would match (or inject) everything; that is almost
// certainly a configuration mistake, and the intentional "disable this run"
// state is already expressible as an empty dimension, so empty rules are
// rejected outright. Exclusion rules may only name declared dimensions.
// Inclusion rules must assign every declared dimension: a partial inclusion
// does not describe a cell.
func ValidateRules(reg *Registry, excludes, includes []Rule) error {
	for i, rule := range excludes {
		if len(rule) == 0 {
			return configErrorf("exclude rule %d has no keys and would match the entire matrix", i)
		}
		for name := range rule {
			if !reg.Has(name) {
				return configErrorf("exclude rule %d references unknown dimension %q", i, name)
			}
		}
	}

	order := reg.Order()
	for i, rule := range includes {
		if len(rule) == 0 {
			return configErrorf("include rule %d has no keys and does not describe a cell", i)
		}
		for _, name := range order {
			if _, ok := rule[name]; !ok {
				return configErrorf("include rule %d does not assign dimension %q; inclusion must fully specify a cell", i, name)
			}
		}
		if len(rule) != len(order) {
			for name := range rule {
				if !reg.Has(name) {
					return configErrorf("include rule %d references unknown dimension %q", i, name)
				}
			}
		}
	}

	return nil
}

// Filter applies the override rules to the candidate set.
//
// Exclusion first: a candidate is dropped when any exclusion rule matches it
// (rules are OR-combined; each rule ANDs across its own keys). Inclusion is
// applied strictly after exclusion, so an included cell can never be filtered
// by an earlier exclusion and an excluded-then-re-included cell is restored.
// Included cells that are already present (full-cell equality) are not
// duplicated. Inclusion may introduce dimension values absent from the
// registry; that is the documented matrix-patching behavior.
//
// Filter is pure with respect to its result and idempotent for a fixed rule
// set. The context is used only for diagnostics: the first matching exclusion
// rule is logged for every dropped cell.
func Filter(ctx context.Context, candidates []Cell, excludes, includes []Rule) []Cell {
	logger := ctxlog.FromContext(ctx)

	kept := make([]Cell, 0, len(candidates))
candidates:
	for _, cell := range candidates {
		for i, rule := range excludes {
			if rule.Matches(cell) {
				logger.Debug("Cell excluded.", "rule", i, "predicate", rule.String())
				continue candidates
			}
		}
		kept = append(kept, cell)
	}

	for i, rule := range includes {
		injected := rule.Cell()
		if containsCell(kept, injected) {
			logger.Debug("Include rule matches an existing cell, skipping.", "rule", i)
			continue
		}
		logger.Debug("Cell included.", "rule", i, "predicate", rule.String())
		kept = append(kept, injected)
	}

	return kept
}

// containsCell reports whether an equal cell is already in the set.
func containsCell(cells []Cell, cell Cell) bool {
	for _, existing := range cells {
		if existing.Equal(cell) {
			return true
		}
	}
	return false
}
