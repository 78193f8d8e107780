package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoByTwo(t *testing.T) (*Registry, []Cell) {
	t.Helper()
	reg, err := NewRegistry(
		Dimension{Name: "target", Values: []string{"a", "b"}},
		Dimension{Name: "profile", Values: []string{"dev", "release"}},
	)
	require.NoError(t, err)
	return reg, reg.Expand()
}

func TestRuleMatches(t *testing.T) {
	cell := NewCell(map[string]string{"target": "b", "profile": "dev"})

	assert.True(t, Rule{"target": "b"}.Matches(cell))
	assert.True(t, Rule{"target": "b", "profile": "dev"}.Matches(cell))
	assert.False(t, Rule{"target": "a"}.Matches(cell))
	assert.False(t, Rule{"target": "b", "profile": "release"}.Matches(cell))
	// A key absent from the cell never matches.
	assert.False(t, Rule{"arch": "amd64"}.Matches(cell))
}

func TestFilterExcludeScenario(t *testing.T) {
	// target={a,b}, profile={dev,release}; exclude {target:b, profile:dev}
	// leaves 3 of the 4 cells.
	_, cells := twoByTwo(t)

	got := Filter(context.Background(), cells, []Rule{{"target": "b", "profile": "dev"}}, nil)
	require.Len(t, got, 3)

	excluded := NewCell(map[string]string{"target": "b", "profile": "dev"})
	for _, cell := range got {
		assert.False(t, cell.Equal(excluded))
	}
}

func TestFilterExcludesComposeAsOR(t *testing.T) {
	_, cells := twoByTwo(t)

	ruleA := Rule{"target": "a"}
	ruleB := Rule{"profile": "release"}

	first := Filter(context.Background(), cells, []Rule{ruleA, ruleB}, nil)
	second := Filter(context.Background(), cells, []Rule{ruleB, ruleA}, nil)

	// Only (b, dev) survives either way; rule order is irrelevant to membership.
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	survivor := NewCell(map[string]string{"target": "b", "profile": "dev"})
	assert.True(t, first[0].Equal(survivor))
	assert.True(t, second[0].Equal(survivor))
}

func TestFilterIsIdempotent(t *testing.T) {
	_, cells := twoByTwo(t)
	excludes := []Rule{{"target": "b", "profile": "dev"}}
	includes := []Rule{{"target": "c", "profile": "release"}}

	once := Filter(context.Background(), cells, excludes, includes)
	twice := Filter(context.Background(), once, excludes, includes)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.True(t, once[i].Equal(twice[i]))
	}
}

func TestFilterIncludeDoesNotDuplicate(t *testing.T) {
	_, cells := twoByTwo(t)

	// The included cell is already produced by expansion.
	got := Filter(context.Background(), cells, nil, []Rule{{"target": "a", "profile": "dev"}})
	assert.Len(t, got, len(cells))
}

func TestFilterIncludeRestoresExcludedCell(t *testing.T) {
	_, cells := twoByTwo(t)

	rule := Rule{"target": "b", "profile": "dev"}
	got := Filter(context.Background(), cells, []Rule{rule}, []Rule{rule})

	// Inclusion runs strictly after exclusion, so the cell is restored.
	require.Len(t, got, len(cells))
	assert.True(t, containsCell(got, rule.Cell()))
}

func TestFilterIncludeCanPatchMatrix(t *testing.T) {
	_, cells := twoByTwo(t)

	// Inclusion may introduce values the registry never declared.
	patch := Rule{"target": "experimental", "profile": "release"}
	got := Filter(context.Background(), cells, nil, []Rule{patch})

	require.Len(t, got, len(cells)+1)
	assert.True(t, got[len(got)-1].Equal(patch.Cell()))
}

func TestValidateRules(t *testing.T) {
	reg, _ := twoByTwo(t)

	t.Run("valid rules pass", func(t *testing.T) {
		err := ValidateRules(reg,
			[]Rule{{"target": "b"}},
			[]Rule{{"target": "b", "profile": "release"}},
		)
		assert.NoError(t, err)
	})

	t.Run("empty exclude rule is rejected", func(t *testing.T) {
		err := ValidateRules(reg, []Rule{{}}, nil)
		var confErr *ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.ErrorContains(t, err, "entire matrix")
	})

	t.Run("empty include rule is rejected", func(t *testing.T) {
		err := ValidateRules(reg, nil, []Rule{{}})
		var confErr *ConfigurationError
		assert.ErrorAs(t, err, &confErr)
	})

	t.Run("exclude referencing unknown dimension is rejected", func(t *testing.T) {
		err := ValidateRules(reg, []Rule{{"arch": "amd64"}}, nil)
		var confErr *ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.ErrorContains(t, err, `unknown dimension "arch"`)
	})

	t.Run("partial include rule is rejected", func(t *testing.T) {
		err := ValidateRules(reg, nil, []Rule{{"target": "b"}})
		var confErr *ConfigurationError
		require.ErrorAs(t, err, &confErr)
		assert.ErrorContains(t, err, "fully specify")
	})
}
