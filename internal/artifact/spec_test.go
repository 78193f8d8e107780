package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in   string
		want Strategy
	}{
		{"", StrategyImageFile},
		{"image-file", StrategyImageFile},
		{"whole-image", StrategyWholeImage},
		{"runner-file", StrategyRunnerFile},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.in)
		require.NoError(t, err, "strategy %q", tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseStrategy("both-at-once")
	assert.ErrorContains(t, err, "unknown artifact strategy")
}

func TestSpecSourcePathDefaultsToDestination(t *testing.T) {
	spec := &Spec{Destination: "out.bin"}
	assert.Equal(t, "out.bin", spec.SourcePath())

	spec.Source = "/app/out"
	assert.Equal(t, "/app/out", spec.SourcePath())
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, (&Spec{Destination: "out.bin"}).Validate())
	assert.Error(t, (&Spec{}).Validate())
	assert.Error(t, (&Spec{Destination: "out.bin", Strategy: Strategy(42)}).Validate())
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "image-file", StrategyImageFile.String())
	assert.Equal(t, "whole-image", StrategyWholeImage.String())
	assert.Equal(t, "runner-file", StrategyRunnerFile.String())
}
