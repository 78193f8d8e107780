package artifact

import "fmt"

// Strategy is the closed set of extraction strategies. The zero value is
// StrategyImageFile, the default when a spec names no strategy.
type Strategy int

const (
	// StrategyImageFile copies a path from inside the built image into the
	// artifact directory.
	StrategyImageFile Strategy = iota
	// StrategyWholeImage serializes the entire built image to a single
	// file. No source-path concept applies.
	StrategyWholeImage
	// StrategyRunnerFile treats the build output as a plain file already
	// on the execution host and moves it into the artifact directory.
	StrategyRunnerFile
)

// strategyNames maps the configuration-surface spelling of each strategy.
var strategyNames = map[Strategy]string{
	StrategyImageFile:  "image-file",
	StrategyWholeImage: "whole-image",
	StrategyRunnerFile: "runner-file",
}

// String renders the configuration spelling of the strategy.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a configuration string onto a Strategy. The empty
// string selects the image-file default.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "image-file":
		return StrategyImageFile, nil
	case "whole-image":
		return StrategyWholeImage, nil
	case "runner-file":
		return StrategyRunnerFile, nil
	default:
		return 0, fmt.Errorf("unknown artifact strategy %q (want image-file, whole-image or runner-file)", name)
	}
}

// Spec is the declarative per-target artifact record. The presence of a spec
// for a build target is itself the flag that an artifact exists for it.
type Spec struct {
	// Destination is the artifact's name in the staging directory and in
	// both publication channels. Required.
	Destination string
	// Source is the path the artifact is read from; defaults to
	// Destination when empty. Ignored by the whole-image strategy.
	Source string
	// Strategy selects how the artifact leaves the build.
	Strategy Strategy
	// Pages additionally publishes the artifact through the site channel.
	Pages bool
}

// SourcePath returns the effective source, applying the default.
func (s *Spec) SourcePath() string {
	if s.Source == "" {
		return s.Destination
	}
	return s.Source
}

// Validate checks the spec's own invariants.
func (s *Spec) Validate() error {
	if s.Destination == "" {
		return fmt.Errorf("artifact spec has an empty destination")
	}
	if _, ok := strategyNames[s.Strategy]; !ok {
		return fmt.Errorf("artifact spec for %q has invalid strategy %d", s.Destination, int(s.Strategy))
	}
	return nil
}
