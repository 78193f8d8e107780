package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath     string   // gridfile (.hcl) or directory of gridfiles
	BuildCommand []string // external build argv template
	ArtifactDir  string   // local artifact root (staging + stores)
	StoreURL     string   // optional HTTP publication endpoint
	ReportPath   string   // optional YAML report output

	LogFormat string
	LogLevel  string
	Workers   int  // overrides the gridfile setting when > 0
	FailFast  bool // forces fail-fast on regardless of the gridfile
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if len(cfg.BuildCommand) == 0 {
		return nil, errors.New("BuildCommand is a required configuration field and cannot be empty")
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "artifacts"
	}
	return &cfg, nil
}
