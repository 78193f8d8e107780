package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/buildgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("buildgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
BuildGridGo - A declarative build-matrix orchestrator.

Usage:
  buildgridgo [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to a single .hcl gridfile or a directory containing gridfiles.

Options:
`)
		flagSet.PrintDefaults()
	}

	gridFlag := flagSet.String("grid", "", "Path to the gridfile or directory.")
	gFlag := flagSet.String("g", "", "Path to the gridfile or directory (shorthand).")
	buildCmdFlag := flagSet.String("build-cmd", "", "External build command template; {job} and {<dimension>} are substituted per cell.")
	artifactDirFlag := flagSet.String("artifact-dir", "artifacts", "Local artifact root for staging and the directory-backed stores.")
	storeURLFlag := flagSet.String("store-url", "", "HTTP endpoint for publication. Empty uses the directory-backed stores.")
	reportFlag := flagSet.String("report", "", "Write the run report as YAML to this path.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent build workers. 0 uses the gridfile setting.")
	failFastFlag := flagSet.Bool("fail-fast", false, "Cancel remaining jobs on the first build failure.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *gridFlag != "" {
		path = *gridFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", path)

	if path == "" {
		slog.Debug("No grid path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if *buildCmdFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "missing -build-cmd: an external build command is required"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GridPath:     path,
		BuildCommand: strings.Fields(*buildCmdFlag),
		ArtifactDir:  *artifactDirFlag,
		StoreURL:     *storeURLFlag,
		ReportPath:   *reportFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Workers:      *workersFlag,
		FailFast:     *failFastFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
