package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/jobid"
	"github.com/vk/buildgridgo/internal/matrix"
)

// CLIRunner invokes an external build command for each cell. The command is
// a template: every argument may reference "{job}" (replaced by the job
// identity) or "{<dimension>}" (replaced by that dimension's value). The
// cell is also exported to the child process as MATRIX_<DIMENSION>=value
// environment variables.
//
// On success the job identity is returned as the build handle, matching the
// external store's naming convention of dimension values joined in fixed
// order.
type CLIRunner struct {
	Order   []string // fixed dimension order for identity rendering
	Command []string // argv template, first element is the executable
}

// RunBuild implements Runner.
func (r *CLIRunner) RunBuild(ctx context.Context, cell matrix.Cell) (string, error) {
	if len(r.Command) == 0 {
		return "", fmt.Errorf("build command is empty")
	}

	identity := jobid.Resolve(r.Order, cell)
	logger := ctxlog.FromContext(ctx).With("job", identity)

	argv := make([]string, len(r.Command))
	for i, arg := range r.Command {
		argv[i] = r.expand(arg, identity, cell)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = r.environment(cell)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	logger.Debug("Invoking external build.", "argv", argv)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build command for %s: %w", identity, err)
	}

	return identity, nil
}

// expand substitutes "{job}" and "{<dimension>}" references in one argument.
func (r *CLIRunner) expand(arg, identity string, cell matrix.Cell) string {
	arg = strings.ReplaceAll(arg, "{job}", identity)
	for _, name := range r.Order {
		value, _ := cell.Value(name)
		arg = strings.ReplaceAll(arg, "{"+name+"}", value)
	}
	return arg
}

// environment extends the process environment with one MATRIX_* variable per
// dimension.
func (r *CLIRunner) environment(cell matrix.Cell) []string {
	env := os.Environ()
	for _, name := range r.Order {
		value, _ := cell.Value(name)
		key := "MATRIX_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		env = append(env, key+"="+value)
	}
	return env
}
