package jobid

import (
	"fmt"
	"strings"

	"github.com/vk/buildgridgo/internal/matrix"
)

// Separator joins dimension values into an identity. It is reserved: no
// dimension value may contain it, otherwise two distinct cells can render to
// the same string.
const Separator = "/"

// CollisionError reports that the job set cannot be addressed injectively:
// either two distinct cells resolve to the same identity, or a dimension
// value embeds the reserved separator and so could forge another cell's
// identity. It is raised eagerly at run setup, before any build is
// dispatched.
type CollisionError struct {
	Identity string
	Reason   string
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("job identity collision: %s", e.Reason)
	}
	return fmt.Sprintf("job identity collision: %q addresses more than one cell", e.Identity)
}

// Resolve renders the cell's identity using the given dimension order. It is
// a pure function of the cell contents and the order; it does not screen for
// reserved separators (see ResolveAll).
func Resolve(order []string, cell matrix.Cell) string {
	parts := make([]string, len(order))
	for i, name := range order {
		value, _ := cell.Value(name)
		parts[i] = value
	}
	return strings.Join(parts, Separator)
}

// ResolveAll resolves every cell in the job set and verifies injectivity
// before anything runs.
//
// Two screens are applied: any dimension value containing the reserved
// separator is rejected, and the full identity set is built eagerly and
// compared to the job-set cardinality. Either violation is a CollisionError,
// surfaced before spending compute on builds.
func ResolveAll(order []string, cells []matrix.Cell) ([]string, error) {
	identities := make([]string, len(cells))
	seen := make(map[string]int, len(cells))

	for i, cell := range cells {
		for _, name := range order {
			value, ok := cell.Value(name)
			if !ok {
				return nil, fmt.Errorf("cell %d has no assignment for dimension %q", i, name)
			}
			if strings.Contains(value, Separator) {
				return nil, &CollisionError{
					Identity: Resolve(order, cell),
					Reason:   fmt.Sprintf("dimension %q value %q contains reserved separator %q", name, value, Separator),
				}
			}
		}

		id := Resolve(order, cell)
		if _, dup := seen[id]; dup {
			return nil, &CollisionError{Identity: id}
		}
		seen[id] = i
		identities[i] = id
	}

	return identities, nil
}

// Parse reconstructs the dimension assignment from an identity string. Used
// for diagnostics when only the identity survives (e.g. naming an external
// build output).
func Parse(order []string, id string) (matrix.Cell, error) {
	if id == "" {
		return matrix.Cell{}, fmt.Errorf("identity cannot be empty")
	}
	parts := strings.Split(id, Separator)
	if len(parts) != len(order) {
		return matrix.Cell{}, fmt.Errorf("identity %q has %d segments, want %d", id, len(parts), len(order))
	}

	assign := make(map[string]string, len(order))
	for i, name := range order {
		if parts[i] == "" {
			return matrix.Cell{}, fmt.Errorf("identity %q has an empty segment for dimension %q", id, name)
		}
		assign[name] = parts[i]
	}
	return matrix.NewCell(assign), nil
}
