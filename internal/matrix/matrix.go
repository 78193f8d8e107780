package matrix

import "fmt"

// Dimension is one independent axis of build configuration: a name and an
// ordered sequence of values. An empty value list is a valid state that
// collapses the whole matrix to zero jobs.
type Dimension struct {
	Name   string
	Values []string
}

// Cell is one fully-specified combination of dimension values. Cells are
// immutable once produced; the assignment map is copied on construction and
// never exposed directly.
type Cell struct {
	values map[string]string
}

// NewCell builds a cell from a dimension-name to value assignment.
func NewCell(assign map[string]string) Cell {
	values := make(map[string]string, len(assign))
	for name, value := range assign {
		values[name] = value
	}
	return Cell{values: values}
}

// Value returns the assignment for the named dimension.
func (c Cell) Value(dimension string) (string, bool) {
	v, ok := c.values[dimension]
	return v, ok
}

// Len returns the number of dimension assignments in the cell.
func (c Cell) Len() int {
	return len(c.values)
}

// Equal reports whether two cells carry identical assignments on every
// dimension, including dimensions the other cell does not constrain.
func (c Cell) Equal(other Cell) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for name, value := range c.values {
		if ov, ok := other.values[name]; !ok || ov != value {
			return false
		}
	}
	return true
}

// Registry holds the ordered dimension set for one orchestration run. The
// declaration order is significant: it fixes the expansion nesting order and
// the join order used for job identities.
type Registry struct {
	dims  []Dimension
	index map[string]int
}

// NewRegistry validates the dimensions and returns a read-only registry.
// Duplicate dimension names and duplicate values within a dimension are
// configuration errors.
func NewRegistry(dims ...Dimension) (*Registry, error) {
	index := make(map[string]int, len(dims))
	for i, dim := range dims {
		if dim.Name == "" {
			return nil, configErrorf("dimension %d has an empty name", i)
		}
		if _, dup := index[dim.Name]; dup {
			return nil, configErrorf("duplicate dimension %q", dim.Name)
		}
		index[dim.Name] = i

		seen := make(map[string]struct{}, len(dim.Values))
		for _, value := range dim.Values {
			if _, dup := seen[value]; dup {
				return nil, configErrorf("dimension %q declares value %q twice", dim.Name, value)
			}
			seen[value] = struct{}{}
		}
	}
	return &Registry{dims: dims, index: index}, nil
}

// Order returns the dimension names in declaration order.
func (r *Registry) Order() []string {
	order := make([]string, len(r.dims))
	for i, dim := range r.dims {
		order[i] = dim.Name
	}
	return order
}

// Dimensions returns the registered dimensions in declaration order.
func (r *Registry) Dimensions() []Dimension {
	return r.dims
}

// Has reports whether the registry declares the named dimension.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// String renders a compact summary for logs.
func (r *Registry) String() string {
	total := 1
	for _, dim := range r.dims {
		total *= len(dim.Values)
	}
	return fmt.Sprintf("registry(%d dimensions, %d cells)", len(r.dims), total)
}
