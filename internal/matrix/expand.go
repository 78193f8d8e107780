package matrix

// Expand computes the full cartesian product of the registry's dimensions.
//
// The nesting order is deterministic: the first declared dimension varies
// slowest. Re-running with identical input yields cells in identical order,
// which keeps job numbering stable across runs. If any dimension has an
// empty value list the product is empty; that is the intentional "disable
// this run" state, not an error.
func (r *Registry) Expand() []Cell {
	total := 1
	for _, dim := range r.dims {
		total *= len(dim.Values)
	}
	if total == 0 {
		return nil
	}

	cells := make([]Cell, 0, total)
	assign := make(map[string]string, len(r.dims))

	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(r.dims) {
			cells = append(cells, NewCell(assign))
			return
		}
		dim := r.dims[depth]
		for _, value := range dim.Values {
			assign[dim.Name] = value
			walk(depth + 1)
		}
		delete(assign, dim.Name)
	}
	walk(0)

	return cells
}
