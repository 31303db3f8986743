package sim

// visit states for the sequencing DFS. The marker map is owned by the
// Sequence call, never stored on blocks, so repeated runs cannot see
// stale traversal state.
type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Sequence orders process-capable blocks from feeds to products by
// reverse DFS finish order. Annotation and sink blocks are excluded.
//
// A back edge (re-entry into a block still being visited) is treated as a
// recycle boundary: the edge is not followed and no error is raised. For
// an acyclic flowsheet the result is a valid topological order; for a
// cyclic one the call terminates but makes no convergence guarantee for
// the loop. The push executor in solver.go enforces the stricter
// fail-on-cycle policy.
func Sequence(fs *Flowsheet) []string {
	adjacency := make(map[string][]string)
	var roots []string
	for _, b := range fs.Blocks {
		if !b.IsProcess() {
			continue
		}
		roots = append(roots, b.ID)
		for _, s := range fs.Outlets(b.ID) {
			if to, ok := fs.Block(s.To); ok && to.IsProcess() {
				adjacency[b.ID] = append(adjacency[b.ID], to.ID)
			}
		}
	}

	state := make(map[string]visitState, len(roots))
	var order []string // DFS finish order, reversed at the end

	var dfs func(id string)
	dfs = func(id string) {
		switch state[id] {
		case visiting, visited:
			return
		}
		state[id] = visiting
		for _, next := range adjacency[id] {
			dfs(next)
		}
		state[id] = visited
		order = append(order, id)
	}

	for _, id := range roots {
		dfs(id)
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
