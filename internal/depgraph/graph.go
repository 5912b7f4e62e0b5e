package depgraph

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// CycleError reports an edge whose insertion would close a dependency cycle.
// Path holds the existing chain from the edge's target back to its source.
type CycleError struct {
	FromID uuid.UUID
	ToID   uuid.UUID
	Path   []uuid.UUID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("edge %s -> %s would create a cycle", e.FromID, e.ToID)
}

// Graph is an in-memory view over a set of dependency edges. Only blocking
// edges participate in cycle and path math; relates-style edges are carried
// by the store but are structurally inert here.
type Graph struct {
	edges []*store.DependencyEdge
	// forward adjacency over blocking edges: from -> targets it depends on
	fwd map[uuid.UUID][]uuid.UUID
}

// NewGraph builds a graph from stored edges. The edge slice is not retained.
func NewGraph(edges []*store.DependencyEdge) *Graph {
	g := &Graph{fwd: make(map[uuid.UUID][]uuid.UUID)}
	for _, e := range edges {
		g.add(e)
	}
	return g
}

func (g *Graph) add(e *store.DependencyEdge) {
	g.edges = append(g.edges, e)
	if e.Blocking {
		g.fwd[e.FromID] = append(g.fwd[e.FromID], e.ToID)
	}
}

// CheckInsert reports whether adding candidate would violate acyclicity,
// without mutating the graph. Non-blocking edges always pass. The check is
// a reachability search from candidate.To following blocking edges forward;
// if candidate.From is reachable the new edge would close a cycle.
func (g *Graph) CheckInsert(candidate *store.DependencyEdge) error {
	if !candidate.Blocking {
		return nil
	}
	if candidate.FromID == candidate.ToID {
		return &CycleError{FromID: candidate.FromID, ToID: candidate.ToID}
	}

	visited := map[uuid.UUID]bool{candidate.ToID: true}
	parents := map[uuid.UUID]uuid.UUID{}
	queue := []uuid.UUID{candidate.ToID}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range g.fwd[node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parents[next] = node
			if next == candidate.FromID {
				return &CycleError{
					FromID: candidate.FromID,
					ToID:   candidate.ToID,
					Path:   backtrack(parents, candidate.ToID, next),
				}
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// Insert validates the candidate and adds it. On a cycle error the graph is
// left untouched.
func (g *Graph) Insert(e *store.DependencyEdge) error {
	if err := g.CheckInsert(e); err != nil {
		return err
	}
	g.add(e)
	return nil
}

// Check is an EdgeCheckFn for store.InsertDependencyEdge: it rebuilds the
// graph from the transaction's edge snapshot and runs the insert check there.
func Check(existing []*store.DependencyEdge, candidate *store.DependencyEdge) error {
	return NewGraph(existing).CheckInsert(candidate)
}

// ScanCycles walks the whole blocking subgraph depth-first with a recursion
// stack and collects every cycle found, de-duplicated by rotation. An empty
// result means the acyclicity contract holds; non-empty results arise only
// from edges imported from outside the insert path.
func (g *Graph) ScanCycles() [][]uuid.UUID {
	var cycles [][]uuid.UUID
	seen := make(map[string]bool)
	onStack := make(map[uuid.UUID]bool)
	visited := make(map[uuid.UUID]bool)
	var path []uuid.UUID

	var visit func(node uuid.UUID)
	visit = func(node uuid.UUID) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range g.fwd[node] {
			if onStack[next] {
				cycle := extractCycle(path, next)
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[next] {
				visit(next)
			}
		}

		path = path[:len(path)-1]
		onStack[node] = false
	}

	for _, node := range g.sortedNodes() {
		if !visited[node] {
			visit(node)
		}
	}
	return cycles
}

// CriticalPath returns the longest dependency chain, dependency-first: the
// blocking edges are reversed into a dependency -> dependent DAG, every node
// without a dependency of its own is a root, and all simple paths from the
// roots are enumerated keeping the longest by node count. Only meaningful on
// an acyclic graph; run ScanCycles first when edges come from imports.
func (g *Graph) CriticalPath() []uuid.UUID {
	rev := make(map[uuid.UUID][]uuid.UUID)
	hasDeps := make(map[uuid.UUID]bool)
	nodes := make(map[uuid.UUID]bool)
	for _, e := range g.edges {
		if !e.Blocking {
			continue
		}
		rev[e.ToID] = append(rev[e.ToID], e.FromID)
		hasDeps[e.FromID] = true
		nodes[e.FromID] = true
		nodes[e.ToID] = true
	}

	var roots []uuid.UUID
	for n := range nodes {
		if !hasDeps[n] {
			roots = append(roots, n)
		}
	}
	sortIDs(roots)

	var longest []uuid.UUID
	var walk func(node uuid.UUID, path []uuid.UUID)
	walk = func(node uuid.UUID, path []uuid.UUID) {
		path = append(path, node)
		if len(path) > len(longest) {
			longest = append([]uuid.UUID(nil), path...)
		}
		next := append([]uuid.UUID(nil), rev[node]...)
		sortIDs(next)
		for _, n := range next {
			if !contains(path, n) {
				walk(n, path)
			}
		}
	}
	for _, root := range roots {
		walk(root, nil)
	}
	return longest
}

// extractCycle copies the slice of path from the first occurrence of start.
func extractCycle(path []uuid.UUID, start uuid.UUID) []uuid.UUID {
	for i, n := range path {
		if n == start {
			return append([]uuid.UUID(nil), path[i:]...)
		}
	}
	return nil
}

// cycleKey canonicalizes a cycle by rotating its smallest id to the front so
// the same loop discovered from different entry points de-duplicates.
func cycleKey(cycle []uuid.UUID) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i := 1; i < len(cycle); i++ {
		if cycle[i].String() < cycle[min].String() {
			min = i
		}
	}
	key := ""
	for i := 0; i < len(cycle); i++ {
		key += cycle[(min+i)%len(cycle)].String() + "|"
	}
	return key
}

func backtrack(parents map[uuid.UUID]uuid.UUID, start, end uuid.UUID) []uuid.UUID {
	path := []uuid.UUID{end}
	for end != start {
		end = parents[end]
		path = append([]uuid.UUID{end}, path...)
	}
	return path
}

func (g *Graph) sortedNodes() []uuid.UUID {
	set := make(map[uuid.UUID]bool)
	for _, e := range g.edges {
		if e.Blocking {
			set[e.FromID] = true
			set[e.ToID] = true
		}
	}
	nodes := make([]uuid.UUID, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sortIDs(nodes)
	return nodes
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, n := range ids {
		if n == id {
			return true
		}
	}
	return false
}
