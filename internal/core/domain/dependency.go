package domain

import (
	"slices"
	"strings"
	"sync"
)

// Resolver computes transitive package dependency closures.
// Edges form a DAG in well-formed catalogs, but cycles are tolerated: every
// walk carries a visited set so a cycle terminates instead of recursing.
type Resolver struct {
	edges map[string][]string

	mu   sync.Mutex
	memo map[string][]string
}

// NewResolver creates a resolver over the given package edges.
func NewResolver(edges map[string][]string) *Resolver {
	return &Resolver{
		edges: edges,
		memo:  make(map[string][]string),
	}
}

// Closure returns every package reachable from pkg, sorted and without duplicates.
// pkg itself is included only when it is reachable from itself.
// Results are memoized per root; callers must not modify the returned slice.
func (r *Resolver) Closure(pkg string) []string {
	r.mu.Lock()
	if cached, ok := r.memo[pkg]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	visited := make(map[string]struct{})
	stack := slices.Clone(r.edges[pkg])
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[next]; seen {
			continue
		}
		visited[next] = struct{}{}
		stack = append(stack, r.edges[next]...)
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	slices.Sort(out)

	r.mu.Lock()
	r.memo[pkg] = out
	r.mu.Unlock()
	return out
}

// Cycles reports every dependency cycle as "a -> b -> a", sorted.
// Each cycle is reported once, starting from its lexically smallest member.
func (r *Resolver) Cycles() []string {
	roots := make([]string, 0, len(r.edges))
	for name := range r.edges {
		roots = append(roots, name)
	}
	slices.Sort(roots)

	state := make(map[string]int) // 0: unvisited, 1: visiting, 2: done
	seen := make(map[string]struct{})
	var cycles []string
	var path []string

	var visit func(u string)
	visit = func(u string) {
		state[u] = 1
		path = append(path, u)

		deps := slices.Clone(r.edges[u])
		slices.Sort(deps)
		for _, dep := range deps {
			switch state[dep] {
			case 1:
				c := buildCyclePath(path, dep)
				if _, dup := seen[c]; !dup {
					seen[c] = struct{}{}
					cycles = append(cycles, c)
				}
			case 0:
				visit(dep)
			}
		}

		state[u] = 2
		path = path[:len(path)-1]
	}

	for _, name := range roots {
		if state[name] == 0 {
			visit(name)
		}
	}

	slices.Sort(cycles)
	return cycles
}

// buildCyclePath renders the cycle closed by dep, rotated to start at its smallest member.
func buildCyclePath(path []string, dep string) string {
	start := slices.Index(path, dep)
	members := slices.Clone(path[start:])

	smallest := 0
	for i, m := range members {
		if m < members[smallest] {
			smallest = i
		}
	}
	rotated := slices.Concat(members[smallest:], members[:smallest], members[smallest:smallest+1])
	return strings.Join(rotated, " -> ")
}
