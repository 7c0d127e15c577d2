package projectctx

import "sort"

// importGraph is the file-level graph of resolved imports
type importGraph struct {
	edges   map[string]map[string]bool
	reverse map[string]map[string]bool
}

func newImportGraph() *importGraph {
	return &importGraph{
		edges:   make(map[string]map[string]bool),
		reverse: make(map[string]map[string]bool),
	}
}

func (g *importGraph) addEdge(from, to string) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]bool)
	}
	g.edges[from][to] = true

	if g.reverse[to] == nil {
		g.reverse[to] = make(map[string]bool)
	}
	g.reverse[to][from] = true
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findCycles returns every strongly connected component that forms a cycle
// (size > 1, or a single file importing itself) using Tarjan's algorithm.
// Components and their members are sorted.
func findCycles(g *importGraph) [][]string {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
		sccs     [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range sortedKeys(g.edges[v]) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				if lowlinks[w] < lowlinks[v] {
					lowlinks[v] = lowlinks[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlinks[v] {
					lowlinks[v] = indices[w]
				}
			}
		}

		// v is the root of a component
		if lowlinks[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || g.edges[v][v] {
				sort.Strings(scc)
				sccs = append(sccs, scc)
			}
		}
	}

	nodes := make(map[string]bool)
	for k := range g.edges {
		nodes[k] = true
	}
	for k := range g.reverse {
		nodes[k] = true
	}

	for _, node := range sortedKeys(nodes) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}
