package graph

// Exclusive sizes come from the dominator tree of the containment graph:
// an element exclusively holds the bytes of every element it dominates,
// because no path from a root can reach those elements without passing
// through it.

// superRoot is a synthetic vertex above all library roots. The empty
// string is never a valid element id.
const superRoot = ""

// ltState carries the working maps of the Lengauer-Tarjan run.
type ltState struct {
	adj    map[string][]string // forward edges, superRoot -> roots included
	preds  map[string][]string // reverse edges over reachable vertices
	vertex []string            // DFS number -> vertex id
	dfnum  map[string]int
	parent map[string]int // vertex -> DFS number of spanning-tree parent
	semi   map[string]int // vertex -> DFS number of semidominator
	// link-eval forest with path compression
	ancestor map[string]int
	best     map[string]string
	samedom  map[string]string
	idom     map[string]string
	bucket   map[int][]string
}

// immediateDominators computes the immediate dominator of every element
// reachable from roots using the Lengauer-Tarjan algorithm. Child ids
// with no corresponding node are ignored here; dereferencing them is the
// aggregation layer's job. The super-root dominates all roots and does
// not appear in the result.
func immediateDominators(nodes map[string]*Node, roots []string) map[string]string {
	s := &ltState{
		adj:      make(map[string][]string, len(nodes)+1),
		preds:    make(map[string][]string, len(nodes)),
		dfnum:    make(map[string]int, len(nodes)+1),
		parent:   make(map[string]int, len(nodes)+1),
		semi:     make(map[string]int, len(nodes)+1),
		ancestor: make(map[string]int, len(nodes)+1),
		best:     make(map[string]string, len(nodes)+1),
		samedom:  make(map[string]string, len(nodes)+1),
		idom:     make(map[string]string, len(nodes)),
		bucket:   make(map[int][]string),
	}

	s.adj[superRoot] = roots
	for id, n := range nodes {
		for _, child := range n.Children {
			if _, ok := nodes[child]; ok {
				s.adj[id] = append(s.adj[id], child)
			}
		}
	}

	s.dfs(superRoot, -1)

	// Predecessors of reachable vertices only.
	for v := range s.dfnum {
		for _, w := range s.adj[v] {
			s.preds[w] = append(s.preds[w], v)
		}
	}

	// Process vertices in reverse DFS order, computing semidominators and
	// filling buckets (Appel's formulation).
	for i := len(s.vertex) - 1; i > 0; i-- {
		w := s.vertex[i]
		p := s.parent[w]

		for _, v := range s.preds[w] {
			var u string
			if s.dfnum[v] <= s.dfnum[w] {
				u = v
			} else {
				u = s.eval(v)
			}
			if s.semi[u] < s.semi[w] {
				s.semi[w] = s.semi[u]
			}
		}

		s.bucket[s.semi[w]] = append(s.bucket[s.semi[w]], w)
		s.ancestor[w] = p

		for _, v := range s.bucket[p] {
			u := s.eval(v)
			if s.semi[u] == s.semi[v] {
				s.idom[v] = s.vertex[p]
			} else {
				s.samedom[v] = u
			}
		}
		s.bucket[p] = nil
	}

	// Resolve deferred idoms.
	for i := 1; i < len(s.vertex); i++ {
		w := s.vertex[i]
		if u, ok := s.samedom[w]; ok && u != w {
			s.idom[w] = s.idom[u]
		}
	}

	delete(s.idom, superRoot)
	return s.idom
}

// dfs numbers vertices and records the spanning tree.
func (s *ltState) dfs(v string, p int) {
	if _, visited := s.dfnum[v]; visited {
		return
	}
	num := len(s.vertex)
	s.dfnum[v] = num
	s.vertex = append(s.vertex, v)
	s.parent[v] = p
	s.semi[v] = num
	s.ancestor[v] = -1
	s.best[v] = v
	for _, w := range s.adj[v] {
		s.dfs(w, num)
	}
}

// eval returns the vertex with the smallest semidominator number on the
// forest path above v, compressing the path as it goes.
func (s *ltState) eval(v string) string {
	if s.ancestor[v] == -1 {
		return v
	}
	s.compress(v)
	return s.best[v]
}

func (s *ltState) compress(v string) {
	anc := s.vertex[s.ancestor[v]]
	if s.ancestor[anc] == -1 {
		return
	}
	s.compress(anc)
	if s.semi[s.best[anc]] < s.semi[s.best[v]] {
		s.best[v] = s.best[anc]
	}
	s.ancestor[v] = s.ancestor[anc]
}

// dominatorTree inverts the idom map into parent -> dominated children.
// Vertices dominated directly by the super-root appear under superRoot.
func dominatorTree(idom map[string]string) map[string][]string {
	tree := make(map[string][]string, len(idom))
	for node, dom := range idom {
		tree[dom] = append(tree[dom], node)
	}
	return tree
}

// retainedSizes computes, for every element reachable from roots, the total
// bytes of everything it dominates (itself included). Post-order rollup
// over the dominator tree; each element is counted exactly once.
func retainedSizes(nodes map[string]*Node, roots []string) map[string]int64 {
	idom := immediateDominators(nodes, roots)
	tree := dominatorTree(idom)

	retained := make(map[string]int64, len(idom))

	var rollup func(id string) int64
	rollup = func(id string) int64 {
		if size, done := retained[id]; done {
			return size
		}
		var size int64
		if n, ok := nodes[id]; ok {
			size = n.Size
		}
		for _, child := range tree[id] {
			size += rollup(child)
		}
		retained[id] = size
		return size
	}

	for id := range tree {
		if id != superRoot {
			rollup(id)
		}
	}
	for _, child := range tree[superRoot] {
		rollup(child)
	}
	delete(retained, superRoot)
	return retained
}
