package graph

import (
	"context"
	"fmt"
	"sync"
)

// Compile-time assertion: *MemSource satisfies Source.
var _ Source = (*MemSource)(nil)

// MemSource implements Source using Go maps. Thread-safe via sync.RWMutex.
// Exclusive sizes are computed from the dominator tree on first query and
// cached for the lifetime of the source.
type MemSource struct {
	mu      sync.RWMutex
	nodes   map[string]*Node
	order   []string // insertion order, for deterministic enumeration
	program ProgramInfo

	exclusive map[string]int64 // nil until first ExclusiveSize call
}

// NewMemSource returns an initialized MemSource ready for use.
func NewMemSource() *MemSource {
	return &MemSource{
		nodes: make(map[string]*Node),
	}
}

// AddNode stores an element keyed by its id. Re-adding an id replaces the
// previous element and invalidates cached exclusive sizes.
func (m *MemSource) AddNode(_ context.Context, node *Node) error {
	if node.ID == "" {
		return fmt.Errorf("graph: node has empty id")
	}
	if !node.Kind.Valid() {
		return fmt.Errorf("graph: node %q has unknown kind %q", node.ID, node.Kind)
	}
	if node.Size < 0 {
		return fmt.Errorf("graph: node %q has negative size %d", node.ID, node.Size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.nodes[node.ID]; !exists {
		m.order = append(m.order, node.ID)
	}
	m.nodes[node.ID] = node
	m.exclusive = nil
	return nil
}

// SetProgram records the program-level descriptive fields.
func (m *MemSource) SetProgram(_ context.Context, info ProgramInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.program = info
	return nil
}

// NodeByID returns the element for the given id, or nil if not found.
func (m *MemSource) NodeByID(_ context.Context, id string) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[id], nil
}

// Nodes returns every element in insertion order.
func (m *MemSource) Nodes(_ context.Context) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out, nil
}

// NodesOfKind returns all elements of the given kind in insertion order.
func (m *MemSource) NodesOfKind(_ context.Context, kind Kind) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Node
	for _, id := range m.order {
		if n := m.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out, nil
}

// TotalSize returns the program total recorded by SetProgram.
func (m *MemSource) TotalSize(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.program.TotalSize, nil
}

// ExclusiveSize returns the dominator-tree retained size for id. The full
// retained-size table is computed on first call and cached; ids absent from
// the graph report zero.
func (m *MemSource) ExclusiveSize(_ context.Context, id string) (int64, error) {
	m.mu.RLock()
	if m.exclusive != nil {
		size := m.exclusive[id]
		m.mu.RUnlock()
		return size, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exclusive == nil {
		m.exclusive = retainedSizes(m.nodes, m.rootIDs())
	}
	return m.exclusive[id], nil
}

// rootIDs returns the ids of all library elements in insertion order.
// Callers must hold at least a read lock.
func (m *MemSource) rootIDs() []string {
	var roots []string
	for _, id := range m.order {
		if m.nodes[id].Kind == KindLibrary {
			roots = append(roots, id)
		}
	}
	return roots
}

// Program returns a copy of the program-level fields.
func (m *MemSource) Program(_ context.Context) (*ProgramInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info := m.program
	return &info, nil
}

// Stats returns counts of nodes and containment edges by kind.
func (m *MemSource) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &Stats{
		NodeCount: len(m.nodes),
		ByKind:    make(map[Kind]int),
		TotalSize: m.program.TotalSize,
	}
	for _, n := range m.nodes {
		st.ByKind[n.Kind]++
		st.EdgeCount += len(n.Children)
	}
	return st, nil
}

// Close is a no-op for the in-memory source.
func (m *MemSource) Close() error {
	return nil
}
