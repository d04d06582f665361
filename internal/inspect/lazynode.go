package inspect

import (
	"context"
	"sort"
)

// RenderFunc produces the display cells for one row. It is re-invoked on
// every render, so primary rows reflect the current node state while
// metadata rows close over a snapshot taken at build time.
type RenderFunc func() ([]Cell, error)

// Producer is a deferred child: invoking it materializes one child row.
// Producers are registered in graph child-list order and consumed in that
// order, exactly once each.
type Producer func(ctx context.Context) (*LazyNode, error)

// LazyNode is one row of the tree. Its structural children stay deferred
// behind Producers until something asks for them, so a graph with millions
// of reachable elements never pays full traversal cost up front.
//
// The same element id may back several LazyNodes when the graph shares
// descendants across parents; only the aggregator's size memo is shared.
type LazyNode struct {
	ID       string // backing element id, empty for synthetic rows
	Level    int    // display depth
	Render   RenderFunc
	Sortable bool // false for metadata rows
	Priority int  // orders non-sortable rows among themselves; code rows use -1

	children []*LazyNode
	pending  []Producer
}

// NewLazyNode returns a sortable row at the given depth.
func NewLazyNode(id string, level int, render RenderFunc) *LazyNode {
	return &LazyNode{ID: id, Level: level, Render: render, Sortable: true}
}

// AddChild appends an already-materialized child row.
func (n *LazyNode) AddChild(child *LazyNode) {
	n.children = append(n.children, child)
}

// Defer registers a pending child producer.
func (n *LazyNode) Defer(p Producer) {
	n.pending = append(n.pending, p)
}

// Children returns the materialized children in order.
func (n *LazyNode) Children() []*LazyNode {
	return n.children
}

// PendingCount returns the number of producers not yet invoked.
func (n *LazyNode) PendingCount() int {
	return len(n.pending)
}

// ExpandNext consumes the next pending producer and appends its row. The
// producer is removed before it runs: invoked once, success or failure,
// so a retry can never duplicate the row. With nothing pending it returns
// (nil, nil).
func (n *LazyNode) ExpandNext(ctx context.Context) (*LazyNode, error) {
	if len(n.pending) == 0 {
		return nil, nil
	}
	p := n.pending[0]
	n.pending = n.pending[1:]

	child, err := p(ctx)
	if err != nil {
		return nil, err
	}
	n.children = append(n.children, child)
	return child, nil
}

// Expand drains all pending producers in order. On error the failed
// producer is consumed but the rest stay pending and invokable, so one
// broken child does not take its siblings down.
func (n *LazyNode) Expand(ctx context.Context) error {
	for len(n.pending) > 0 {
		if _, err := n.ExpandNext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SortRows orders a row set for display: non-sortable metadata rows keep
// their fixed relative order (by Priority, then original position) ahead
// of the sortable rows, which are ordered by less. The core never calls
// this itself; ordering belongs to the view.
func SortRows(rows []*LazyNode, less func(a, b *LazyNode) bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case !a.Sortable && !b.Sortable:
			return a.Priority < b.Priority
		case !a.Sortable:
			return true
		case !b.Sortable:
			return false
		default:
			return less(a, b)
		}
	})
}
