package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// Materializer turns graph elements into LazyNode rows, one construction
// per element per occurrence. Metadata rows are attached eagerly (cheap
// and bounded); structural children are deferred behind producers so a
// subtree is only built when a view asks for it.
type Materializer struct {
	src   graph.Source
	agg   *Aggregator
	view  TreeView
	log   *slog.Logger
	total int64
}

// NewMaterializer wires a materializer to its source and target view.
// A nil logger disables logging.
func NewMaterializer(src graph.Source, agg *Aggregator, view TreeView, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{src: src, agg: agg, view: view, log: logger}
}

// Roots seeds the view: configures the columns, then materializes every
// library element as a top-level row. A root that fails to build is
// skipped without touching its already-built siblings; the failures come
// back joined after all roots were attempted.
func (m *Materializer) Roots(ctx context.Context) ([]*LazyNode, error) {
	total, err := m.src.TotalSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspect: total size: %w", err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("inspect: program total size must be positive, got %d", total)
	}
	m.total = total

	m.view.SetColumns(Columns())

	libs, err := m.src.NodesOfKind(ctx, graph.KindLibrary)
	if err != nil {
		return nil, fmt.Errorf("inspect: enumerate libraries: %w", err)
	}

	var roots []*LazyNode
	var failures []error
	for _, lib := range libs {
		root, err := m.Materialize(ctx, lib.ID, 0)
		if err != nil {
			m.log.Warn("root materialization failed", "id", lib.ID, "error", err)
			failures = append(failures, fmt.Errorf("root %q: %w", lib.ID, err))
			continue
		}
		m.view.AddRoot(root)
		roots = append(roots, root)
	}
	return roots, errors.Join(failures...)
}

// Materialize constructs the row for one element: resolve it, ensure its
// cumulative size and percentage, attach metadata rows, and register one
// deferred producer per structural child.
func (m *Materializer) Materialize(ctx context.Context, id string, level int) (*LazyNode, error) {
	n, err := m.src.NodeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect: lookup %q: %w", id, err)
	}
	if n == nil {
		return nil, &DanglingReferenceError{ID: id}
	}

	size, err := m.agg.Compute(ctx, id, false)
	if err != nil {
		return nil, err
	}
	pct := FormatPercent(size, m.total)

	var excl int64
	if n.Kind != graph.KindLibrary && n.Kind != graph.KindTypedef {
		if excl, err = m.src.ExclusiveSize(ctx, id); err != nil {
			return nil, fmt.Errorf("inspect: exclusive size of %q: %w", id, err)
		}
	}

	// Dispatch once up front so a schema mismatch fails the construction,
	// not a later render.
	if _, err := rowCells(n, excl, pct); err != nil {
		return nil, err
	}

	row := NewLazyNode(id, level, func() ([]Cell, error) {
		return rowCells(n, excl, pct)
	})

	meta, err := m.metadataRows(ctx, n, level+1)
	if err != nil {
		return nil, err
	}
	for _, mr := range meta {
		row.AddChild(mr)
	}

	for _, childID := range n.Children {
		row.Defer(func(ctx context.Context) (*LazyNode, error) {
			return m.Materialize(ctx, childID, level+1)
		})
	}

	return row, nil
}
