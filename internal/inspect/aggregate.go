package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// Aggregator computes cumulative sizes over the containment graph: an
// element's direct bytes plus everything reachable from it, each reachable
// element counted once per computation. Results are memoized in a cache
// owned by the Aggregator rather than written onto the nodes, so the
// source stays read-only.
//
// The Aggregator is not safe for concurrent use; construction and
// expansion run on a single goroutine (the view's event loop).
type Aggregator struct {
	src graph.Source
	log *slog.Logger

	sizes       map[string]int64
	cycleGuards int64
}

// NewAggregator returns an Aggregator reading from src. A nil logger
// disables cycle-guard logging.
func NewAggregator(src graph.Source, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		src:   src,
		log:   logger,
		sizes: make(map[string]int64),
	}
}

// Compute returns the cumulative size of the element with the given id.
//
// Unforced, a memoized value is returned as-is and a computed value is
// stored permanently. Forced, the element's own aggregation step is redone
// from its children (which still resolve through the memo) and the result
// is not stored; this isolates "how much of my declared size has no
// accounted child" for the scaffolding row without disturbing the cache.
func (a *Aggregator) Compute(ctx context.Context, id string, force bool) (int64, error) {
	if !force {
		if size, ok := a.sizes[id]; ok {
			return size, nil
		}
	}

	n, err := a.fetch(ctx, id)
	if err != nil {
		return 0, err
	}

	visited := map[string]bool{id: true}
	size := n.Size
	for _, child := range n.Children {
		childSize, err := a.compute(ctx, child, visited)
		if err != nil {
			return 0, err
		}
		size += childSize
	}

	if !force {
		a.sizes[id] = size
	}
	return size, nil
}

// compute is the recursive step. The visited set spans the whole top-level
// computation: a repeated id contributes zero, which both terminates cycles
// and keeps shared descendants from being counted twice within one rollup.
func (a *Aggregator) compute(ctx context.Context, id string, visited map[string]bool) (int64, error) {
	if visited[id] {
		a.cycleGuards++
		a.log.Debug("cycle guard triggered", "id", id)
		return 0, nil
	}
	visited[id] = true

	if size, ok := a.sizes[id]; ok {
		return size, nil
	}

	n, err := a.fetch(ctx, id)
	if err != nil {
		return 0, err
	}

	size := n.Size
	for _, child := range n.Children {
		childSize, err := a.compute(ctx, child, visited)
		if err != nil {
			return 0, err
		}
		size += childSize
	}
	a.sizes[id] = size
	return size, nil
}

// Scaffolding returns the portion of the element's direct size not
// attributable to any enumerated child: directSize minus the unforced
// rollup of its children.
func (a *Aggregator) Scaffolding(ctx context.Context, n *graph.Node) (int64, error) {
	forced, err := a.Compute(ctx, n.ID, true)
	if err != nil {
		return 0, err
	}
	childSum := forced - n.Size
	return n.Size - childSum, nil
}

// CycleGuardCount reports how many times a repeated element was truncated
// to zero during aggregation. Observable, not an error.
func (a *Aggregator) CycleGuardCount() int64 {
	return a.cycleGuards
}

func (a *Aggregator) fetch(ctx context.Context, id string) (*graph.Node, error) {
	n, err := a.src.NodeByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("inspect: lookup %q: %w", id, err)
	}
	if n == nil {
		return nil, &DanglingReferenceError{ID: id}
	}
	return n, nil
}

// FormatPercent renders size as a share of total, two decimals with a
// trailing percent sign ("1.50%"). total must be positive.
func FormatPercent(size, total int64) string {
	return strconv.FormatFloat(100*float64(size)/float64(total), 'f', 2, 64) + "%"
}
