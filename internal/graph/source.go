package graph

import (
	"context"
	"io"
)

// Source is the interface for the size-graph backend the inspector reads
// from. Implementations: MemSource (report files, testing), KuzuSource
// (persistent indexes). All graph access goes through this interface.
type Source interface {
	io.Closer

	// NodeByID returns the element with the given id, or nil when no such
	// element exists. A nil result for an id listed as somebody's child is
	// a data-integrity fault the caller must surface, not swallow.
	NodeByID(ctx context.Context, id string) (*Node, error)

	// NodesOfKind returns all elements of the given kind in insertion order.
	NodesOfKind(ctx context.Context, kind Kind) ([]*Node, error)

	// TotalSize returns the program's total compiled size in bytes.
	TotalSize(ctx context.Context) (int64, error)

	// ExclusiveSize returns the number of bytes reachable only through the
	// given element: its dominator-tree retained size.
	ExclusiveSize(ctx context.Context, id string) (int64, error)

	// Program returns program-level descriptive fields for the summary panel.
	Program(ctx context.Context) (*ProgramInfo, error)

	// Stats summarizes the loaded graph.
	Stats(ctx context.Context) (*Stats, error)
}
