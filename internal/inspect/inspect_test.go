package inspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// countingSource wraps a Source and counts NodeByID calls, to observe
// whether a memo hit avoided recursive work.
type countingSource struct {
	graph.Source
	fetches int
}

func (c *countingSource) NodeByID(ctx context.Context, id string) (*graph.Node, error) {
	c.fetches++
	return c.Source.NodeByID(ctx, id)
}

// stubView records what the materializer hands to the view.
type stubView struct {
	cols  []Column
	roots []*LazyNode
}

func (v *stubView) SetColumns(cols []Column) { v.cols = cols }
func (v *stubView) AddRoot(root *LazyNode)   { v.roots = append(v.roots, root) }

// newSource builds a MemSource with the given total and nodes.
func newSource(t *testing.T, total int64, nodes ...*graph.Node) *graph.MemSource {
	t.Helper()
	ctx := context.Background()
	src := graph.NewMemSource()
	for _, n := range nodes {
		require.NoError(t, src.AddNode(ctx, n))
	}
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "app", TotalSize: total}))
	return src
}

// structuralChildren filters out metadata rows, which carry no element id.
func structuralChildren(row *LazyNode) []*LazyNode {
	var out []*LazyNode
	for _, c := range row.Children() {
		if c.ID != "" {
			out = append(out, c)
		}
	}
	return out
}

// cellTexts flattens a row's rendered cells to their text content.
func cellTexts(t *testing.T, row *LazyNode) []string {
	t.Helper()
	cells, err := row.Render()
	require.NoError(t, err)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}
