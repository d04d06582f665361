package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/inspect"
)

type nullView struct{}

func (nullView) SetColumns([]inspect.Column) {}
func (nullView) AddRoot(*inspect.LazyNode)   {}

func testRoots(t *testing.T) ([]*inspect.LazyNode, *graph.MemSource) {
	t.Helper()
	ctx := context.Background()
	src := graph.NewMemSource()
	nodes := []*graph.Node{
		{ID: "lib", Kind: graph.KindLibrary, Name: "main", Size: 100, Children: []string{"c"}},
		{ID: "c", Kind: graph.KindClass, Name: "App", Size: 50, Children: []string{"m"}},
		{ID: "m", Kind: graph.KindMethod, Name: "build", Size: 25},
		{ID: "f1", Kind: graph.KindFunction, Name: "start", Size: 10},
		{ID: "f2", Kind: graph.KindFunction, Name: "stop", Size: 10},
	}
	for _, n := range nodes {
		require.NoError(t, src.AddNode(ctx, n))
	}
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "app", TotalSize: 1000}))

	m := inspect.NewMaterializer(src, inspect.NewAggregator(src, nil), nullView{}, nil)
	roots, err := m.Roots(ctx)
	require.NoError(t, err)
	return roots, src
}

func TestFunctionNames(t *testing.T) {
	_, src := testRoots(t)
	names, err := FunctionNames(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "start, stop", names)
}

func TestRows_DepthLimit(t *testing.T) {
	roots, _ := testRoots(t)
	ctx := context.Background()

	rows, err := Rows(ctx, roots, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Depth 1: the class row appears, its method does not.
	var class *Row
	for i := range rows[0].Children {
		if rows[0].Children[i].ID == "c" {
			class = &rows[0].Children[i]
		}
	}
	require.NotNil(t, class, "class row expanded at depth 1")
	for _, child := range class.Children {
		assert.Empty(t, child.ID, "only metadata rows below the depth limit")
	}
}

func TestWriteText(t *testing.T) {
	roots, _ := testRoots(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(context.Background(), &buf, roots, 2))

	out := buf.String()
	assert.Contains(t, out, "library  main")
	assert.Contains(t, out, "  class  App")
	assert.Contains(t, out, "build")
}

func TestWriteJSON(t *testing.T) {
	roots, _ := testRoots(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(context.Background(), &buf, roots, 1))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "["))
	assert.Contains(t, out, `"id": "lib"`)
	assert.Contains(t, out, `"cells"`)
}
