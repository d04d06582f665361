package inspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// newMaterializer wires a materializer over the given source with a stub view.
func newMaterializer(src graph.Source) (*Materializer, *stubView) {
	view := &stubView{}
	agg := NewAggregator(src, nil)
	return NewMaterializer(src, agg, view, nil), view
}

func TestMaterializer_RootsSeedLibraries(t *testing.T) {
	src := newSource(t, 10000,
		&graph.Node{ID: "lib/a", Kind: graph.KindLibrary, Name: "a", Size: 100},
		&graph.Node{ID: "fn/x", Kind: graph.KindFunction, Name: "x", Size: 10},
		&graph.Node{ID: "lib/b", Kind: graph.KindLibrary, Name: "b", Size: 200},
	)
	m, view := newMaterializer(src)

	roots, err := m.Roots(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "lib/a", roots[0].ID)
	assert.Equal(t, "lib/b", roots[1].ID)
	assert.Equal(t, roots, view.roots)
	require.Len(t, view.cols, 6)
	assert.Equal(t, "Kind", view.cols[0].Title)
}

func TestMaterializer_ZeroTotalIsFatal(t *testing.T) {
	src := newSource(t, 0,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 1},
	)
	m, _ := newMaterializer(src)

	_, err := m.Roots(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total size")
}

func TestMaterializer_ChildrenDeferred(t *testing.T) {
	src := newSource(t, 10000,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 50, Children: []string{"c"}},
		&graph.Node{ID: "c", Kind: graph.KindClass, Name: "C", Size: 30, Children: []string{"m"}},
		&graph.Node{ID: "m", Kind: graph.KindMethod, Name: "m", Size: 20},
	)
	counting := &countingSource{Source: src}
	view := &stubView{}
	m := NewMaterializer(counting, NewAggregator(counting, nil), view, nil)
	ctx := context.Background()

	roots, err := m.Roots(ctx)
	require.NoError(t, err)
	root := roots[0]

	// The class row does not exist yet; only a producer does.
	assert.Equal(t, 1, root.PendingCount())

	classRow, err := root.ExpandNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", classRow.ID)
	assert.Equal(t, 1, classRow.Level)
	assert.Equal(t, 1, classRow.PendingCount(), "grandchild still deferred")
}

func TestMaterializer_PercentageFromTotal(t *testing.T) {
	src := newSource(t, 10000,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 50, Children: []string{"f"}},
		&graph.Node{ID: "f", Kind: graph.KindFunction, Name: "f", Size: 100},
	)
	m, _ := newMaterializer(src)
	ctx := context.Background()

	roots, err := m.Roots(ctx)
	require.NoError(t, err)

	texts := cellTexts(t, roots[0])
	assert.Equal(t, "1.50%", texts[4], "(50+100)/10000")

	fnRow, err := roots[0].ExpandNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.00%", cellTexts(t, fnRow)[4])
}

func TestMaterializer_DanglingChild(t *testing.T) {
	src := newSource(t, 10000,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 10, Children: []string{"ok1", "gone", "ok2"}},
		&graph.Node{ID: "ok1", Kind: graph.KindFunction, Name: "ok1", Size: 1},
		&graph.Node{ID: "ok2", Kind: graph.KindFunction, Name: "ok2", Size: 2},
	)
	m, _ := newMaterializer(src)
	ctx := context.Background()

	// Root aggregation already trips over the broken edge.
	_, err := m.Roots(ctx)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "gone", dangling.ID)
}

func TestMaterializer_DanglingExpansionIsLocal(t *testing.T) {
	// The broken edge sits below an otherwise healthy subtree: the parent
	// materializes, the broken child's expansion fails, its siblings stay
	// reachable.
	src := newSource(t, 10000,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 10, Children: []string{"ok1", "ok2"}},
		&graph.Node{ID: "ok1", Kind: graph.KindFunction, Name: "ok1", Size: 1},
		&graph.Node{ID: "ok2", Kind: graph.KindFunction, Name: "ok2", Size: 2},
	)
	m, _ := newMaterializer(src)
	ctx := context.Background()

	roots, err := m.Roots(ctx)
	require.NoError(t, err)
	root := roots[0]

	// Break the graph after materialization: ok1 gains a child that is
	// never added.
	n, err := src.NodeByID(ctx, "ok1")
	require.NoError(t, err)
	n.Children = []string{"gone"}

	ok1, err := root.ExpandNext(ctx)
	require.NoError(t, err)
	_, err = ok1.ExpandNext(ctx)
	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)

	// ok2 is unaffected.
	ok2, err := root.ExpandNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok2", ok2.ID)
}

func TestMaterializer_RootFailureSparesSiblings(t *testing.T) {
	src := newSource(t, 10000,
		&graph.Node{ID: "lib/bad", Kind: graph.KindLibrary, Name: "bad", Size: 5, Children: []string{"gone"}},
		&graph.Node{ID: "lib/good", Kind: graph.KindLibrary, Name: "good", Size: 7},
	)
	m, view := newMaterializer(src)

	roots, err := m.Roots(context.Background())
	require.Error(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "lib/good", roots[0].ID)
	assert.Equal(t, roots, view.roots, "only healthy roots reach the view")
}

func TestMaterializer_SharedNodeDistinctRows(t *testing.T) {
	// The same element under two parents becomes two row instances; the
	// aggregator memo is the only shared state.
	src := newSource(t, 10000,
		&graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "l", Size: 1, Children: []string{"a", "b"}},
		&graph.Node{ID: "a", Kind: graph.KindClass, Name: "a", Size: 2, Children: []string{"shared"}},
		&graph.Node{ID: "b", Kind: graph.KindClass, Name: "b", Size: 3, Children: []string{"shared"}},
		&graph.Node{ID: "shared", Kind: graph.KindFunction, Name: "s", Size: 4},
	)
	m, _ := newMaterializer(src)
	ctx := context.Background()

	roots, err := m.Roots(ctx)
	require.NoError(t, err)
	root := roots[0]
	require.NoError(t, root.Expand(ctx))

	structural := structuralChildren(root)
	require.Len(t, structural, 2)
	a, b := structural[0], structural[1]
	require.NoError(t, a.Expand(ctx))
	require.NoError(t, b.Expand(ctx))

	sharedUnderA := structuralChildren(a)[0]
	sharedUnderB := structuralChildren(b)[0]
	assert.Equal(t, "shared", sharedUnderA.ID)
	assert.Equal(t, "shared", sharedUnderB.ID)
	assert.NotSame(t, sharedUnderA, sharedUnderB)
}
