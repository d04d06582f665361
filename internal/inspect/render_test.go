package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
)

func TestRowCells_KindCoverage(t *testing.T) {
	tests := []struct {
		kind      graph.Kind
		wantCells int
		wantSpan  int
	}{
		{graph.KindFunction, 6, 6},
		{graph.KindClosure, 6, 6},
		{graph.KindConstructor, 6, 6},
		{graph.KindMethod, 6, 6},
		{graph.KindField, 6, 6},
		{graph.KindLibrary, 6, 6},
		{graph.KindClass, 6, 6},
		{graph.KindTypedef, 5, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			n := &graph.Node{ID: "n", Kind: tt.kind, Name: "thing", Size: 10, Type: "int"}
			cells, err := rowCells(n, 25, "1.50%")
			require.NoError(t, err)
			assert.Len(t, cells, tt.wantCells)
			assert.Equal(t, tt.wantSpan, Width(cells))
			assert.Equal(t, string(tt.kind), cells[0].Text)
			assert.Equal(t, "thing", cells[1].Text)
		})
	}
}

func TestRowCells_FunctionFamily(t *testing.T) {
	n := &graph.Node{ID: "fn/1", Kind: graph.KindFunction, Name: "run", Size: 42, Type: "void Function()"}
	cells, err := rowCells(n, 90, "2.25%")
	require.NoError(t, err)

	assert.Equal(t, "fn/1", cells[1].NavTarget, "name cell links to the dependency view")
	assert.Equal(t, "42", cells[2].Text)
	assert.Equal(t, AlignRight, cells[2].Align)
	assert.Equal(t, "90", cells[3].Text)
	assert.Equal(t, AlignRight, cells[3].Align)
	assert.Equal(t, "2.25%", cells[4].Text)
	assert.True(t, cells[5].Pre)
}

func TestRowCells_Library(t *testing.T) {
	n := &graph.Node{ID: "lib", Kind: graph.KindLibrary, Name: "core", Size: 1000}
	cells, err := rowCells(n, 0, "40.00%")
	require.NoError(t, err)

	assert.Empty(t, cells[1].NavTarget, "libraries carry no dependency link")
	assert.Equal(t, "1000", cells[2].Text)
	assert.Empty(t, cells[3].Text)
	assert.Equal(t, "40.00%", cells[4].Text)
	assert.Empty(t, cells[5].Text)
}

func TestRowCells_Class_TypeLabelIsName(t *testing.T) {
	n := &graph.Node{ID: "c", Kind: graph.KindClass, Name: "Widget", Size: 64}
	cells, err := rowCells(n, 0, "0.10%")
	require.NoError(t, err)

	assert.Equal(t, "Widget", cells[5].Text)
	assert.True(t, cells[5].Pre)
}

func TestRowCells_Typedef_ZeroSizes(t *testing.T) {
	n := &graph.Node{ID: "td", Kind: graph.KindTypedef, Name: "Callback", Size: 12}
	cells, err := rowCells(n, 7, "0.50%")
	require.NoError(t, err)

	assert.Equal(t, "0", cells[2].Text)
	assert.Equal(t, "0", cells[3].Text)
	assert.Equal(t, "0.00%", cells[4].Text)
}

func TestRowCells_UnknownKind(t *testing.T) {
	n := &graph.Node{ID: "x", Kind: graph.Kind("mixin"), Name: "x"}
	_, err := rowCells(n, 0, "0.00%")

	var unknown *UnknownKindError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, graph.Kind("mixin"), unknown.Kind)
}
