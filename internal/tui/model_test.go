package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
)

func testSource(t *testing.T) *graph.MemSource {
	t.Helper()
	ctx := context.Background()
	src := graph.NewMemSource()
	nodes := []*graph.Node{
		{ID: "lib", Kind: graph.KindLibrary, Name: "main", Size: 100, Children: []string{"small", "big"}},
		{ID: "small", Kind: graph.KindFunction, Name: "zeta", Size: 10, Children: []string{"shared"}},
		{ID: "big", Kind: graph.KindFunction, Name: "alpha", Size: 50},
		{ID: "shared", Kind: graph.KindClosure, Name: "inner", Size: 5},
	}
	for _, n := range nodes {
		require.NoError(t, src.AddNode(ctx, n))
	}
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "app", TotalSize: 1000}))
	return src
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_SeedsRootsCollapsed(t *testing.T) {
	m, err := New(testSource(t), nil)
	require.NoError(t, err)

	require.Len(t, m.roots, 1)
	// One visible row per root; children stay behind producers.
	assert.Len(t, m.visible, 1)
	assert.Greater(t, m.roots[0].PendingCount(), 0)
}

func TestToggle_ExpandsAndCollapses(t *testing.T) {
	m, err := New(testSource(t), nil)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m.Update(keyMsg("enter"))
	// Library row plus its scaffolding metadata row and two function rows.
	assert.Equal(t, 4, len(m.visible))
	assert.Zero(t, m.roots[0].PendingCount())

	m.Update(keyMsg("enter"))
	assert.Equal(t, 1, len(m.visible))
}

func TestSort_BySizeMovesLargestFirst(t *testing.T) {
	m, err := New(testSource(t), nil)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(keyMsg("enter"))

	m.Update(keyMsg("s")) // byGraph -> bySize

	children := m.roots[0].Children()
	var structural []string
	for _, c := range children {
		if c.ID != "" {
			structural = append(structural, c.ID)
		}
	}
	require.Equal(t, []string{"big", "small"}, structural)
	// Metadata rows stay pinned ahead of structural rows.
	assert.Empty(t, children[0].ID)
}

func TestShowDependencies(t *testing.T) {
	m, err := New(testSource(t), nil)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m.ShowDependencies("small")
	assert.True(t, m.showDeps)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showDeps)
}

func TestReload_SwapsSource(t *testing.T) {
	m, err := New(testSource(t), nil)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(keyMsg("enter"))
	require.Greater(t, len(m.visible), 1)

	ctx := context.Background()
	next := graph.NewMemSource()
	require.NoError(t, next.AddNode(ctx, &graph.Node{
		ID: "only", Kind: graph.KindLibrary, Name: "replacement", Size: 1,
	}))
	require.NoError(t, next.SetProgram(ctx, graph.ProgramInfo{Name: "app2", TotalSize: 10}))

	m.Update(ReloadMsg{Source: next})
	assert.Len(t, m.visible, 1)
	assert.Equal(t, "app2", m.program.Name)
}
