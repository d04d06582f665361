package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/report"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestService creates a service over a small seeded graph.
func newTestService(t *testing.T) *SizeIntelService {
	t.Helper()
	ctx := context.Background()
	src := graph.NewMemSource()

	nodes := []*graph.Node{
		{ID: "lib.core", Kind: graph.KindLibrary, Name: "core", Size: 100, Children: []string{"cls.app", "fn.main"}},
		{ID: "cls.app", Kind: graph.KindClass, Name: "App", Size: 40, Children: []string{"m.run"}},
		{ID: "m.run", Kind: graph.KindMethod, Name: "run", Size: 25, SideEffects: "none", Code: "run:\n  ret"},
		{ID: "fn.main", Kind: graph.KindFunction, Name: "main", Size: 30},
		{ID: "fn.help", Kind: graph.KindFunction, Name: "helper", Size: 5},
	}
	for _, n := range nodes {
		require.NoError(t, src.AddNode(ctx, n))
	}
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "app", TotalSize: 1000}))

	return NewSizeIntelService(src)
}

// writeReportFile encodes a minimal report to a temp file and returns its path.
func writeReportFile(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	src := graph.NewMemSource()
	require.NoError(t, src.AddNode(ctx, &graph.Node{
		ID: "lib", Kind: graph.KindLibrary, Name: "main", Size: 10,
	}))
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "fromfile", TotalSize: 50}))

	path := filepath.Join(t.TempDir(), "report.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, report.Encode(ctx, f, src))
	require.NoError(t, f.Close())
	return path
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestLoadReport(t *testing.T) {
	svc := NewSizeIntelService(nil)

	_, _, err := svc.ListLibraries(context.Background(), nil, ListLibrariesInput{})
	require.Error(t, err, "tools need a loaded report")

	_, out, err := svc.LoadReport(context.Background(), nil, LoadReportInput{Path: writeReportFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "fromfile", out.Program.Name)
	assert.Equal(t, 1, out.Stats.NodeCount)

	_, libs, err := svc.ListLibraries(context.Background(), nil, ListLibrariesInput{})
	require.NoError(t, err)
	assert.Len(t, libs.Libraries, 1)
}

func TestLoadReport_MissingPath(t *testing.T) {
	svc := NewSizeIntelService(nil)
	_, _, err := svc.LoadReport(context.Background(), nil, LoadReportInput{})
	assert.ErrorContains(t, err, "path is required")
}

func TestListLibraries(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.ListLibraries(context.Background(), nil, ListLibrariesInput{})
	require.NoError(t, err)

	require.Len(t, out.Libraries, 1)
	lib := out.Libraries[0]
	assert.Equal(t, "lib.core", lib.ID)
	assert.Equal(t, int64(100), lib.Size)
	// 100 + 40 + 25 + 30.
	assert.Equal(t, int64(195), lib.Cumulative)
	assert.Equal(t, "19.50%", lib.Percent)
	assert.Equal(t, int64(1000), out.TotalSize)
}

func TestQueryElements(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, out, err := svc.QueryElements(ctx, nil, QueryElementsInput{Query: "main"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "fn.main", out.Elements[0].ID)

	_, out, err = svc.QueryElements(ctx, nil, QueryElementsInput{Kind: "function"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)

	_, out, err = svc.QueryElements(ctx, nil, QueryElementsInput{Query: "a", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Elements, 1)
	assert.Greater(t, out.Total, 1)

	_, _, err = svc.QueryElements(ctx, nil, QueryElementsInput{Kind: "mixin"})
	assert.ErrorContains(t, err, "unknown kind")
}

func TestExpandElement(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.ExpandElement(context.Background(), nil, ExpandElementInput{ID: "cls.app"})
	require.NoError(t, err)

	assert.Equal(t, "App", out.Element.Name)
	require.Len(t, out.Children, 1)
	child := out.Children[0]
	assert.Equal(t, "m.run", child.ID)
	assert.Equal(t, int64(25), child.Cumulative)
	assert.Equal(t, "2.50%", child.Percent)
}

func TestExpandElement_SkipsDanglingChild(t *testing.T) {
	ctx := context.Background()
	src := graph.NewMemSource()
	require.NoError(t, src.AddNode(ctx, &graph.Node{
		ID: "cls", Kind: graph.KindClass, Name: "C", Size: 10, Children: []string{"gone", "fld"},
	}))
	require.NoError(t, src.AddNode(ctx, &graph.Node{
		ID: "fld", Kind: graph.KindField, Name: "f", Size: 2,
	}))
	require.NoError(t, src.SetProgram(ctx, graph.ProgramInfo{Name: "x", TotalSize: 100}))
	svc := NewSizeIntelService(src)

	_, out, err := svc.ExpandElement(ctx, nil, ExpandElementInput{ID: "cls"})
	require.NoError(t, err)
	require.Len(t, out.Children, 1)
	assert.Equal(t, "fld", out.Children[0].ID)
}

func TestExpandElement_Unknown(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.ExpandElement(context.Background(), nil, ExpandElementInput{ID: "nope"})
	assert.ErrorContains(t, err, `no element "nope"`)
}

func TestElementMetadata(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.ElementMetadata(context.Background(), nil, ElementMetadataInput{ID: "m.run"})
	require.NoError(t, err)
	assert.Equal(t, "none", out.Element.SideEffects)
	assert.Contains(t, out.Element.Code, "ret")
}

func TestExportFunctionNames(t *testing.T) {
	svc := newTestService(t)

	_, out, err := svc.ExportFunctionNames(context.Background(), nil, ExportFunctionNamesInput{})
	require.NoError(t, err)
	assert.Equal(t, "main, helper", out.Names)
	assert.Equal(t, 2, out.Count)
}
