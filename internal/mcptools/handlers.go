package mcptools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/sizelens/internal/export"
	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/inspect"
	"github.com/dusk-indust/sizelens/internal/report"
)

// SizeIntelService holds the loaded size graph used by MCP tool handlers.
// load_report swaps the source at runtime, so access goes through a lock.
type SizeIntelService struct {
	mu  sync.RWMutex
	src graph.Source
	agg *inspect.Aggregator
}

// NewSizeIntelService creates a SizeIntelService. src may be nil when no
// report has been loaded yet.
func NewSizeIntelService(src graph.Source) *SizeIntelService {
	s := &SizeIntelService{}
	if src != nil {
		s.swap(src)
	}
	return s
}

// Reload makes src the active graph. The report watcher calls this when
// the file on disk changes.
func (s *SizeIntelService) Reload(src graph.Source) {
	s.swap(src)
}

func (s *SizeIntelService) swap(src graph.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src = src
	s.agg = inspect.NewAggregator(src, nil)
}

func (s *SizeIntelService) source() (graph.Source, *inspect.Aggregator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.src == nil {
		return nil, nil, fmt.Errorf("no report loaded; call load_report first")
	}
	return s.src, s.agg, nil
}

// LoadReport loads a size report file and makes it the active graph.
func (s *SizeIntelService) LoadReport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadReportInput,
) (*mcp.CallToolResult, LoadReportOutput, error) {
	if input.Path == "" {
		return nil, LoadReportOutput{}, fmt.Errorf("path is required")
	}

	src, err := report.LoadFile(ctx, input.Path)
	if err != nil {
		return nil, LoadReportOutput{}, fmt.Errorf("load report: %w", err)
	}
	s.swap(src)

	prog, err := src.Program(ctx)
	if err != nil {
		return nil, LoadReportOutput{}, fmt.Errorf("program info: %w", err)
	}
	stats, err := src.Stats(ctx)
	if err != nil {
		return nil, LoadReportOutput{}, fmt.Errorf("stats: %w", err)
	}

	return nil, LoadReportOutput{Program: *prog, Stats: *stats}, nil
}

// ListLibraries returns the top-level libraries with cumulative sizes.
func (s *SizeIntelService) ListLibraries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListLibrariesInput,
) (*mcp.CallToolResult, ListLibrariesOutput, error) {
	src, agg, err := s.source()
	if err != nil {
		return nil, ListLibrariesOutput{}, err
	}

	total, err := src.TotalSize(ctx)
	if err != nil {
		return nil, ListLibrariesOutput{}, fmt.Errorf("total size: %w", err)
	}

	libs, err := src.NodesOfKind(ctx, graph.KindLibrary)
	if err != nil {
		return nil, ListLibrariesOutput{}, fmt.Errorf("list libraries: %w", err)
	}

	out := ListLibrariesOutput{TotalSize: total}
	for _, lib := range libs {
		cumulative, err := agg.Compute(ctx, lib.ID, false)
		if err != nil {
			return nil, ListLibrariesOutput{}, fmt.Errorf("aggregate %s: %w", lib.ID, err)
		}
		out.Libraries = append(out.Libraries, LibraryEntry{
			ID:         lib.ID,
			Name:       lib.Name,
			Size:       lib.Size,
			Cumulative: cumulative,
			Percent:    inspect.FormatPercent(cumulative, total),
		})
	}

	return nil, out, nil
}

// QueryElements searches elements by name substring match.
func (s *SizeIntelService) QueryElements(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryElementsInput,
) (*mcp.CallToolResult, QueryElementsOutput, error) {
	src, _, err := s.source()
	if err != nil {
		return nil, QueryElementsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	kinds := graph.Kinds
	if input.Kind != "" {
		kind := graph.Kind(strings.ToLower(input.Kind))
		if !kind.Valid() {
			return nil, QueryElementsOutput{}, fmt.Errorf("unknown kind %q", input.Kind)
		}
		kinds = []graph.Kind{kind}
	}

	query := strings.ToLower(input.Query)
	var out QueryElementsOutput
	for _, kind := range kinds {
		nodes, err := src.NodesOfKind(ctx, kind)
		if err != nil {
			return nil, QueryElementsOutput{}, fmt.Errorf("query %s: %w", kind, err)
		}
		for _, n := range nodes {
			if query != "" && !strings.Contains(strings.ToLower(n.Name), query) {
				continue
			}
			out.Total++
			if len(out.Elements) < limit {
				out.Elements = append(out.Elements, ElementEntry{
					ID: n.ID, Kind: n.Kind, Name: n.Name, Size: n.Size,
				})
			}
		}
	}

	return nil, out, nil
}

// ExpandElement returns the direct children of an element with their size
// attributions.
func (s *SizeIntelService) ExpandElement(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExpandElementInput,
) (*mcp.CallToolResult, ExpandElementOutput, error) {
	if input.ID == "" {
		return nil, ExpandElementOutput{}, fmt.Errorf("id is required")
	}

	src, agg, err := s.source()
	if err != nil {
		return nil, ExpandElementOutput{}, err
	}

	n, err := src.NodeByID(ctx, input.ID)
	if err != nil {
		return nil, ExpandElementOutput{}, fmt.Errorf("lookup %s: %w", input.ID, err)
	}
	if n == nil {
		return nil, ExpandElementOutput{}, fmt.Errorf("no element %q", input.ID)
	}

	total, err := src.TotalSize(ctx)
	if err != nil {
		return nil, ExpandElementOutput{}, fmt.Errorf("total size: %w", err)
	}

	out := ExpandElementOutput{
		Element: ElementEntry{ID: n.ID, Kind: n.Kind, Name: n.Name, Size: n.Size},
	}
	for _, childID := range n.Children {
		child, err := src.NodeByID(ctx, childID)
		if err != nil {
			return nil, ExpandElementOutput{}, fmt.Errorf("lookup %s: %w", childID, err)
		}
		if child == nil {
			continue // dangling reference, skip rather than fail the expansion
		}
		cumulative, err := agg.Compute(ctx, child.ID, false)
		if err != nil {
			return nil, ExpandElementOutput{}, fmt.Errorf("aggregate %s: %w", child.ID, err)
		}
		exclusive, err := src.ExclusiveSize(ctx, child.ID)
		if err != nil {
			return nil, ExpandElementOutput{}, fmt.Errorf("exclusive %s: %w", child.ID, err)
		}
		out.Children = append(out.Children, ChildEntry{
			ID:         child.ID,
			Kind:       child.Kind,
			Name:       child.Name,
			Size:       child.Size,
			Cumulative: cumulative,
			Exclusive:  exclusive,
			Percent:    inspect.FormatPercent(cumulative, total),
		})
	}

	return nil, out, nil
}

// ElementMetadata returns the full attribute set of an element.
func (s *SizeIntelService) ElementMetadata(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ElementMetadataInput,
) (*mcp.CallToolResult, ElementMetadataOutput, error) {
	if input.ID == "" {
		return nil, ElementMetadataOutput{}, fmt.Errorf("id is required")
	}

	src, _, err := s.source()
	if err != nil {
		return nil, ElementMetadataOutput{}, err
	}

	n, err := src.NodeByID(ctx, input.ID)
	if err != nil {
		return nil, ElementMetadataOutput{}, fmt.Errorf("lookup %s: %w", input.ID, err)
	}
	if n == nil {
		return nil, ElementMetadataOutput{}, fmt.Errorf("no element %q", input.ID)
	}

	return nil, ElementMetadataOutput{Element: *n}, nil
}

// ExportFunctionNames returns every function name as one comma-joined string.
func (s *SizeIntelService) ExportFunctionNames(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ExportFunctionNamesInput,
) (*mcp.CallToolResult, ExportFunctionNamesOutput, error) {
	src, _, err := s.source()
	if err != nil {
		return nil, ExportFunctionNamesOutput{}, err
	}

	names, err := export.FunctionNames(ctx, src)
	if err != nil {
		return nil, ExportFunctionNamesOutput{}, fmt.Errorf("export names: %w", err)
	}

	count := 0
	if names != "" {
		count = strings.Count(names, ", ") + 1
	}

	return nil, ExportFunctionNamesOutput{Names: names, Count: count}, nil
}
