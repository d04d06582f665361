package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewSizeIntelMCPServer creates an MCP server with all 6 size intelligence
// tools registered.
func NewSizeIntelMCPServer(svc *SizeIntelService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sizelens-sizeintel",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "load_report",
		Description: "Load a compiler size report from a JSON file and make it the active graph. Returns program info and graph statistics.",
	}, svc.LoadReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_libraries",
		Description: "List the top-level libraries of the loaded program with direct, cumulative and percentage size attribution.",
	}, svc.ListLibraries)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_elements",
		Description: "Search program elements by name substring match. Optionally filter by element kind and limit results.",
	}, svc.QueryElements)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "expand_element",
		Description: "Return the direct children of an element with direct, cumulative, exclusive and percentage sizes. Dangling child references are skipped.",
	}, svc.ExpandElement)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "element_metadata",
		Description: "Return the full attribute set of one element: side effects, modifiers, declared and inferred types, parameters and compiled code.",
	}, svc.ElementMetadata)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_function_names",
		Description: "Return every function name in the loaded program as one comma-joined string.",
	}, svc.ExportFunctionNames)

	return server
}

// RunMCPServer starts an HTTP server exposing the size intelligence MCP tools.
func RunMCPServer(ctx context.Context, svc *SizeIntelService, addr string) error {
	server := NewSizeIntelMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
