package mcptools

import "github.com/dusk-indust/sizelens/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// LoadReportInput is the input for the load_report MCP tool.
type LoadReportInput struct {
	Path string `json:"path" jsonschema:"the absolute path to a size report JSON file"`
}

// LoadReportOutput is the result of the load_report MCP tool.
type LoadReportOutput struct {
	Program graph.ProgramInfo `json:"program"`
	Stats   graph.Stats       `json:"stats"`
}

// ListLibrariesInput is the input for the list_libraries MCP tool.
type ListLibrariesInput struct{}

// LibraryEntry is one top-level library with its size attribution.
type LibraryEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Cumulative int64  `json:"cumulative"`
	Percent    string `json:"percent"`
}

// ListLibrariesOutput is the result of the list_libraries MCP tool.
type ListLibrariesOutput struct {
	Libraries []LibraryEntry `json:"libraries"`
	TotalSize int64          `json:"totalSize"`
}

// QueryElementsInput is the input for the query_elements MCP tool.
type QueryElementsInput struct {
	Query string `json:"query" jsonschema:"search query for element names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by element kind: library, class, method, constructor, closure, function, field, typedef"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// ElementEntry is one matched element.
type ElementEntry struct {
	ID   string     `json:"id"`
	Kind graph.Kind `json:"kind"`
	Name string     `json:"name"`
	Size int64      `json:"size"`
}

// QueryElementsOutput is the result of the query_elements MCP tool.
type QueryElementsOutput struct {
	Elements []ElementEntry `json:"elements"`
	Total    int            `json:"total"`
}

// ExpandElementInput is the input for the expand_element MCP tool.
type ExpandElementInput struct {
	ID string `json:"id" jsonschema:"element id to expand"`
}

// ChildEntry is one direct child of an expanded element.
type ChildEntry struct {
	ID         string     `json:"id"`
	Kind       graph.Kind `json:"kind"`
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	Cumulative int64      `json:"cumulative"`
	Exclusive  int64      `json:"exclusive"`
	Percent    string     `json:"percent"`
}

// ExpandElementOutput is the result of the expand_element MCP tool.
type ExpandElementOutput struct {
	Element  ElementEntry `json:"element"`
	Children []ChildEntry `json:"children"`
}

// ElementMetadataInput is the input for the element_metadata MCP tool.
type ElementMetadataInput struct {
	ID string `json:"id" jsonschema:"element id to describe"`
}

// ElementMetadataOutput is the result of the element_metadata MCP tool.
type ElementMetadataOutput struct {
	Element graph.Node `json:"element"`
}

// ExportFunctionNamesInput is the input for the export_function_names MCP tool.
type ExportFunctionNamesInput struct{}

// ExportFunctionNamesOutput is the result of the export_function_names MCP tool.
type ExportFunctionNamesOutput struct {
	Names string `json:"names"`
	Count int    `json:"count"`
}
