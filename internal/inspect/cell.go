package inspect

// Align controls horizontal alignment of a cell's content.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Cell is one display cell of a row. Span defaults to 1 when zero.
type Cell struct {
	Text      string
	Align     Align
	Span      int
	Pre       bool   // preformatted: render in monospace, keep whitespace
	NavTarget string // element id for dependency navigation, empty for none
}

// span returns the effective column span.
func (c Cell) span() int {
	if c.Span <= 0 {
		return 1
	}
	return c.Span
}

// Width returns the total column span of a cell sequence.
func Width(cells []Cell) int {
	var w int
	for _, c := range cells {
		w += c.span()
	}
	return w
}

// Column describes one column of the tree table.
type Column struct {
	Title string
	Help  string
	Width int // width hint in characters, 0 for flexible
}

// Columns returns the six standard columns of the size breakdown table.
func Columns() []Column {
	return []Column{
		{Title: "Kind", Help: "element kind", Width: 12},
		{Title: "Name", Help: "element name; code elements link to their dependency view"},
		{Title: "Bytes", Help: "bytes attributed directly to this element", Width: 12},
		{Title: "Retained", Help: "bytes reachable only through this element", Width: 12},
		{Title: "%", Help: "cumulative size as a share of the program total", Width: 8},
		{Title: "Type", Help: "declared or rendered type", Width: 24},
	}
}

// TreeView is the table surface the materializer produces rows to. The
// concrete widget owns ordering, scrolling and cell styling; the core only
// hands it columns and root rows.
type TreeView interface {
	SetColumns(cols []Column)
	AddRoot(root *LazyNode)
}

// Navigator handles the dependency-view transition triggered from a name
// cell's NavTarget. Routing between views is outside the core.
type Navigator interface {
	ShowDependencies(id string)
}
