// Package tui is the interactive terminal front end: a lazily expanded
// tree table over the size graph, with a program summary panel and a
// dependency view for code elements.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/inspect"
)

type sortOrder int

const (
	byGraph sortOrder = iota
	bySize
	byName
)

func (s sortOrder) String() string {
	return []string{"Graph", "Size", "Name"}[s]
}

// ReloadMsg swaps in a freshly loaded graph, typically sent by the
// report watcher while a compile loop is running.
type ReloadMsg struct {
	Source *graph.MemSource
}

type rowEntry struct {
	node  *inspect.LazyNode
	cells []inspect.Cell
	err   error
}

// nodeLister is implemented by sources that can enumerate every node.
// The dependency view needs it to find reverse edges.
type nodeLister interface {
	Nodes(ctx context.Context) ([]*graph.Node, error)
}

// Model is the bubbletea model for the tree view. It is the TreeView the
// materializer produces rows into and the Navigator behind name cells.
type Model struct {
	ctx context.Context
	src graph.Source
	agg *inspect.Aggregator
	log *slog.Logger

	columns []inspect.Column
	roots   []*inspect.LazyNode

	program *graph.ProgramInfo
	stats   *graph.Stats

	cursor   int
	visible  []rowEntry
	expanded map[*inspect.LazyNode]bool
	sort     sortOrder

	body     viewport.Model
	deps     viewport.Model
	showDeps bool

	width  int
	height int
	ready  bool

	status string
	styles Styles
}

var (
	_ inspect.TreeView  = (*Model)(nil)
	_ inspect.Navigator = (*Model)(nil)
)

// New builds the model and materializes the library roots.
func New(src graph.Source, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		ctx:      context.Background(),
		log:      logger,
		body:     viewport.New(0, 0),
		deps:     viewport.New(0, 0),
		expanded: make(map[*inspect.LazyNode]bool),
		styles:   defaultStyles(),
	}
	if err := m.load(src); err != nil {
		return nil, err
	}
	return m, nil
}

// SetColumns implements inspect.TreeView.
func (m *Model) SetColumns(cols []inspect.Column) {
	m.columns = cols
}

// AddRoot implements inspect.TreeView.
func (m *Model) AddRoot(root *inspect.LazyNode) {
	m.roots = append(m.roots, root)
}

// load rebuilds the tree from a source, discarding expansion state.
func (m *Model) load(src graph.Source) error {
	m.src = src
	m.agg = inspect.NewAggregator(src, m.log)
	m.roots = nil
	m.expanded = make(map[*inspect.LazyNode]bool)
	m.cursor = 0
	m.showDeps = false

	mat := inspect.NewMaterializer(src, m.agg, m, m.log)
	if _, err := mat.Roots(m.ctx); err != nil {
		if len(m.roots) == 0 {
			return fmt.Errorf("tui: materialize roots: %w", err)
		}
		// Some libraries failed; show what survived and say so.
		m.status = m.styles.Warning.Render(err.Error())
	}

	if prog, err := src.Program(m.ctx); err == nil {
		m.program = prog
	}
	if stats, err := src.Stats(m.ctx); err == nil {
		m.stats = stats
	}

	m.applySort()
	m.rebuildVisible()
	return nil
}

// ShowDependencies implements inspect.Navigator: it fills the dependency
// pane with the outgoing references of the element and, when the source
// can enumerate nodes, the elements that hold a reference to it.
func (m *Model) ShowDependencies(id string) {
	n, err := m.src.NodeByID(m.ctx, id)
	if err != nil || n == nil {
		m.status = fmt.Sprintf("no element %q", id)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", n.Kind, n.Name)

	b.WriteString("Uses:\n")
	if len(n.Children) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, childID := range n.Children {
		child, err := m.src.NodeByID(m.ctx, childID)
		if err != nil || child == nil {
			fmt.Fprintf(&b, "  %s (missing)\n", childID)
			continue
		}
		fmt.Fprintf(&b, "  %-12s %s  %s\n", child.Kind, child.Name, humanBytes(child.Size))
	}

	if lister, ok := m.src.(nodeLister); ok {
		b.WriteString("\nUsed by:\n")
		owners, err := lister.Nodes(m.ctx)
		if err == nil {
			found := false
			for _, owner := range owners {
				for _, childID := range owner.Children {
					if childID == id {
						fmt.Fprintf(&b, "  %-12s %s\n", owner.Kind, owner.Name)
						found = true
						break
					}
				}
			}
			if !found {
				b.WriteString("  (none)\n")
			}
		}
	}

	m.deps.SetContent(b.String())
	m.deps.GotoTop()
	m.showDeps = true
}

// applySort reorders roots and every materialized child list. Metadata
// rows keep their fixed positions; only structural rows move.
func (m *Model) applySort() {
	if m.sort == byGraph {
		return
	}
	less := m.lessFunc()
	inspect.SortRows(m.roots, less)
	var walk func(n *inspect.LazyNode)
	walk = func(n *inspect.LazyNode) {
		inspect.SortRows(n.Children(), less)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, r := range m.roots {
		walk(r)
	}
}

func (m *Model) lessFunc() func(a, b *inspect.LazyNode) bool {
	lookup := func(id string) *graph.Node {
		n, err := m.src.NodeByID(m.ctx, id)
		if err != nil {
			return nil
		}
		return n
	}
	switch m.sort {
	case byName:
		return func(a, b *inspect.LazyNode) bool {
			na, nb := lookup(a.ID), lookup(b.ID)
			if na == nil || nb == nil {
				return a.ID < b.ID
			}
			return na.Name < nb.Name
		}
	default: // bySize, largest first
		return func(a, b *inspect.LazyNode) bool {
			na, nb := lookup(a.ID), lookup(b.ID)
			if na == nil || nb == nil {
				return a.ID < b.ID
			}
			return na.Size > nb.Size
		}
	}
}

// rebuildVisible flattens the expanded portion of the tree into the
// display list, rendering each row's cells as it goes.
func (m *Model) rebuildVisible() {
	m.visible = m.visible[:0]
	var walk func(n *inspect.LazyNode)
	walk = func(n *inspect.LazyNode) {
		cells, err := n.Render()
		m.visible = append(m.visible, rowEntry{node: n, cells: cells, err: err})
		if m.expanded[n] {
			for _, c := range n.Children() {
				walk(c)
			}
		}
	}
	for _, r := range m.roots {
		walk(r)
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshBody()
}

func (m *Model) toggle(entry rowEntry) {
	n := entry.node
	if m.expanded[n] {
		delete(m.expanded, n)
		m.rebuildVisible()
		return
	}
	if n.PendingCount() > 0 {
		if err := n.Expand(m.ctx); err != nil {
			m.status = m.styles.Warning.Render(err.Error())
		}
		if m.sort != byGraph {
			inspect.SortRows(n.Children(), m.lessFunc())
		}
	}
	if len(n.Children()) == 0 {
		return
	}
	m.expanded[n] = true
	m.rebuildVisible()
}

func (m *Model) forceRecompute(entry rowEntry) {
	id := entry.node.ID
	if id == "" {
		return
	}
	size, err := m.agg.Compute(m.ctx, id, true)
	if err != nil {
		m.status = m.styles.Warning.Render(err.Error())
		return
	}
	m.status = fmt.Sprintf("recomputed %s: %s", id, humanBytes(size))
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySizes()
		m.ready = true
		m.refreshBody()

	case ReloadMsg:
		if err := m.load(msg.Source); err != nil {
			m.status = m.styles.Warning.Render(err.Error())
		} else {
			m.status = "report reloaded"
		}

	case tea.KeyMsg:
		if m.showDeps {
			switch msg.String() {
			case "esc", "q", "d":
				m.showDeps = false
			default:
				var cmd tea.Cmd
				m.deps, cmd = m.deps.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "pgup":
			m.moveCursor(-m.body.Height)
		case "pgdown":
			m.moveCursor(m.body.Height)
		case "g":
			m.cursor = 0
			m.refreshBody()
		case "G":
			m.cursor = len(m.visible) - 1
			m.refreshBody()
		case "enter", " ":
			if m.cursor < len(m.visible) {
				m.toggle(m.visible[m.cursor])
			}
		case "s":
			m.sort = (m.sort + 1) % 3
			m.applySort()
			m.rebuildVisible()
		case "d":
			if m.cursor < len(m.visible) {
				if target := navTarget(m.visible[m.cursor].cells); target != "" {
					m.ShowDependencies(target)
				}
			}
		case "f":
			if m.cursor < len(m.visible) {
				m.forceRecompute(m.visible[m.cursor])
			}
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.refreshBody()
}

func (m *Model) applySizes() {
	headerHeight := lipgloss.Height(m.renderSummary()) + 1 // plus column header
	statusHeight := 1
	bodyHeight := m.height - headerHeight - statusHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.body.Width = m.width
	m.body.Height = bodyHeight
	m.deps.Width = m.width - 4
	m.deps.Height = bodyHeight - 2
}

func (m *Model) refreshBody() {
	widths := m.columnWidths()
	lines := make([]string, 0, len(m.visible))
	for i, entry := range m.visible {
		lines = append(lines, m.renderRow(entry, widths, i == m.cursor))
	}
	m.body.SetContent(strings.Join(lines, "\n"))

	// Keep the cursor inside the viewport.
	if m.cursor < m.body.YOffset {
		m.body.SetYOffset(m.cursor)
	} else if m.cursor >= m.body.YOffset+m.body.Height {
		m.body.SetYOffset(m.cursor - m.body.Height + 1)
	}
}

// columnWidths resolves the column width hints against the terminal
// width, giving the flexible name column whatever is left over.
func (m *Model) columnWidths() []int {
	widths := make([]int, len(m.columns))
	fixed := 0
	flexAt := -1
	for i, col := range m.columns {
		widths[i] = col.Width
		if col.Width == 0 {
			flexAt = i
			continue
		}
		fixed += col.Width + 1
	}
	if flexAt >= 0 {
		rest := m.width - fixed - 2
		if rest < 16 {
			rest = 16
		}
		widths[flexAt] = rest
	}
	return widths
}

func (m *Model) renderRow(entry rowEntry, widths []int, selected bool) string {
	indent := strings.Repeat("  ", entry.node.Level)

	if entry.err != nil {
		return indent + m.styles.Warning.Render("! "+entry.err.Error())
	}

	marker := "  "
	if entry.node.PendingCount() > 0 || len(entry.node.Children()) > 0 {
		if m.expanded[entry.node] {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(marker)
	col := 0
	for _, cell := range entry.cells {
		w := 0
		for s := 0; s < cellSpan(cell) && col < len(widths); s++ {
			w += widths[col] + 1
			col++
		}
		w-- // last gap belongs between cells
		text := cell.Text
		if cell.Pre {
			text = firstLine(text)
		}
		b.WriteString(pad(text, w, cell.Align))
		b.WriteString(" ")
	}

	line := strings.TrimRight(b.String(), " ")
	switch {
	case selected:
		return m.styles.Selected.Render(line)
	case !entry.node.Sortable && entry.node.Priority < 0:
		return m.styles.Code.Render(line)
	case !entry.node.Sortable:
		return m.styles.Metadata.Render(line)
	default:
		return line
	}
}

func (m *Model) renderSummary() string {
	if m.program == nil {
		return m.styles.Header.Render("no program loaded")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s", m.program.Name, humanBytes(m.program.TotalSize))
	if m.program.Toolchain != "" {
		fmt.Fprintf(&b, "  [%s]", m.program.Toolchain)
	}
	if !m.program.CompiledAt.IsZero() {
		fmt.Fprintf(&b, "  compiled %s in %s",
			m.program.CompiledAt.Format("2006-01-02 15:04:05"),
			m.program.CompileDuration)
	}
	if m.stats != nil {
		fmt.Fprintf(&b, "\n%d elements, %d references", m.stats.NodeCount, m.stats.EdgeCount)
		if kinds := kindSummary(m.stats.ByKind); kinds != "" {
			fmt.Fprintf(&b, "  (%s)", kinds)
		}
	}
	if m.program.DynamicFallback {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(
			"dynamic dispatch fallback is enabled; sizes may understate reachable code"))
	}
	return m.styles.Header.Render(b.String())
}

func (m *Model) renderColumnHeader() string {
	widths := m.columnWidths()
	var b strings.Builder
	b.WriteString("  ")
	for i, col := range m.columns {
		if i < len(widths) {
			b.WriteString(pad(col.Title, widths[i], inspect.AlignLeft))
			b.WriteString(" ")
		}
	}
	return m.styles.Columns.Render(strings.TrimRight(b.String(), " "))
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	if m.showDeps {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderSummary(),
			m.styles.DepsPane.Render(m.deps.View()),
			m.styles.Status.Render("esc close | ↑↓ scroll"),
		)
	}

	status := m.status
	if status == "" {
		status = fmt.Sprintf("enter expand | s sort (%s) | d deps | f recompute | q quit", m.sort)
	}
	m.status = ""

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderSummary(),
		m.renderColumnHeader(),
		m.body.View(),
		m.styles.Status.Render(status),
	)
}

// --- helpers ---

func navTarget(cells []inspect.Cell) string {
	for _, c := range cells {
		if c.NavTarget != "" {
			return c.NavTarget
		}
	}
	return ""
}

func cellSpan(c inspect.Cell) int {
	if c.Span <= 0 {
		return 1
	}
	return c.Span
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func pad(s string, width int, align inspect.Align) string {
	if width <= 0 {
		return s
	}
	if len(s) > width {
		if width > 1 {
			return s[:width-1] + "…"
		}
		return s[:width]
	}
	gap := strings.Repeat(" ", width-len(s))
	if align == inspect.AlignRight {
		return gap + s
	}
	return s + gap
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func kindSummary(byKind map[graph.Kind]int) string {
	parts := make([]string, 0, len(byKind))
	for _, k := range graph.Kinds {
		if c := byKind[k]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, k))
		}
	}
	return strings.Join(parts, ", ")
}
