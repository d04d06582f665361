package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/sizelens/internal/inspect"
)

// Row is one exported tree row: its rendered cell texts plus the rows
// below it, structural children expanded to the requested depth.
type Row struct {
	ID       string   `json:"id,omitempty"`
	Level    int      `json:"level"`
	Cells    []string `json:"cells"`
	Children []Row    `json:"children,omitempty"`
}

// Rows renders the given roots into exportable rows. Structural children
// are expanded down to maxDepth levels below the roots; metadata rows are
// always included since they are already materialized.
func Rows(ctx context.Context, roots []*inspect.LazyNode, maxDepth int) ([]Row, error) {
	out := make([]Row, 0, len(roots))
	for _, root := range roots {
		row, err := exportNode(ctx, root, maxDepth)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func exportNode(ctx context.Context, node *inspect.LazyNode, depthLeft int) (Row, error) {
	cells, err := node.Render()
	if err != nil {
		return Row{}, fmt.Errorf("export: render row %q: %w", node.ID, err)
	}
	row := Row{ID: node.ID, Level: node.Level}
	for _, c := range cells {
		row.Cells = append(row.Cells, c.Text)
	}

	if depthLeft > 0 {
		if err := node.Expand(ctx); err != nil {
			return Row{}, err
		}
	}
	for _, child := range node.Children() {
		childRow, err := exportNode(ctx, child, depthLeft-1)
		if err != nil {
			return Row{}, err
		}
		row.Children = append(row.Children, childRow)
	}
	return row, nil
}

// WriteJSON exports the tree as indented JSON.
func WriteJSON(ctx context.Context, w io.Writer, roots []*inspect.LazyNode, maxDepth int) error {
	rows, err := Rows(ctx, roots, maxDepth)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("export: encode tree: %w", err)
	}
	return nil
}

// WriteText renders the tree as indented plain text, one row per line.
// This backs the non-interactive print mode.
func WriteText(ctx context.Context, w io.Writer, roots []*inspect.LazyNode, maxDepth int) error {
	rows, err := Rows(ctx, roots, maxDepth)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeTextRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTextRow(w io.Writer, row Row) error {
	indent := strings.Repeat("  ", row.Level)
	line := indent + strings.Join(row.Cells, "  ")
	if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
		return fmt.Errorf("export: write row: %w", err)
	}
	for _, child := range row.Children {
		if err := writeTextRow(w, child); err != nil {
			return err
		}
	}
	return nil
}
