package inspect

import (
	"context"
	"sort"
	"strconv"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// codeRowPriority keeps source-fragment rows ahead of their metadata
// siblings when a view orders non-sortable rows.
const codeRowPriority = -1

// unavailableType replaces an absent declared type in parameter rows.
const unavailableType = "unavailable"

// metadataRows builds the auxiliary rows for n at the given display level.
// Metadata is cheap and bounded, so unlike structural children it is built
// eagerly. Every row captures its content by value: the cells reflect the
// element as it was when the row was materialized.
func (m *Materializer) metadataRows(ctx context.Context, n *graph.Node, level int) ([]*LazyNode, error) {
	var rows []*LazyNode

	switch {
	case graph.CodeKinds[n.Kind]:
		rows = append(rows, metadataRow(level, 0,
			Cell{Text: "side effects", Span: 2},
			Cell{Text: n.SideEffects, Span: 4},
		))
		for _, name := range truthyModifiers(n.Modifiers) {
			rows = append(rows, metadataRow(level, 0,
				Cell{Text: "modifier", Span: 2},
				Cell{Text: name, Span: 4},
			))
		}
		rows = append(rows, metadataRow(level, 0,
			Cell{Text: "return type", Span: 2},
			Cell{Text: n.DeclaredType, Pre: true, Span: 2},
			Cell{Text: n.InferredType, Pre: true, Span: 2},
		))
		for _, p := range n.Parameters {
			declared := p.Type.Declared
			if declared == "" {
				declared = unavailableType
			}
			rows = append(rows, metadataRow(level, 0,
				Cell{Text: "parameter", Span: 2},
				Cell{Text: p.Name},
				Cell{Text: declared, Pre: true},
				Cell{Text: p.Type.Inferred, Pre: true, Span: 2},
			))
		}
		if n.Code != "" {
			rows = append(rows, codeRow(level, n.Code))
		}

	case n.Kind == graph.KindField:
		if n.Code != "" {
			rows = append(rows, codeRow(level, n.Code))
		}
		if n.DeclaredType != "" && n.InferredType != "" {
			rows = append(rows, metadataRow(level, 0,
				Cell{Text: "type", Span: 2},
				Cell{Text: n.DeclaredType, Pre: true, Span: 2},
				Cell{Text: n.InferredType, Pre: true, Span: 2},
			))
		}

	case n.Kind == graph.KindClass || n.Kind == graph.KindLibrary:
		scaffolding, err := m.agg.Scaffolding(ctx, n)
		if err != nil {
			return nil, err
		}
		rows = append(rows, metadataRow(level, 0,
			Cell{Text: "scaffolding", Span: 2},
			Cell{Text: strconv.FormatInt(scaffolding, 10), Align: AlignRight, Span: 4},
		))
	}
	// Remaining kinds (typedef) carry no metadata.

	return rows, nil
}

// metadataRow wraps a fixed cell set as a non-sortable synthetic row.
func metadataRow(level, priority int, cells ...Cell) *LazyNode {
	row := NewLazyNode("", level, func() ([]Cell, error) {
		return cells, nil
	})
	row.Sortable = false
	row.Priority = priority
	return row
}

// codeRow renders a source fragment, preformatted.
func codeRow(level int, code string) *LazyNode {
	return metadataRow(level, codeRowPriority,
		Cell{Text: "code", Span: 2},
		Cell{Text: code, Pre: true, Span: 4},
	)
}

// truthyModifiers returns the names of the modifiers set to true, sorted
// for stable display.
func truthyModifiers(mods map[string]bool) []string {
	var names []string
	for name, on := range mods {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
