package inspect

import (
	"strconv"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// rowCells produces the primary row for an element: the kind-dispatched
// six-column cell set. excl is the element's exclusive (retained) size,
// pct the cached percentage string.
func rowCells(n *graph.Node, excl int64, pct string) ([]Cell, error) {
	switch n.Kind {
	case graph.KindFunction, graph.KindClosure, graph.KindConstructor,
		graph.KindMethod, graph.KindField:
		return []Cell{
			{Text: string(n.Kind)},
			{Text: n.Name, NavTarget: n.ID},
			{Text: strconv.FormatInt(n.Size, 10), Align: AlignRight},
			{Text: strconv.FormatInt(excl, 10), Align: AlignRight},
			{Text: pct, Align: AlignRight},
			{Text: n.Type, Pre: true},
		}, nil
	case graph.KindLibrary:
		return []Cell{
			{Text: string(n.Kind)},
			{Text: n.Name},
			{Text: strconv.FormatInt(n.Size, 10), Align: AlignRight},
			{},
			{Text: pct, Align: AlignRight},
			{},
		}, nil
	case graph.KindClass:
		return []Cell{
			{Text: string(n.Kind)},
			{Text: n.Name},
			{Text: strconv.FormatInt(n.Size, 10), Align: AlignRight},
			{},
			{Text: pct, Align: AlignRight},
			{Text: n.Name, Pre: true},
		}, nil
	case graph.KindTypedef:
		// Typedefs carry no size of their own.
		return []Cell{
			{Text: string(n.Kind)},
			{Text: n.Name},
			{Text: "0", Align: AlignRight},
			{Text: "0", Align: AlignRight},
			{Text: "0.00%", Align: AlignRight},
		}, nil
	default:
		return nil, &UnknownKindError{Kind: n.Kind}
	}
}
