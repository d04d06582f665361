// Package export turns inspection results into files: the function-name
// dump a user can download and snapshots of the materialized size tree.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// FunctionNames returns the names of all function-kind elements as one
// flat comma-joined list, in source enumeration order.
func FunctionNames(ctx context.Context, src graph.Source) (string, error) {
	fns, err := src.NodesOfKind(ctx, graph.KindFunction)
	if err != nil {
		return "", fmt.Errorf("export: enumerate functions: %w", err)
	}
	names := make([]string, 0, len(fns))
	for _, fn := range fns {
		names = append(names, fn.Name)
	}
	return strings.Join(names, ", "), nil
}

// WriteFunctionNames writes the comma-joined function list to w.
func WriteFunctionNames(ctx context.Context, w io.Writer, src graph.Source) error {
	names, err := FunctionNames(ctx, src)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, names); err != nil {
		return fmt.Errorf("export: write names: %w", err)
	}
	return nil
}
