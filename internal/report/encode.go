package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// Encode writes src as a current-version report document.
func Encode(ctx context.Context, w io.Writer, src *graph.MemSource) error {
	info, err := src.Program(ctx)
	if err != nil {
		return fmt.Errorf("report: program info: %w", err)
	}
	elements, err := src.Nodes(ctx)
	if err != nil {
		return fmt.Errorf("report: enumerate elements: %w", err)
	}

	doc := Document{
		Format:   FormatName,
		Version:  CurrentVersion,
		Program:  programOf(*info),
		Elements: elements,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	return nil
}
