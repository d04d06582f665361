package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/sizelens/internal/export"
	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/inspect"
)

// nullView discards tree-view callbacks; export and print modes read the
// materialized roots directly.
type nullView struct{}

func (nullView) SetColumns([]inspect.Column) {}
func (nullView) AddRoot(*inspect.LazyNode)   {}

func materializeRoots(ctx context.Context, src graph.Source) ([]*inspect.LazyNode, error) {
	mat := inspect.NewMaterializer(src, inspect.NewAggregator(src, nil), nullView{}, nil)
	roots, err := mat.Roots(ctx)
	if err != nil {
		if len(roots) == 0 {
			return nil, fmt.Errorf("materialize roots: %w", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return roots, nil
}

func runExports(ctx context.Context, flags cliFlags, src graph.Source) error {
	if flags.ExportNames != "" {
		f, err := os.Create(flags.ExportNames)
		if err != nil {
			return err
		}
		if err := export.WriteFunctionNames(ctx, f, src); err != nil {
			f.Close()
			return fmt.Errorf("export names: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if flags.ExportTree != "" {
		roots, err := materializeRoots(ctx, src)
		if err != nil {
			return err
		}
		f, err := os.Create(flags.ExportTree)
		if err != nil {
			return err
		}
		if err := export.WriteJSON(ctx, f, roots, flags.Depth); err != nil {
			f.Close()
			return fmt.Errorf("export tree: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}

func runPrint(ctx context.Context, flags cliFlags, src graph.Source) error {
	roots, err := materializeRoots(ctx, src)
	if err != nil {
		return err
	}
	return export.WriteText(ctx, os.Stdout, roots, flags.Depth)
}
