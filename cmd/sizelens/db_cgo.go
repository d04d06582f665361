//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// importToDB copies the in-memory graph into a KuzuDB at dbPath and
// returns a source backed by it.
func importToDB(ctx context.Context, mem *graph.MemSource, dbPath string) (graph.Source, error) {
	db, err := graph.NewKuzuSource(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	nodes, err := mem.Nodes(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, n := range nodes {
		if err := db.AddNode(ctx, n); err != nil {
			db.Close()
			return nil, fmt.Errorf("add %s: %w", n.ID, err)
		}
	}
	// Edges go in after every node exists.
	for _, n := range nodes {
		if len(n.Children) == 0 {
			continue
		}
		if err := db.LinkChildren(ctx, n.ID, n.Children); err != nil {
			db.Close()
			return nil, fmt.Errorf("link %s: %w", n.ID, err)
		}
	}

	prog, err := mem.Program(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.SetProgram(ctx, *prog); err != nil {
		db.Close()
		return nil, fmt.Errorf("set program: %w", err)
	}

	return db, nil
}
