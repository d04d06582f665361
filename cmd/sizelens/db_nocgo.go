//go:build !cgo

package main

import (
	"context"
	"errors"

	"github.com/dusk-indust/sizelens/internal/graph"
)

func importToDB(_ context.Context, _ *graph.MemSource, _ string) (graph.Source, error) {
	return nil, errors.New("KuzuDB support requires a cgo-enabled build")
}
