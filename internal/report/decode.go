package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// decoder turns a raw document of one format version into a graph source.
type decoder func(ctx context.Context, data []byte) (*graph.MemSource, error)

// decoders maps format versions to their decoder.
var decoders = map[int]decoder{
	1: decodeV1,
}

// Decode reads a sizelens report and builds an in-memory graph source.
func Decode(ctx context.Context, r io.Reader) (*graph.MemSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("report: read: %w", err)
	}

	var head struct {
		Format  string `json:"format"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}
	if head.Format != FormatName {
		return nil, fmt.Errorf("%w: format %q", ErrUnknownFormat, head.Format)
	}
	dec, ok := decoders[head.Version]
	if !ok {
		return nil, fmt.Errorf("report: unsupported version %d", head.Version)
	}
	return dec(ctx, data)
}

// LoadFile reads and decodes the report at path.
func LoadFile(ctx context.Context, path string) (*graph.MemSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// decodeV1 handles version 1 documents.
func decodeV1(ctx context.Context, data []byte) (*graph.MemSource, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report: decode: %w", err)
	}
	if doc.Program.TotalSize <= 0 {
		return nil, fmt.Errorf("report: program total size must be positive, got %d", doc.Program.TotalSize)
	}

	// Duplicate detection needs a global view, so it runs serially.
	seen := make(map[string]bool, len(doc.Elements))
	for _, n := range doc.Elements {
		if n.ID == "" {
			return nil, fmt.Errorf("report: element with empty id")
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("report: duplicate element id %q", n.ID)
		}
		seen[n.ID] = true
	}

	if err := validateElements(ctx, doc.Elements); err != nil {
		return nil, err
	}

	src := graph.NewMemSource()
	for _, n := range doc.Elements {
		if err := src.AddNode(ctx, n); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
	}
	if err := src.SetProgram(ctx, doc.Program.info()); err != nil {
		return nil, err
	}
	return src, nil
}

// validateElements runs the per-element field checks, sharded across the
// available CPUs; large reports carry hundreds of thousands of elements.
func validateElements(ctx context.Context, elements []*graph.Node) error {
	g, _ := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(elements) + workers - 1) / workers
	if chunk == 0 {
		chunk = 1
	}

	for start := 0; start < len(elements); start += chunk {
		end := min(start+chunk, len(elements))
		part := elements[start:end]
		g.Go(func() error {
			for _, n := range part {
				if !n.Kind.Valid() {
					return fmt.Errorf("report: element %q has unknown kind %q", n.ID, n.Kind)
				}
				if n.Size < 0 {
					return fmt.Errorf("report: element %q has negative size %d", n.ID, n.Size)
				}
				for _, child := range n.Children {
					if child == "" {
						return fmt.Errorf("report: element %q lists an empty child id", n.ID)
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
