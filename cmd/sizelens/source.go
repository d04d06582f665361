package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/report"
)

// loadSource loads the report and, when a DB path is given, imports it into
// KuzuDB and serves the graph from there.
func loadSource(ctx context.Context, flags cliFlags, logger *slog.Logger) (graph.Source, error) {
	mem, err := report.LoadFile(ctx, flags.Report)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", flags.Report, err)
	}

	stats, err := mem.Stats(ctx)
	if err == nil {
		logger.Debug("report loaded",
			"path", flags.Report,
			"elements", stats.NodeCount,
			"references", stats.EdgeCount)
	}

	if flags.DBPath == "" {
		return mem, nil
	}

	db, err := importToDB(ctx, mem, flags.DBPath)
	if err != nil {
		return nil, fmt.Errorf("import into %s: %w", flags.DBPath, err)
	}
	logger.Debug("report imported", "db", flags.DBPath)
	return db, nil
}
