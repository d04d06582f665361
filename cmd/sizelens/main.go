package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/sizelens/internal/config"
	"github.com/dusk-indust/sizelens/internal/graph"
	"github.com/dusk-indust/sizelens/internal/mcptools"
	"github.com/dusk-indust/sizelens/internal/tui"
	"github.com/dusk-indust/sizelens/internal/watch"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Report      string
	DBPath      string
	ServeMCP    bool
	MCPAddr     string
	Watch       bool
	DebounceMS  int
	Print       bool
	Depth       int
	ExportNames string
	ExportTree  string
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var flags cliFlags

	fs := flag.NewFlagSet("sizelens", flag.ContinueOnError)
	fs.StringVar(&flags.Report, "report", cfg.ReportPath, "path to the compiler size report JSON")
	fs.StringVar(&flags.DBPath, "db", cfg.DBPath, "optional KuzuDB path to import the report into")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server exposing size intelligence tools")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", defaultStr(cfg.MCPAddr, "localhost:9832"), "listen address for the MCP server")
	fs.BoolVar(&flags.Watch, "watch", cfg.Watch, "reload the report when the file changes")
	fs.IntVar(&flags.DebounceMS, "debounce-ms", cfg.DebounceMS, "settle time before a watched report reloads (0 for default)")
	fs.BoolVar(&flags.Print, "print", false, "print the size tree to stdout instead of opening the TUI")
	fs.IntVar(&flags.Depth, "depth", defaultInt(cfg.ExportDepth, 2), "expansion depth for -print and -export-tree")
	fs.StringVar(&flags.ExportNames, "export-names", "", "write all function names to the given file")
	fs.StringVar(&flags.ExportTree, "export-tree", "", "write the expanded tree as JSON to the given file")
	fs.BoolVar(&flags.Verbose, "verbose", cfg.Verbose, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	logger := newLogger(flags.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.ServeMCP {
		return runServeMCP(ctx, flags, logger)
	}

	if flags.Report == "" {
		return fmt.Errorf("a report is required; pass -report or set reportPath in sizelens.yml")
	}

	src, err := loadSource(ctx, flags, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	if flags.ExportNames != "" || flags.ExportTree != "" {
		return runExports(ctx, flags, src)
	}
	if flags.Print {
		return runPrint(ctx, flags, src)
	}
	return runTUI(ctx, flags, src, logger)
}

func runTUI(ctx context.Context, flags cliFlags, src graph.Source, logger *slog.Logger) error {
	model, err := tui.New(src, logger)
	if err != nil {
		return err
	}

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)

	if flags.Watch {
		w, err := newReportWatcher(flags, logger, func(next *graph.MemSource) {
			prog.Send(tui.ReloadMsg{Source: next})
		})
		if err != nil {
			return err
		}
		w.Start()
		g.Go(func() error {
			<-gctx.Done()
			return w.Stop()
		})
	}

	g.Go(func() error {
		_, err := prog.Run()
		return err
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil // interrupted, not a failure
	}
	return err
}

func runServeMCP(ctx context.Context, flags cliFlags, logger *slog.Logger) error {
	var src graph.Source
	if flags.Report != "" {
		loaded, err := loadSource(ctx, flags, logger)
		if err != nil {
			return err
		}
		defer loaded.Close()
		src = loaded
	}

	svc := mcptools.NewSizeIntelService(src)

	g, gctx := errgroup.WithContext(ctx)

	if flags.Watch && flags.Report != "" {
		w, err := newReportWatcher(flags, logger, func(next *graph.MemSource) {
			svc.Reload(next)
			logger.Info("report reloaded", "path", flags.Report)
		})
		if err != nil {
			return err
		}
		w.Start()
		g.Go(func() error {
			<-gctx.Done()
			return w.Stop()
		})
	}

	g.Go(func() error {
		logger.Info("serving MCP", "addr", flags.MCPAddr)
		return mcptools.RunMCPServer(gctx, svc, flags.MCPAddr)
	})

	return g.Wait()
}

func newReportWatcher(flags cliFlags, logger *slog.Logger, onReload func(*graph.MemSource)) (*watch.Watcher, error) {
	opts := []watch.Option{
		watch.WithOnReload(onReload),
		watch.WithOnError(func(err error) {
			logger.Warn("watch", "err", err)
		}),
	}
	if flags.DebounceMS > 0 {
		opts = append(opts, watch.WithDebounceDelay(time.Duration(flags.DebounceMS)*time.Millisecond))
	}
	return watch.New(flags.Report, opts...)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
