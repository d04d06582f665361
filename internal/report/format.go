// Package report reads and writes sizelens report files: the JSON size
// breakdown a compiler emits alongside its output. Decoding produces an
// in-memory graph source ready for inspection.
package report

import (
	"errors"
	"time"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// FormatName identifies sizelens report documents.
const FormatName = "sizelens-report"

// CurrentVersion is the report version this build writes.
const CurrentVersion = 1

// ErrUnknownFormat is returned when the document is not a sizelens report.
var ErrUnknownFormat = errors.New("report: not a sizelens report")

// Document is the top-level report structure.
type Document struct {
	Format   string        `json:"format"`
	Version  int           `json:"version"`
	Program  Program       `json:"program"`
	Elements []*graph.Node `json:"elements"`
}

// Program mirrors graph.ProgramInfo with wire-friendly field encodings.
type Program struct {
	Name            string    `json:"name"`
	Toolchain       string    `json:"toolchain,omitempty"`
	CompiledAt      time.Time `json:"compiledAt"`
	CompileMillis   int64     `json:"compileMillis"`
	DynamicFallback bool      `json:"dynamicFallback"`
	TotalSize       int64     `json:"totalSize"`
}

func (p Program) info() graph.ProgramInfo {
	return graph.ProgramInfo{
		Name:            p.Name,
		Toolchain:       p.Toolchain,
		CompiledAt:      p.CompiledAt,
		CompileDuration: time.Duration(p.CompileMillis) * time.Millisecond,
		DynamicFallback: p.DynamicFallback,
		TotalSize:       p.TotalSize,
	}
}

func programOf(info graph.ProgramInfo) Program {
	return Program{
		Name:            info.Name,
		Toolchain:       info.Toolchain,
		CompiledAt:      info.CompiledAt,
		CompileMillis:   info.CompileDuration.Milliseconds(),
		DynamicFallback: info.DynamicFallback,
		TotalSize:       info.TotalSize,
	}
}
