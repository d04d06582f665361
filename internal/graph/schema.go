package graph

import "time"

// --- Enums ---

// Kind classifies elements of the compiled program.
type Kind string

const (
	KindLibrary     Kind = "library"
	KindClass       Kind = "class"
	KindMethod      Kind = "method"
	KindConstructor Kind = "constructor"
	KindClosure     Kind = "closure"
	KindFunction    Kind = "function"
	KindField       Kind = "field"
	KindTypedef     Kind = "typedef"
)

// Kinds lists every kind the schema understands, in display order.
var Kinds = []Kind{
	KindLibrary, KindClass, KindMethod, KindConstructor,
	KindClosure, KindFunction, KindField, KindTypedef,
}

// Valid reports whether k is a member of the closed kind set.
func (k Kind) Valid() bool {
	switch k {
	case KindLibrary, KindClass, KindMethod, KindConstructor,
		KindClosure, KindFunction, KindField, KindTypedef:
		return true
	}
	return false
}

// CodeKinds are the kinds that carry executable code and therefore
// side-effect, modifier, return-type and parameter attributes.
var CodeKinds = map[Kind]bool{
	KindMethod:      true,
	KindConstructor: true,
	KindClosure:     true,
	KindFunction:    true,
}

// --- Models ---

// TypeInfo pairs the declared type of an element with the type the
// compiler inferred for it. Either half may be empty.
type TypeInfo struct {
	Declared string `json:"declared,omitempty"`
	Inferred string `json:"inferred,omitempty"`
}

// Parameter describes one formal parameter of a code element.
type Parameter struct {
	Name string   `json:"name"`
	Type TypeInfo `json:"type"`
}

// Node is one program element in the size graph. Children form a directed
// graph, not a tree: an id may be listed under more than one parent.
type Node struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Name     string   `json:"name"`
	Size     int64    `json:"size"` // direct size in bytes
	Children []string `json:"children,omitempty"`

	// Kind-specific attributes; zero values mean "not present".
	// DeclaredType/InferredType hold the return type for code elements and
	// the field type for fields.
	SideEffects  string          `json:"sideEffects,omitempty"`
	Modifiers    map[string]bool `json:"modifiers,omitempty"`
	DeclaredType string          `json:"declaredType,omitempty"`
	InferredType string          `json:"inferredType,omitempty"`
	Parameters   []Parameter     `json:"parameters,omitempty"`
	Code         string          `json:"code,omitempty"`
	Type         string          `json:"type,omitempty"` // rendered type label
}

// ProgramInfo carries program-level descriptive fields shown in the
// summary panel. These are pass-throughs from the compiler's report.
type ProgramInfo struct {
	Name            string        `json:"name"`
	Toolchain       string        `json:"toolchain,omitempty"`
	CompiledAt      time.Time     `json:"compiledAt"`
	CompileDuration time.Duration `json:"compileDuration"`
	DynamicFallback bool          `json:"dynamicFallback"` // dynamic-dispatch fallback enabled
	TotalSize       int64         `json:"totalSize"`
}

// Stats summarizes a loaded size graph.
type Stats struct {
	NodeCount int          `json:"nodeCount"`
	EdgeCount int          `json:"edgeCount"`
	ByKind    map[Kind]int `json:"byKind"`
	TotalSize int64        `json:"totalSize"`
}
