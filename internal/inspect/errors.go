package inspect

import (
	"fmt"

	"github.com/dusk-indust/sizelens/internal/graph"
)

// DanglingReferenceError reports a child id with no corresponding element
// in the source. A broken containment graph is a data-integrity bug in the
// input, so the error propagates to whoever triggered the dereference
// instead of being treated as zero size.
type DanglingReferenceError struct {
	ID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("inspect: dangling reference to element %q", e.ID)
}

// UnknownKindError reports an element kind outside the closed set the
// renderer understands. There is no fallback row: an unrecognized kind
// means the data source and the inspector disagree on the schema.
type UnknownKindError struct {
	Kind graph.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("inspect: unknown element kind %q", e.Kind)
}
