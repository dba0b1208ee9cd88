package store

import (
	"fmt"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// PermissionError reports an access to a graph outside a view's whitelist.
// It indicates an internal wiring bug and is fatal for the run.
type PermissionError struct {
	Graph rdf.Term
	Op    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("graph %s is not visible in this view (op %s)", e.Graph, e.Op)
}

// ReadOnlyError reports a mutating operation on a read-only view.
type ReadOnlyError struct {
	Op string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("view is read-only (op %s)", e.Op)
}

// CategoryError reports an attempt to re-categorize an existing graph.
// Graph categories are write-once.
type CategoryError struct {
	Graph    rdf.Term
	Existing Category
	Wanted   Category
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("graph %s already has category %q, cannot set %q",
		e.Graph, e.Existing, e.Wanted)
}
