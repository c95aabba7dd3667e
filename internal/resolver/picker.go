package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/modselect/internal/catalog"
)

// Picker turns a candidate set into one choice. Returning ok=false cancels
// the pick. Errors are reserved for faults of the picker itself.
type Picker interface {
	Pick(ctx context.Context, req Request) (choice catalog.Type, ok bool, err error)
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context, req Request) (catalog.Type, bool, error)

// Pick calls f.
func (f PickerFunc) Pick(ctx context.Context, req Request) (catalog.Type, bool, error) {
	return f(ctx, req)
}

// Request is what a picker is asked to choose from.
type Request struct {
	Candidates  CandidateSet
	Constraints catalog.Constraints
	// Depth is zero for the top-level pick and grows by one per free
	// parameter level.
	Depth int
	// Owner and Parameter identify the slot being filled; both are nil for
	// the top-level pick.
	Owner     *catalog.Type
	Parameter *catalog.Parameter
	// Path lists the enclosing slots from the outermost inwards, e.g.
	// ["Bar.T", "Pair.A"].
	Path []string
}

// Title is a short prompt suitable for a picker header.
func (r Request) Title() string {
	if r.Owner == nil || r.Parameter == nil {
		return "Select a module"
	}
	return fmt.Sprintf("Select type for %s of %s", r.Parameter.Name, r.Owner.Signature())
}

// Location renders Path for log lines, or "root".
func (r Request) Location() string {
	if len(r.Path) == 0 {
		return "root"
	}
	return strings.Join(r.Path, " > ")
}
