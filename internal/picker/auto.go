package picker

import (
	"context"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

// DefaultAutoDepth bounds how deep Auto follows nested generic picks.
const DefaultAutoDepth = 8

// Auto chooses without user input: the first closed candidate if there is
// one, otherwise the first candidate. It cancels once MaxDepth is exceeded so
// self-referential generics cannot recurse forever.
type Auto struct {
	MaxDepth int
}

// Pick implements resolver.Picker.
func (a Auto) Pick(ctx context.Context, req resolver.Request) (catalog.Type, bool, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Type{}, false, err
	}
	limit := a.MaxDepth
	if limit <= 0 {
		limit = DefaultAutoDepth
	}
	if req.Depth > limit || req.Candidates.Len() == 0 {
		return catalog.Type{}, false, nil
	}
	for _, candidate := range req.Candidates.Types() {
		if !candidate.IsGeneric() {
			return candidate, true, nil
		}
	}
	return req.Candidates.At(0), true, nil
}
