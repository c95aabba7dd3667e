package resolver

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/modselect/internal/catalog"
)

// minChunk keeps small catalogs on a single goroutine.
const minChunk = 64

// Builder produces candidate sets for constraint sets. Filtering runs in
// parallel chunks; ordering is applied afterwards so results are
// deterministic.
type Builder struct {
	catalog     TypeCatalog
	matcher     *Matcher
	parallelism int
}

// NewBuilder returns a builder over c. A parallelism below one uses
// GOMAXPROCS.
func NewBuilder(c TypeCatalog, parallelism int) *Builder {
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Builder{catalog: c, matcher: NewMatcher(c), parallelism: parallelism}
}

// Build scans the catalog and returns every type satisfying constraints,
// sorted by display name (case-insensitive) and then qualified name.
func (b *Builder) Build(ctx context.Context, constraints catalog.Constraints) (CandidateSet, error) {
	types := b.catalog.AllTypes()
	keep := make([]bool, len(types))
	chunk := (len(types) + b.parallelism - 1) / b.parallelism
	if chunk < minChunk {
		chunk = minChunk
	}
	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(types); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(types))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				keep[i] = b.matcher.Satisfies(types[i], constraints)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CandidateSet{}, fmt.Errorf("resolver: build candidates for %s: %w", constraints, err)
	}
	selected := make([]catalog.Type, 0, len(types))
	for i, ok := range keep {
		if ok {
			selected = append(selected, types[i])
		}
	}
	sortCandidates(selected)
	return CandidateSet{constraints: constraints, types: selected}, nil
}

func sortCandidates(types []catalog.Type) {
	sort.Slice(types, func(i, j int) bool {
		a := strings.ToLower(types[i].DisplayName())
		b := strings.ToLower(types[j].DisplayName())
		if a != b {
			return a < b
		}
		return types[i].QualifiedName < types[j].QualifiedName
	})
}

// CandidateSet is an ordered, immutable list of types that satisfy one
// constraint set.
type CandidateSet struct {
	constraints catalog.Constraints
	types       []catalog.Type
}

// Constraints returns the constraint set the candidates were built for.
func (s CandidateSet) Constraints() catalog.Constraints {
	return s.constraints
}

// Len returns the number of candidates.
func (s CandidateSet) Len() int {
	return len(s.types)
}

// At returns the i-th candidate.
func (s CandidateSet) At(i int) catalog.Type {
	return s.types[i].Clone()
}

// Types returns a copy of the ordered candidates.
func (s CandidateSet) Types() []catalog.Type {
	out := make([]catalog.Type, len(s.types))
	for i, t := range s.types {
		out[i] = t.Clone()
	}
	return out
}

// Lookup finds a candidate by qualified name.
func (s CandidateSet) Lookup(qualifiedName string) (catalog.Type, bool) {
	for _, t := range s.types {
		if t.QualifiedName == qualifiedName {
			return t.Clone(), true
		}
	}
	return catalog.Type{}, false
}

// Filter narrows the set to candidates whose display or qualified name
// contains text, ignoring case. Blank text keeps everything. The receiver is
// left untouched, so the same filter always yields the same result.
func (s CandidateSet) Filter(text string) CandidateSet {
	if strings.TrimSpace(text) == "" {
		return s
	}
	narrowed := make([]catalog.Type, 0, len(s.types))
	for _, t := range s.types {
		if MatchesFilter(t, text) {
			narrowed = append(narrowed, t)
		}
	}
	return CandidateSet{constraints: s.constraints, types: narrowed}
}

// FilterIndexes returns the positions of candidates matching text.
func (s CandidateSet) FilterIndexes(text string) []int {
	indexes := make([]int, 0, len(s.types))
	for i, t := range s.types {
		if MatchesFilter(t, text) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// MatchesFilter applies the candidate text filter to a single type.
func MatchesFilter(t catalog.Type, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.DisplayName()), needle) ||
		strings.Contains(strings.ToLower(t.QualifiedName), needle)
}
