package resolver

import (
	"sync"

	"github.com/hashicorp/go-set"

	"github.com/kingrea/modselect/internal/catalog"
)

// TypeCatalog is the read-only source of candidate types. It must not change
// while a resolution is in flight.
type TypeCatalog interface {
	AllTypes() []catalog.Type
	Known(name string) bool
	Bases(name string) ([]string, bool)
}

// Matcher decides whether a type satisfies a constraint set. Ancestor sets are
// memoised per name, so a Matcher must not outlive its catalog snapshot.
type Matcher struct {
	catalog TypeCatalog

	mu        sync.Mutex
	ancestors map[string]*set.Set[string]
}

// NewMatcher returns a matcher bound to the given catalog.
func NewMatcher(c TypeCatalog) *Matcher {
	return &Matcher{catalog: c, ancestors: map[string]*set.Set[string]{}}
}

// Satisfies reports whether every requirement is the candidate itself or one
// of its direct or transitive bases. Open generic candidates are judged by
// their declared bases only; their parameters are not inspected here.
func (m *Matcher) Satisfies(candidate catalog.Type, constraints catalog.Constraints) bool {
	if constraints.Empty() {
		return true
	}
	return m.closure(candidate).ContainsAll(constraints.Sorted())
}

func (m *Matcher) closure(candidate catalog.Type) *set.Set[string] {
	closure := set.From([]string{candidate.QualifiedName})
	for _, base := range candidate.Implements {
		closure.InsertSet(m.ancestorsOf(base))
	}
	return closure
}

// ancestorsOf returns name plus everything it transitively extends.
func (m *Matcher) ancestorsOf(name string) *set.Set[string] {
	m.mu.Lock()
	cached, ok := m.ancestors[name]
	m.mu.Unlock()
	if ok {
		return cached
	}
	seen := set.New[string](4)
	queue := []string{name}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if !seen.Insert(next) {
			continue
		}
		bases, _ := m.catalog.Bases(next)
		queue = append(queue, bases...)
	}
	m.mu.Lock()
	m.ancestors[name] = seen
	m.mu.Unlock()
	return seen
}
