package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set"
	"gopkg.in/yaml.v3"
)

// DependentPrefix marks a requirement that refers to an earlier parameter of
// the same type instead of a catalog name.
const DependentPrefix = "@"

// Constraints is an unordered set of requirements a type must meet to fill a
// parameter slot. The zero value is the empty set.
type Constraints struct {
	reqs *set.Set[string]
}

// NewConstraints builds a requirement set, ignoring blank entries.
func NewConstraints(requirements ...string) Constraints {
	s := set.New[string](len(requirements))
	for _, req := range requirements {
		trimmed := strings.TrimSpace(req)
		if trimmed == "" {
			continue
		}
		s.Insert(trimmed)
	}
	return Constraints{reqs: s}
}

// Len returns the number of requirements.
func (c Constraints) Len() int {
	if c.reqs == nil {
		return 0
	}
	return c.reqs.Size()
}

// Empty reports whether the set has no requirements.
func (c Constraints) Empty() bool {
	return c.Len() == 0
}

// Has reports whether requirement is a member of the set.
func (c Constraints) Has(requirement string) bool {
	if c.reqs == nil {
		return false
	}
	return c.reqs.Contains(requirement)
}

// Sorted returns the requirements in lexical order.
func (c Constraints) Sorted() []string {
	if c.reqs == nil {
		return nil
	}
	out := c.reqs.Slice()
	sort.Strings(out)
	return out
}

// Equal compares two sets by membership.
func (c Constraints) Equal(other Constraints) bool {
	if c.Len() != other.Len() {
		return false
	}
	if c.Len() == 0 {
		return true
	}
	return c.reqs.Equal(other.reqs)
}

// Dependent returns the parameter names referenced through DependentPrefix.
func (c Constraints) Dependent() []string {
	var names []string
	for _, req := range c.Sorted() {
		if name, ok := strings.CutPrefix(req, DependentPrefix); ok {
			names = append(names, name)
		}
	}
	return names
}

// Bind replaces dependent requirements with the qualified names in bindings,
// keyed by parameter name. Unbound references are kept as-is.
func (c Constraints) Bind(bindings map[string]string) Constraints {
	if c.Len() == 0 || len(bindings) == 0 {
		return c
	}
	bound := make([]string, 0, c.Len())
	for _, req := range c.Sorted() {
		if name, ok := strings.CutPrefix(req, DependentPrefix); ok {
			if target, found := bindings[name]; found {
				bound = append(bound, target)
				continue
			}
		}
		bound = append(bound, req)
	}
	return NewConstraints(bound...)
}

func (c Constraints) String() string {
	return "{" + strings.Join(c.Sorted(), ", ") + "}"
}

// MarshalYAML encodes the set as a sorted sequence.
func (c Constraints) MarshalYAML() (any, error) {
	sorted := c.Sorted()
	if sorted == nil {
		return []string{}, nil
	}
	return sorted, nil
}

// UnmarshalYAML accepts either a sequence or a single scalar requirement.
func (c *Constraints) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*c = NewConstraints(single)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*c = NewConstraints(list...)
		return nil
	default:
		return fmt.Errorf("catalog: constraints must be a list of requirement names")
	}
}

// MarshalJSON encodes the set as a sorted array.
func (c Constraints) MarshalJSON() ([]byte, error) {
	sorted := c.Sorted()
	if sorted == nil {
		sorted = []string{}
	}
	return json.Marshal(sorted)
}

// UnmarshalJSON decodes a JSON array of requirement names.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("catalog: decode constraints: %w", err)
	}
	*c = NewConstraints(list...)
	return nil
}
