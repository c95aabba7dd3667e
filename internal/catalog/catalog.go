// Package catalog holds the type model consumed by the resolution engine: the
// candidate types, their free parameters and constraint sets, the capabilities
// those constraints name, and the closed types the engine produces.
package catalog

import (
	"sort"
)

// Catalog is a validated, read-only snapshot of known types and capabilities.
// It is safe for concurrent readers.
type Catalog struct {
	types        []Type
	index        map[string]int
	capabilities map[string]Capability
}

// New validates the supplied definitions and returns a snapshot. Any integrity
// fault is returned as a *MalformedTypeError.
func New(types []Type, capabilities []Capability) (*Catalog, error) {
	c := &Catalog{
		types:        make([]Type, 0, len(types)),
		index:        make(map[string]int, len(types)),
		capabilities: make(map[string]Capability, len(capabilities)),
	}
	for _, raw := range capabilities {
		capability := raw.Normalized()
		if capability.Name == "" {
			return nil, malformed("", "capability name is required")
		}
		if _, exists := c.capabilities[capability.Name]; exists {
			return nil, malformed(capability.Name, "capability declared twice")
		}
		c.capabilities[capability.Name] = capability
	}
	normalized := make([]Type, 0, len(types))
	seen := make(map[string]struct{}, len(types))
	for _, raw := range types {
		t := raw.Normalized()
		if t.QualifiedName == "" {
			return nil, malformed("", "qualified name is required")
		}
		if _, exists := seen[t.QualifiedName]; exists {
			return nil, malformed(t.QualifiedName, "qualified name is not unique")
		}
		if _, clash := c.capabilities[t.QualifiedName]; clash {
			return nil, malformed(t.QualifiedName, "name is already used by a capability")
		}
		seen[t.QualifiedName] = struct{}{}
		normalized = append(normalized, t)
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].QualifiedName < normalized[j].QualifiedName })
	for i, t := range normalized {
		c.types = append(c.types, t)
		c.index[t.QualifiedName] = i
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew panics if New fails. Intended for fixtures.
func MustNew(types []Type, capabilities []Capability) *Catalog {
	c, err := New(types, capabilities)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) validate() error {
	for _, t := range c.types {
		if err := CheckType(t, c.Known); err != nil {
			return err
		}
		for _, base := range t.Implements {
			if !c.Known(base) {
				return malformed(t.QualifiedName, "implements unknown %s", base)
			}
		}
	}
	for _, capability := range c.capabilities {
		for _, base := range capability.Extends {
			if !c.Known(base) {
				return malformed(capability.Name, "extends unknown %s", base)
			}
		}
	}
	return c.checkCycles()
}

// checkCycles rejects base relationships that loop back on themselves.
func (c *Catalog) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.types)+len(c.capabilities))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return malformed(name, "base relationship cycle")
		case done:
			return nil
		}
		state[name] = visiting
		bases, _ := c.Bases(name)
		for _, base := range bases {
			if err := visit(base); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	for _, name := range c.Names() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// AllTypes returns every candidate type ordered by qualified name.
func (c *Catalog) AllTypes() []Type {
	out := make([]Type, len(c.types))
	for i, t := range c.types {
		out[i] = t.Clone()
	}
	return out
}

// Lookup returns a type by qualified name.
func (c *Catalog) Lookup(qualifiedName string) (Type, bool) {
	idx, ok := c.index[qualifiedName]
	if !ok {
		return Type{}, false
	}
	return c.types[idx].Clone(), true
}

// Capabilities returns every capability ordered by name.
func (c *Catalog) Capabilities() []Capability {
	out := make([]Capability, 0, len(c.capabilities))
	for _, capability := range c.capabilities {
		out = append(out, capability)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Known reports whether name is a type or a capability.
func (c *Catalog) Known(name string) bool {
	if _, ok := c.index[name]; ok {
		return true
	}
	_, ok := c.capabilities[name]
	return ok
}

// Bases returns the direct bases declared by a type or capability.
func (c *Catalog) Bases(name string) ([]string, bool) {
	if idx, ok := c.index[name]; ok {
		return append([]string(nil), c.types[idx].Implements...), true
	}
	if capability, ok := c.capabilities[name]; ok {
		return append([]string(nil), capability.Extends...), true
	}
	return nil, false
}

// Names returns every type and capability name in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types)+len(c.capabilities))
	for _, t := range c.types {
		names = append(names, t.QualifiedName)
	}
	for name := range c.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of candidate types.
func (c *Catalog) Len() int {
	return len(c.types)
}
