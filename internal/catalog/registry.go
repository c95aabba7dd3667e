package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry collects type and capability definitions while plugins load. Call
// Snapshot once loading is finished to obtain the read-only Catalog used by
// resolution sessions.
type Registry struct {
	mu           sync.RWMutex
	types        map[string]Type
	capabilities map[string]Capability
	sources      map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:        map[string]Type{},
		capabilities: map[string]Capability{},
		sources:      map[string]string{},
	}
}

// Register installs a type definition. Returns an error if the qualified name
// already exists.
func (r *Registry) Register(t Type) error {
	return r.RegisterFrom("", t)
}

// RegisterFrom installs a type and remembers where it was declared so
// duplicate errors can name both sources.
func (r *Registry) RegisterFrom(source string, t Type) error {
	t = t.Normalized()
	if t.QualifiedName == "" {
		return fmt.Errorf("catalog: qualified name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.claim(t.QualifiedName, source); err != nil {
		return err
	}
	r.types[t.QualifiedName] = t
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(t Type) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// RegisterCapability installs a capability definition.
func (r *Registry) RegisterCapability(c Capability) error {
	return r.RegisterCapabilityFrom("", c)
}

// RegisterCapabilityFrom installs a capability and remembers its source.
func (r *Registry) RegisterCapabilityFrom(source string, c Capability) error {
	c = c.Normalized()
	if c.Name == "" {
		return fmt.Errorf("catalog: capability name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.claim(c.Name, source); err != nil {
		return err
	}
	r.capabilities[c.Name] = c
	return nil
}

func (r *Registry) claim(name, source string) error {
	if existing, exists := r.sources[name]; exists {
		if existing != "" || source != "" {
			return fmt.Errorf("catalog: %s already registered (%s and %s)", name, describeSource(existing), describeSource(source))
		}
		return fmt.Errorf("catalog: %s already registered", name)
	}
	r.sources[name] = source
	return nil
}

func describeSource(source string) string {
	if strings.TrimSpace(source) == "" {
		return "<inline>"
	}
	return source
}

// Names returns a sorted list of registered type and capability names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns where name was declared.
func (r *Registry) Source(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[name]
	return source, ok
}

// Snapshot validates everything registered so far and freezes it.
func (r *Registry) Snapshot() (*Catalog, error) {
	r.mu.RLock()
	types := make([]Type, 0, len(r.types))
	for _, t := range r.types {
		types = append(types, t.Clone())
	}
	capabilities := make([]Capability, 0, len(r.capabilities))
	for _, c := range r.capabilities {
		capabilities = append(capabilities, c)
	}
	r.mu.RUnlock()
	snapshot, err := New(types, capabilities)
	if err != nil {
		if source, ok := r.Source(malformedName(err)); ok && source != "" {
			return nil, fmt.Errorf("%w (declared in %s)", err, source)
		}
		return nil, err
	}
	return snapshot, nil
}

func malformedName(err error) string {
	if m, ok := err.(*MalformedTypeError); ok {
		return m.QualifiedName
	}
	return ""
}
