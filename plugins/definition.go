package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/modselect/internal/catalog"
)

// CatalogDefinition describes the types and capabilities declared by one
// definition file.
//
// The struct mirrors the on-disk schema of files under a configured catalog
// directory. Cross-file checks (unknown requirements, base cycles) happen when
// the registry is snapshotted; Validate only covers what a single file can
// know about itself.
type CatalogDefinition struct {
	Capabilities []CapabilityDefinition `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Types        []TypeDefinition       `json:"types,omitempty" yaml:"types,omitempty"`
}

// Normalized returns a trimmed copy of the definition.
func (def CatalogDefinition) Normalized() CatalogDefinition {
	clone := CatalogDefinition{}
	if len(def.Capabilities) > 0 {
		clone.Capabilities = make([]CapabilityDefinition, len(def.Capabilities))
		for i, capability := range def.Capabilities {
			clone.Capabilities[i] = capability.normalized()
		}
	}
	if len(def.Types) > 0 {
		clone.Types = make([]TypeDefinition, len(def.Types))
		for i, typ := range def.Types {
			clone.Types[i] = typ.normalized()
		}
	}
	return clone
}

// Validate ensures every entry is well-formed and that names are unique
// within the file.
func (def CatalogDefinition) Validate() error {
	normalized := def.Normalized()
	if len(normalized.Capabilities) == 0 && len(normalized.Types) == 0 {
		return fmt.Errorf("plugin: definition declares no types or capabilities")
	}
	seen := make(map[string]string)
	claim := func(label, kind, name string) error {
		if existing, ok := seen[name]; ok {
			return fmt.Errorf("%s: %s is already declared as a %s", label, name, existing)
		}
		seen[name] = kind
		return nil
	}
	for idx, capability := range normalized.Capabilities {
		label := fmt.Sprintf("capabilities[%d]", idx)
		if err := capability.Validate(); err != nil {
			return fmt.Errorf("plugin: %s: %w", label, err)
		}
		if err := claim(label, "capability", capability.Name); err != nil {
			return fmt.Errorf("plugin: %w", err)
		}
	}
	for idx, typ := range normalized.Types {
		label := fmt.Sprintf("types[%d]", idx)
		if err := typ.Validate(); err != nil {
			return fmt.Errorf("plugin: %s: %w", label, err)
		}
		if err := claim(label, "type", typ.QualifiedName); err != nil {
			return fmt.Errorf("plugin: %w", err)
		}
	}
	return nil
}

// CapabilityDefinition declares a named capability that types can implement.
type CapabilityDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Extends     []string `json:"extends,omitempty" yaml:"extends,omitempty"`
}

func (def CapabilityDefinition) normalized() CapabilityDefinition {
	return CapabilityDefinition{
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Extends:     trimList(def.Extends),
	}
}

// Validate ensures the capability is named and does not extend itself.
func (def CapabilityDefinition) Validate() error {
	normalized := def.normalized()
	if normalized.Name == "" {
		return fmt.Errorf("name is required")
	}
	for _, base := range normalized.Extends {
		if base == normalized.Name {
			return fmt.Errorf("capability %s extends itself", normalized.Name)
		}
	}
	return nil
}

// Capability converts the definition into its catalog form.
func (def CapabilityDefinition) Capability() catalog.Capability {
	normalized := def.normalized()
	return catalog.Capability{
		Name:        normalized.Name,
		Description: normalized.Description,
		Extends:     normalized.Extends,
	}
}

// TypeDefinition declares one selectable type.
type TypeDefinition struct {
	QualifiedName string                `json:"qualified_name" yaml:"qualified_name"`
	Name          string                `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string                `json:"description,omitempty" yaml:"description,omitempty"`
	URL           string                `json:"url,omitempty" yaml:"url,omitempty"`
	Icon          string                `json:"icon,omitempty" yaml:"icon,omitempty"`
	Implements    []string              `json:"implements,omitempty" yaml:"implements,omitempty"`
	Parameters    []ParameterDefinition `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func (def TypeDefinition) normalized() TypeDefinition {
	clone := TypeDefinition{
		QualifiedName: strings.TrimSpace(def.QualifiedName),
		Name:          strings.TrimSpace(def.Name),
		Description:   strings.TrimSpace(def.Description),
		URL:           strings.TrimSpace(def.URL),
		Icon:          strings.TrimSpace(def.Icon),
		Implements:    trimList(def.Implements),
	}
	if len(def.Parameters) > 0 {
		clone.Parameters = make([]ParameterDefinition, len(def.Parameters))
		for i, param := range def.Parameters {
			clone.Parameters[i] = param.normalized(i)
		}
	}
	return clone
}

// Validate checks the parts of a type that do not depend on other files.
func (def TypeDefinition) Validate() error {
	normalized := def.normalized()
	if normalized.QualifiedName == "" {
		return fmt.Errorf("qualified_name is required")
	}
	names := make(map[string]struct{}, len(normalized.Parameters))
	for idx, param := range normalized.Parameters {
		if param.Name == "" {
			return fmt.Errorf("type %s: parameters[%d]: name is required", normalized.QualifiedName, idx)
		}
		if _, exists := names[param.Name]; exists {
			return fmt.Errorf("type %s: parameters[%d]: duplicate parameter %s", normalized.QualifiedName, idx, param.Name)
		}
		names[param.Name] = struct{}{}
	}
	return nil
}

// Type converts the definition into its catalog form.
func (def TypeDefinition) Type() catalog.Type {
	normalized := def.normalized()
	t := catalog.Type{
		QualifiedName: normalized.QualifiedName,
		Name:          normalized.Name,
		Description:   normalized.Description,
		URL:           normalized.URL,
		Icon:          normalized.Icon,
		Implements:    normalized.Implements,
	}
	for _, param := range normalized.Parameters {
		t.Parameters = append(t.Parameters, catalog.Parameter{
			Name:        param.Name,
			Position:    *param.Position,
			Constraints: param.Constraints,
		})
	}
	return t.Normalized()
}

// ParameterDefinition declares a free type parameter. Position defaults to
// the declaration index when omitted.
type ParameterDefinition struct {
	Name        string              `json:"name" yaml:"name"`
	Position    *int                `json:"position,omitempty" yaml:"position,omitempty"`
	Constraints catalog.Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

func (def ParameterDefinition) normalized(index int) ParameterDefinition {
	position := index
	if def.Position != nil {
		position = *def.Position
	}
	return ParameterDefinition{
		Name:        strings.TrimSpace(def.Name),
		Position:    &position,
		Constraints: catalog.NewConstraints(def.Constraints.Sorted()...),
	}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
