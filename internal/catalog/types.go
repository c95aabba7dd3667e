package catalog

import (
	"sort"
	"strings"
)

// DefaultIcon is shown for types that do not declare an icon.
const DefaultIcon = "settings"

// Type describes one candidate module type. A type with parameters is an open
// generic type; every parameter must be resolved before it can be used.
type Type struct {
	QualifiedName string      `json:"qualified_name" yaml:"qualified_name"`
	Name          string      `json:"name" yaml:"name"`
	Description   string      `json:"description,omitempty" yaml:"description,omitempty"`
	URL           string      `json:"url,omitempty" yaml:"url,omitempty"`
	Icon          string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Implements    []string    `json:"implements,omitempty" yaml:"implements,omitempty"`
	Parameters    []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Parameter is one unbound generic position of a Type.
type Parameter struct {
	Name        string      `json:"name" yaml:"name"`
	Position    int         `json:"position" yaml:"position"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
}

// Capability is a named requirement (an interface or abstract base) that
// types declare through Implements. Capabilities are never candidates.
type Capability struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Extends     []string `json:"extends,omitempty" yaml:"extends,omitempty"`
}

// IsGeneric reports whether the type still has free parameters.
func (t Type) IsGeneric() bool {
	return len(t.Parameters) > 0
}

// DisplayName falls back to the qualified name when no short name is set.
func (t Type) DisplayName() string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return t.QualifiedName
}

// IconOrDefault returns the declared icon or DefaultIcon.
func (t Type) IconOrDefault() string {
	if icon := strings.TrimSpace(t.Icon); icon != "" {
		return icon
	}
	return DefaultIcon
}

// DocumentationURL returns the documentation link with a scheme, or "" when
// the type has none.
func (t Type) DocumentationURL() string {
	url := strings.TrimSpace(t.URL)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http") {
		return url
	}
	return "http://" + url
}

// Signature renders the open form, e.g. "Bar<T>".
func (t Type) Signature() string {
	if !t.IsGeneric() {
		return t.DisplayName()
	}
	names := make([]string, len(t.Parameters))
	for i, p := range t.OrderedParameters() {
		names[i] = p.Name
	}
	return t.DisplayName() + "<" + strings.Join(names, ", ") + ">"
}

// OrderedParameters returns the parameters sorted by position.
func (t Type) OrderedParameters() []Parameter {
	if len(t.Parameters) == 0 {
		return nil
	}
	out := make([]Parameter, len(t.Parameters))
	copy(out, t.Parameters)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (t Type) Clone() Type {
	clone := t
	if len(t.Implements) > 0 {
		clone.Implements = append([]string(nil), t.Implements...)
	}
	if len(t.Parameters) > 0 {
		clone.Parameters = append([]Parameter(nil), t.Parameters...)
	}
	return clone
}

// Normalized trims identifiers and drops blank base entries.
func (t Type) Normalized() Type {
	clone := Type{
		QualifiedName: strings.TrimSpace(t.QualifiedName),
		Name:          strings.TrimSpace(t.Name),
		Description:   strings.TrimSpace(t.Description),
		URL:           strings.TrimSpace(t.URL),
		Icon:          strings.TrimSpace(t.Icon),
		Implements:    trimAll(t.Implements),
	}
	if len(t.Parameters) > 0 {
		clone.Parameters = make([]Parameter, len(t.Parameters))
		for i, p := range t.Parameters {
			clone.Parameters[i] = Parameter{
				Name:        strings.TrimSpace(p.Name),
				Position:    p.Position,
				Constraints: NewConstraints(p.Constraints.Sorted()...),
			}
		}
	}
	if clone.Name == "" {
		clone.Name = shortName(clone.QualifiedName)
	}
	return clone
}

// Normalized trims identifiers and drops blank entries.
func (c Capability) Normalized() Capability {
	return Capability{
		Name:        strings.TrimSpace(c.Name),
		Description: strings.TrimSpace(c.Description),
		Extends:     trimAll(c.Extends),
	}
}

func shortName(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx >= 0 && idx < len(qualified)-1 {
		return qualified[idx+1:]
	}
	return qualified
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
