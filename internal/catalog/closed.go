package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Closed is a fully closed type: a catalog type whose every parameter position
// is filled with another closed type. Values are immutable.
type Closed struct {
	def  Type
	args []Closed
}

// Construct assembles a closed type from an open definition and one closed
// argument per parameter, in position order. Non-generic types take no
// arguments and come back unchanged.
func Construct(def Type, args []Closed) (Closed, error) {
	if strings.TrimSpace(def.QualifiedName) == "" {
		return Closed{}, fmt.Errorf("catalog: construct: qualified name is required")
	}
	if len(args) != len(def.Parameters) {
		return Closed{}, fmt.Errorf("catalog: construct %s: expected %d arguments, got %d", def.QualifiedName, len(def.Parameters), len(args))
	}
	for i, arg := range args {
		if arg.IsZero() {
			return Closed{}, fmt.Errorf("catalog: construct %s: argument %d is empty", def.QualifiedName, i)
		}
	}
	closed := Closed{def: def.Clone()}
	if len(args) > 0 {
		closed.args = append([]Closed(nil), args...)
	}
	return closed, nil
}

// MustConstruct panics if Construct fails.
func MustConstruct(def Type, args ...Closed) Closed {
	closed, err := Construct(def, args)
	if err != nil {
		panic(err)
	}
	return closed
}

// IsZero reports whether c was never constructed.
func (c Closed) IsZero() bool {
	return c.def.QualifiedName == ""
}

// QualifiedName returns the qualified name of the generic definition.
func (c Closed) QualifiedName() string {
	return c.def.QualifiedName
}

// Definition returns a copy of the (possibly open) catalog type.
func (c Closed) Definition() Type {
	return c.def.Clone()
}

// Arguments returns the concrete type arguments in position order.
func (c Closed) Arguments() []Closed {
	if len(c.args) == 0 {
		return nil
	}
	return append([]Closed(nil), c.args...)
}

// Depth returns the nesting depth of the argument tree; a plain type is 0.
func (c Closed) Depth() int {
	depth := 0
	for _, arg := range c.args {
		if d := arg.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// String renders the closed form, e.g. "Bar[IntBox]".
func (c Closed) String() string {
	if len(c.args) == 0 {
		return c.def.DisplayName()
	}
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = arg.String()
	}
	return c.def.DisplayName() + "[" + strings.Join(parts, ", ") + "]"
}

// QualifiedString renders the closed form with qualified names.
func (c Closed) QualifiedString() string {
	if len(c.args) == 0 {
		return c.def.QualifiedName
	}
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = arg.QualifiedString()
	}
	return c.def.QualifiedName + "[" + strings.Join(parts, ", ") + "]"
}

type closedDocument struct {
	Type      string           `json:"type" yaml:"type"`
	Arguments []closedDocument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

func (c Closed) document() closedDocument {
	doc := closedDocument{Type: c.def.QualifiedName}
	for _, arg := range c.args {
		doc.Arguments = append(doc.Arguments, arg.document())
	}
	return doc
}

// MarshalYAML encodes the closed type as {type, arguments}.
func (c Closed) MarshalYAML() (any, error) {
	return c.document(), nil
}

// MarshalJSON encodes the closed type as {type, arguments}.
func (c Closed) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.document())
}
