package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedType is matched by every MalformedTypeError.
var ErrMalformedType = errors.New("malformed type")

// MalformedTypeError reports a catalog integrity fault. It is never recoverable
// by the resolution engine.
type MalformedTypeError struct {
	QualifiedName string
	Reason        string
}

func (e *MalformedTypeError) Error() string {
	if e.QualifiedName == "" {
		return fmt.Sprintf("catalog: malformed type: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: malformed type %s: %s", e.QualifiedName, e.Reason)
}

// Is lets errors.Is match ErrMalformedType.
func (e *MalformedTypeError) Is(target error) bool {
	return target == ErrMalformedType
}

func malformed(name, format string, args ...any) error {
	return &MalformedTypeError{QualifiedName: name, Reason: fmt.Sprintf(format, args...)}
}

// CheckType verifies the parameter layout of t: positions must be contiguous
// and equal to the declaration order, names unique, and every requirement must
// either be known or reference an earlier parameter.
func CheckType(t Type, known func(name string) bool) error {
	name := strings.TrimSpace(t.QualifiedName)
	if name == "" {
		return malformed("", "qualified name is required")
	}
	seen := make(map[string]int, len(t.Parameters))
	for idx, param := range t.Parameters {
		if param.Position != idx {
			return malformed(name, "parameter %q declared at index %d has position %d", param.Name, idx, param.Position)
		}
		pname := strings.TrimSpace(param.Name)
		if pname == "" {
			return malformed(name, "parameter %d has no name", idx)
		}
		if _, dup := seen[pname]; dup {
			return malformed(name, "duplicate parameter %s", pname)
		}
		for _, ref := range param.Constraints.Dependent() {
			if _, earlier := seen[ref]; !earlier {
				return malformed(name, "parameter %s requires %s%s which is not an earlier parameter", pname, DependentPrefix, ref)
			}
		}
		for _, req := range param.Constraints.Sorted() {
			if strings.HasPrefix(req, DependentPrefix) {
				continue
			}
			if known == nil || !known(req) {
				return malformed(name, "parameter %s requires unknown %s", pname, req)
			}
		}
		seen[pname] = idx
	}
	return nil
}
