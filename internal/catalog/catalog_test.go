package catalog

import (
	"errors"
	"strings"
	"testing"
)

func testTypes() []Type {
	return []Type{
		{QualifiedName: "Demo.IntBox", Implements: []string{"Numeric"}},
		{QualifiedName: "Demo.Foo"},
		{
			QualifiedName: "Demo.Bar",
			Implements:    []string{"Module"},
			Parameters: []Parameter{
				{Name: "T", Position: 0, Constraints: NewConstraints("Numeric")},
			},
		},
	}
}

func testCapabilities() []Capability {
	return []Capability{
		{Name: "Module"},
		{Name: "Value"},
		{Name: "Numeric", Extends: []string{"Value"}},
	}
}

func TestNewOrdersTypesAndFillsNames(t *testing.T) {
	c, err := New(testTypes(), testCapabilities())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	all := c.AllTypes()
	if len(all) != 3 {
		t.Fatalf("expected 3 types, got %d", len(all))
	}
	if all[0].QualifiedName != "Demo.Bar" || all[2].QualifiedName != "Demo.IntBox" {
		t.Fatalf("unexpected order: %s, %s, %s", all[0].QualifiedName, all[1].QualifiedName, all[2].QualifiedName)
	}
	if all[0].Name != "Bar" {
		t.Fatalf("expected short name derived from qualified name, got %q", all[0].Name)
	}
	if !c.Known("Numeric") || !c.Known("Demo.Foo") || c.Known("Missing") {
		t.Fatalf("unexpected Known results")
	}
	bases, ok := c.Bases("Numeric")
	if !ok || len(bases) != 1 || bases[0] != "Value" {
		t.Fatalf("unexpected bases for Numeric: %v", bases)
	}
}

func TestAllTypesReturnsCopies(t *testing.T) {
	c := MustNew(testTypes(), testCapabilities())
	all := c.AllTypes()
	all[0].Implements[0] = "Mutated"
	again, _ := c.Lookup(all[0].QualifiedName)
	if again.Implements[0] != "Module" {
		t.Fatalf("catalog state leaked through AllTypes")
	}
}

func TestNewRejectsMalformedTypes(t *testing.T) {
	cases := map[string]struct {
		types []Type
		want  string
	}{
		"duplicate name": {
			types: []Type{{QualifiedName: "Demo.Foo"}, {QualifiedName: " Demo.Foo "}},
			want:  "not unique",
		},
		"gap in positions": {
			types: []Type{{
				QualifiedName: "Demo.Pair",
				Parameters: []Parameter{
					{Name: "A", Position: 0},
					{Name: "B", Position: 2},
				},
			}},
			want: "has position 2",
		},
		"unknown requirement": {
			types: []Type{{
				QualifiedName: "Demo.Bar",
				Parameters:    []Parameter{{Name: "T", Position: 0, Constraints: NewConstraints("Imaginary")}},
			}},
			want: "requires unknown Imaginary",
		},
		"forward dependent requirement": {
			types: []Type{{
				QualifiedName: "Demo.Map",
				Parameters: []Parameter{
					{Name: "K", Position: 0, Constraints: NewConstraints("@V")},
					{Name: "V", Position: 1},
				},
			}},
			want: "not an earlier parameter",
		},
		"unknown base": {
			types: []Type{{QualifiedName: "Demo.Foo", Implements: []string{"Ghost"}}},
			want:  "implements unknown Ghost",
		},
		"base cycle": {
			types: []Type{
				{QualifiedName: "Demo.A", Implements: []string{"Demo.B"}},
				{QualifiedName: "Demo.B", Implements: []string{"Demo.A"}},
			},
			want: "cycle",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.types, testCapabilities())
			if err == nil {
				t.Fatalf("expected malformed type error")
			}
			if !errors.Is(err, ErrMalformedType) {
				t.Fatalf("expected ErrMalformedType, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestRegistrySnapshot(t *testing.T) {
	reg := NewRegistry()
	for _, capability := range testCapabilities() {
		if err := reg.RegisterCapabilityFrom("caps.yaml", capability); err != nil {
			t.Fatalf("register capability: %v", err)
		}
	}
	for _, typ := range testTypes() {
		if err := reg.RegisterFrom("types.yaml", typ); err != nil {
			t.Fatalf("register type: %v", err)
		}
	}
	err := reg.RegisterFrom("other.yaml", Type{QualifiedName: "Demo.Foo"})
	if err == nil || !strings.Contains(err.Error(), "types.yaml and other.yaml") {
		t.Fatalf("expected duplicate error naming both sources, got %v", err)
	}
	snapshot, err := reg.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.Len() != 3 {
		t.Fatalf("expected 3 types, got %d", snapshot.Len())
	}
}

func TestRegistrySnapshotNamesSource(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(Type{QualifiedName: "Demo.Ok"})
	if err := reg.RegisterFrom("broken.yaml", Type{QualifiedName: "Demo.Broken", Implements: []string{"Ghost"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := reg.Snapshot()
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Fatalf("expected snapshot error to mention source, got %v", err)
	}
	if !errors.Is(err, ErrMalformedType) {
		t.Fatalf("expected wrapped ErrMalformedType, got %v", err)
	}
}
