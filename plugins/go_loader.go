package plugins

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/modselect/internal/catalog"
)

const (
	goDefinitionFuncName = "CatalogDefinitions"

	// GoImportPath is the package Go catalog files import to build their
	// definitions.
	GoImportPath = "github.com/kingrea/modselect/plugins"
)

// Requires builds a parameter constraint set for Go catalog files.
func Requires(requirements ...string) catalog.Constraints {
	return catalog.NewConstraints(requirements...)
}

// Position returns a pointer for ParameterDefinition.Position.
func Position(p int) *int {
	return &p
}

// goSymbols is what a Go catalog file sees when it imports GoImportPath.
var goSymbols = interp.Exports{
	GoImportPath + "/plugins": {
		"CatalogDefinition":    reflect.ValueOf((*CatalogDefinition)(nil)),
		"CapabilityDefinition": reflect.ValueOf((*CapabilityDefinition)(nil)),
		"TypeDefinition":       reflect.ValueOf((*TypeDefinition)(nil)),
		"ParameterDefinition":  reflect.ValueOf((*ParameterDefinition)(nil)),
		"Requires":             reflect.ValueOf(Requires),
		"Position":             reflect.ValueOf(Position),
	},
}

// LoadGoDefinitionFile evaluates a Go catalog file and returns every
// definition its CatalogDefinitions function produces. The function may
// return a CatalogDefinition or a slice of them, optionally with an error.
func LoadGoDefinitionFile(path string) ([]DefinitionFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if err := i.Use(goSymbols); err != nil {
		return nil, fmt.Errorf("plugin: load catalog symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fn, err := i.Eval(goDefinitionFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s(): %w", path, goDefinitionFuncName, err)
	}
	defs, err := callDefinitionFunc(fn)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}

	files := make([]DefinitionFile, 0, len(defs))
	for n, def := range defs {
		origin := fmt.Sprintf("%s#%d", path, n+1)
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", origin, err)
		}
		def = def.Normalized()
		sources := make(map[string]string, len(def.Capabilities)+len(def.Types))
		for idx, capability := range def.Capabilities {
			sources[capability.Name] = fmt.Sprintf("%s capabilities[%d]", origin, idx)
		}
		for idx, typ := range def.Types {
			sources[typ.QualifiedName] = fmt.Sprintf("%s types[%d]", origin, idx)
		}
		files = append(files, DefinitionFile{Definition: def, Path: origin, Sources: sources})
	}
	return files, nil
}

func callDefinitionFunc(fn reflect.Value) ([]CatalogDefinition, error) {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFuncName)
	}
	switch f := fn.Interface().(type) {
	case func() ([]CatalogDefinition, error):
		return f()
	case func() []CatalogDefinition:
		return f(), nil
	case func() (CatalogDefinition, error):
		def, err := f()
		if err != nil {
			return nil, err
		}
		return []CatalogDefinition{def}, nil
	case func() CatalogDefinition:
		return []CatalogDefinition{f()}, nil
	}
	return nil, fmt.Errorf("%s has signature %s, want func() ([]plugins.CatalogDefinition, error)", goDefinitionFuncName, fn.Type())
}
