package plugins

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile pairs a parsed catalog definition with where it came from.
type DefinitionFile struct {
	Definition CatalogDefinition
	Path       string
	// Sources maps each declared type or capability name to its declaration,
	// e.g. "numeric.yaml:12".
	Sources map[string]string
}

// Source returns where name was declared, falling back to the file path.
func (f DefinitionFile) Source(name string) string {
	if source, ok := f.Sources[name]; ok {
		return source
	}
	return f.Path
}

var (
	definitionKeys = []string{"capabilities", "types"}
	capabilityKeys = []string{"name", "description", "extends"}
	typeKeys       = []string{"qualified_name", "name", "description", "url", "icon", "implements", "parameters"}
	parameterKeys  = []string{"name", "position", "constraints"}
)

// ParseDefinitionYAML decodes and validates a single definition payload.
func ParseDefinitionYAML(data []byte) (CatalogDefinition, error) {
	def, _, err := parseDefinition(data)
	return def, err
}

// parseDefinition walks the document node by node so unknown keys are
// reported with their line, and returns the line of every declaration keyed
// by name.
func parseDefinition(data []byte) (CatalogDefinition, map[string]int, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return CatalogDefinition{}, nil, fmt.Errorf("plugin: definition payload is empty")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return CatalogDefinition{}, nil, fmt.Errorf("plugin: decode definition: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return CatalogDefinition{}, nil, fmt.Errorf("plugin: definition payload is empty")
	}
	root := doc.Content[0]
	if err := checkKeys(root, "definition", definitionKeys); err != nil {
		return CatalogDefinition{}, nil, err
	}

	var def CatalogDefinition
	lines := make(map[string]int)
	capabilities, err := sequence(root, "capabilities")
	if err != nil {
		return CatalogDefinition{}, nil, err
	}
	for idx, item := range capabilities {
		label := fmt.Sprintf("capabilities[%d]", idx)
		if err := checkKeys(item, label, capabilityKeys); err != nil {
			return CatalogDefinition{}, nil, err
		}
		var capability CapabilityDefinition
		if err := item.Decode(&capability); err != nil {
			return CatalogDefinition{}, nil, fmt.Errorf("plugin: %s: %w", label, err)
		}
		def.Capabilities = append(def.Capabilities, capability)
		lines[strings.TrimSpace(capability.Name)] = item.Line
	}
	types, err := sequence(root, "types")
	if err != nil {
		return CatalogDefinition{}, nil, err
	}
	for idx, item := range types {
		label := fmt.Sprintf("types[%d]", idx)
		if err := checkTypeNode(item, label); err != nil {
			return CatalogDefinition{}, nil, err
		}
		var typ TypeDefinition
		if err := item.Decode(&typ); err != nil {
			return CatalogDefinition{}, nil, fmt.Errorf("plugin: %s: %w", label, err)
		}
		def.Types = append(def.Types, typ)
		lines[strings.TrimSpace(typ.QualifiedName)] = item.Line
	}

	if err := def.Validate(); err != nil {
		return CatalogDefinition{}, nil, err
	}
	return def.Normalized(), lines, nil
}

func checkTypeNode(node *yaml.Node, label string) error {
	if err := checkKeys(node, label, typeKeys); err != nil {
		return err
	}
	params, err := sequence(node, "parameters")
	if err != nil {
		return err
	}
	for idx, param := range params {
		if err := checkKeys(param, fmt.Sprintf("%s.parameters[%d]", label, idx), parameterKeys); err != nil {
			return err
		}
	}
	return nil
}

func checkKeys(node *yaml.Node, label string, allowed []string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("plugin: line %d: %s must be a mapping", node.Line, label)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return fmt.Errorf("plugin: line %d: unknown field %q in %s", key.Line, key.Value, label)
		}
	}
	return nil
}

// sequence returns the items under key in a mapping node. A missing or null
// value yields no items.
func sequence(mapping *yaml.Node, key string) ([]*yaml.Node, error) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		value := mapping.Content[i+1]
		switch {
		case value.Kind == yaml.SequenceNode:
			return value.Content, nil
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
			return nil, nil
		default:
			return nil, fmt.Errorf("plugin: line %d: %s must be a list", value.Line, key)
		}
	}
	return nil, nil
}

// LoadDefinitionFile reads a YAML definition and records the line of every
// declaration as its source.
func LoadDefinitionFile(path string) (DefinitionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	def, lines, err := parseDefinition(data)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	clean := filepath.Clean(path)
	sources := make(map[string]string, len(lines))
	for name, line := range lines {
		sources[name] = fmt.Sprintf("%s:%d", clean, line)
	}
	return DefinitionFile{Definition: def, Path: clean, Sources: sources}, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
