package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/config"
)

// LoadDefinitionDir loads every YAML and Go catalog file directly inside
// dir, ordered by file name. A missing directory is an empty catalog.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(trimmed, entry.Name())
		switch {
		case isYAMLFile(entry.Name()):
			file, err := LoadDefinitionFile(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, file)
		case filepath.Ext(entry.Name()) == ".go":
			files, err := LoadGoDefinitionFile(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, files...)
		}
	}
	return defs, nil
}

// RegisterCatalogs discovers definition files in every configured catalog
// directory and registers their contents. Registration stops at the first
// duplicate or invalid file; cross-file integrity is checked later by
// Registry.Snapshot.
func RegisterCatalogs(reg *catalog.Registry, cfg *config.Config) error {
	if reg == nil || cfg == nil {
		return nil
	}
	for _, ref := range cfg.Catalogs() {
		defs, err := LoadDefinitionDir(ref.Path)
		if err != nil {
			return fmt.Errorf("plugin: catalog %s: %w", ref.Name, err)
		}
		if err := RegisterDefinitions(reg, defs); err != nil {
			return fmt.Errorf("plugin: catalog %s: %w", ref.Name, err)
		}
	}
	return nil
}

// RegisterDefinitions registers already loaded definition files, recording
// each declaration's source.
func RegisterDefinitions(reg *catalog.Registry, defs []DefinitionFile) error {
	for _, file := range defs {
		for _, capability := range file.Definition.Capabilities {
			if err := reg.RegisterCapabilityFrom(file.Source(capability.Name), capability.Capability()); err != nil {
				return err
			}
		}
		for _, typ := range file.Definition.Types {
			if err := reg.RegisterFrom(file.Source(typ.QualifiedName), typ.Type()); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadCatalog builds a validated catalog from every configured directory.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	reg := catalog.NewRegistry()
	if err := RegisterCatalogs(reg, cfg); err != nil {
		return nil, err
	}
	return reg.Snapshot()
}
