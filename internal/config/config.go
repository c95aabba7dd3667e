// internal/config/config.go
//
// This package handles configuration and the .modselect directory structure.
// Every project that resolves modules gets a .modselect/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".modselect"

	defaultCatalogName = "local"
	defaultPicker      = PickerTUI
)

// Picker names accepted by resolve.picker.
const (
	PickerTUI    = "tui"
	PickerAuto   = "auto"
	PickerScript = "script"
)

const defaultProjectConfigYAML = `# modselect project configuration
version: 1

# Directories holding type definition files (*.yaml, *.yml, *.go).
# Relative paths are resolved against the project directory.
catalogs:
  - name: local
    path: .modselect/catalog

resolve:
  # Root constraints used when none are passed on the command line.
  require: []
  # How long one resolution may wait for picks, e.g. 5m. 0 disables the limit.
  pick_timeout: 0s
  # tui, auto or script
  picker: tui
`

// CatalogRef declares one catalog directory inside .modselect/config.yaml.
type CatalogRef struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ResolveConfig captures defaults for resolution sessions.
type ResolveConfig struct {
	Require     []string `yaml:"require,omitempty"`
	PickTimeout Duration `yaml:"pick_timeout,omitempty"`
	Picker      string   `yaml:"picker,omitempty"`
	Script      string   `yaml:"script,omitempty"`
}

// ProjectConfig models .modselect/config.yaml.
type ProjectConfig struct {
	Version  int           `yaml:"version"`
	Catalogs []CatalogRef  `yaml:"catalogs"`
	Resolve  ResolveConfig `yaml:"resolve"`
}

// Duration is a time.Duration that reads and writes as a string like "90s".
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds the runtime configuration for modselect.
type Config struct {
	// ProjectDir is the directory modselect runs against
	ProjectDir string

	// StateDir is ProjectDir/.modselect
	StateDir string

	Project ProjectConfig
}

// InitDir creates the .modselect directory structure in the given project directory.
//
// Structure created:
// .modselect/
// ├── catalog/      <- default catalog directory
// ├── logs/         <- session logs
// └── config.yaml
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	dirs := []string{
		filepath.Join(root, "catalog"),
		filepath.Join(root, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig creates a Config populated with project settings. A project
// without .modselect/config.yaml gets the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, Dir),
		Project:    defaultProjectConfig(abs),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// CatalogDir returns the default catalog directory
func (c *Config) CatalogDir() string {
	return filepath.Join(c.StateDir, "catalog")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// Catalogs returns the configured catalog directories.
func (c *Config) Catalogs() []CatalogRef {
	return c.Project.Catalogs
}

// DefaultRequire returns the configured root constraints.
func (c *Config) DefaultRequire() []string {
	return append([]string(nil), c.Project.Resolve.Require...)
}

// PickTimeout returns the configured resolution deadline, 0 meaning none.
func (c *Config) PickTimeout() time.Duration {
	return time.Duration(c.Project.Resolve.PickTimeout)
}

// Picker returns the configured picker name.
func (c *Config) Picker() string {
	return c.Project.Resolve.Picker
}

// ScriptPath returns the configured pick script, if any.
func (c *Config) ScriptPath() string {
	return c.Project.Resolve.Script
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults(c.ProjectDir)
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig(projectDir string) ProjectConfig {
	pc := ProjectConfig{Version: 1}
	pc.applyDefaults(projectDir)
	pc.normalize(projectDir)
	return pc
}

func (pc *ProjectConfig) applyDefaults(projectDir string) {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Catalogs == nil {
		pc.Catalogs = []CatalogRef{{
			Name: defaultCatalogName,
			Path: filepath.Join(projectDir, Dir, "catalog"),
		}}
	}
	if strings.TrimSpace(pc.Resolve.Picker) == "" {
		pc.Resolve.Picker = defaultPicker
	}
}

func (pc *ProjectConfig) normalize(base string) {
	for i := range pc.Catalogs {
		pc.Catalogs[i].normalize(base)
	}
	var require []string
	for _, req := range pc.Resolve.Require {
		if trimmed := strings.TrimSpace(req); trimmed != "" {
			require = append(require, trimmed)
		}
	}
	pc.Resolve.Require = require
	pc.Resolve.Picker = strings.ToLower(strings.TrimSpace(pc.Resolve.Picker))
	pc.Resolve.Script = resolvePath(base, pc.Resolve.Script)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	seen := make(map[string]struct{}, len(pc.Catalogs))
	for i := range pc.Catalogs {
		if err := pc.Catalogs[i].validate(); err != nil {
			return fmt.Errorf("catalogs[%d]: %w", i, err)
		}
		if _, exists := seen[pc.Catalogs[i].Name]; exists {
			return fmt.Errorf("catalogs[%d]: duplicate catalog %s", i, pc.Catalogs[i].Name)
		}
		seen[pc.Catalogs[i].Name] = struct{}{}
	}
	if pc.Resolve.PickTimeout < 0 {
		return fmt.Errorf("resolve.pick_timeout must not be negative")
	}
	switch pc.Resolve.Picker {
	case PickerTUI, PickerAuto, PickerScript:
	default:
		return fmt.Errorf("resolve.picker must be 'tui', 'auto' or 'script'")
	}
	return nil
}

func (ref *CatalogRef) normalize(base string) {
	ref.Name = strings.TrimSpace(ref.Name)
	ref.Path = resolvePath(base, ref.Path)
}

func (ref CatalogRef) validate() error {
	if ref.Name == "" {
		return fmt.Errorf("name is required")
	}
	if ref.Path == "" {
		return fmt.Errorf("path is required for catalog %s", ref.Name)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}
