package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Picker() != PickerTUI {
		t.Fatalf("expected default picker %q, got %q", PickerTUI, c.Picker())
	}
	if len(c.Catalogs()) != 1 || c.Catalogs()[0].Path != c.CatalogDir() {
		t.Fatalf("expected default catalog at %s, got %+v", c.CatalogDir(), c.Catalogs())
	}
	if c.PickTimeout() != 0 {
		t.Fatalf("expected no default timeout, got %s", c.PickTimeout())
	}
}

func TestInitDirWritesLoadableConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	for _, sub := range []string{"catalog", "logs"} {
		if info, err := os.Stat(filepath.Join(projectDir, Dir, sub)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, got %v", sub, err)
		}
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if len(c.Catalogs()) != 1 || c.Catalogs()[0].Name != "local" {
		t.Fatalf("unexpected catalogs: %+v", c.Catalogs())
	}
	if !strings.HasPrefix(c.Catalogs()[0].Path, c.ProjectDir) {
		t.Fatalf("expected catalog path to be resolved, got %s", c.Catalogs()[0].Path)
	}
	if len(c.DefaultRequire()) != 0 {
		t.Fatalf("expected no default requirements, got %v", c.DefaultRequire())
	}
}

func TestInitDirKeepsExistingConfig(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "version: 1\nresolve:\n  picker: auto\n")
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if c.Picker() != PickerAuto {
		t.Fatalf("existing config was overwritten, picker=%s", c.Picker())
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
catalogs:
  - name: core
    path: defs/core
  - name: shared
    path: /opt/modselect/shared
resolve:
  require: [" Module ", ""]
  pick_timeout: 90s
  picker: Script
  script: picks.yaml
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if len(c.Catalogs()) != 2 {
		t.Fatalf("expected 2 catalogs, got %d", len(c.Catalogs()))
	}
	if c.Catalogs()[0].Path != filepath.Join(c.ProjectDir, "defs", "core") {
		t.Fatalf("expected relative path to be resolved, got %s", c.Catalogs()[0].Path)
	}
	if c.Catalogs()[1].Path != "/opt/modselect/shared" {
		t.Fatalf("absolute path changed: %s", c.Catalogs()[1].Path)
	}
	if got := c.DefaultRequire(); len(got) != 1 || got[0] != "Module" {
		t.Fatalf("unexpected requirements: %v", got)
	}
	if c.PickTimeout() != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %s", c.PickTimeout())
	}
	if c.Picker() != PickerScript || c.ScriptPath() != filepath.Join(c.ProjectDir, "picks.yaml") {
		t.Fatalf("unexpected picker settings: %s %s", c.Picker(), c.ScriptPath())
	}
}

func TestScriptPickerWithoutScriptLoads(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "resolve:\n  picker: script\n")
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("script may come from the command line: %v", err)
	}
	if c.Picker() != PickerScript || c.ScriptPath() != "" {
		t.Fatalf("unexpected picker settings: %s %q", c.Picker(), c.ScriptPath())
	}
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{name: "catalog without path", body: "catalogs:\n  - name: core\n", msg: "path is required"},
		{name: "duplicate catalog", body: "catalogs:\n  - {name: a, path: x}\n  - {name: a, path: y}\n", msg: "duplicate catalog"},
		{name: "unknown picker", body: "resolve:\n  picker: mouse\n", msg: "resolve.picker"},
		{name: "bad timeout", body: "resolve:\n  pick_timeout: soon\n", msg: "invalid duration"},
		{name: "negative timeout", body: "resolve:\n  pick_timeout: -1s\n", msg: "must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, tc.body)
			if _, err := NewConfig(projectDir); err == nil || !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected error containing %q, got %v", tc.msg, err)
			}
		})
	}
}
