package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse_valid(t *testing.T) {
	data := []byte(`
color: never
exclude: [internal-tool, fuzz]
features:
  - serde
ignore-private: true
`)
	cfg, err := Parse(FileName, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != "never" {
		t.Errorf("color = %q, want %q", cfg.Color, "never")
	}
	if want := []string{"internal-tool", "fuzz"}; !reflect.DeepEqual(cfg.Exclude, want) {
		t.Errorf("exclude = %v, want %v", cfg.Exclude, want)
	}
	if want := []string{"serde"}; !reflect.DeepEqual(cfg.Features, want) {
		t.Errorf("features = %v, want %v", cfg.Features, want)
	}
	if !cfg.IgnorePrivate {
		t.Error("ignore-private should be true")
	}
	if cfg.IgnoreUnknownFeatures {
		t.Error("ignore-unknown-features should default to false")
	}
}

func TestParse_unknownColor(t *testing.T) {
	if _, err := Parse(FileName, []byte("color: sometimes\n")); err == nil {
		t.Fatal("expected error for unknown color mode")
	}
}

func TestParse_invalidYAML(t *testing.T) {
	if _, err := Parse(FileName, []byte(":\n  - broken")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_missingFileIsZero(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, &Config{}) {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

func TestLoad_readsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("color: always\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != "always" {
		t.Errorf("color = %q, want %q", cfg.Color, "always")
	}
}
