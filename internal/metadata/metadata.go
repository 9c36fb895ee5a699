// Package metadata invokes `cargo metadata` and exposes the resulting
// workspace snapshot. The snapshot is treated as immutable for one run.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Package describes one workspace member as reported by cargo.
type Package struct {
	Name         string              `json:"name"`
	ManifestPath string              `json:"manifest_path"`
	Features     map[string][]string `json:"features"`
	Publish      []string            `json:"publish"`
}

// IsPrivate reports whether publishing is disabled for the package
// (`publish = false` in its manifest, reported as an empty registry list).
func (p *Package) IsPrivate() bool {
	return p.Publish != nil && len(p.Publish) == 0
}

// FeatureNames returns the package's declared feature names in sorted
// order, with the implicit "default" feature excluded.
func (p *Package) FeatureNames() []string {
	names := make([]string, 0, len(p.Features))
	for name := range p.Features {
		if name == "default" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metadata is the workspace description for one run.
type Metadata struct {
	Packages      []Package `json:"packages"`
	WorkspaceRoot string    `json:"workspace_root"`
}

// Load runs `cargo metadata --no-deps` and parses the result. When
// manifestPath is empty, cargo resolves the workspace from the current
// directory.
func Load(cargo, manifestPath string) (*Metadata, error) {
	args := []string{"metadata", "--format-version", "1", "--no-deps"}
	if manifestPath != "" {
		args = append(args, "--manifest-path", manifestPath)
	}

	cmd := exec.Command(cargo, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("cargo metadata: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("cargo metadata: %w", err)
	}
	return Parse(stdout.Bytes())
}

// Parse parses `cargo metadata --format-version 1` output.
func Parse(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing cargo metadata output: %w", err)
	}
	return &meta, nil
}

// CargoBinary resolves the cargo executable to invoke. The
// CARGO_HACK_CARGO_SRC override takes precedence over cargo's own CARGO.
func CargoBinary() string {
	if v := os.Getenv("CARGO_HACK_CARGO_SRC"); v != "" {
		return v
	}
	if v := os.Getenv("CARGO"); v != "" {
		return v
	}
	return "cargo"
}
