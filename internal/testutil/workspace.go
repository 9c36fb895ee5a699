// Package testutil builds throwaway cargo workspaces for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ryoqun/cargo-hack/internal/metadata"
)

// Member describes one package of a fixture workspace.
type Member struct {
	Name     string
	Manifest string // raw Cargo.toml content; a minimal one when empty
	Private  bool
	Features []string
}

// Workspace writes a cargo workspace with a virtual root manifest under a
// temp directory and returns its root plus a metadata snapshot describing
// it, in member order.
func Workspace(t *testing.T, members ...Member) (string, *metadata.Metadata) {
	t.Helper()
	root := t.TempDir()
	meta := &metadata.Metadata{WorkspaceRoot: root}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, fmt.Sprintf("%q", m.Name))

		dir := filepath.Join(root, m.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		content := m.Manifest
		if content == "" {
			content = MemberManifest(m.Name, m.Private)
		}
		path := filepath.Join(dir, "Cargo.toml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		mp := metadata.Package{
			Name:         m.Name,
			ManifestPath: path,
			Features:     map[string][]string{},
		}
		for _, f := range m.Features {
			mp.Features[f] = nil
		}
		if m.Private {
			mp.Publish = []string{}
		}
		meta.Packages = append(meta.Packages, mp)
	}

	rootManifest := fmt.Sprintf("[workspace]\nmembers = [%s]\n", strings.Join(names, ", "))
	if err := os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte(rootManifest), 0644); err != nil {
		t.Fatal(err)
	}
	return root, meta
}

// MemberManifest renders a minimal member Cargo.toml including a
// dev-dependency table, so suppression has something to remove.
func MemberManifest(name string, private bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[package]\nname = %q\nversion = \"0.1.0\"\n", name)
	if private {
		b.WriteString("publish = false\n")
	}
	b.WriteString("\n[dependencies]\n\n[dev-dependencies]\neasytime = \"0.1\"\n")
	return b.String()
}
