package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manifest holds one package's Cargo.toml as read from disk. The struct
// never writes to disk itself; mutation and restoration are the caller's
// responsibility.
type Manifest struct {
	Path string
	Raw  []byte

	name    string
	virtual bool
}

type tomlManifest struct {
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Workspace *struct{} `toml:"workspace"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses Cargo.toml content. The path is used for error context only.
func Parse(path string, data []byte) (*Manifest, error) {
	var tm tomlManifest
	if err := toml.Unmarshal(data, &tm); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	m := &Manifest{Path: path, Raw: data}
	switch {
	case tm.Package != nil:
		if tm.Package.Name == "" {
			return nil, fmt.Errorf("manifest %s: package.name is required", path)
		}
		m.name = tm.Package.Name
	case tm.Workspace != nil:
		m.virtual = true
	default:
		return nil, fmt.Errorf("manifest %s: expected a [package] or [workspace] table", path)
	}
	return m, nil
}

// PackageName returns the declared package name, or empty for a virtual
// manifest.
func (m *Manifest) PackageName() string { return m.name }

// IsVirtual reports whether this is a workspace-root manifest that declares
// no package of its own.
func (m *Manifest) IsVirtual() bool { return m.virtual }

// FindRoot returns the path of the closest Cargo.toml at or above wd.
func FindRoot(wd string) (string, error) {
	dir := wd
	for {
		p := filepath.Join(dir, "Cargo.toml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find Cargo.toml in %s or any parent directory", wd)
		}
		dir = parent
	}
}
