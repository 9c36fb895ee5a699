// Package restore guarantees a mutated manifest file is written back to
// its original bytes when the mutation's scope ends.
package restore

import (
	"fmt"
	"os"
)

// Manager decides whether a run restores manifests at all. A run that
// persists its manifest rewrite registers inert handles.
type Manager struct {
	enabled bool
}

// NewManager creates a manager. When enabled is false, every handle it
// hands out is a no-op.
func NewManager(enabled bool) *Manager { return &Manager{enabled: enabled} }

// Handle owns the original bytes of exactly one manifest file and writes
// them back at most once.
type Handle struct {
	path    string
	content []byte
	done    bool
}

// Register captures the original content for path before the caller
// overwrites it. Callers must arrange for Restore to run on every exit
// path, typically:
//
//	h := mgr.Register(path, content)
//	defer h.Restore()
//
// with an explicit Restore call on the success path to surface write
// errors.
func (m *Manager) Register(path string, content []byte) *Handle {
	h := &Handle{path: path, content: append([]byte(nil), content...)}
	if !m.enabled {
		h.done = true
	}
	return h
}

// Restore writes the captured content back to the manifest file. Calling
// it more than once is a no-op.
func (h *Handle) Restore() error {
	if h.done {
		return nil
	}
	h.done = true
	if err := os.WriteFile(h.path, h.content, 0644); err != nil {
		return fmt.Errorf("restoring manifest file %s: %w", h.path, err)
	}
	return nil
}
