// Package manifest owns the on-disk representation of a single Cargo.toml:
// locating it, deriving the package name (or the virtual-workspace flag),
// and producing a variant of its content with dev-dependency tables removed.
package manifest
