package workspace

import (
	"fmt"
	"slices"

	"github.com/ryoqun/cargo-hack/internal/manifest"
	"github.com/ryoqun/cargo-hack/internal/metadata"
	"github.com/ryoqun/cargo-hack/internal/ui"
)

// Kind classifies how the orchestrator treats a selected package. It is a
// closed set; consumers switch exhaustively.
type Kind int

const (
	// KindNormal packages receive a cargo invocation.
	KindNormal Kind = iota
	// KindSkipAsPrivate packages are reported and skipped, never failing
	// the run.
	KindSkipAsPrivate
)

// Package is one selected workspace member paired with its loaded manifest.
// Kind is decided at selection time and never changes.
type Package struct {
	Name         string
	ManifestPath string
	Manifest     *manifest.Manifest
	Features     []string
	Kind         Kind
}

// SelectOpts configures package selection.
type SelectOpts struct {
	Workspace     bool
	Package       []string
	Exclude       []string
	IgnorePrivate bool
}

// Select resolves the ordered package set for a run:
//
//  1. With Workspace set, all members except the excluded names; an
//     exclude name matching no member is a non-fatal warning.
//  2. With an explicit Package list, every name must match a member or the
//     selection fails before anything runs.
//  3. With a virtual current manifest, all members.
//  4. Otherwise, the member matching the current manifest's package name.
//
// The result preserves the metadata's package order; selection filters,
// never reorders.
func Select(meta *metadata.Metadata, current *manifest.Manifest, opts SelectOpts, log *ui.Logger) ([]*Package, error) {
	switch {
	case opts.Workspace:
		for _, spec := range opts.Exclude {
			if !hasPackage(meta, spec) {
				log.Warn("excluded package(s) %s not found in workspace `%s`", spec, meta.WorkspaceRoot)
			}
		}
		return build(meta, opts, func(p *metadata.Package) bool {
			return !slices.Contains(opts.Exclude, p.Name)
		})
	case len(opts.Package) > 0:
		for _, spec := range opts.Package {
			if !hasPackage(meta, spec) {
				return nil, fmt.Errorf("package ID specification `%s` matched no packages", spec)
			}
		}
		return build(meta, opts, func(p *metadata.Package) bool {
			return slices.Contains(opts.Package, p.Name)
		})
	case current.IsVirtual():
		return build(meta, opts, func(*metadata.Package) bool { return true })
	default:
		name := current.PackageName()
		return build(meta, opts, func(p *metadata.Package) bool { return p.Name == name })
	}
}

func build(meta *metadata.Metadata, opts SelectOpts, keep func(*metadata.Package) bool) ([]*Package, error) {
	var pkgs []*Package
	for i := range meta.Packages {
		mp := &meta.Packages[i]
		if !keep(mp) {
			continue
		}
		m, err := manifest.Load(mp.ManifestPath)
		if err != nil {
			return nil, err
		}
		kind := KindNormal
		if opts.IgnorePrivate && mp.IsPrivate() {
			kind = KindSkipAsPrivate
		}
		pkgs = append(pkgs, &Package{
			Name:         mp.Name,
			ManifestPath: mp.ManifestPath,
			Manifest:     m,
			Features:     mp.FeatureNames(),
			Kind:         kind,
		})
	}
	return pkgs, nil
}

func hasPackage(meta *metadata.Metadata, name string) bool {
	for i := range meta.Packages {
		if meta.Packages[i].Name == name {
			return true
		}
	}
	return false
}
