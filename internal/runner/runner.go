// Package runner drives the per-package execution loop: feature argument
// composition, dev-dependency suppression around the cargo invocation, and
// fail-fast iteration over the selected set.
package runner

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/ryoqun/cargo-hack/internal/manifest"
	"github.com/ryoqun/cargo-hack/internal/process"
	"github.com/ryoqun/cargo-hack/internal/restore"
	"github.com/ryoqun/cargo-hack/internal/ui"
	"github.com/ryoqun/cargo-hack/internal/workspace"
)

// Progress tracks run-wide invocation counters. It is threaded by pointer
// through the run, never held in package-level state, so independent runs
// cannot interfere.
type Progress struct {
	Count int
	Total int
}

// Options is the resolved configuration for one run.
type Options struct {
	Subcommand string

	NoDevDeps     bool
	RemoveDevDeps bool

	EachFeature           bool
	Features              []string
	NoDefaultFeatures     bool
	IgnoreUnknownFeatures bool
}

// Runner executes a run over a selected package set, one package at a
// time, in selection order.
type Runner struct {
	opts    Options
	restore *restore.Manager
	proc    process.Runner
	log     *ui.Logger
}

// New creates a runner. Manifest restoration is armed only for a
// temporary suppression: --remove-dev-deps persists its rewrite.
func New(opts Options, proc process.Runner, log *ui.Logger) *Runner {
	return &Runner{
		opts:    opts,
		restore: restore.NewManager(opts.NoDevDeps && opts.Subcommand != ""),
		proc:    proc,
		log:     log,
	}
}

// Run visits each package in order and stops at the first failure. Skipped
// packages never count as failures.
func (r *Runner) Run(base *process.Builder, pkgs []*workspace.Package) error {
	if r.opts.Subcommand == "" && !r.opts.RemoveDevDeps {
		panic("no subcommand or valid flag specified")
	}

	progress := &Progress{}
	for _, pkg := range pkgs {
		if pkg.Kind == workspace.KindNormal {
			progress.Total += r.invocations(pkg)
		}
	}

	for _, pkg := range pkgs {
		if err := r.execPackage(base, pkg, progress); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) invocations(pkg *workspace.Package) int {
	if r.opts.Subcommand == "" {
		return 0
	}
	if r.opts.EachFeature && len(pkg.Features) > 0 {
		return len(pkg.Features) + 1
	}
	return 1
}

func (r *Runner) execPackage(base *process.Builder, pkg *workspace.Package, progress *Progress) error {
	switch pkg.Kind {
	case workspace.KindSkipAsPrivate:
		r.log.Info("skipped running on private package %s", pkg.Name)
		return nil
	case workspace.KindNormal:
		line := base.Clone()
		r.appendFeatureArgs(line, pkg)
		line.Args("--manifest-path", pkg.ManifestPath)

		if r.opts.NoDevDeps || r.opts.RemoveDevDeps {
			return r.execWithoutDevDeps(line, pkg, progress)
		}
		return r.exec(line, pkg, progress)
	}
	panic(fmt.Sprintf("unknown package kind: %d", pkg.Kind))
}

// appendFeatureArgs applies the run's feature selection to one package's
// command line.
func (r *Runner) appendFeatureArgs(line *process.Builder, pkg *workspace.Package) {
	features := r.opts.Features
	if r.opts.IgnoreUnknownFeatures {
		known := make([]string, 0, len(features))
		for _, f := range features {
			if slices.Contains(pkg.Features, f) {
				known = append(known, f)
				continue
			}
			r.log.Warn("skipped applying unknown feature `%s` to %s", f, pkg.Name)
		}
		features = known
	}
	if len(features) > 0 {
		line.Args("--features", strings.Join(features, ","))
	}
	if r.opts.NoDefaultFeatures {
		line.Arg("--no-default-features")
	}
}

// execWithoutDevDeps overwrites the package manifest with dev-dependency
// tables removed, runs the invocation, and puts the original bytes back.
// The guard is registered before the overwrite, so the original content is
// restored on every exit path once the file has been touched.
func (r *Runner) execWithoutDevDeps(line *process.Builder, pkg *workspace.Package, progress *Progress) error {
	mutated := manifest.RemoveDevDeps(pkg.Manifest.Raw)
	h := r.restore.Register(pkg.ManifestPath, pkg.Manifest.Raw)
	defer func() {
		if err := h.Restore(); err != nil {
			r.log.Warn("%v", err)
		}
	}()

	if err := os.WriteFile(pkg.ManifestPath, mutated, 0644); err != nil {
		return fmt.Errorf("failed to update manifest file %s: %w", pkg.ManifestPath, err)
	}

	if err := r.exec(line, pkg, progress); err != nil {
		return err
	}
	return h.Restore()
}

func (r *Runner) exec(line *process.Builder, pkg *workspace.Package, progress *Progress) error {
	if r.opts.Subcommand == "" {
		// --remove-dev-deps alone rewrites manifests without invoking cargo.
		return nil
	}
	if err := r.execLine(line, pkg, progress); err != nil {
		return err
	}
	if !r.opts.EachFeature {
		return nil
	}
	for _, f := range pkg.Features {
		l := line.Clone()
		if !r.opts.NoDefaultFeatures {
			l.Arg("--no-default-features")
		}
		l.Args("--features", f)
		if err := r.execLine(l, pkg, progress); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) execLine(line *process.Builder, pkg *workspace.Package, progress *Progress) error {
	progress.Count++
	r.log.Info("running %s on %s (%d/%d)", line, pkg.Name, progress.Count, progress.Total)
	if err := r.proc.Run(line.Bin(), line.ArgList()); err != nil {
		return fmt.Errorf("%s failed on %s: %w", line, pkg.Name, err)
	}
	return nil
}
