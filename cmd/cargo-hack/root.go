package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryoqun/cargo-hack/internal/config"
	"github.com/ryoqun/cargo-hack/internal/manifest"
	"github.com/ryoqun/cargo-hack/internal/metadata"
	"github.com/ryoqun/cargo-hack/internal/process"
	"github.com/ryoqun/cargo-hack/internal/runner"
	"github.com/ryoqun/cargo-hack/internal/ui"
	"github.com/ryoqun/cargo-hack/internal/workspace"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cargo-hack [flags] <cargo-subcommand> [cargo args...]",
		Short: "Run a cargo subcommand across workspace packages, optionally without dev-dependencies",
		Long: `cargo-hack selects packages of a cargo workspace, runs the given cargo
subcommand for each of them in declaration order, and can temporarily strip
dev-dependency tables from each Cargo.toml around its invocation. Mutated
manifests are restored byte-for-byte whether the invocation succeeds or fails.

Hack-owned flags must come before the cargo subcommand; everything from the
subcommand onwards is forwarded to cargo unchanged.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		RunE:          runHack,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := cmd.Flags()
	fl.SetInterspersed(false)
	fl.Bool("workspace", false, "Perform the command for all packages in the workspace")
	fl.Bool("all", false, "Alias for --workspace")
	fl.StringSliceP("package", "p", nil, "Package(s) to perform the command for")
	fl.StringSlice("exclude", nil, "Exclude package(s) from the command (requires --workspace)")
	fl.Bool("each-feature", false, "Perform the command once per declared feature of each package")
	fl.StringSlice("features", nil, "Features to activate for every package")
	fl.Bool("no-default-features", false, "Do not activate the default feature")
	fl.Bool("ignore-unknown-features", false, "Drop --features values a package does not declare, with a warning")
	fl.Bool("ignore-private", false, "Skip packages with publishing disabled")
	fl.Bool("no-dev-deps", false, "Perform the command without dev-dependencies, restoring manifests afterwards")
	fl.Bool("remove-dev-deps", false, "Remove dev-dependencies from manifests without restoring them")
	fl.String("color", "", "Coloring: auto, always, never")
	fl.String("manifest-path", "", "Path to Cargo.toml")
	fl.BoolP("interactive", "i", false, "Interactively narrow the selected packages")

	return cmd
}

func runHack(cmd *cobra.Command, args []string) error {
	fl := cmd.Flags()
	workspaceFlag, _ := fl.GetBool("workspace")
	all, _ := fl.GetBool("all")
	packages, _ := fl.GetStringSlice("package")
	exclude, _ := fl.GetStringSlice("exclude")
	eachFeature, _ := fl.GetBool("each-feature")
	features, _ := fl.GetStringSlice("features")
	noDefaultFeatures, _ := fl.GetBool("no-default-features")
	ignoreUnknownFeatures, _ := fl.GetBool("ignore-unknown-features")
	ignorePrivate, _ := fl.GetBool("ignore-private")
	noDevDeps, _ := fl.GetBool("no-dev-deps")
	removeDevDeps, _ := fl.GetBool("remove-dev-deps")
	colorStr, _ := fl.GetString("color")
	manifestPath, _ := fl.GetString("manifest-path")
	interactive, _ := fl.GetBool("interactive")
	workspaceFlag = workspaceFlag || all

	subcommand := ""
	passthrough := args
	if len(passthrough) > 0 && passthrough[0] == "--" {
		passthrough = passthrough[1:]
	}
	if len(passthrough) > 0 {
		subcommand = passthrough[0]
		passthrough = passthrough[1:]
	}

	if subcommand == "" && !removeDevDeps {
		return fmt.Errorf("no subcommand specified (pass a cargo subcommand such as `check`, or --remove-dev-deps)")
	}

	cargo := metadata.CargoBinary()

	var current *manifest.Manifest
	var err error
	if manifestPath != "" {
		current, err = manifest.Load(manifestPath)
	} else {
		var wd, rootPath string
		if wd, err = os.Getwd(); err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		if rootPath, err = manifest.FindRoot(wd); err != nil {
			return err
		}
		current, err = manifest.Load(rootPath)
	}
	if err != nil {
		return err
	}

	meta, err := metadata.Load(cargo, manifestPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(meta.WorkspaceRoot)
	if err != nil {
		return err
	}
	if !fl.Changed("color") && cfg.Color != "" {
		colorStr = cfg.Color
	}
	if !fl.Changed("exclude") && len(cfg.Exclude) > 0 {
		exclude = cfg.Exclude
	}
	if !fl.Changed("features") && len(cfg.Features) > 0 {
		features = cfg.Features
	}
	if !fl.Changed("ignore-private") && cfg.IgnorePrivate {
		ignorePrivate = true
	}
	if !fl.Changed("ignore-unknown-features") && cfg.IgnoreUnknownFeatures {
		ignoreUnknownFeatures = true
	}

	color, err := ui.ParseColor(colorStr)
	if err != nil {
		return err
	}
	colorMode = color
	log := ui.NewLogger(cmd.ErrOrStderr(), color)

	pkgs, err := workspace.Select(meta, current, workspace.SelectOpts{
		Workspace:     workspaceFlag,
		Package:       packages,
		Exclude:       exclude,
		IgnorePrivate: ignorePrivate,
	}, log)
	if err != nil {
		return err
	}

	if interactive {
		pkgs, err = pickPackages(pkgs)
		if err != nil {
			return err
		}
	}

	base := process.NewBuilder(cargo)
	if subcommand != "" {
		base.Arg(subcommand)
	}
	if colorStr != "" {
		base.Args("--color", string(color))
	}
	base.Args(passthrough...)

	r := runner.New(runner.Options{
		Subcommand:            subcommand,
		NoDevDeps:             noDevDeps,
		RemoveDevDeps:         removeDevDeps,
		EachFeature:           eachFeature,
		Features:              features,
		NoDefaultFeatures:     noDefaultFeatures,
		IgnoreUnknownFeatures: ignoreUnknownFeatures,
	}, process.ExecRunner{}, log)
	return r.Run(base, pkgs)
}
