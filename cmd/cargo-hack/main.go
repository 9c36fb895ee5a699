package main

import (
	"os"

	"github.com/ryoqun/cargo-hack/internal/ui"
)

// Set via -ldflags at build time.
var version = "dev"

// colorMode is resolved while running the root command so the top-level
// error report honors an explicit --color.
var colorMode = ui.ColorAuto

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.NewLogger(os.Stderr, colorMode).Error(err)
		os.Exit(1)
	}
}
