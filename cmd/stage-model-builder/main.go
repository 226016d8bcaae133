// stage-model-builder - staging model generator
//
// A small Go CLI that reads the schema of a parquet file, local or in object
// storage, and writes a select fragment that aliases every column to its
// snake_case name.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/stagemodel/stage-model-builder/internal/cli"
)

// Version information (set via ldflags at build time)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, buildTime)
	if err := cli.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		_, _ = errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
