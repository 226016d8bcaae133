// Package cli provides the command-line interface for stage-model-builder.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stagemodel/stage-model-builder/internal/config"
	"github.com/stagemodel/stage-model-builder/internal/exporter"
	"github.com/stagemodel/stage-model-builder/internal/schema"
	"github.com/stagemodel/stage-model-builder/internal/statement"
	"github.com/stagemodel/stage-model-builder/internal/storage"
)

var (
	// Colors for status output
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "stage-model-builder <source> <output>",
	Short: "Generate a snake_case staging select from a parquet schema",
	Long: `stage-model-builder - staging model generator

Reads the schema of a parquet file, local or in object storage, and writes a
select fragment listing every column. Columns that are not snake_case are
aliased to their snake_case name:

  select id, userName as user_name, CreatedAt as created_at from

The trailing "from" is left open for the source table.

An <output> of "-" prints the fragment to stdout instead of creating a file
named "-". Use "./-" to write a file with that name.

Supported locations:
  • local paths
  • s3://bucket/key (AWS S3 or S3-compatible via --host)
  • gs://bucket/key (Google Cloud Storage)
  • az://container/key, abfss://container@account.dfs.core.windows.net/key`,
	Example: `  # Local file
  stage-model-builder data/events.parquet models/stg_events.sql

  # S3-compatible store with explicit credentials
  stage-model-builder s3://lake/raw/events.parquet stg_events.sql -H http://localhost:9000 -k minio -s minio123

  # Print to stdout
  stage-model-builder s3://lake/raw/events.parquet -`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCommand,
}

func init() {
	rootCmd.Flags().StringP("host", "H", "", "Override the object storage endpoint URL (ignored for local paths)")
	rootCmd.Flags().StringP("key", "k", "", "Object storage access key (S3 key id, Azure account name, GCS credentials file)")
	rootCmd.Flags().StringP("secret", "s", "", "Object storage access secret (S3 secret key, Azure account key)")
	rootCmd.Flags().StringP("region", "r", "", "S3 region (default: ambient AWS region or us-east-1)")
	rootCmd.Flags().StringP("config", "c", "", "YAML config file with storage settings")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

// SetVersion sets the string printed by --version.
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg.Source = args[0]
	cfg.Output = args[1]

	if err := cfg.Validate(); err != nil {
		return err
	}

	return run(cmd.Context(), cfg, newLogger(cfg.Verbose))
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// run reads the schema, builds the fragment and writes it. Status lines go to
// stderr so stdout carries only the fragment when the output is "-".
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !storage.IsRemote(cfg.Source) && !cfg.Storage.IsZero() {
		warnColor.Fprintf(os.Stderr, "Warning: storage settings are ignored for local path %s\n", cfg.Source)
	}

	infoColor.Fprintf(os.Stderr, "Reading schema from %s\n", cfg.Source)
	names, err := schema.NewReader(logger).ColumnNames(ctx, cfg.Source, &cfg.Storage)
	if err != nil {
		return err
	}
	infoColor.Fprintf(os.Stderr, "  Found %d columns, %d aliased\n", len(names), statement.CountAliased(names))

	fragment := statement.BuildTemplate(statement.BuildAliases(names))
	logger.Debug("built select fragment", "length", len(fragment))

	if _, err := exporter.WriteFragment(cfg.Output, fragment); err != nil {
		return err
	}
	if cfg.Output != exporter.StdoutPath {
		successColor.Fprintf(os.Stderr, "✓ Stage model written to %s\n", cfg.Output)
	}

	return nil
}
