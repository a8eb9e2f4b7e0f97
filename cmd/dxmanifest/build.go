package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/dxmanifest/internal/config"
	"github.com/nao1215/dxmanifest/internal/database"
	"github.com/nao1215/dxmanifest/internal/fsx"
	dxlog "github.com/nao1215/dxmanifest/internal/log"
	"github.com/nao1215/dxmanifest/internal/model"
	"github.com/nao1215/dxmanifest/internal/pipeline"
	"github.com/nao1215/dxmanifest/internal/report"
	"github.com/spf13/cobra"
)

// reportFilePerm is the permission of summary files written with --report.
const reportFilePerm = 0600

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the diagnosis manifest of a dataset",
		Long: `Build scans the image directory, loads the phenotype reference table,
joins both on subject identifier and writes the manifest CSV.

Subjects whose diagnosis equals the pending value are left out. Diagnosis
code 0 becomes label 0, every other integer becomes label 1. The manifest
is replaced atomically, so an interrupted or failed build never leaves a
partial file behind.

Examples:
  # Build from explicit paths
  dxmanifest build --image-dir ./images --reference ./phenotypic.tsv

  # Build a dataset declared in .dxmanifest
  dxmanifest build --dataset peking

  # Comma separated table with custom columns
  dxmanifest build --image-dir ./images --reference ./pheno.csv \
    --delimiter , --id-column subject --dx-column group

  # Print the run summary as JSON
  dxmanifest build --dataset peking --json`,
		Args: cobra.NoArgs,
		RunE: runBuildCmd,
	}

	// Inputs and output
	cmd.Flags().StringP("dataset", "d", "",
		"Dataset name from the configuration file")
	cmd.Flags().StringP("image-dir", "i", "",
		"Directory holding the preprocessed scan files")
	cmd.Flags().StringP("reference", "r", "",
		"Phenotype reference table")
	cmd.Flags().String("output-dir", "",
		"Manifest directory (default: directory of the reference table)")
	cmd.Flags().String("output-name", config.DefaultOutputName,
		"Manifest file name")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .dxmanifest in current or home directory)")

	// Reference table layout
	cmd.Flags().String("id-column", config.DefaultIdentifierColumn,
		"Reference column holding the subject identifier")
	cmd.Flags().String("dx-column", config.DefaultDiagnosisColumn,
		"Reference column holding the diagnosis")
	cmd.Flags().String("pending", config.DefaultPendingValue,
		"Diagnosis value of unresolved subjects")
	cmd.Flags().String("delimiter", "tab",
		`Reference field separator: "tab" or a single character`)
	cmd.Flags().String("selection", config.DefaultSelection,
		`Filename digit run used as identifier: "longest" or "last"`)

	// Summary and history
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report", "",
		"Also write the run summary to this file")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("history-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBuild(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from the configuration file and the
// command flags. Flags explicitly set on the command line win over the
// selected dataset, which wins over the file defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.Dataset, err = flags.GetString("dataset")
	if err != nil {
		return nil, err
	}

	// An explicit --config path must exist; otherwise a missing file
	// simply means no file defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.Datasets, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.Datasets = &config.File{Datasets: make(map[string]config.DatasetConfig)}
	}

	ds, err := cfg.Datasets.GetDataset(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	cfg.Apply(ds)

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"image-dir", &cfg.ImageDir},
		{"reference", &cfg.ReferencePath},
		{"output-dir", &cfg.OutputDir},
		{"output-name", &cfg.OutputName},
		{"id-column", &cfg.IdentifierColumn},
		{"dx-column", &cfg.DiagnosisColumn},
		{"pending", &cfg.PendingValue},
		{"delimiter", &cfg.Delimiter},
		{"selection", &cfg.Selection},
		{"report", &cfg.ReportFile},
		{"history-dir", &cfg.DBDir},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	return cfg, nil
}

// setupLogger creates the secure logger writing to the command's stderr.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json") //nolint:errcheck // defined on root
	}
	if jsonLogs {
		return dxlog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return dxlog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// runBuild executes the pipeline, records the run and prints its summary.
// The build error, if any, is returned after the summary has been written.
func runBuild(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting build",
		"dataset", cfg.Dataset,
		"imageDir", cfg.ImageDir,
		"reference", cfg.ReferencePath,
		"output", cfg.OutputPath(),
		"saveToDB", cfg.SaveToDB,
	)

	p, err := pipeline.DefaultPipeline(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	run := pipeline.NewRun(cfg)
	buildErr := p.Execute(ctx, run)
	summary := model.NewSummary(run)

	previous := recordRun(ctx, cfg, summary, logger)

	if err := outputSummary(cmd.OutOrStdout(), cfg, summary); err != nil {
		logger.Error("summary output failed", "error", err)
		if buildErr == nil {
			return err
		}
	}

	if buildErr != nil {
		return buildErr
	}

	if previous != nil {
		status := "changed"
		if previous.Digest == summary.Digest {
			status = "unchanged"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Manifest %s since run #%d (%s)\n",
			status, previous.ID, previous.StartedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// recordRun saves summary in the history database and returns the
// previous successful run for the same manifest, if any. History errors
// are logged and never fail the build.
func recordRun(ctx context.Context, cfg *config.Config, summary *model.Summary, logger *slog.Logger) *model.Summary {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history database unavailable", "dir", cfg.DBDir, "error", err)
		return nil
	}
	defer db.Close()

	// Recording must happen even if the build was cancelled.
	ctx = context.WithoutCancel(ctx)

	previous, err := db.LatestRunForOutput(ctx, summary.OutputPath)
	if err != nil {
		logger.Warn("failed to read history", "error", err)
	}

	if _, err := db.SaveRun(ctx, summary); err != nil {
		logger.Warn("failed to record run", "error", err)
		return previous
	}
	logger.Debug("run recorded", "id", summary.ID, "db", db.Path())

	return previous
}

// outputSummary writes the summary in the configured format to out and,
// when cfg.ReportFile is set, atomically to that file as well.
func outputSummary(out io.Writer, cfg *config.Config, summary *model.Summary) error {
	if cfg.ReportFile == "" {
		_, err := summaryWriter(out, cfg).Write(summary)
		return err
	}

	var buf bytes.Buffer
	w := report.NewMultiWriter(summaryWriter(&buf, cfg), summaryWriter(out, cfg))
	if _, err := w.Write(summary); err != nil {
		return err
	}
	if err := fsx.WriteFileAtomic(cfg.ReportFile, buf.Bytes(), reportFilePerm); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// summaryWriter returns the report writer for the configured format.
func summaryWriter(w io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}
