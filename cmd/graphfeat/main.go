package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BunBunAstrale/AlmostDoctorsAI/adapters/excel"
	"github.com/BunBunAstrale/AlmostDoctorsAI/adapters/matrixcsv"
	"github.com/BunBunAstrale/AlmostDoctorsAI/adapters/report"
	"github.com/BunBunAstrale/AlmostDoctorsAI/app"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/connectome"
	"github.com/BunBunAstrale/AlmostDoctorsAI/domain/run"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/config"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/errors"
	"github.com/BunBunAstrale/AlmostDoctorsAI/internal/features"
	"github.com/BunBunAstrale/AlmostDoctorsAI/ports"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "graphfeat:", err)
		stop()
		os.Exit(errors.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "graphfeat",
		Short:         "Graph feature tables from brain connectivity matrices",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (GRAPHFEAT_* env vars and flags override it)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "ERROR, WARN, INFO, DEBUG or TRACE")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this rotating file")

	rootCmd.AddCommand(
		newExtractCmd(&configPath),
		newInspectCmd(&configPath),
	)
	return rootCmd
}

// registerEngineFlags adds the flags that change feature values
func registerEngineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("threshold", 0, "edge threshold for metrics; weights must be strictly greater")
	f.Float64("density", 0, "keep only this fraction of strongest weights for metrics, 0 disables")
	f.Bool("zero-diag", true, "zero the diagonal after symmetrization")
	f.Bool("clip-negatives", true, "set negative weights to zero")
	f.Int("node-pad", features.DefaultNodePad, "zero-pad width of node indices in column names")
}

func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, *internal.Logger, io.Closer, error) {
	bindings := map[string]string{
		"threshold":      "engine.threshold",
		"density":        "engine.density",
		"zero-diag":      "engine.zero_diag",
		"clip-negatives": "engine.clip_negatives",
		"node-pad":       "engine.node_pad",
		"labels":         "paths.labels",
		"matrices":       "paths.matrices",
		"output":         "paths.output",
		"manifest":       "paths.manifest",
		"metrics":        "paths.metrics",
		"report":         "paths.report",
		"id-column":      "labels.id_column",
		"label-column":   "labels.label_column",
		"sheet":          "labels.sheet",
		"workers":        "batch.workers",
		"zscore":         "batch.zscore",
		"log-level":      "log.level",
		"log-file":       "log.file",
	}
	flags := cmd.Flags()
	for name, key := range bindings {
		if flags.Lookup(name) != nil {
			config.BindFlag(flags, name, key)
		}
	}

	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.ValidateEngine(); err != nil {
		return nil, nil, nil, err
	}

	level, logCfg := cfg.Logging()
	logger := internal.NewLogger(level)
	closer := logCfg.Apply(logger)
	internal.DefaultLogger = logger
	return cfg, logger, closer, nil
}

func newExtractCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Build the feature table for a cohort",
		Long: `Build one feature row per subject from a directory of connectivity matrices
(one headerless N×N CSV per subject) and a label sheet (CSV or XLSX).

Matrix files are matched to labels by canonical subject id: the digits of the
file name, or the lowercased name without separators and subject prefixes.

Example: graphfeat extract --labels labels.xlsx --matrices ./conn --output features.csv --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := cfg.Validate(); err != nil {
				return err
			}
			return runExtract(cmd.Context(), cfg, logger)
		},
	}

	registerEngineFlags(cmd)
	f := cmd.Flags()
	f.String("labels", "", "label sheet (.csv or .xlsx)")
	f.String("matrices", "", "directory of per-subject matrix CSVs")
	f.String("output", "features.csv", "feature table (.csv or .xlsx)")
	f.String("manifest", "", "write a JSON run manifest here")
	f.String("metrics", "", "write Prometheus text-format run metrics here")
	f.String("report", "", "write a run report here (.md, or .html for a rendered page)")
	f.String("id-column", "", "label sheet id column (default: auto-detect)")
	f.String("label-column", "", "label sheet label column (default: auto-detect)")
	f.String("sheet", "", "XLSX sheet with the labels (default: first sheet)")
	f.Int("workers", 1, "subjects extracted in parallel")
	f.Bool("zscore", false, "z-score every feature column of the final table")

	return cmd
}

func runExtract(ctx context.Context, cfg *config.Config, logger *internal.Logger) error {
	labels := excel.NewLabelReader(excel.LabelConfig{
		FilePath:    cfg.Paths.Labels,
		IDColumn:    cfg.Labels.IDColumn,
		LabelColumn: cfg.Labels.LabelColumn,
		Sheet:       cfg.Labels.Sheet,
	}, logger)
	matrices := matrixcsv.NewDirectory(cfg.Paths.Matrices)
	sink := excel.NewTableWriter(cfg.Paths.Output, logger)

	svc := app.NewBatchService(labels, matrices, sink, logger)
	if cfg.Paths.Report != "" {
		svc.WithReport(report.NewWriter(cfg.Paths.Report))
	}

	result, err := svc.Run(ctx, app.BatchRequest{
		Features:    cfg.FeatureOptions(),
		NodePad:     cfg.Engine.NodePad,
		Workers:     cfg.Batch.Workers,
		ZScore:      cfg.Batch.ZScore,
		CodeVersion: version,
		Settings:    cfg.Settings(),
		Inputs:      run.Inputs{Labels: cfg.Paths.Labels, Matrices: cfg.Paths.Matrices},
		Output:      cfg.Paths.Output,
	})
	if err != nil {
		return err
	}

	if cfg.Paths.Manifest != "" {
		if err := report.WriteManifest(cfg.Paths.Manifest, result.Manifest); err != nil {
			return err
		}
		logger.Info("manifest written to %s", cfg.Paths.Manifest)
	}
	if cfg.Paths.Metrics != "" {
		if err := svc.Recorder().WriteTextfile(cfg.Paths.Metrics); err != nil {
			return errors.IOError("write metrics", cfg.Paths.Metrics, err)
		}
	}
	logger.Info("feature scaling and selection belong inside cross-validation folds")
	return nil
}

func newInspectCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <matrix.csv>",
		Short: "Print the global and per-node features of one matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closer, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closer.Close()

			path := args[0]
			ref := ports.MatrixRef{Path: path, Name: filepath.Base(path)}
			cells, err := matrixcsv.NewDirectory(filepath.Dir(path)).ReadMatrix(cmd.Context(), ref)
			if err != nil {
				return err
			}
			ex, err := features.ExtractCells(cells, cfg.FeatureOptions())
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), ex)
			}
			return printTables(cmd.OutOrStdout(), ex)
		},
	}

	registerEngineFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func printTables(out io.Writer, ex *features.Extraction) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range ex.Global.Fields() {
		value := f.Value.String()
		if value == "" {
			value = "undefined"
		}
		fmt.Fprintf(tw, "%s\t%s\n", f.Name, value)
	}
	fmt.Fprintln(tw)

	fmt.Fprint(tw, "node")
	for _, m := range connectome.NodalMetricNames {
		fmt.Fprintf(tw, "\t%s", m)
	}
	fmt.Fprintln(tw)
	for node, row := range ex.Nodal {
		fmt.Fprintf(tw, "%d", node)
		for _, v := range row.Values() {
			fmt.Fprintf(tw, "\t%.6g", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func printJSON(out io.Writer, ex *features.Extraction) error {
	global := make(map[string]*float64, len(connectome.GlobalFieldNames))
	for _, f := range ex.Global.Fields() {
		if f.Value.IsDefined() {
			v := f.Value.Float()
			global[f.Name] = &v
		} else {
			global[f.Name] = nil
		}
	}
	nodal := make(map[string][]float64, len(connectome.NodalMetricNames))
	for _, m := range connectome.NodalMetricNames {
		col, err := ex.Nodal.Column(m)
		if err != nil {
			return err
		}
		nodal[m] = col
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"nodes":  ex.Matrix.N(),
		"global": global,
		"nodal":  nodal,
	})
}
