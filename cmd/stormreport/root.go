package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

var (
	inputPath string
	outputDir string
	topN      int
)

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "stormreport",
		Short:        "Rank storm event types by health and economic impact",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlagOverrides(cmd, cfg); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = observability.NewLogger(cfg)
			a.metrics = observability.NewMetrics()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd)
		},
	}

	root.PersistentFlags().StringVar(&inputPath, "input", "", "dataset path (overrides INPUT_PATH)")
	root.PersistentFlags().StringVar(&outputDir, "out", "", "report output directory (overrides OUTPUT_DIR)")
	root.PersistentFlags().IntVar(&topN, "top", 0, "ranking cutoff (overrides TOP_N)")

	root.AddCommand(a.runCmd(), a.fetchCmd(), a.validateCmd(), a.genmockCmd())
	return root
}

// applyFlagOverrides copies explicitly set flags over the environment config,
// holding --top to the same rule as TOP_N.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath = inputPath
	}
	if flags.Changed("out") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("top") {
		if topN < 0 {
			return fmt.Errorf("invalid --top %d: must be a non-negative integer", topN)
		}
		cfg.TopN = topN
	}
	return nil
}
