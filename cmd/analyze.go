package cmd

import (
	"fmt"

	"github.com/huangsam/trendline/core"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/report"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/internal/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// periodFlag names the flag of period slot i.
func periodFlag(i int) string {
	return fmt.Sprintf("period%d", i)
}

// analyzeCmd stores one analysis report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <report>",
	Short: "Store the issues and measures of one analysis report.",
	Long: `Load an analysis report (YAML or JSON), reconcile its issues with the stored
ones and store its measures with variations over each differential period.

For every issue the audit trail records field changes and comments. Issues
that are no longer reported are closed; closed issues that come back are
reopened. Modules listed in --skipped-modules keep their issues untouched.

Periods are configured per slot (--period1 .. --period5):
  previous_analysis  the latest earlier analysis
  previous_version   the latest analysis of a different version
  30                 the analysis nearest to 30 days ago
  2013-01-01         the latest analysis before the end of that day
  1.0                the latest analysis of version 1.0

Examples:
  # Store a report with the default periods
  trendline analyze report.yaml

  # Replay an old report at its original date with batch identity
  trendline analyze old.yaml --project-date 2013-01-01 --identity batch

  # Compare against a fixed release and expose engine metrics
  trendline analyze report.yaml --period3 1.0 --metrics-addr :9464`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		rep, err := report.Load(args[0])
		if err != nil {
			return err
		}

		provider, err := telemetry.Setup(cfg.MetricsAddr != "")
		if err != nil {
			return err
		}
		defer func() {
			if err := provider.Shutdown(rootCtx); err != nil {
				contract.LogWarn("Failed to shut down metrics provider", err)
			}
		}()
		if provider.Handler != nil {
			stop := telemetry.Serve(cfg.MetricsAddr, provider.Handler)
			defer func() {
				if err := stop(rootCtx); err != nil {
					contract.LogWarn("Failed to stop metrics server", err)
				}
			}()
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
		}
		metrics, err := telemetry.NewEngineMetrics(provider.Meter())
		if err != nil {
			return err
		}

		return withStore(func(st *store.Store) error {
			return core.ExecuteAnalyze(rootCtx, cfg, st, rep, metrics, out)
		})
	},
}
