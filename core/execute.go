package core

import (
	"context"
	"fmt"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/telemetry"
	"github.com/huangsam/trendline/schema"
	"github.com/rs/zerolog/log"
)

// ExecuteAnalyze stores one report and prints the analysis summary.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, st contract.Store, rep schema.Report,
	metrics *telemetry.EngineMetrics, out contract.ResultWriter,
) error {
	if cfg.ProjectDate != nil {
		rep.AnalysisDate = *cfg.ProjectDate
	}
	logger := log.Logger
	engine := NewEngine(st, contract.SystemClock{}, EngineConfig{
		Identity:       cfg.Identity,
		Periods:        cfg.Periods,
		SkippedModules: cfg.SkippedModules,
		Logger:         &logger,
		Metrics:        metrics,
	})
	summary, err := engine.Run(ctx, rep)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", rep.Project.Key, err)
	}
	return out.WriteSummary(summary, cfg)
}

// ExecuteMeasures prints the measures of a component at its project's last analysis.
func ExecuteMeasures(ctx context.Context, cfg *contract.Config, st contract.Store, component string, out contract.ResultWriter) error {
	report, err := st.FindMeasures(ctx, component, cfg.Metrics, cfg.Trends)
	if err != nil {
		return err
	}
	return out.WriteMeasures(report, cfg)
}

// ExecuteIssues prints every issue of a project.
func ExecuteIssues(ctx context.Context, cfg *contract.Config, st contract.Store, project string, out contract.ResultWriter) error {
	issues, err := st.FindIssues(ctx, project)
	if err != nil {
		return err
	}
	return out.WriteIssues(issues, cfg)
}

// ExecuteChangelog prints the change log of one issue.
func ExecuteChangelog(ctx context.Context, cfg *contract.Config, st contract.Store, issueKey string, out contract.ResultWriter) error {
	changes, err := st.FindIssueChanges(ctx, issueKey)
	if err != nil {
		return err
	}
	return out.WriteChangelog(issueKey, changes, cfg)
}

// ExecutePeriods prints the analysis history of a project with resolved periods.
func ExecutePeriods(ctx context.Context, cfg *contract.Config, st contract.Store, project string, out contract.ResultWriter) error {
	snapshots, err := st.FindProjectSnapshots(ctx, project)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("project %s has no analysis: %w", project, contract.ErrNotFound)
	}
	return out.WritePeriods(snapshots, cfg)
}

// ExecuteImportRules stores rule definitions and prints the stored rules.
func ExecuteImportRules(ctx context.Context, cfg *contract.Config, st contract.Store, rules []schema.Rule, out contract.ResultWriter) error {
	now := contract.SystemClock{}.Now()
	for i := range rules {
		if err := st.UpsertRule(ctx, &rules[i], now); err != nil {
			return err
		}
	}
	log.Info().Int("rules", len(rules)).Msg("imported rules")
	return out.WriteRules(rules, cfg)
}

// ExecuteListRules prints every stored rule.
func ExecuteListRules(ctx context.Context, cfg *contract.Config, st contract.Store, out contract.ResultWriter) error {
	rules, err := st.ListRules(ctx)
	if err != nil {
		return err
	}
	return out.WriteRules(rules, cfg)
}
