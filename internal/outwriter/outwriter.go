// Package outwriter has output and writer logic.
package outwriter

import (
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the output formats and gives commands and the MCP server a clean API.
type OutWriter struct{}

var _ contract.ResultWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMeasures prints a measure report using the configured output format.
func (ow *OutWriter) WriteMeasures(report schema.MeasureReport, cfg *contract.Config) error {
	return PrintMeasures(report, cfg)
}

// WriteIssues prints issues using the configured output format.
func (ow *OutWriter) WriteIssues(issues []schema.Issue, cfg *contract.Config) error {
	return PrintIssues(issues, cfg)
}

// WriteChangelog prints the change log of one issue using the configured output format.
func (ow *OutWriter) WriteChangelog(issueKey string, changes []schema.IssueChange, cfg *contract.Config) error {
	return PrintChangelog(issueKey, changes, cfg)
}

// WritePeriods prints project history with resolved periods using the configured output format.
func (ow *OutWriter) WritePeriods(snapshots []schema.Snapshot, cfg *contract.Config) error {
	return PrintPeriods(snapshots, cfg)
}

// WriteRules prints stored rules using the configured output format.
func (ow *OutWriter) WriteRules(rules []schema.Rule, cfg *contract.Config) error {
	return PrintRules(rules, cfg)
}

// WriteSummary prints the outcome of an analysis using the configured output format.
func (ow *OutWriter) WriteSummary(summary schema.AnalysisSummary, cfg *contract.Config) error {
	return PrintSummary(summary, cfg)
}
