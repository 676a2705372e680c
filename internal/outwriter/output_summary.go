package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// PrintSummary outputs the outcome of an analysis, dispatching based on the output format configured.
func PrintSummary(summary schema.AnalysisSummary, cfg *contract.Config) error {
	return render(view{
		name: "summary",
		data: summary,
		header: []string{
			"project", "snapshot_id", "analysis_date", "issues_inserted", "issues_updated", "issues_closed",
			"changes", "comments", "measures_stored", "measures_purged", "periods", "duration_ms",
		},
		rows: func() [][]string {
			return [][]string{{
				summary.ProjectKey,
				strconv.FormatInt(summary.SnapshotID, 10),
				summary.AnalysisDate.Format(contract.DateTimeFormat),
				strconv.Itoa(summary.IssuesInserted),
				strconv.Itoa(summary.IssuesUpdated),
				strconv.Itoa(summary.IssuesClosed),
				strconv.Itoa(summary.Changes),
				strconv.Itoa(summary.Comments),
				strconv.Itoa(summary.MeasuresStored),
				strconv.Itoa(summary.MeasuresPurged),
				strconv.Itoa(len(summary.Periods)),
				strconv.FormatInt(summary.Duration.Milliseconds(), 10),
			}}
		},
		table: func(w io.Writer) error { return writeSummaryText(w, summary) },
	}, cfg)
}

func writeSummaryText(w io.Writer, s schema.AnalysisSummary) error {
	lines := []string{
		fmt.Sprintf("📦 %s analyzed at %s (snapshot %d)", s.ProjectKey, s.AnalysisDate.Format(contract.DateTimeFormat), s.SnapshotID),
		fmt.Sprintf("   issues: %d new, %d updated, %d closed", s.IssuesInserted, s.IssuesUpdated, s.IssuesClosed),
		fmt.Sprintf("   change log: %d changes, %d comments", s.Changes, s.Comments),
		fmt.Sprintf("   measures: %d stored, %d purged", s.MeasuresStored, s.MeasuresPurged),
	}
	if len(s.Periods) == 0 {
		lines = append(lines, "   periods: none (first analysis or no baseline)")
	}
	for _, p := range s.Periods {
		lines = append(lines, fmt.Sprintf("   period %d: %s (#%d)", p.Index, p.Label(), p.SnapshotID))
	}
	lines = append(lines, fmt.Sprintf("Analysis completed in %v", s.Duration))
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
