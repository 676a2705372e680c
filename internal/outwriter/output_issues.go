package outwriter

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintIssues outputs issues, dispatching based on the output format configured.
func PrintIssues(issues []schema.Issue, cfg *contract.Config) error {
	return render(view{
		name: "issues",
		data: issues,
		header: []string{
			"key", "rule", "component", "severity", "status", "resolution", "line",
			"debt", "message", "assignee", "author", "attributes", "created", "updated", "closed",
		},
		rows:  func() [][]string { return issueCSVRows(issues) },
		table: func(w io.Writer) error { return writeIssueTable(w, issues, cfg) },
	}, cfg)
}

func issueCSVRows(issues []schema.Issue) [][]string {
	rows := make([][]string, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, []string{
			i.Key,
			i.RuleKey.String(),
			i.ComponentKey,
			string(i.Severity),
			string(i.Status),
			string(i.Resolution),
			i.LineString(),
			i.DebtString(),
			i.Message,
			i.Assignee,
			i.AuthorLogin,
			i.AttributesString(),
			formatTime(i.CreatedAt),
			formatTime(i.UpdatedAt),
			formatTime(i.ClosedAt),
		})
	}
	return rows
}

func writeIssueTable(w io.Writer, issues []schema.Issue, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Rule", "Component", "Severity", "Status", "Line", "Message", "Created"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := getMaxKeyWidth(cfg, 90)
	open := 0
	var data [][]string
	for _, i := range issues {
		if i.IsOpen() {
			open++
		}
		created := ""
		if i.CreatedAt != nil {
			created = humanize.Time(*i.CreatedAt)
		}
		status := string(i.Status)
		if i.Resolution != schema.NoResolution {
			status += " (" + string(i.Resolution) + ")"
		}
		data = append(data, []string{
			i.Key,
			i.RuleKey.String(),
			contract.TruncatePath(i.ComponentKey, maxWidth),
			contract.GetColorSeverity(i.Severity),
			status,
			i.LineString(),
			contract.TruncatePath(i.Message, maxWidth),
			created,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d issues (%d open)\n", len(issues), open)
	return err
}
