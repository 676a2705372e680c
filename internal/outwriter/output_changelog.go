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

// changelogDocument is the JSON form of an issue change log.
type changelogDocument struct {
	IssueKey string               `json:"issue_key"`
	Changes  []schema.IssueChange `json:"changes"`
}

// PrintChangelog outputs the change log of an issue, dispatching based on the output format configured.
func PrintChangelog(issueKey string, changes []schema.IssueChange, cfg *contract.Config) error {
	return render(view{
		name:   "changelog",
		data:   changelogDocument{IssueKey: issueKey, Changes: changes},
		header: []string{"issue_key", "changed_at", "user", "type", "field", "old_value", "new_value", "data"},
		rows:   func() [][]string { return changelogCSVRows(changes) },
		table:  func(w io.Writer) error { return writeChangelogTable(w, issueKey, changes) },
	}, cfg)
}

func changelogCSVRows(changes []schema.IssueChange) [][]string {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{
			c.IssueKey,
			c.ChangedAt.Format(contract.DateTimeFormat),
			c.UserLogin,
			string(c.Type),
			c.Field,
			c.OldValue,
			c.NewValue,
			c.Data,
		})
	}
	return rows
}

// describeChange renders a diff as old → new and a comment as its text.
func describeChange(c schema.IssueChange) string {
	if c.Type == schema.CommentChange {
		return c.Data
	}
	old := c.OldValue
	if old == "" {
		old = "∅"
	}
	return old + " → " + c.NewValue
}

func writeChangelogTable(w io.Writer, issueKey string, changes []schema.IssueChange) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"When", "User", "Type", "Field", "Change"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, c := range changes {
		user := c.UserLogin
		if user == "" {
			user = "(analysis)"
		}
		data = append(data, []string{humanize.Time(c.ChangedAt), user, string(c.Type), c.Field, describeChange(c)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Issue %s: %d changes\n", issueKey, len(changes))
	return err
}
