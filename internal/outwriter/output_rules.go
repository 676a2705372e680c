package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRules outputs stored rules, dispatching based on the output format configured.
func PrintRules(rules []schema.Rule, cfg *contract.Config) error {
	return render(view{
		name:   "rules",
		data:   rules,
		header: []string{"key", "name", "severity", "status"},
		rows: func() [][]string {
			rows := make([][]string, 0, len(rules))
			for _, r := range rules {
				rows = append(rows, []string{r.Key.String(), r.Name, string(r.Severity), r.Status})
			}
			return rows
		},
		table: func(w io.Writer) error { return writeRuleTable(w, rules) },
	}, cfg)
}

func writeRuleTable(w io.Writer, rules []schema.Rule) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Name", "Severity", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	var data [][]string
	for _, r := range rules {
		data = append(data, []string{r.Key.String(), r.Name, contract.GetColorSeverity(r.Severity), r.Status})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rules\n", len(rules))
	return err
}
