package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintPeriods outputs project history, dispatching based on the output format configured.
func PrintPeriods(snapshots []schema.Snapshot, cfg *contract.Config) error {
	return render(view{
		name:   "periods",
		data:   snapshots,
		header: []string{"snapshot_id", "created_at", "version", "last", "period_index", "mode", "param", "baseline_id", "baseline_date"},
		rows:   func() [][]string { return periodCSVRows(snapshots) },
		table:  func(w io.Writer) error { return writePeriodTable(w, snapshots) },
	}, cfg)
}

// periodCSVRows emits one row per resolved period, or one bare row for a snapshot without periods.
func periodCSVRows(snapshots []schema.Snapshot) [][]string {
	var rows [][]string
	for _, s := range snapshots {
		base := []string{
			strconv.FormatInt(s.ID, 10),
			s.CreatedAt.Format(contract.DateTimeFormat),
			s.Version,
			strconv.FormatBool(s.Last),
		}
		if len(s.Periods) == 0 {
			rows = append(rows, append(base, "", "", "", "", ""))
			continue
		}
		for _, p := range s.Periods {
			row := append([]string{}, base...)
			rows = append(rows, append(row,
				strconv.Itoa(p.Index),
				string(p.Mode),
				p.Param,
				strconv.FormatInt(p.SnapshotID, 10),
				p.SnapshotDate.Format(contract.DateTimeFormat),
			))
		}
	}
	return rows
}

// describePeriods lists the periods of a snapshot on separate lines.
func describePeriods(periods []schema.Period) string {
	if len(periods) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(periods))
	for _, p := range periods {
		lines = append(lines, fmt.Sprintf("%d: %s (#%d, %s)", p.Index, p.Label(), p.SnapshotID,
			p.SnapshotDate.Format(schema.PeriodDateLayout)))
	}
	return strings.Join(lines, "\n")
}

func writePeriodTable(w io.Writer, snapshots []schema.Snapshot) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Snapshot", "Date", "Version", "Last", "Periods"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, s := range snapshots {
		last := ""
		if s.Last {
			last = "✓"
		}
		data = append(data, []string{
			strconv.FormatInt(s.ID, 10),
			s.CreatedAt.Format(contract.DateTimeFormat),
			s.Version,
			last,
			describePeriods(s.Periods),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d snapshots\n", len(snapshots))
	return err
}
