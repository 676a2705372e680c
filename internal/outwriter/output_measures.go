package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	upColor   = color.New(color.FgYellow)
	downColor = color.New(color.FgCyan)
)

// PrintMeasures outputs a measure report, dispatching based on the output format configured.
func PrintMeasures(report schema.MeasureReport, cfg *contract.Config) error {
	fmtFloat := createFormatters(cfg.Precision)
	return render(view{
		name:   "measures",
		data:   report,
		header: measureCSVHeader(),
		rows:   func() [][]string { return measureCSVRows(report, fmtFloat) },
		table:  func(w io.Writer) error { return writeMeasureTable(w, report, fmtFloat) },
	}, cfg)
}

// formatVariation renders a variation with a trend arrow. Absent variations are blank.
func formatVariation(v *float64, fmtFloat func(float64) string) string {
	switch {
	case v == nil:
		return ""
	case *v > 0:
		return upColor.Sprint("▲ +" + fmtFloat(*v))
	case *v < 0:
		return downColor.Sprint("▼ " + fmtFloat(*v))
	default:
		return fmtFloat(0)
	}
}

func formatValue(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

// writeMeasureTable prints one row per metric with a column per resolved period.
func writeMeasureTable(w io.Writer, report schema.MeasureReport, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Metric", "Value"}
	var periods []schema.Period
	if report.Trends {
		periods = report.Snapshot.Periods
		for _, p := range periods {
			headers = append(headers, fmt.Sprintf("%d: %s", p.Index, p.Label()))
		}
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range report.Measures {
		row := []string{m.MetricKey, formatValue(m.Value, fmtFloat)}
		for _, p := range periods {
			row = append(row, formatVariation(m.Variations.Get(p.Index), fmtFloat))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s (%s) at snapshot %d, %s\n",
		report.Component.Key, report.Component.Qualifier, report.Snapshot.ID,
		report.Snapshot.CreatedAt.Format(contract.DateTimeFormat))
	return err
}

func measureCSVHeader() []string {
	header := []string{"component", "metric", "value"}
	for i := 1; i <= schema.MaxPeriods; i++ {
		header = append(header, "variation_"+strconv.Itoa(i))
	}
	return header
}

func measureCSVRows(report schema.MeasureReport, fmtFloat func(float64) string) [][]string {
	rows := make([][]string, 0, len(report.Measures))
	for _, m := range report.Measures {
		row := []string{report.Component.Key, m.MetricKey, formatValue(m.Value, fmtFloat)}
		for i := 1; i <= schema.MaxPeriods; i++ {
			row = append(row, formatValue(m.Variations.Get(i), fmtFloat))
		}
		rows = append(rows, row)
	}
	return rows
}
