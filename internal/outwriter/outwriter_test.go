package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var snapshotDate = time.Date(2013, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleReport() schema.MeasureReport {
	var vars schema.Variations
	vars.Set(1, 3)
	vars.Set(2, -2)
	return schema.MeasureReport{
		Component: schema.Component{Key: "struts", Qualifier: schema.ProjectQualifier},
		Snapshot: schema.Snapshot{
			ID:        7,
			CreatedAt: snapshotDate,
			Version:   "1.1",
			Periods: []schema.Period{
				{Index: 1, Mode: schema.PreviousAnalysisMode, SnapshotID: 6, SnapshotDate: snapshotDate.AddDate(0, 0, -1)},
				{Index: 2, Mode: schema.DaysMode, Param: "30", SnapshotID: 4, SnapshotDate: snapshotDate.AddDate(0, 0, -30)},
			},
		},
		Measures: []schema.Measure{
			{MetricKey: schema.ViolationsMetric, Value: ptr(12.0), Variations: vars},
			{MetricKey: schema.NewViolationsMetric, Variations: vars},
		},
		Trends: true,
	}
}

func TestFormatVariation(t *testing.T) {
	f := createFormatters(1)
	assert.Equal(t, "", formatVariation(nil, f))
	assert.Equal(t, "▲ +2.5", formatVariation(ptr(2.5), f))
	assert.Equal(t, "▼ -1.0", formatVariation(ptr(-1.0), f))
	assert.Equal(t, "0.0", formatVariation(ptr(0.0), f))
}

func TestWriteMeasureTable(t *testing.T) {
	var buf bytes.Buffer
	err := writeMeasureTable(&buf, sampleReport(), createFormatters(1))
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "violations")
	assert.Contains(t, output, "12.0")
	assert.Contains(t, output, "▲ +3.0")
	assert.Contains(t, output, "▼ -2.0")
	assert.Contains(t, output, "over 30 days")
	assert.Contains(t, output, "struts (TRK) at snapshot 7")
}

func TestWriteMeasureTableWithoutTrends(t *testing.T) {
	report := sampleReport()
	report.Trends = false

	var buf bytes.Buffer
	require.NoError(t, writeMeasureTable(&buf, report, createFormatters(1)))
	assert.NotContains(t, buf.String(), "▲")
}

func TestMeasureCSVRows(t *testing.T) {
	rows := measureCSVRows(sampleReport(), createFormatters(2))
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"struts", "violations", "12.00", "3.00", "-2.00", "", "", ""}, rows[0])
	assert.Equal(t, "", rows[1][2], "new_violations has no value")
	assert.Len(t, measureCSVHeader(), 3+schema.MaxPeriods)
}

func TestPrintMeasuresToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "measures.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: out, Precision: 1}

	require.NoError(t, PrintMeasures(sampleReport(), cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "component", records[0][0])
	assert.Equal(t, "3.0", records[1][3])
}

func TestPrintMeasuresJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "measures.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out, Precision: 1}

	require.NoError(t, PrintMeasures(sampleReport(), cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "measures")
}

func sampleIssues() []schema.Issue {
	created := snapshotDate.Add(-time.Hour)
	return []schema.Issue{
		{
			Key:          "ABCDE",
			RuleKey:      schema.MustParseRuleKey("squid:AvoidCycle"),
			ComponentKey: "struts:Action.java",
			Severity:     schema.BlockerSeverity,
			Status:       schema.StatusOpen,
			Message:      "Cycle detected",
			Line:         ptr(42),
			Attributes:   map[string]string{"JIRA": "FOO-123"},
			CreatedAt:    &created,
		},
		{
			Key:          "FGHIJ",
			RuleKey:      schema.MustParseRuleKey("squid:AvoidCycle"),
			ComponentKey: "struts:Form.java",
			Severity:     schema.MinorSeverity,
			Status:       schema.StatusClosed,
			Resolution:   schema.ResolutionFixed,
		},
	}
}

func TestWriteIssueTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 120}
	require.NoError(t, writeIssueTable(&buf, sampleIssues(), cfg))

	output := buf.String()
	assert.Contains(t, output, "ABCDE")
	assert.Contains(t, output, "squid:AvoidCycle")
	assert.Contains(t, output, "CLOSED (FIXED)")
	assert.Contains(t, output, "Showing 2 issues (1 open)")
}

func TestIssueCSVRows(t *testing.T) {
	rows := issueCSVRows(sampleIssues())
	require.Len(t, rows, 2)
	assert.Equal(t, "ABCDE", rows[0][0])
	assert.Equal(t, "42", rows[0][6])
	assert.Equal(t, "JIRA=FOO-123", rows[0][11])
	assert.Equal(t, snapshotDate.Add(-time.Hour).Format(contract.DateTimeFormat), rows[0][12])
	assert.Equal(t, "", rows[1][12])
}

func sampleChanges() []schema.IssueChange {
	return []schema.IssueChange{
		{IssueKey: "ABCDE", UserLogin: "emmerik", Type: schema.DiffChange, Field: schema.FieldSeverity,
			OldValue: "INFO", NewValue: "BLOCKER", ChangedAt: snapshotDate},
		{IssueKey: "ABCDE", Type: schema.DiffChange, Field: schema.FieldResolution,
			NewValue: "FIXED", ChangedAt: snapshotDate},
		{IssueKey: "ABCDE", UserLogin: "emmerik", Type: schema.CommentChange, Data: "please fix", ChangedAt: snapshotDate},
	}
}

func TestDescribeChange(t *testing.T) {
	changes := sampleChanges()
	assert.Equal(t, "INFO → BLOCKER", describeChange(changes[0]))
	assert.Equal(t, "∅ → FIXED", describeChange(changes[1]))
	assert.Equal(t, "please fix", describeChange(changes[2]))
}

func TestWriteChangelogTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeChangelogTable(&buf, "ABCDE", sampleChanges()))

	output := buf.String()
	assert.Contains(t, output, "emmerik")
	assert.Contains(t, output, "(analysis)")
	assert.Contains(t, output, "Issue ABCDE: 3 changes")
}

func TestPrintChangelogJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "changes.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out}
	require.NoError(t, PrintChangelog("ABCDE", sampleChanges(), cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc changelogDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "ABCDE", doc.IssueKey)
	assert.Len(t, doc.Changes, 3)
}

func sampleSnapshots() []schema.Snapshot {
	report := sampleReport()
	first := schema.Snapshot{ID: 6, CreatedAt: snapshotDate.AddDate(0, 0, -1), Version: "1.0"}
	return []schema.Snapshot{first, report.Snapshot}
}

func TestWritePeriodTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePeriodTable(&buf, sampleSnapshots()))

	output := buf.String()
	assert.Contains(t, output, "1.1")
	assert.Contains(t, output, "#6")
	assert.Contains(t, output, "Showing 2 snapshots")
}

func TestPeriodCSVRows(t *testing.T) {
	rows := periodCSVRows(sampleSnapshots())
	require.Len(t, rows, 3, "one bare row plus one row per period")
	assert.Equal(t, "", rows[0][4])
	assert.Equal(t, "1", rows[1][4])
	assert.Equal(t, "days", rows[2][5])
	assert.Equal(t, "30", rows[2][6])
	assert.Equal(t, "4", rows[2][7])
}

func TestWriteRuleTable(t *testing.T) {
	rules := []schema.Rule{{Key: schema.MustParseRuleKey("squid:AvoidCycle"), Name: "Avoid cycles",
		Severity: schema.MajorSeverity, Status: schema.RuleReady}}

	var buf bytes.Buffer
	require.NoError(t, writeRuleTable(&buf, rules))
	assert.Contains(t, buf.String(), "Avoid cycles")
	assert.Contains(t, buf.String(), "Showing 1 rules")
}

func TestWriteSummaryText(t *testing.T) {
	summary := schema.AnalysisSummary{
		ProjectKey:     "struts",
		SnapshotID:     7,
		AnalysisDate:   snapshotDate,
		IssuesInserted: 2,
		IssuesClosed:   1,
		MeasuresStored: 3,
		Periods:        sampleReport().Snapshot.Periods,
		Duration:       1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	require.NoError(t, writeSummaryText(&buf, summary))
	output := buf.String()
	assert.Contains(t, output, "struts analyzed")
	assert.Contains(t, output, "2 new, 0 updated, 1 closed")
	assert.Contains(t, output, "period 2:")
	assert.Equal(t, 7, strings.Count(output, "\n"))
}

func TestWriteSummaryTextWithoutPeriods(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummaryText(&buf, schema.AnalysisSummary{ProjectKey: "struts"}))
	assert.Contains(t, buf.String(), "periods: none")
}

func TestGetMaxKeyWidth(t *testing.T) {
	assert.Equal(t, 40, getMaxKeyWidth(&contract.Config{Width: 150}, 90))
	assert.Equal(t, 15, getMaxKeyWidth(&contract.Config{Width: 50}, 90))
	assert.Equal(t, 70, getMaxKeyWidth(&contract.Config{Width: 400}, 90))
}
