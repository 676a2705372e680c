package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/store"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(schema.SQLiteBackend, filepath.Join(t.TempDir(), "trendline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	rule := schema.Rule{Key: testRule, Name: "Avoid cycles", Severity: schema.MajorSeverity}
	require.NoError(t, st.UpsertRule(context.Background(), &rule, time.Now()))
	return st
}

func runAnalysis(t *testing.T, st *store.Store, rep schema.Report, periods ...string) schema.AnalysisSummary {
	t.Helper()
	if len(periods) == 0 {
		periods = []string{"previous_analysis", "30"}
	}
	eng := NewEngine(st, contract.FixedClock(rep.AnalysisDate), EngineConfig{
		Identity: schema.ServerIdentity,
		Periods:  settings(t, periods...),
	})
	summary, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)
	return summary
}

func strutsReport(date time.Time, issues int) schema.Report {
	rep := schema.Report{
		Project:      schema.ReportProject{Key: "struts", UUID: "p1", Name: "Struts"},
		AnalysisDate: date,
		Components: []schema.ReportComponent{
			{UUID: "f1", Key: "struts:Action.java", Qualifier: schema.FileQualifier},
		},
	}
	for i := range issues {
		rep.Issues = append(rep.Issues, schema.ReportIssue{
			Key:       fmt.Sprintf("k%02d", i),
			Rule:      testRule,
			Component: "struts:Action.java",
			Severity:  schema.MajorSeverity,
			Message:   "Avoid cycles",
		})
	}
	return rep
}

func measureByMetric(t *testing.T, st *store.Store, component, metric string) (schema.Measure, bool) {
	t.Helper()
	report, err := st.FindMeasures(context.Background(), component, []string{metric}, true)
	require.NoError(t, err)
	for _, m := range report.Measures {
		if m.MetricKey == metric {
			return m, true
		}
	}
	return schema.Measure{}, false
}

func requireVariation(t *testing.T, m schema.Measure, index int, want float64) {
	t.Helper()
	v := m.Variations.Get(index)
	require.NotNil(t, v, "variation %d of %s", index, m.MetricKey)
	assert.InDelta(t, want, *v, 1e-9, "variation %d of %s", index, m.MetricKey)
}

func TestEngine_FirstAnalysis(t *testing.T) {
	st := newTestStore(t)
	date := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)

	summary := runAnalysis(t, st, strutsReport(date, 2))
	assert.Empty(t, summary.Periods)
	assert.Equal(t, 2, summary.IssuesInserted)
	assert.NotZero(t, summary.SnapshotID)

	snaps, err := st.FindProjectSnapshots(context.Background(), "struts")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Last)
	assert.Empty(t, snaps[0].Periods)

	violations, ok := measureByMetric(t, st, "struts", schema.ViolationsMetric)
	require.True(t, ok)
	require.NotNil(t, violations.Value)
	assert.InDelta(t, 2.0, *violations.Value, 1e-9)
	assert.Nil(t, violations.Variations.Get(1))

	_, ok = measureByMetric(t, st, "struts", schema.NewViolationsMetric)
	assert.False(t, ok, "no period, nothing to store")

	stamp, err := st.GetProperty(context.Background(), schema.CacheInvalidationProperty, "p1")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(date.UnixMilli(), 10), stamp)
}

func TestEngine_NewViolationsOverTwoPeriods(t *testing.T) {
	st := newTestStore(t)
	d1 := time.Date(2012, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2013, 3, 1, 10, 0, 0, 0, time.UTC)

	runAnalysis(t, st, strutsReport(d1, 0))
	summary := runAnalysis(t, st, strutsReport(d2, 13))
	assert.Equal(t, 13, summary.IssuesInserted)
	require.Len(t, summary.Periods, 2)
	assert.Equal(t, summary.Periods[0].SnapshotID, summary.Periods[1].SnapshotID)

	for _, component := range []string{"struts", "struts:Action.java"} {
		nv, ok := measureByMetric(t, st, component, schema.NewViolationsMetric)
		require.True(t, ok, component)
		assert.Nil(t, nv.Value)
		requireVariation(t, nv, 1, 13)
		requireVariation(t, nv, 2, 13)
	}

	v, ok := measureByMetric(t, st, "struts", schema.ViolationsMetric)
	require.True(t, ok)
	assert.InDelta(t, 13.0, *v.Value, 1e-9)
	requireVariation(t, v, 1, 13)
}

func TestEngine_ReanalysisPurgesZeroMeasures(t *testing.T) {
	st := newTestStore(t)
	d1 := time.Date(2012, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2013, 3, 1, 10, 0, 0, 0, time.UTC)
	d3 := d2.Add(time.Hour)

	runAnalysis(t, st, strutsReport(d1, 0))
	runAnalysis(t, st, strutsReport(d2, 13))
	summary := runAnalysis(t, st, strutsReport(d3, 13))
	assert.Zero(t, summary.IssuesInserted)
	assert.Zero(t, summary.IssuesUpdated)
	assert.GreaterOrEqual(t, summary.MeasuresPurged, 2)

	_, ok := measureByMetric(t, st, "struts", schema.NewViolationsMetric)
	assert.False(t, ok)

	v, ok := measureByMetric(t, st, "struts", schema.ViolationsMetric)
	require.True(t, ok)
	assert.InDelta(t, 13.0, *v.Value, 1e-9)
	requireVariation(t, v, 1, 0)
}

func TestEngine_SkippedModuleAnalyzedLater(t *testing.T) {
	st := newTestStore(t)
	d1 := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2013, 1, 2, 10, 0, 0, 0, time.UTC)

	build := func(date time.Time, skipped ...string) schema.Report {
		rep := schema.Report{
			Project:      schema.ReportProject{Key: "struts", UUID: "p1"},
			AnalysisDate: date,
			Components: []schema.ReportComponent{
				{UUID: "ma", Key: "struts:core", Qualifier: schema.ModuleQualifier},
				{UUID: "fa", Key: "struts:core:Action.java", Parent: "ma", ModuleKey: "struts:core"},
				{UUID: "mb", Key: "struts:web", Qualifier: schema.ModuleQualifier},
				{UUID: "fb", Key: "struts:web:Servlet.java", Parent: "mb", ModuleKey: "struts:web"},
			},
			SkippedModules: skipped,
		}
		for i := range 10 {
			rep.Issues = append(rep.Issues, schema.ReportIssue{
				Key: fmt.Sprintf("a%02d", i), Rule: testRule, Component: "fa", Severity: schema.MajorSeverity,
			})
		}
		for i := range 57 {
			rep.Issues = append(rep.Issues, schema.ReportIssue{
				Key: fmt.Sprintf("b%02d", i), Rule: testRule, Component: "fb", Severity: schema.MajorSeverity,
			})
		}
		return rep
	}

	first := runAnalysis(t, st, build(d1, "struts:web"), "previous_analysis")
	assert.Equal(t, 10, first.IssuesInserted)

	second := runAnalysis(t, st, build(d2), "previous_analysis")
	assert.Equal(t, 57, second.IssuesInserted)

	nv, ok := measureByMetric(t, st, "struts", schema.NewViolationsMetric)
	require.True(t, ok)
	requireVariation(t, nv, 1, 57)

	coreModule, ok := measureByMetric(t, st, "struts:core", schema.ViolationsMetric)
	require.True(t, ok)
	requireVariation(t, coreModule, 1, 0)
}

func TestEngine_SkippedModuleWithParentsByKey(t *testing.T) {
	st := newTestStore(t)
	rep := schema.Report{
		Project:      schema.ReportProject{Key: "struts", UUID: "p1"},
		AnalysisDate: time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC),
		Components: []schema.ReportComponent{
			{UUID: "ma", Key: "struts:core", Qualifier: schema.ModuleQualifier},
			{UUID: "fa", Key: "struts:core:A.java", Parent: "struts:core"},
			{UUID: "mb", Key: "struts:web", Qualifier: schema.ModuleQualifier},
			{UUID: "fb", Key: "struts:web:B.java", Parent: "struts:web"},
		},
		Issues: []schema.ReportIssue{
			{Key: "a", Rule: testRule, Component: "struts:core:A.java", Severity: schema.MajorSeverity},
			{Key: "b", Rule: testRule, Component: "struts:web:B.java", Severity: schema.MajorSeverity},
		},
		SkippedModules: []string{"struts:web"},
	}

	summary := runAnalysis(t, st, rep)
	assert.Equal(t, 1, summary.IssuesInserted)

	issues, err := st.FindIssues(context.Background(), "struts")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "a", issues[0].Key)
}

func TestEngine_SameDateReanalysisHasBaseline(t *testing.T) {
	st := newTestStore(t)
	date := time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)

	first := runAnalysis(t, st, strutsReport(date, 1), "previous_analysis")
	second := runAnalysis(t, st, strutsReport(date, 3), "previous_analysis")
	require.Len(t, second.Periods, 1)
	assert.Equal(t, first.SnapshotID, second.Periods[0].SnapshotID)

	v, ok := measureByMetric(t, st, "struts", schema.ViolationsMetric)
	require.True(t, ok)
	requireVariation(t, v, 1, 2)
}

func TestEngine_StampsComeFromClock(t *testing.T) {
	st := newTestStore(t)
	rep := strutsReport(time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC), 1)
	processedAt := time.Date(2014, 6, 1, 8, 30, 0, 0, time.UTC)

	eng := NewEngine(st, contract.FixedClock(processedAt), EngineConfig{Identity: schema.ServerIdentity})
	_, err := eng.Run(context.Background(), rep)
	require.NoError(t, err)

	stamp, err := st.GetProperty(context.Background(), schema.CacheInvalidationProperty, "p1")
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(processedAt.UnixMilli(), 10), stamp)
}

func TestEngine_AuditedSeverityChange(t *testing.T) {
	st := newTestStore(t)
	d1 := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	rep := strutsReport(d1, 1)
	rep.Issues[0].Severity = schema.InfoSeverity
	runAnalysis(t, st, rep)

	rep = strutsReport(d2, 1)
	rep.Actor = "emmerik"
	rep.Issues[0].Severity = schema.BlockerSeverity
	rep.Issues[0].Comments = []schema.ReportComment{{User: "emmerik", Text: "Raised after review"}}
	summary := runAnalysis(t, st, rep)
	assert.Equal(t, 1, summary.IssuesUpdated)
	assert.Equal(t, 1, summary.Changes)
	assert.Equal(t, 1, summary.Comments)

	changes, err := st.FindIssueChanges(context.Background(), "k00")
	require.NoError(t, err)
	var diffs []schema.IssueChange
	for _, c := range changes {
		if c.Type == schema.DiffChange {
			diffs = append(diffs, c)
		}
	}
	require.Len(t, diffs, 1)
	assert.Equal(t, schema.FieldSeverity, diffs[0].Field)
	assert.Equal(t, "INFO", diffs[0].OldValue)
	assert.Equal(t, "BLOCKER", diffs[0].NewValue)
	assert.Equal(t, "emmerik", diffs[0].UserLogin)
	assert.Len(t, changes, 2)

	issues, err := st.FindIssues(context.Background(), "struts")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.BlockerSeverity, issues[0].Severity)
	assert.Equal(t, testRule, issues[0].RuleKey)
	assert.Equal(t, "f1", issues[0].ComponentUUID)
}

func TestEngine_ClosesAndReopensIssues(t *testing.T) {
	st := newTestStore(t)
	d1 := time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC)

	runAnalysis(t, st, strutsReport(d1, 1))
	closed := runAnalysis(t, st, strutsReport(d1.AddDate(0, 0, 1), 0))
	assert.Equal(t, 1, closed.IssuesClosed)

	issues, err := st.FindIssues(context.Background(), "struts")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.StatusClosed, issues[0].Status)
	assert.Equal(t, schema.ResolutionFixed, issues[0].Resolution)
	require.NotNil(t, issues[0].ClosedAt)

	runAnalysis(t, st, strutsReport(d1.AddDate(0, 0, 2), 1))
	issues, err = st.FindIssues(context.Background(), "struts")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.StatusReopened, issues[0].Status)
	assert.True(t, issues[0].IsOpen())
	assert.Nil(t, issues[0].ClosedAt)
}

func TestEngine_UnknownRuleRollsBack(t *testing.T) {
	st := newTestStore(t)
	rep := strutsReport(time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC), 2)
	rep.Issues[1].Rule = schema.MustParseRuleKey("squid:Missing")

	eng := NewEngine(st, contract.FixedClock(rep.AnalysisDate), EngineConfig{Identity: schema.ServerIdentity})
	_, err := eng.Run(context.Background(), rep)
	require.ErrorIs(t, err, ErrRuleNotFound)
	assert.Contains(t, err.Error(), "k01")
	assert.Contains(t, err.Error(), "squid:Missing")

	status, err := st.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.TableSizes["snapshots"])
	assert.Zero(t, status.TableSizes["issues"])
	assert.Zero(t, status.TableSizes["components"])
}

func TestEngine_RejectsReportWithoutProject(t *testing.T) {
	eng := NewEngine(newTestStore(t), contract.SystemClock{}, EngineConfig{})
	_, err := eng.Run(context.Background(), schema.Report{})
	require.Error(t, err)
}

func TestEngine_UnknownIssueComponent(t *testing.T) {
	st := newTestStore(t)
	rep := strutsReport(time.Date(2013, 1, 1, 10, 0, 0, 0, time.UTC), 1)
	rep.Issues[0].Component = "struts:Missing.java"

	_, err := NewEngine(st, contract.SystemClock{}, EngineConfig{}).Run(context.Background(), rep)
	require.ErrorIs(t, err, ErrComponentNotFound)
}
