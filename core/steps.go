package core

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// Step is one unit of an analysis job.
type Step interface {
	Execute(ctx context.Context, jc *JobContext) error
	Description() string
}

// JobContext carries the state shared by the steps of one analysis job.
type JobContext struct {
	Report       schema.Report
	Settings     []schema.PeriodSetting
	AnalysisDate time.Time
	Now          time.Time // audit stamp for rows written by this job
	Session      contract.Session

	Project    schema.Component
	Components map[string]schema.Component // by uuid
	Snapshot   schema.Snapshot
	Issues     []schema.Issue
	Periods    []schema.Period
	Measures   []schema.Measure
	Summary    schema.AnalysisSummary

	keys      map[string]string // component key to uuid
	reportIDs map[string]int64  // caller-supplied ids by uuid
}

func newJobContext(rep schema.Report, settings []schema.PeriodSetting, date, now time.Time, sess contract.Session) *JobContext {
	return &JobContext{
		Report:       rep,
		Settings:     settings,
		AnalysisDate: date,
		Now:          now,
		Session:      sess,
		Components:   make(map[string]schema.Component),
		keys:         make(map[string]string),
		reportIDs:    make(map[string]int64),
		Summary:      schema.AnalysisSummary{ProjectKey: rep.Project.Key, AnalysisDate: date},
	}
}

// component finds a component of this job by key or uuid.
func (jc *JobContext) component(keyOrUUID string) (schema.Component, bool) {
	if c, ok := jc.Components[keyOrUUID]; ok {
		return c, true
	}
	if id, ok := jc.keys[keyOrUUID]; ok {
		return jc.Components[id], true
	}
	return schema.Component{}, false
}

// componentID prefers the id supplied in the report.
func (jc *JobContext) componentID(c schema.Component) int64 {
	if id := jc.reportIDs[c.UUID]; id != 0 {
		return id
	}
	return c.ID
}

func (jc *JobContext) addComponent(c schema.Component, reportID int64) {
	jc.Components[c.UUID] = c
	jc.keys[c.Key] = c.UUID
	if reportID != 0 {
		jc.reportIDs[c.UUID] = reportID
	}
}

// ancestors returns id and every parent up to the project.
func (jc *JobContext) ancestors(id string) []string {
	var chain []string
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		c, ok := jc.Components[cur]
		if !ok {
			break
		}
		seen[cur] = true
		chain = append(chain, cur)
		if cur == jc.Project.UUID {
			return chain
		}
		cur = c.ParentUUID
	}
	return append(chain, jc.Project.UUID)
}

// --- Steps

type persistComponentsStep struct{}

func (persistComponentsStep) Description() string { return "Persist components and snapshot" }

func (persistComponentsStep) Execute(ctx context.Context, jc *JobContext) error {
	p := jc.Report.Project
	project := schema.Component{
		UUID:        p.UUID,
		Key:         p.Key,
		Name:        defaultName(p.Name, p.Key),
		Qualifier:   schema.ProjectQualifier,
		ProjectUUID: p.UUID,
		Enabled:     true,
	}
	if err := jc.Session.UpsertComponent(ctx, &project, jc.Now); err != nil {
		return err
	}
	jc.Project = project
	jc.addComponent(project, p.ID)

	for _, rc := range jc.Report.Components {
		parent := project.UUID
		if rc.Parent != "" {
			pc, ok := jc.component(rc.Parent)
			if !ok {
				return fmt.Errorf("component %s: %w: parent %s", rc.Key, ErrComponentNotFound, rc.Parent)
			}
			parent = pc.UUID
		}
		qualifier := rc.Qualifier
		if qualifier == "" {
			qualifier = schema.FileQualifier
		}
		comp := schema.Component{
			UUID:        rc.UUID,
			Key:         rc.Key,
			Name:        defaultName(rc.Name, rc.Key),
			Qualifier:   qualifier,
			ProjectUUID: project.UUID,
			ParentUUID:  parent,
			ModuleKey:   rc.ModuleKey,
			Path:        rc.Path,
			Enabled:     true,
		}
		if err := jc.Session.UpsertComponent(ctx, &comp, jc.Now); err != nil {
			return err
		}
		jc.addComponent(comp, rc.ID)
	}

	snap := schema.Snapshot{ProjectUUID: project.UUID, CreatedAt: jc.AnalysisDate, Version: jc.Report.Version}
	if err := jc.Session.InsertSnapshot(ctx, &snap); err != nil {
		return err
	}
	jc.Snapshot = snap
	jc.Summary.SnapshotID = snap.ID
	return nil
}

func defaultName(name, key string) string {
	if name == "" {
		return key
	}
	return name
}

type trackIssuesStep struct{}

func (trackIssuesStep) Description() string { return "Track issues" }

func (trackIssuesStep) Execute(ctx context.Context, jc *JobContext) error {
	stored, err := jc.Session.FindProjectIssues(ctx, jc.Project.UUID)
	if err != nil {
		return err
	}
	reported := make([]schema.Issue, 0, len(jc.Report.Issues))
	for _, ri := range jc.Report.Issues {
		issue, err := jc.reportedIssue(ri)
		if err != nil {
			return err
		}
		reported = append(reported, issue)
	}

	cc := schema.ChangeContext{Actor: jc.Report.Actor, Date: jc.AnalysisDate, Scan: jc.Report.Actor == ""}
	res := TrackIssues(stored, reported, cc, jc.skippedModulePredicate(ctx))
	jc.Issues = res.Issues
	jc.Summary.IssuesClosed = res.Closed
	return nil
}

// reportedIssue builds a first-seen issue from a report entry.
func (jc *JobContext) reportedIssue(ri schema.ReportIssue) (schema.Issue, error) {
	comp, ok := jc.component(ri.Component)
	if !ok {
		return schema.Issue{}, fmt.Errorf("issue %s: %w: %s", ri.Key, ErrComponentNotFound, ri.Component)
	}
	key := ri.Key
	if key == "" {
		key = uuid.NewString()
	}
	issue := schema.NewIssue(key).
		WithRule(ri.Rule).
		WithComponent(comp.Key, comp.UUID).
		WithProject(jc.Project.UUID).
		WithIDs(jc.componentID(comp), jc.componentID(jc.Project)).
		WithSeverity(ri.Severity).
		WithMessage(ri.Message).
		WithChecksum(ri.Checksum).
		WithStatus(ri.Status).
		WithResolution(ri.Resolution).
		WithAssignee(ri.Assignee).
		WithReporter(ri.Reporter).
		WithAuthorLogin(ri.AuthorLogin)
	if ri.Line != nil {
		issue = issue.WithLine(*ri.Line)
	}
	if ri.Debt != nil {
		issue = issue.WithDebt(*ri.Debt)
	}
	if ri.CreationDate != nil {
		issue = issue.WithCreationDate(*ri.CreationDate)
	}
	for k, v := range ri.Attributes {
		issue = issue.WithAttribute(k, v)
	}
	for _, rc := range ri.Comments {
		c := schema.NewComment(rc.User, rc.Text)
		if rc.Key != "" {
			c = c.WithKey(rc.Key)
		}
		if rc.Date != nil {
			c = c.WithCreatedAt(*rc.Date)
		}
		issue = issue.AddComment(c)
	}
	return issue, nil
}

// skippedModulePredicate reports whether a stored issue lives in a module
// that this analysis skipped.
func (jc *JobContext) skippedModulePredicate(ctx context.Context) func(schema.Issue) bool {
	if len(jc.Report.SkippedModules) == 0 {
		return nil
	}
	modules := make(map[string]bool, len(jc.Report.SkippedModules))
	for _, m := range jc.Report.SkippedModules {
		modules[m] = true
	}
	return func(issue schema.Issue) bool {
		seen := make(map[string]bool)
		for cur := issue.ComponentUUID; cur != "" && !seen[cur]; {
			seen[cur] = true
			c, err := jc.Session.FindComponentByUUID(ctx, cur)
			if err != nil {
				return false
			}
			if modules[c.Key] || modules[c.ModuleKey] {
				return true
			}
			cur = c.ParentUUID
		}
		return false
	}
}

type persistIssuesStep struct {
	reconciler *Reconciler
}

func (persistIssuesStep) Description() string { return "Persist issues" }

func (s persistIssuesStep) Execute(ctx context.Context, jc *JobContext) error {
	results, err := s.reconciler.SaveAll(ctx, jc.Session, jc.Issues)
	if err != nil {
		return err
	}
	for _, r := range results {
		switch r.Action {
		case ActionInserted:
			jc.Summary.IssuesInserted++
		case ActionUpdated:
			jc.Summary.IssuesUpdated++
		}
		jc.Summary.Changes += r.Changes
		jc.Summary.Comments += r.Comments
	}
	return nil
}

type resolvePeriodsStep struct {
	registry *PeriodRegistry
}

func (resolvePeriodsStep) Description() string { return "Resolve differential periods" }

func (s resolvePeriodsStep) Execute(ctx context.Context, jc *JobContext) error {
	periods, err := s.registry.Resolve(ctx, jc.Project.UUID, jc.Settings, jc.Snapshot)
	if err != nil {
		return err
	}
	if err := jc.Session.UpdateSnapshotPeriods(ctx, jc.Snapshot.ID, periods); err != nil {
		return err
	}
	jc.Periods = periods
	jc.Snapshot.Periods = periods
	jc.Summary.Periods = periods
	return nil
}

type computeMeasuresStep struct {
	variations *VariationComputer
}

func (computeMeasuresStep) Description() string { return "Compute measures and variations" }

func (s computeMeasuresStep) Execute(ctx context.Context, jc *JobContext) error {
	counts := make(map[string]int)
	created := make(map[string][]time.Time)
	for _, issue := range jc.Issues {
		if !issue.IsOpen() {
			continue
		}
		for _, id := range jc.ancestors(issue.ComponentUUID) {
			counts[id]++
			if issue.CreatedAt != nil {
				created[id] = append(created[id], *issue.CreatedAt)
			}
		}
	}

	uuids := make([]string, 0, len(jc.Components))
	for id := range jc.Components {
		uuids = append(uuids, id)
	}
	slices.Sort(uuids)

	var measures []schema.Measure
	for _, id := range uuids {
		value := float64(counts[id])
		vars, err := s.variations.Compute(ctx, schema.ViolationsMetric, id, value, jc.Periods)
		if err != nil {
			return err
		}
		measures = append(measures,
			schema.Measure{SnapshotID: jc.Snapshot.ID, ComponentUUID: id, MetricKey: schema.ViolationsMetric, Value: schema.Float(value), Variations: vars},
			schema.Measure{SnapshotID: jc.Snapshot.ID, ComponentUUID: id, MetricKey: schema.NewViolationsMetric, Variations: NewIssuesVariations(created[id], jc.Periods)},
		)
	}

	type measureKey struct{ component, metric string }
	reported := make(map[measureKey]float64)
	var order []measureKey
	for _, rm := range jc.Report.Measures {
		if rm.Metric == schema.ViolationsMetric || rm.Metric == schema.NewViolationsMetric {
			continue
		}
		comp, ok := jc.component(rm.Component)
		if !ok {
			return fmt.Errorf("measure %s: %w: %s", rm.Metric, ErrComponentNotFound, rm.Component)
		}
		k := measureKey{comp.UUID, rm.Metric}
		if _, dup := reported[k]; !dup {
			order = append(order, k)
		}
		reported[k] = rm.Value
	}
	for _, k := range order {
		value := reported[k]
		vars, err := s.variations.Compute(ctx, k.metric, k.component, value, jc.Periods)
		if err != nil {
			return err
		}
		measures = append(measures, schema.Measure{
			SnapshotID: jc.Snapshot.ID, ComponentUUID: k.component, MetricKey: k.metric,
			Value: schema.Float(value), Variations: vars,
		})
	}
	jc.Measures = measures
	return nil
}

type storeMeasuresStep struct {
	purger *MeasurePurger
}

func (storeMeasuresStep) Description() string { return "Purge and store measures" }

func (s storeMeasuresStep) Execute(ctx context.Context, jc *JobContext) error {
	for i := range jc.Measures {
		stored, err := s.purger.Apply(ctx, jc.Session, &jc.Measures[i])
		if err != nil {
			return err
		}
		if stored {
			jc.Summary.MeasuresStored++
		} else {
			jc.Summary.MeasuresPurged++
		}
	}
	return nil
}

type markLastSnapshotStep struct{}

func (markLastSnapshotStep) Description() string { return "Mark last snapshot" }

func (markLastSnapshotStep) Execute(ctx context.Context, jc *JobContext) error {
	if err := jc.Session.MarkLastSnapshot(ctx, jc.Project.UUID, jc.Snapshot.ID); err != nil {
		return err
	}
	jc.Snapshot.Last = true
	return nil
}

type invalidateCacheStep struct{}

func (invalidateCacheStep) Description() string { return "Invalidate scanner cache" }

func (invalidateCacheStep) Execute(ctx context.Context, jc *JobContext) error {
	stamp := strconv.FormatInt(jc.Now.UnixMilli(), 10)
	return jc.Session.SetProperty(ctx, schema.CacheInvalidationProperty, jc.Project.UUID, stamp, jc.Now)
}
