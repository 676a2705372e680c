package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/huangsam/trendline/schema"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const issueSelect = `SELECT i.kee, COALESCE(r.plugin_name, ''), COALESCE(r.plugin_rule_key, ''),
	i.component_id, i.component_uuid, COALESCE(c.kee, ''), i.project_id, i.project_uuid,
	i.severity, i.message, i.line, i.technical_debt, i.status, i.resolution, i.checksum,
	i.reporter, i.author_login, i.assignee, i.issue_attributes,
	i.issue_creation_date, i.issue_update_date, i.issue_close_date
	FROM issues i
	LEFT JOIN rules r ON r.id = i.rule_id
	LEFT JOIN components c ON c.uuid = i.component_uuid`

// scanIssue reads one issueSelect row as a stored issue.
func scanIssue(sc scanner) (schema.Issue, error) {
	var (
		issue                      schema.Issue
		repo, rule                 string
		severity, status, resol    string
		attrs                      string
		line, debt                 sql.NullInt64
		created, updated, closedAt sql.NullInt64
	)
	err := sc.Scan(
		&issue.Key, &repo, &rule,
		&issue.ComponentID, &issue.ComponentUUID, &issue.ComponentKey, &issue.ProjectID, &issue.ProjectUUID,
		&severity, &issue.Message, &line, &debt, &status, &resol, &issue.Checksum,
		&issue.Reporter, &issue.AuthorLogin, &issue.Assignee, &attrs,
		&created, &updated, &closedAt,
	)
	if err != nil {
		return schema.Issue{}, err
	}
	issue.RuleKey = schema.RuleKey{Repository: repo, Rule: rule}
	issue.Severity = schema.Severity(severity)
	issue.Status = schema.IssueStatus(status)
	issue.Resolution = schema.Resolution(resol)
	issue.Line = intPtr(line)
	issue.Debt = int64Ptr(debt)
	issue.Attributes = schema.ParseAttributes(attrs)
	issue.CreatedAt = timePtr(created)
	issue.UpdatedAt = timePtr(updated)
	issue.ClosedAt = timePtr(closedAt)
	return issue, nil
}

func collectIssues(rows *sql.Rows) ([]schema.Issue, error) {
	defer func() { _ = rows.Close() }()
	var issues []schema.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

const componentSelect = `SELECT id, uuid, kee, name, qualifier, project_uuid, parent_uuid, module_key, path, enabled FROM components`

func scanComponent(sc scanner) (schema.Component, error) {
	var c schema.Component
	var qualifier string
	var enabled int
	if err := sc.Scan(&c.ID, &c.UUID, &c.Key, &c.Name, &qualifier, &c.ProjectUUID, &c.ParentUUID, &c.ModuleKey, &c.Path, &enabled); err != nil {
		return schema.Component{}, err
	}
	c.Qualifier = schema.Qualifier(qualifier)
	c.Enabled = enabled != 0
	return c, nil
}

// snapshotSelect lists the snapshot columns including all period slots.
var snapshotSelect = func() string {
	cols := []string{"id", "project_uuid", "created_at", "version", "islast"}
	for i := 1; i <= schema.MaxPeriods; i++ {
		cols = append(cols,
			fmt.Sprintf("period%d_mode", i),
			fmt.Sprintf("period%d_param", i),
			fmt.Sprintf("period%d_date", i),
			fmt.Sprintf("period%d_snapshot_id", i),
		)
	}
	return "SELECT " + strings.Join(cols, ", ") + " FROM snapshots"
}()

func scanSnapshot(sc scanner) (schema.Snapshot, error) {
	var (
		s       schema.Snapshot
		created int64
		last    int
		modes   [schema.MaxPeriods]string
		params  [schema.MaxPeriods]string
		dates   [schema.MaxPeriods]sql.NullInt64
		ids     [schema.MaxPeriods]sql.NullInt64
	)
	dest := []any{&s.ID, &s.ProjectUUID, &created, &s.Version, &last}
	for i := range schema.MaxPeriods {
		dest = append(dest, &modes[i], &params[i], &dates[i], &ids[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return schema.Snapshot{}, err
	}
	s.CreatedAt = fromMillis(created)
	s.Last = last != 0
	for i := range schema.MaxPeriods {
		if modes[i] == "" || !ids[i].Valid {
			continue
		}
		p := schema.Period{
			Index:      i + 1,
			Mode:       schema.PeriodMode(modes[i]),
			Param:      params[i],
			SnapshotID: ids[i].Int64,
		}
		if dates[i].Valid {
			p.SnapshotDate = fromMillis(dates[i].Int64)
		}
		s.Periods = append(s.Periods, p)
	}
	return s, nil
}

func collectSnapshots(rows *sql.Rows) ([]schema.Snapshot, error) {
	defer func() { _ = rows.Close() }()
	var snapshots []schema.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

const measureSelect = `SELECT id, snapshot_id, component_uuid, metric_key, value,
	variation_value_1, variation_value_2, variation_value_3, variation_value_4, variation_value_5
	FROM project_measures`

func scanMeasure(sc scanner) (schema.Measure, error) {
	var (
		m     schema.Measure
		value sql.NullFloat64
		vars  [schema.MaxPeriods]sql.NullFloat64
	)
	if err := sc.Scan(&m.ID, &m.SnapshotID, &m.ComponentUUID, &m.MetricKey, &value,
		&vars[0], &vars[1], &vars[2], &vars[3], &vars[4]); err != nil {
		return schema.Measure{}, err
	}
	m.Value = floatPtr(value)
	for i := range schema.MaxPeriods {
		m.Variations[i] = floatPtr(vars[i])
	}
	return m, nil
}

func collectMeasures(rows *sql.Rows) ([]schema.Measure, error) {
	defer func() { _ = rows.Close() }()
	var measures []schema.Measure
	for rows.Next() {
		m, err := scanMeasure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measure: %w", err)
		}
		measures = append(measures, m)
	}
	return measures, rows.Err()
}

const changeSelect = `SELECT id, kee, issue_key, user_login, change_type, field_name, old_value, new_value,
	change_data, issue_change_creation_date, created_at FROM issue_changes`

func collectChanges(rows *sql.Rows) ([]schema.IssueChange, error) {
	defer func() { _ = rows.Close() }()
	var changes []schema.IssueChange
	for rows.Next() {
		var c schema.IssueChange
		var changeType string
		var changedAt, createdAt int64
		if err := rows.Scan(&c.ID, &c.Key, &c.IssueKey, &c.UserLogin, &changeType, &c.Field, &c.OldValue, &c.NewValue,
			&c.Data, &changedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan issue change: %w", err)
		}
		c.Type = schema.ChangeType(changeType)
		c.ChangedAt = fromMillis(changedAt)
		c.CreatedAt = fromMillis(createdAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
