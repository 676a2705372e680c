package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// Session implements contract.Session over one database transaction.
type Session struct {
	conn
	tx *sql.Tx
}

var _ contract.Session = &Session{} // Compile-time check

// Commit commits the transaction.
func (s *Session) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (s *Session) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// FindRuleByKey looks up a rule by repository and key.
func (c conn) FindRuleByKey(ctx context.Context, key schema.RuleKey) (schema.Rule, error) {
	row := c.queryRow(ctx, `SELECT id, plugin_name, plugin_rule_key, name, priority, status FROM rules
		WHERE plugin_name = ? AND plugin_rule_key = ?`, key.Repository, key.Rule)
	var r schema.Rule
	var severity string
	err := row.Scan(&r.ID, &r.Key.Repository, &r.Key.Rule, &r.Name, &severity, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Rule{}, fmt.Errorf("rule %s: %w", key, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Rule{}, fmt.Errorf("failed to find rule %s: %w", key, err)
	}
	r.Severity = schema.Severity(severity)
	return r, nil
}

// FindComponentByUUID looks up a component by uuid.
func (c conn) FindComponentByUUID(ctx context.Context, uuid string) (schema.Component, error) {
	comp, err := scanComponent(c.queryRow(ctx, componentSelect+` WHERE uuid = ?`, uuid))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Component{}, fmt.Errorf("component %s: %w", uuid, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Component{}, fmt.Errorf("failed to find component %s: %w", uuid, err)
	}
	return comp, nil
}

// FindSnapshots returns the history of a project, oldest first.
func (c conn) FindSnapshots(ctx context.Context, projectUUID string) ([]schema.Snapshot, error) {
	rows, err := c.query(ctx, snapshotSelect+` WHERE project_uuid = ? ORDER BY created_at, id`, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	return collectSnapshots(rows)
}

// FindMeasure returns one stored measure.
func (c conn) FindMeasure(ctx context.Context, snapshotID int64, componentUUID, metric string) (schema.Measure, error) {
	m, err := scanMeasure(c.queryRow(ctx, measureSelect+` WHERE snapshot_id = ? AND component_uuid = ? AND metric_key = ?`,
		snapshotID, componentUUID, metric))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Measure{}, fmt.Errorf("measure %s on %s in snapshot %d: %w", metric, componentUUID, snapshotID, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Measure{}, fmt.Errorf("failed to find measure: %w", err)
	}
	return m, nil
}

// FindProjectIssues returns every stored issue of a project, open or closed.
func (s *Session) FindProjectIssues(ctx context.Context, projectUUID string) ([]schema.Issue, error) {
	rows, err := s.query(ctx, issueSelect+` WHERE i.project_uuid = ? ORDER BY i.id`, projectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project issues: %w", err)
	}
	return collectIssues(rows)
}

// InsertIssue writes a new issue row.
func (s *Session) InsertIssue(ctx context.Context, row contract.IssueRow) error {
	_, err := s.exec(ctx, `INSERT INTO issues (kee, rule_id, component_id, component_uuid, project_id, project_uuid,
		severity, message, line, technical_debt, status, resolution, checksum, reporter, author_login, assignee,
		issue_attributes, issue_creation_date, issue_update_date, issue_close_date, created_at, updated_at)
		VALUES (`+placeholders(22)+`)`,
		row.Key, row.RuleID, row.ComponentID, row.ComponentUUID, row.ProjectID, row.ProjectUUID,
		row.Severity, row.Message, nullInt(row.Line), nullInt64(row.Debt), row.Status, row.Resolution, row.Checksum,
		row.Reporter, row.AuthorLogin, row.Assignee,
		row.Attributes, nullMillis(row.IssueCreated), nullMillis(row.IssueUpdated), nullMillis(row.IssueClosed),
		toMillis(row.CreatedAt), toMillis(row.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert issue %s: %w", row.Key, err)
	}
	return nil
}

// UpdateIssue writes the mutable columns of an existing issue.
func (s *Session) UpdateIssue(ctx context.Context, row contract.IssueUpdateRow) error {
	result, err := s.exec(ctx, `UPDATE issues SET severity = ?, message = ?, line = ?, technical_debt = ?,
		status = ?, resolution = ?, checksum = ?, author_login = ?, assignee = ?, issue_attributes = ?,
		issue_update_date = ?, issue_close_date = ?, updated_at = ?
		WHERE kee = ?`,
		row.Severity, row.Message, nullInt(row.Line), nullInt64(row.Debt),
		row.Status, row.Resolution, row.Checksum, row.AuthorLogin, row.Assignee, row.Attributes,
		nullMillis(row.IssueUpdated), nullMillis(row.IssueClosed), toMillis(row.UpdatedAt),
		row.Key)
	if err != nil {
		return fmt.Errorf("failed to update issue %s: %w", row.Key, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 && s.backend != schema.MySQLBackend {
		return fmt.Errorf("failed to update issue %s: %w", row.Key, contract.ErrNotFound)
	}
	return nil
}

// InsertIssueChange appends a change log row.
func (s *Session) InsertIssueChange(ctx context.Context, row contract.IssueChangeRow) error {
	_, err := s.exec(ctx, `INSERT INTO issue_changes (kee, issue_key, user_login, change_type, field_name,
		old_value, new_value, change_data, issue_change_creation_date, created_at, updated_at)
		VALUES (`+placeholders(11)+`)`,
		row.Key, row.IssueKey, row.UserLogin, row.ChangeType, row.FieldName,
		row.OldValue, row.NewValue, row.ChangeData, toMillis(row.ChangedAt), toMillis(row.CreatedAt), toMillis(row.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert change of issue %s: %w", row.IssueKey, err)
	}
	return nil
}

// UpsertComponent inserts or refreshes a component by uuid and sets its ID.
func (s *Session) UpsertComponent(ctx context.Context, comp *schema.Component, now time.Time) error {
	var id int64
	err := s.queryRow(ctx, `SELECT id FROM components WHERE uuid = ?`, comp.UUID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id, err = s.insert(ctx, `INSERT INTO components (uuid, kee, name, qualifier, project_uuid, parent_uuid,
			module_key, path, enabled, created_at) VALUES (`+placeholders(10)+`)`,
			comp.UUID, comp.Key, comp.Name, string(comp.Qualifier), comp.ProjectUUID, comp.ParentUUID,
			comp.ModuleKey, comp.Path, boolInt(comp.Enabled), toMillis(now))
		if err != nil {
			return fmt.Errorf("failed to insert component %s: %w", comp.Key, err)
		}
	case err != nil:
		return fmt.Errorf("failed to find component %s: %w", comp.Key, err)
	default:
		_, err = s.exec(ctx, `UPDATE components SET kee = ?, name = ?, qualifier = ?, project_uuid = ?, parent_uuid = ?,
			module_key = ?, path = ?, enabled = ? WHERE id = ?`,
			comp.Key, comp.Name, string(comp.Qualifier), comp.ProjectUUID, comp.ParentUUID,
			comp.ModuleKey, comp.Path, boolInt(comp.Enabled), id)
		if err != nil {
			return fmt.Errorf("failed to update component %s: %w", comp.Key, err)
		}
	}
	comp.ID = id
	return nil
}

// InsertSnapshot stores a new snapshot without periods and sets its ID.
func (s *Session) InsertSnapshot(ctx context.Context, snap *schema.Snapshot) error {
	cols := []string{"project_uuid", "created_at", "version", "islast"}
	args := []any{snap.ProjectUUID, toMillis(snap.CreatedAt), snap.Version, boolInt(snap.Last)}
	for i := 1; i <= schema.MaxPeriods; i++ {
		cols = append(cols, fmt.Sprintf("period%d_mode", i), fmt.Sprintf("period%d_param", i))
		args = append(args, "", "")
	}
	id, err := s.insert(ctx, `INSERT INTO snapshots (`+strings.Join(cols, ", ")+`) VALUES (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	snap.ID = id
	return nil
}

// UpdateSnapshotPeriods stores resolved periods; unresolved slots are cleared.
func (s *Session) UpdateSnapshotPeriods(ctx context.Context, snapshotID int64, periods []schema.Period) error {
	byIndex := make(map[int]schema.Period, len(periods))
	for _, p := range periods {
		byIndex[p.Index] = p
	}
	var sets []string
	var args []any
	for i := 1; i <= schema.MaxPeriods; i++ {
		sets = append(sets,
			fmt.Sprintf("period%d_mode = ?", i),
			fmt.Sprintf("period%d_param = ?", i),
			fmt.Sprintf("period%d_date = ?", i),
			fmt.Sprintf("period%d_snapshot_id = ?", i))
		p, ok := byIndex[i]
		if !ok {
			args = append(args, "", "", sql.NullInt64{}, sql.NullInt64{})
			continue
		}
		args = append(args, string(p.Mode), p.Param,
			sql.NullInt64{Int64: toMillis(p.SnapshotDate), Valid: true},
			sql.NullInt64{Int64: p.SnapshotID, Valid: true})
	}
	args = append(args, snapshotID)
	if _, err := s.exec(ctx, `UPDATE snapshots SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return fmt.Errorf("failed to update periods of snapshot %d: %w", snapshotID, err)
	}
	return nil
}

// MarkLastSnapshot flags snapshotID as the latest snapshot of its project.
func (s *Session) MarkLastSnapshot(ctx context.Context, projectUUID string, snapshotID int64) error {
	if _, err := s.exec(ctx, `UPDATE snapshots SET islast = 0 WHERE project_uuid = ? AND islast = 1`, projectUUID); err != nil {
		return fmt.Errorf("failed to unmark last snapshot: %w", err)
	}
	if _, err := s.exec(ctx, `UPDATE snapshots SET islast = 1 WHERE id = ?`, snapshotID); err != nil {
		return fmt.Errorf("failed to mark last snapshot: %w", err)
	}
	return nil
}

// SaveMeasure inserts a measure when its ID is zero and updates it otherwise.
func (s *Session) SaveMeasure(ctx context.Context, m *schema.Measure) error {
	vars := make([]any, schema.MaxPeriods)
	for i := range schema.MaxPeriods {
		vars[i] = nullFloat(m.Variations[i])
	}
	if m.ID != 0 {
		args := append([]any{nullFloat(m.Value)}, vars...)
		args = append(args, m.ID)
		_, err := s.exec(ctx, `UPDATE project_measures SET value = ?, variation_value_1 = ?, variation_value_2 = ?,
			variation_value_3 = ?, variation_value_4 = ?, variation_value_5 = ? WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("failed to update measure %s: %w", m.MetricKey, err)
		}
		return nil
	}
	args := append([]any{m.SnapshotID, m.ComponentUUID, m.MetricKey, nullFloat(m.Value)}, vars...)
	id, err := s.insert(ctx, `INSERT INTO project_measures (snapshot_id, component_uuid, metric_key, value,
		variation_value_1, variation_value_2, variation_value_3, variation_value_4, variation_value_5)
		VALUES (`+placeholders(9)+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert measure %s: %w", m.MetricKey, err)
	}
	m.ID = id
	return nil
}

// DeleteMeasure removes a stored measure.
func (s *Session) DeleteMeasure(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `DELETE FROM project_measures WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete measure %d: %w", id, err)
	}
	return nil
}

// SetProperty writes a project property.
func (s *Session) SetProperty(ctx context.Context, key, projectUUID, value string, now time.Time) error {
	var id int64
	err := s.queryRow(ctx, `SELECT id FROM properties WHERE prop_key = ? AND project_uuid = ?`, key, projectUUID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.exec(ctx, `INSERT INTO properties (prop_key, project_uuid, text_value, updated_at) VALUES (?, ?, ?, ?)`,
			key, projectUUID, value, toMillis(now))
	case err == nil:
		_, err = s.exec(ctx, `UPDATE properties SET text_value = ?, updated_at = ? WHERE id = ?`, value, toMillis(now), id)
	}
	if err != nil {
		return fmt.Errorf("failed to set property %s: %w", key, err)
	}
	return nil
}
