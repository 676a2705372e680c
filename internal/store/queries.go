package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// findComponent resolves a component by key or uuid, preferring enabled rows.
func (s *Store) findComponent(ctx context.Context, keyOrUUID string) (schema.Component, error) {
	comp, err := scanComponent(s.queryRow(ctx, componentSelect+` WHERE kee = ? OR uuid = ? ORDER BY enabled DESC, id DESC LIMIT 1`,
		keyOrUUID, keyOrUUID))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Component{}, fmt.Errorf("component %s: %w", keyOrUUID, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Component{}, fmt.Errorf("failed to find component %s: %w", keyOrUUID, err)
	}
	return comp, nil
}

// lastSnapshot returns the snapshot flagged as last for a project.
func (s *Store) lastSnapshot(ctx context.Context, projectUUID string) (schema.Snapshot, error) {
	snap, err := scanSnapshot(s.queryRow(ctx, snapshotSelect+` WHERE project_uuid = ? AND islast = 1`, projectUUID))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Snapshot{}, fmt.Errorf("last snapshot of %s: %w", projectUUID, contract.ErrNotFound)
	}
	if err != nil {
		return schema.Snapshot{}, fmt.Errorf("failed to find last snapshot: %w", err)
	}
	return snap, nil
}

// FindMeasures reads measures of a component in its project's last snapshot.
func (s *Store) FindMeasures(ctx context.Context, component string, metrics []string, includeTrends bool) (schema.MeasureReport, error) {
	comp, err := s.findComponent(ctx, component)
	if err != nil {
		return schema.MeasureReport{}, err
	}
	snap, err := s.lastSnapshot(ctx, comp.ProjectUUID)
	if err != nil {
		return schema.MeasureReport{}, err
	}

	query := measureSelect + ` WHERE snapshot_id = ? AND component_uuid = ?`
	args := []any{snap.ID, comp.UUID}
	if len(metrics) > 0 {
		query += ` AND metric_key IN (` + placeholders(len(metrics)) + `)`
		for _, m := range metrics {
			args = append(args, m)
		}
	}
	rows, err := s.query(ctx, query+` ORDER BY metric_key`, args...)
	if err != nil {
		return schema.MeasureReport{}, fmt.Errorf("failed to query measures: %w", err)
	}
	measures, err := collectMeasures(rows)
	if err != nil {
		return schema.MeasureReport{}, err
	}
	if !includeTrends {
		for i := range measures {
			measures[i].Variations = schema.Variations{}
		}
	}
	return schema.MeasureReport{Component: comp, Snapshot: snap, Measures: measures, Trends: includeTrends}, nil
}

// FindIssues returns every issue of a project, identified by key or uuid.
func (s *Store) FindIssues(ctx context.Context, projectKey string) ([]schema.Issue, error) {
	project, err := s.findComponent(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	rows, err := s.query(ctx, issueSelect+` WHERE i.project_uuid = ? ORDER BY i.id`, project.ProjectUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	return collectIssues(rows)
}

// FindIssueChanges returns the change log of an issue, oldest first.
func (s *Store) FindIssueChanges(ctx context.Context, issueKey string) ([]schema.IssueChange, error) {
	rows, err := s.query(ctx, changeSelect+` WHERE issue_key = ? ORDER BY issue_change_creation_date, id`, issueKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue changes: %w", err)
	}
	return collectChanges(rows)
}

// FindProjectSnapshots returns the history of a project by key, oldest first.
func (s *Store) FindProjectSnapshots(ctx context.Context, projectKey string) ([]schema.Snapshot, error) {
	project, err := s.findComponent(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	return s.FindSnapshots(ctx, project.ProjectUUID)
}

// UpsertRule inserts or refreshes a rule definition and sets its ID.
func (s *Store) UpsertRule(ctx context.Context, r *schema.Rule, now time.Time) error {
	status := r.Status
	if status == "" {
		status = schema.RuleReady
	}
	existing, err := s.FindRuleByKey(ctx, r.Key)
	switch {
	case errors.Is(err, contract.ErrNotFound):
		id, err := s.insert(ctx, `INSERT INTO rules (plugin_name, plugin_rule_key, name, priority, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.Key.Repository, r.Key.Rule, r.Name, string(r.Severity), status, toMillis(now))
		if err != nil {
			return fmt.Errorf("failed to insert rule %s: %w", r.Key, err)
		}
		r.ID = id
	case err != nil:
		return err
	default:
		if _, err := s.exec(ctx, `UPDATE rules SET name = ?, priority = ?, status = ? WHERE id = ?`,
			r.Name, string(r.Severity), status, existing.ID); err != nil {
			return fmt.Errorf("failed to update rule %s: %w", r.Key, err)
		}
		r.ID = existing.ID
	}
	r.Status = status
	return nil
}

// ListRules returns every stored rule ordered by key.
func (s *Store) ListRules(ctx context.Context) ([]schema.Rule, error) {
	rows, err := s.query(ctx, `SELECT id, plugin_name, plugin_rule_key, name, priority, status FROM rules
		ORDER BY plugin_name, plugin_rule_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []schema.Rule
	for rows.Next() {
		var r schema.Rule
		var severity string
		if err := rows.Scan(&r.ID, &r.Key.Repository, &r.Key.Rule, &r.Name, &severity, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.Severity = schema.Severity(severity)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// AllIssues returns every stored issue.
func (s *Store) AllIssues(ctx context.Context) ([]schema.Issue, error) {
	rows, err := s.query(ctx, issueSelect+` ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	return collectIssues(rows)
}

// AllIssueChanges returns every change log row.
func (s *Store) AllIssueChanges(ctx context.Context) ([]schema.IssueChange, error) {
	rows, err := s.query(ctx, changeSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue changes: %w", err)
	}
	return collectChanges(rows)
}

// AllSnapshots returns every snapshot.
func (s *Store) AllSnapshots(ctx context.Context) ([]schema.Snapshot, error) {
	rows, err := s.query(ctx, snapshotSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	return collectSnapshots(rows)
}

// AllMeasures returns every stored measure.
func (s *Store) AllMeasures(ctx context.Context) ([]schema.Measure, error) {
	rows, err := s.query(ctx, measureSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query measures: %w", err)
	}
	return collectMeasures(rows)
}

// GetProperty reads a project property.
func (s *Store) GetProperty(ctx context.Context, key, projectUUID string) (string, error) {
	var value string
	err := s.queryRow(ctx, `SELECT text_value FROM properties WHERE prop_key = ? AND project_uuid = ?`, key, projectUUID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("property %s: %w", key, contract.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read property %s: %w", key, err)
	}
	return value, nil
}
