// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/trendline/schema"
)

// ErrNotFound is returned by finders when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// RuleFinder looks up stored rules.
type RuleFinder interface {
	// FindRuleByKey returns the rule or an error wrapping ErrNotFound.
	FindRuleByKey(ctx context.Context, key schema.RuleKey) (schema.Rule, error)
}

// ComponentFinder looks up stored components.
type ComponentFinder interface {
	// FindComponentByUUID returns the component or an error wrapping ErrNotFound.
	FindComponentByUUID(ctx context.Context, uuid string) (schema.Component, error)
}

// SnapshotFinder reads project history.
type SnapshotFinder interface {
	// FindSnapshots returns every snapshot of the project, oldest first.
	FindSnapshots(ctx context.Context, projectUUID string) ([]schema.Snapshot, error)
}

// MeasureFinder reads stored measures.
type MeasureFinder interface {
	// FindMeasure returns the measure of a metric for a component in a snapshot,
	// or an error wrapping ErrNotFound.
	FindMeasure(ctx context.Context, snapshotID int64, componentUUID, metric string) (schema.Measure, error)
}

// IssueWriter persists issue rows and their change log.
type IssueWriter interface {
	InsertIssue(ctx context.Context, row IssueRow) error
	UpdateIssue(ctx context.Context, row IssueUpdateRow) error
	InsertIssueChange(ctx context.Context, row IssueChangeRow) error
}

// Session is one storage transaction. Nothing is visible to other sessions
// before Commit; Rollback discards every write.
type Session interface {
	RuleFinder
	ComponentFinder
	SnapshotFinder
	MeasureFinder
	IssueWriter

	// FindProjectIssues returns every issue of a project as stored issues.
	FindProjectIssues(ctx context.Context, projectUUID string) ([]schema.Issue, error)

	// UpsertComponent inserts or refreshes a component and sets its ID. A new
	// row is stamped with now.
	UpsertComponent(ctx context.Context, c *schema.Component, now time.Time) error

	// InsertSnapshot stores a new snapshot and sets its ID.
	InsertSnapshot(ctx context.Context, s *schema.Snapshot) error

	// UpdateSnapshotPeriods stores the resolved periods of a snapshot.
	UpdateSnapshotPeriods(ctx context.Context, snapshotID int64, periods []schema.Period) error

	// MarkLastSnapshot flags snapshotID as the latest of its project.
	MarkLastSnapshot(ctx context.Context, projectUUID string, snapshotID int64) error

	// SaveMeasure inserts a measure when its ID is zero and updates it otherwise.
	SaveMeasure(ctx context.Context, m *schema.Measure) error

	// DeleteMeasure removes a stored measure.
	DeleteMeasure(ctx context.Context, id int64) error

	// SetProperty writes a project property updated at now.
	SetProperty(ctx context.Context, key, projectUUID, value string, now time.Time) error

	Commit() error
	Rollback() error
}

// SessionOpener starts storage transactions.
type SessionOpener interface {
	Begin(ctx context.Context) (Session, error)
}

// Store is the persistence layer used by commands and the MCP server.
type Store interface {
	SessionOpener

	// FindMeasures reads measures of a component in its project's last snapshot.
	// Variations are cleared unless includeTrends is set. Purged measures are absent.
	FindMeasures(ctx context.Context, component string, metrics []string, includeTrends bool) (schema.MeasureReport, error)

	// FindIssues returns every issue of a project, open or not.
	FindIssues(ctx context.Context, projectKey string) ([]schema.Issue, error)

	// FindIssueChanges returns the change log of an issue, oldest first.
	FindIssueChanges(ctx context.Context, issueKey string) ([]schema.IssueChange, error)

	// FindProjectSnapshots returns the history of a project by key, oldest first.
	FindProjectSnapshots(ctx context.Context, projectKey string) ([]schema.Snapshot, error)

	// UpsertRule inserts or refreshes a rule definition and sets its ID. A new
	// row is stamped with now.
	UpsertRule(ctx context.Context, r *schema.Rule, now time.Time) error

	// ListRules returns every stored rule.
	ListRules(ctx context.Context) ([]schema.Rule, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	Close() error
}

// ResultWriter renders query and analysis results in the configured output format.
type ResultWriter interface {
	WriteMeasures(report schema.MeasureReport, cfg *Config) error
	WriteIssues(issues []schema.Issue, cfg *Config) error
	WriteChangelog(issueKey string, changes []schema.IssueChange, cfg *Config) error
	WritePeriods(snapshots []schema.Snapshot, cfg *Config) error
	WriteRules(rules []schema.Rule, cfg *Config) error
	WriteSummary(summary schema.AnalysisSummary, cfg *Config) error
}
