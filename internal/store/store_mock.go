package store

import (
	"context"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/stretchr/testify/mock"
)

// MockSession is a mock implementation of contract.Session for testing.
type MockSession struct {
	mock.Mock
}

var _ contract.Session = &MockSession{} // Compile-time check

// FindRuleByKey implements the Session interface.
func (m *MockSession) FindRuleByKey(ctx context.Context, key schema.RuleKey) (schema.Rule, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(schema.Rule), args.Error(1)
}

// FindComponentByUUID implements the Session interface.
func (m *MockSession) FindComponentByUUID(ctx context.Context, uuid string) (schema.Component, error) {
	args := m.Called(ctx, uuid)
	return args.Get(0).(schema.Component), args.Error(1)
}

// FindSnapshots implements the Session interface.
func (m *MockSession) FindSnapshots(ctx context.Context, projectUUID string) ([]schema.Snapshot, error) {
	args := m.Called(ctx, projectUUID)
	snaps, _ := args.Get(0).([]schema.Snapshot)
	return snaps, args.Error(1)
}

// FindMeasure implements the Session interface.
func (m *MockSession) FindMeasure(ctx context.Context, snapshotID int64, componentUUID, metric string) (schema.Measure, error) {
	args := m.Called(ctx, snapshotID, componentUUID, metric)
	return args.Get(0).(schema.Measure), args.Error(1)
}

// InsertIssue implements the Session interface.
func (m *MockSession) InsertIssue(ctx context.Context, row contract.IssueRow) error {
	return m.Called(ctx, row).Error(0)
}

// UpdateIssue implements the Session interface.
func (m *MockSession) UpdateIssue(ctx context.Context, row contract.IssueUpdateRow) error {
	return m.Called(ctx, row).Error(0)
}

// InsertIssueChange implements the Session interface.
func (m *MockSession) InsertIssueChange(ctx context.Context, row contract.IssueChangeRow) error {
	return m.Called(ctx, row).Error(0)
}

// FindProjectIssues implements the Session interface.
func (m *MockSession) FindProjectIssues(ctx context.Context, projectUUID string) ([]schema.Issue, error) {
	args := m.Called(ctx, projectUUID)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// UpsertComponent implements the Session interface.
func (m *MockSession) UpsertComponent(ctx context.Context, c *schema.Component, now time.Time) error {
	return m.Called(ctx, c, now).Error(0)
}

// InsertSnapshot implements the Session interface.
func (m *MockSession) InsertSnapshot(ctx context.Context, s *schema.Snapshot) error {
	return m.Called(ctx, s).Error(0)
}

// UpdateSnapshotPeriods implements the Session interface.
func (m *MockSession) UpdateSnapshotPeriods(ctx context.Context, snapshotID int64, periods []schema.Period) error {
	return m.Called(ctx, snapshotID, periods).Error(0)
}

// MarkLastSnapshot implements the Session interface.
func (m *MockSession) MarkLastSnapshot(ctx context.Context, projectUUID string, snapshotID int64) error {
	return m.Called(ctx, projectUUID, snapshotID).Error(0)
}

// SaveMeasure implements the Session interface.
func (m *MockSession) SaveMeasure(ctx context.Context, ms *schema.Measure) error {
	return m.Called(ctx, ms).Error(0)
}

// DeleteMeasure implements the Session interface.
func (m *MockSession) DeleteMeasure(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// SetProperty implements the Session interface.
func (m *MockSession) SetProperty(ctx context.Context, key, projectUUID, value string, now time.Time) error {
	return m.Called(ctx, key, projectUUID, value, now).Error(0)
}

// Commit implements the Session interface.
func (m *MockSession) Commit() error {
	return m.Called().Error(0)
}

// Rollback implements the Session interface.
func (m *MockSession) Rollback() error {
	return m.Called().Error(0)
}

// MockStore is a mock implementation of contract.Store for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.Store = &MockStore{} // Compile-time check

// Begin implements the Store interface.
func (m *MockStore) Begin(ctx context.Context) (contract.Session, error) {
	args := m.Called(ctx)
	sess, _ := args.Get(0).(contract.Session)
	return sess, args.Error(1)
}

// FindMeasures implements the Store interface.
func (m *MockStore) FindMeasures(ctx context.Context, component string, metrics []string, includeTrends bool) (schema.MeasureReport, error) {
	args := m.Called(ctx, component, metrics, includeTrends)
	return args.Get(0).(schema.MeasureReport), args.Error(1)
}

// FindIssues implements the Store interface.
func (m *MockStore) FindIssues(ctx context.Context, projectKey string) ([]schema.Issue, error) {
	args := m.Called(ctx, projectKey)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// FindIssueChanges implements the Store interface.
func (m *MockStore) FindIssueChanges(ctx context.Context, issueKey string) ([]schema.IssueChange, error) {
	args := m.Called(ctx, issueKey)
	changes, _ := args.Get(0).([]schema.IssueChange)
	return changes, args.Error(1)
}

// FindProjectSnapshots implements the Store interface.
func (m *MockStore) FindProjectSnapshots(ctx context.Context, projectKey string) ([]schema.Snapshot, error) {
	args := m.Called(ctx, projectKey)
	snaps, _ := args.Get(0).([]schema.Snapshot)
	return snaps, args.Error(1)
}

// UpsertRule implements the Store interface.
func (m *MockStore) UpsertRule(ctx context.Context, r *schema.Rule, now time.Time) error {
	return m.Called(ctx, r, now).Error(0)
}

// ListRules implements the Store interface.
func (m *MockStore) ListRules(ctx context.Context) ([]schema.Rule, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).([]schema.Rule)
	return rules, args.Error(1)
}

// GetStatus implements the Store interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
