package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/internal/telemetry"
	"github.com/huangsam/trendline/schema"
	"github.com/rs/zerolog"
)

// SaveAction tells what a save wrote.
type SaveAction string

// All save actions.
const (
	ActionInserted SaveAction = "inserted"
	ActionUpdated  SaveAction = "updated"
	ActionSkipped  SaveAction = "skipped"
)

// SaveResult describes the writes made for one issue.
type SaveResult struct {
	IssueKey string
	Action   SaveAction
	Changes  int
	Comments int
}

// Reconciler decides insert or update for each issue and writes its change
// log and comments.
type Reconciler struct {
	rules   RuleResolver
	ids     IdentityResolver
	clock   contract.Clock
	log     zerolog.Logger
	metrics *telemetry.EngineMetrics
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = l }
}

// WithMetrics sets the engine instruments.
func WithMetrics(m *telemetry.EngineMetrics) ReconcilerOption {
	return func(r *Reconciler) { r.metrics = m }
}

// NewReconciler returns a reconciler using the given resolvers and clock.
func NewReconciler(rules RuleResolver, ids IdentityResolver, clock contract.Clock, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{rules: rules, ids: ids, clock: clock, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save stores one issue in its own session and commits it.
func (r *Reconciler) Save(ctx context.Context, opener contract.SessionOpener, issue schema.Issue) (SaveResult, error) {
	sess, err := opener.Begin(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	res, err := r.SaveInSession(ctx, sess, issue)
	if err != nil {
		_ = sess.Rollback()
		return res, err
	}
	if err := sess.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

// SaveAll stores issues in order inside sess and stops at the first failure.
// The caller commits or rolls back.
func (r *Reconciler) SaveAll(ctx context.Context, sess contract.Session, issues []schema.Issue) ([]SaveResult, error) {
	results := make([]SaveResult, 0, len(issues))
	for _, issue := range issues {
		res, err := r.SaveInSession(ctx, sess, issue)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SaveInSession stores one issue inside sess without committing.
// New issues are inserted, changed issues updated, others left alone.
func (r *Reconciler) SaveInSession(ctx context.Context, sess contract.Session, issue schema.Issue) (SaveResult, error) {
	now := r.clock.Now()
	switch {
	case issue.IsNew():
		return r.insert(ctx, sess, issue, now)
	case issue.IsChanged():
		return r.update(ctx, sess, issue, now)
	default:
		return SaveResult{IssueKey: issue.Key, Action: ActionSkipped}, nil
	}
}

func (r *Reconciler) insert(ctx context.Context, sess contract.Session, issue schema.Issue, now time.Time) (SaveResult, error) {
	ruleID, err := r.rules.ResolveRuleID(ctx, issue.RuleKey)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to insert issue %s: %w", issue.Key, err)
	}
	componentID, projectID, err := r.ids.ResolveIDs(ctx, issue)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to insert issue %s: %w", issue.Key, err)
	}

	row := contract.IssueRow{
		Key:           issue.Key,
		RuleID:        ruleID,
		ComponentID:   componentID,
		ComponentUUID: issue.ComponentUUID,
		ProjectID:     projectID,
		ProjectUUID:   issue.ProjectUUID,
		Severity:      string(issue.Severity),
		Message:       issue.Message,
		Line:          issue.Line,
		Debt:          issue.Debt,
		Status:        string(issue.Status),
		Resolution:    string(issue.Resolution),
		Checksum:      issue.Checksum,
		Reporter:      issue.Reporter,
		AuthorLogin:   issue.AuthorLogin,
		Assignee:      issue.Assignee,
		Attributes:    issue.AttributesString(),
		IssueCreated:  issue.CreatedAt,
		IssueUpdated:  issue.UpdatedAt,
		IssueClosed:   issue.ClosedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := sess.InsertIssue(ctx, row); err != nil {
		return SaveResult{}, err
	}
	comments, err := r.insertComments(ctx, sess, issue, now)
	if err != nil {
		return SaveResult{}, err
	}

	r.metrics.RecordInsert(ctx, comments)
	r.log.Debug().Str("issue", issue.Key).Str("rule", issue.RuleKey.String()).Int("comments", comments).Msg("inserted issue")
	return SaveResult{IssueKey: issue.Key, Action: ActionInserted, Comments: comments}, nil
}

// update writes only the columns that may change after creation. Rule and
// component identity are never part of the row.
func (r *Reconciler) update(ctx context.Context, sess contract.Session, issue schema.Issue, now time.Time) (SaveResult, error) {
	row := contract.IssueUpdateRow{
		Key:          issue.Key,
		Severity:     string(issue.Severity),
		Message:      issue.Message,
		Line:         issue.Line,
		Debt:         issue.Debt,
		Status:       string(issue.Status),
		Resolution:   string(issue.Resolution),
		Checksum:     issue.Checksum,
		AuthorLogin:  issue.AuthorLogin,
		Assignee:     issue.Assignee,
		Attributes:   issue.AttributesString(),
		IssueUpdated: issue.UpdatedAt,
		IssueClosed:  issue.ClosedAt,
		UpdatedAt:    now,
	}
	if err := sess.UpdateIssue(ctx, row); err != nil {
		return SaveResult{}, err
	}

	diffs := issue.Diffs()
	for _, d := range diffs {
		changedAt := d.Date
		if changedAt.IsZero() {
			changedAt = now
		}
		err := sess.InsertIssueChange(ctx, contract.IssueChangeRow{
			Key:        uuid.NewString(),
			IssueKey:   issue.Key,
			UserLogin:  d.Actor,
			ChangeType: string(schema.DiffChange),
			FieldName:  d.Field,
			OldValue:   d.OldValue,
			NewValue:   d.NewValue,
			ChangeData: FormatDiff(d),
			ChangedAt:  changedAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return SaveResult{}, err
		}
	}
	comments, err := r.insertComments(ctx, sess, issue, now)
	if err != nil {
		return SaveResult{}, err
	}

	r.metrics.RecordUpdate(ctx, len(diffs), comments)
	r.log.Debug().Str("issue", issue.Key).Int("changes", len(diffs)).Int("comments", comments).Msg("updated issue")
	return SaveResult{IssueKey: issue.Key, Action: ActionUpdated, Changes: len(diffs), Comments: comments}, nil
}

func (r *Reconciler) insertComments(ctx context.Context, sess contract.Session, issue schema.Issue, now time.Time) (int, error) {
	comments := issue.Comments()
	for _, c := range comments {
		createdAt := now
		if c.CreatedAt != nil {
			createdAt = *c.CreatedAt
		}
		err := sess.InsertIssueChange(ctx, contract.IssueChangeRow{
			Key:        c.Key,
			IssueKey:   issue.Key,
			UserLogin:  c.UserLogin,
			ChangeType: string(schema.CommentChange),
			ChangeData: c.Text,
			ChangedAt:  createdAt,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(comments), nil
}

// FormatDiff returns the stored change_data form field=old|new.
func FormatDiff(d schema.FieldDiff) string {
	return d.Field + "=" + d.OldValue + "|" + d.NewValue
}
