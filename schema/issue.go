package schema

import (
	"maps"
	"slices"
	"strconv"
	"time"
)

// Issue is a single rule violation tracked across analyses.
//
// Issue has value semantics: every With*/Change* method returns a modified copy
// and leaves the receiver untouched. Pending diffs and comments travel with the
// copy until the issue is saved.
type Issue struct {
	Key           string            `json:"key"`
	RuleKey       RuleKey           `json:"rule"`
	ComponentKey  string            `json:"component_key"`
	ComponentUUID string            `json:"component_uuid"`
	ProjectUUID   string            `json:"project_uuid"`
	ComponentID   int64             `json:"component_id,omitempty"` // trusted verbatim by batch identity resolution
	ProjectID     int64             `json:"project_id,omitempty"`   // trusted verbatim by batch identity resolution
	Severity      Severity          `json:"severity"`
	Message       string            `json:"message,omitempty"`
	Line          *int              `json:"line,omitempty"`
	Debt          *int64            `json:"debt,omitempty"` // minutes
	Checksum      string            `json:"checksum,omitempty"`
	Status        IssueStatus       `json:"status"`
	Resolution    Resolution        `json:"resolution,omitempty"`
	Reporter      string            `json:"reporter,omitempty"`
	AuthorLogin   string            `json:"author_login,omitempty"`
	Assignee      string            `json:"assignee,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	CreatedAt     *time.Time        `json:"created_at,omitempty"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
	ClosedAt      *time.Time        `json:"closed_at,omitempty"`

	isNew    bool
	changed  bool
	diffs    []FieldDiff
	comments []Comment
}

// ChangeContext identifies who performs an audited change and when.
type ChangeContext struct {
	Actor string
	Date  time.Time
	Scan  bool // change made by the analyzer rather than a user
}

// FieldDiff is one audited field change waiting to be persisted.
type FieldDiff struct {
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	Actor    string    `json:"actor"`
	Date     time.Time `json:"date"`
}

// NewIssue returns a first-seen, open issue.
func NewIssue(key string) Issue {
	return Issue{
		Key:    key,
		Status: StatusOpen,
		isNew:  true,
	}
}

// AsPersisted returns a copy flagged as previously stored, with no pending work.
func (i Issue) AsPersisted() Issue {
	c := i.clone()
	c.isNew = false
	c.changed = false
	c.diffs = nil
	c.comments = nil
	return c
}

// IsNew reports whether the issue has never been stored.
func (i Issue) IsNew() bool { return i.isNew }

// IsChanged reports whether a tracked field changed since the issue was loaded.
func (i Issue) IsChanged() bool { return i.changed }

// IsOpen reports whether the issue has no resolution.
func (i Issue) IsOpen() bool { return i.Resolution == NoResolution }

// Diffs returns the pending audited changes in recording order.
func (i Issue) Diffs() []FieldDiff { return slices.Clone(i.diffs) }

// Comments returns the pending comments in insertion order.
func (i Issue) Comments() []Comment { return slices.Clone(i.comments) }

// AttributesString serializes the attribute bag as sorted k=v pairs.
func (i Issue) AttributesString() string { return FormatAttributes(i.Attributes) }

// DebtString returns the debt in minutes, or empty when unset.
func (i Issue) DebtString() string {
	if i.Debt == nil {
		return ""
	}
	return strconv.FormatInt(*i.Debt, 10)
}

// LineString returns the line, or empty when unset.
func (i Issue) LineString() string {
	if i.Line == nil {
		return ""
	}
	return strconv.Itoa(*i.Line)
}

func (i Issue) clone() Issue {
	c := i
	if i.Attributes != nil {
		c.Attributes = maps.Clone(i.Attributes)
	}
	c.diffs = slices.Clone(i.diffs)
	c.comments = slices.Clone(i.comments)
	c.Line = clonePtr(i.Line)
	c.Debt = clonePtr(i.Debt)
	c.CreatedAt = clonePtr(i.CreatedAt)
	c.UpdatedAt = clonePtr(i.UpdatedAt)
	c.ClosedAt = clonePtr(i.ClosedAt)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// touch marks the issue changed when it was loaded as existing.
func (i *Issue) touch() {
	if !i.isNew {
		i.changed = true
	}
}

// --- Identity setters. These never mark the issue as changed because the
// update path does not write them.

// WithRule sets the rule identity.
func (i Issue) WithRule(rule RuleKey) Issue {
	c := i.clone()
	c.RuleKey = rule
	return c
}

// WithComponent sets the owning component identity.
func (i Issue) WithComponent(key, uuid string) Issue {
	c := i.clone()
	c.ComponentKey = key
	c.ComponentUUID = uuid
	return c
}

// WithProject sets the owning project identity.
func (i Issue) WithProject(uuid string) Issue {
	c := i.clone()
	c.ProjectUUID = uuid
	return c
}

// WithIDs sets the caller-supplied numeric component and project ids.
func (i Issue) WithIDs(componentID, projectID int64) Issue {
	c := i.clone()
	c.ComponentID = componentID
	c.ProjectID = projectID
	return c
}

// --- Plain setters. They record no audit entry.

// WithLine sets the line number.
func (i Issue) WithLine(line int) Issue {
	c := i.clone()
	if c.Line == nil || *c.Line != line {
		c.Line = &line
		c.touch()
	}
	return c
}

// WithoutLine clears the line number.
func (i Issue) WithoutLine() Issue {
	c := i.clone()
	if c.Line != nil {
		c.Line = nil
		c.touch()
	}
	return c
}

// WithDebt sets the technical debt in minutes.
func (i Issue) WithDebt(minutes int64) Issue {
	c := i.clone()
	if c.Debt == nil || *c.Debt != minutes {
		c.Debt = &minutes
		c.touch()
	}
	return c
}

// WithChecksum sets the source fingerprint.
func (i Issue) WithChecksum(checksum string) Issue {
	c := i.clone()
	if c.Checksum != checksum {
		c.Checksum = checksum
		c.touch()
	}
	return c
}

// WithMessage sets the message.
func (i Issue) WithMessage(msg string) Issue {
	c := i.clone()
	if c.Message != msg {
		c.Message = msg
		c.touch()
	}
	return c
}

// WithSeverity sets the severity.
func (i Issue) WithSeverity(s Severity) Issue {
	c := i.clone()
	if c.Severity != s {
		c.Severity = s
		c.touch()
	}
	return c
}

// WithStatus sets the status.
func (i Issue) WithStatus(s IssueStatus) Issue {
	c := i.clone()
	if c.Status != s {
		c.Status = s
		c.touch()
	}
	return c
}

// WithResolution sets the resolution.
func (i Issue) WithResolution(r Resolution) Issue {
	c := i.clone()
	if c.Resolution != r {
		c.Resolution = r
		c.touch()
	}
	return c
}

// WithAssignee sets the assignee login.
func (i Issue) WithAssignee(login string) Issue {
	c := i.clone()
	if c.Assignee != login {
		c.Assignee = login
		c.touch()
	}
	return c
}

// WithAuthorLogin sets the SCM author login.
func (i Issue) WithAuthorLogin(login string) Issue {
	c := i.clone()
	if c.AuthorLogin != login {
		c.AuthorLogin = login
		c.touch()
	}
	return c
}

// WithReporter sets the reporter login.
func (i Issue) WithReporter(login string) Issue {
	c := i.clone()
	c.Reporter = login
	return c
}

// WithAttribute sets an attribute. An empty value removes it.
func (i Issue) WithAttribute(key, value string) Issue {
	c := i.clone()
	old, ok := c.Attributes[key]
	switch {
	case value == "" && ok:
		delete(c.Attributes, key)
		c.touch()
	case value != "" && old != value:
		if c.Attributes == nil {
			c.Attributes = make(map[string]string)
		}
		c.Attributes[key] = value
		c.touch()
	}
	return c
}

// WithCreationDate sets the issue creation date.
func (i Issue) WithCreationDate(t time.Time) Issue {
	c := i.clone()
	c.CreatedAt = &t
	return c
}

// WithUpdateDate sets the issue update date.
func (i Issue) WithUpdateDate(t time.Time) Issue {
	c := i.clone()
	if c.UpdatedAt == nil || !c.UpdatedAt.Equal(t) {
		c.UpdatedAt = &t
		c.touch()
	}
	return c
}

// WithCloseDate sets the issue close date.
func (i Issue) WithCloseDate(t time.Time) Issue {
	c := i.clone()
	if c.ClosedAt == nil || !c.ClosedAt.Equal(t) {
		c.ClosedAt = &t
		c.touch()
	}
	return c
}

// WithoutCloseDate clears the close date of a reopened issue.
func (i Issue) WithoutCloseDate() Issue {
	c := i.clone()
	if c.ClosedAt != nil {
		c.ClosedAt = nil
		c.touch()
	}
	return c
}

// --- Audited changes.

// WithFieldChange records one audited change of field from oldValue to newValue.
// It does not modify the field itself. Equal values are ignored. A second
// change of the same field keeps the first old value.
func (i Issue) WithFieldChange(ctx ChangeContext, field, oldValue, newValue string) Issue {
	if oldValue == newValue {
		return i
	}
	c := i.clone()
	for idx := range c.diffs {
		if c.diffs[idx].Field == field {
			c.diffs[idx].NewValue = newValue
			c.diffs[idx].Actor = ctx.Actor
			c.diffs[idx].Date = ctx.Date
			c.touch()
			return c
		}
	}
	c.diffs = append(c.diffs, FieldDiff{
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
		Actor:    ctx.Actor,
		Date:     ctx.Date,
	})
	c.touch()
	return c
}

// ChangeSeverity sets the severity and records the change.
func (i Issue) ChangeSeverity(ctx ChangeContext, s Severity) Issue {
	if i.Severity == s {
		return i
	}
	return i.WithFieldChange(ctx, FieldSeverity, string(i.Severity), string(s)).WithSeverity(s)
}

// ChangeStatus sets the status and records the change.
func (i Issue) ChangeStatus(ctx ChangeContext, s IssueStatus) Issue {
	if i.Status == s {
		return i
	}
	return i.WithFieldChange(ctx, FieldStatus, string(i.Status), string(s)).WithStatus(s)
}

// ChangeResolution sets the resolution and records the change.
func (i Issue) ChangeResolution(ctx ChangeContext, r Resolution) Issue {
	if i.Resolution == r {
		return i
	}
	return i.WithFieldChange(ctx, FieldResolution, string(i.Resolution), string(r)).WithResolution(r)
}

// ChangeAssignee sets the assignee and records the change.
func (i Issue) ChangeAssignee(ctx ChangeContext, login string) Issue {
	if i.Assignee == login {
		return i
	}
	return i.WithFieldChange(ctx, FieldAssignee, i.Assignee, login).WithAssignee(login)
}

// ChangeDebt sets the debt and records the change.
func (i Issue) ChangeDebt(ctx ChangeContext, minutes int64) Issue {
	if i.Debt != nil && *i.Debt == minutes {
		return i
	}
	return i.WithFieldChange(ctx, FieldDebt, i.DebtString(), strconv.FormatInt(minutes, 10)).WithDebt(minutes)
}

// ChangeMessage sets the message and records the change.
func (i Issue) ChangeMessage(ctx ChangeContext, msg string) Issue {
	if i.Message == msg {
		return i
	}
	return i.WithFieldChange(ctx, FieldMessage, i.Message, msg).WithMessage(msg)
}

// ChangeAuthorLogin sets the author login and records the change.
func (i Issue) ChangeAuthorLogin(ctx ChangeContext, login string) Issue {
	if i.AuthorLogin == login {
		return i
	}
	return i.WithFieldChange(ctx, FieldAuthor, i.AuthorLogin, login).WithAuthorLogin(login)
}

// AddComment queues a comment for persistence with the issue.
// A comment on a stored issue marks it changed so the comment gets written.
func (i Issue) AddComment(cm Comment) Issue {
	c := i.clone()
	cm.IssueKey = c.Key
	c.comments = append(c.comments, cm)
	c.touch()
	return c
}
