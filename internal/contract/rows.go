package contract

import "time"

// IssueRow is the full column set written when an issue is first stored.
type IssueRow struct {
	Key           string
	RuleID        int64
	ComponentID   int64
	ComponentUUID string
	ProjectID     int64
	ProjectUUID   string
	Severity      string
	Message       string
	Line          *int
	Debt          *int64
	Status        string
	Resolution    string
	Checksum      string
	Reporter      string
	AuthorLogin   string
	Assignee      string
	Attributes    string
	IssueCreated  *time.Time
	IssueUpdated  *time.Time
	IssueClosed   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IssueUpdateRow carries the columns an issue may change after creation.
// Rule and component identity are immutable and have no column here.
type IssueUpdateRow struct {
	Key          string
	Severity     string
	Message      string
	Line         *int
	Debt         *int64
	Status       string
	Resolution   string
	Checksum     string
	AuthorLogin  string
	Assignee     string
	Attributes   string
	IssueUpdated *time.Time
	IssueClosed  *time.Time
	UpdatedAt    time.Time
}

// IssueChangeRow is one append-only change log row, either a field diff or a comment.
type IssueChangeRow struct {
	Key        string
	IssueKey   string
	UserLogin  string
	ChangeType string
	FieldName  string
	OldValue   string
	NewValue   string
	ChangeData string
	ChangedAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
