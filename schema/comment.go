package schema

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a user annotation queued on an issue. IssueKey is denormalized
// for the stored row; the issue owns the comment.
type Comment struct {
	Key       string     `json:"key"`
	IssueKey  string     `json:"issue_key"`
	UserLogin string     `json:"user_login"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// NewComment returns a comment with a generated key.
func NewComment(userLogin, text string) Comment {
	return Comment{
		Key:       uuid.NewString(),
		UserLogin: userLogin,
		Text:      text,
	}
}

// WithKey overrides the generated key, used when replaying comments.
func (c Comment) WithKey(key string) Comment {
	c.Key = key
	return c
}

// WithCreatedAt sets the comment creation date.
func (c Comment) WithCreatedAt(t time.Time) Comment {
	c.CreatedAt = &t
	return c
}
