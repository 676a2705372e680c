package schema

import "time"

// Component is a project, module, directory or file.
type Component struct {
	ID          int64     `json:"id,omitempty"`
	UUID        string    `json:"uuid"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Qualifier   Qualifier `json:"qualifier"`
	ProjectUUID string    `json:"project_uuid"`
	ParentUUID  string    `json:"parent_uuid,omitempty"`
	ModuleKey   string    `json:"module_key,omitempty"`
	Path        string    `json:"path,omitempty"`
	Enabled     bool      `json:"enabled"`
}

// Snapshot is the stored state of a project after one completed analysis.
type Snapshot struct {
	ID          int64     `json:"id"`
	ProjectUUID string    `json:"project_uuid"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version,omitempty"`
	Last        bool      `json:"last"`
	Periods     []Period  `json:"periods,omitempty"`
}

// IssueChange is one stored change log row.
type IssueChange struct {
	ID        int64      `json:"id"`
	Key       string     `json:"key,omitempty"`
	IssueKey  string     `json:"issue_key"`
	UserLogin string     `json:"user_login,omitempty"`
	Type      ChangeType `json:"change_type"`
	Field     string     `json:"field,omitempty"`
	OldValue  string     `json:"old_value,omitempty"`
	NewValue  string     `json:"new_value,omitempty"`
	Data      string     `json:"change_data"`
	ChangedAt time.Time  `json:"changed_at"`
	CreatedAt time.Time  `json:"created_at"`
}
