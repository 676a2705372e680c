package schema

import "time"

// Report is one analysis run handed to the engine: the project, its current
// component tree, the issues the analyzer raised and the raw measures.
type Report struct {
	Project        ReportProject     `json:"project"`
	Version        string            `json:"version,omitempty"`
	AnalysisDate   time.Time         `json:"analysis_date,omitzero"`
	Actor          string            `json:"actor,omitempty"`
	Components     []ReportComponent `json:"components"`
	Issues         []ReportIssue     `json:"issues"`
	Measures       []ReportMeasure   `json:"measures"`
	SkippedModules []string          `json:"skipped_modules,omitempty"`
}

// ReportProject identifies the analyzed project.
type ReportProject struct {
	Key  string `json:"key"`
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

// ReportComponent is a module, directory or file below the project.
// An empty Parent means the project itself.
type ReportComponent struct {
	UUID      string    `json:"uuid"`
	Key       string    `json:"key"`
	Name      string    `json:"name,omitempty"`
	Qualifier Qualifier `json:"qualifier"`
	Parent    string    `json:"parent,omitempty"`
	ModuleKey string    `json:"module,omitempty"`
	Path      string    `json:"path,omitempty"`
	ID        int64     `json:"id,omitempty"`
}

// ReportIssue is an issue raised by the analyzer. Key may be empty for a
// first-seen issue; Component is a component key or uuid.
type ReportIssue struct {
	Key          string            `json:"key,omitempty"`
	Rule         RuleKey           `json:"rule"`
	Component    string            `json:"component"`
	Severity     Severity          `json:"severity"`
	Message      string            `json:"message,omitempty"`
	Line         *int              `json:"line,omitempty"`
	Checksum     string            `json:"checksum,omitempty"`
	Debt         *int64            `json:"debt,omitempty"`
	Status       IssueStatus       `json:"status,omitempty"`
	Resolution   Resolution        `json:"resolution,omitempty"`
	Assignee     string            `json:"assignee,omitempty"`
	Reporter     string            `json:"reporter,omitempty"`
	AuthorLogin  string            `json:"author_login,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	CreationDate *time.Time        `json:"creation_date,omitempty"`
	Comments     []ReportComment   `json:"comments,omitempty"`
}

// ReportComment is a comment replayed onto an issue.
type ReportComment struct {
	Key  string     `json:"key,omitempty"`
	User string     `json:"user"`
	Text string     `json:"text"`
	Date *time.Time `json:"date,omitempty"`
}

// ReportMeasure is a raw metric value for a component key or uuid.
type ReportMeasure struct {
	Component string  `json:"component"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
}
