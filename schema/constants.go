package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// Severity represents the severity of an issue.
	Severity string

	// IssueStatus represents the workflow status of an issue.
	IssueStatus string

	// Resolution represents how an issue was resolved.
	Resolution string

	// Qualifier represents the kind of a component.
	Qualifier string

	// ChangeType distinguishes the rows of the issue change log.
	ChangeType string

	// IdentityMode selects how component and project ids are resolved for new issues.
	IdentityMode string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All severities, from lowest to highest.
const (
	InfoSeverity     Severity = "INFO"
	MinorSeverity    Severity = "MINOR"
	MajorSeverity    Severity = "MAJOR"
	CriticalSeverity Severity = "CRITICAL"
	BlockerSeverity  Severity = "BLOCKER"
)

// All issue statuses.
const (
	StatusOpen      IssueStatus = "OPEN"
	StatusConfirmed IssueStatus = "CONFIRMED"
	StatusReopened  IssueStatus = "REOPENED"
	StatusResolved  IssueStatus = "RESOLVED"
	StatusClosed    IssueStatus = "CLOSED"
)

// All resolutions. An open issue has no resolution.
const (
	NoResolution            Resolution = ""
	ResolutionFixed         Resolution = "FIXED"
	ResolutionFalsePositive Resolution = "FALSE-POSITIVE"
	ResolutionRemoved       Resolution = "REMOVED"
)

// All component qualifiers.
const (
	ProjectQualifier   Qualifier = "TRK"
	ModuleQualifier    Qualifier = "BRC"
	DirectoryQualifier Qualifier = "DIR"
	FileQualifier      Qualifier = "FIL"
)

// Change log row types.
const (
	DiffChange    ChangeType = "diff"
	CommentChange ChangeType = "comment"
)

// Identity modes.
const (
	ServerIdentity IdentityMode = "server" // default
	BatchIdentity  IdentityMode = "batch"
)

// Audited issue field names.
const (
	FieldSeverity   = "severity"
	FieldStatus     = "status"
	FieldResolution = "resolution"
	FieldAssignee   = "assignee"
	FieldDebt       = "technicalDebt"
	FieldMessage    = "message"
	FieldAuthor     = "author"
	FieldLine       = "line"
	FieldChecksum   = "checksum"
)

// Metric keys computed by the engine.
const (
	ViolationsMetric    = "violations"
	NewViolationsMetric = "new_violations"
)

// CacheInvalidationProperty is the project property bumped after every analysis
// so scanner-side caches know to refresh.
const CacheInvalidationProperty = "trendline.cache.lastUpdate"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidSeverities lists all valid severities.
var ValidSeverities = map[Severity]struct{}{
	InfoSeverity:     {},
	MinorSeverity:    {},
	MajorSeverity:    {},
	CriticalSeverity: {},
	BlockerSeverity:  {},
}

// ValidIdentityModes lists all valid identity modes.
var ValidIdentityModes = map[IdentityMode]struct{}{
	ServerIdentity: {},
	BatchIdentity:  {},
}

// SeverityRank orders severities for display and sorting.
func SeverityRank(s Severity) int {
	switch s {
	case BlockerSeverity:
		return 5
	case CriticalSeverity:
		return 4
	case MajorSeverity:
		return 3
	case MinorSeverity:
		return 2
	case InfoSeverity:
		return 1
	default:
		return 0
	}
}
