package schema

import "time"

// StoreStatus represents the status of the persistence store.
type StoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	SchemaVersion uint             `json:"schema_version"`
	Dirty         bool             `json:"dirty"`
	Projects      int64            `json:"projects"`
	LastAnalysis  time.Time        `json:"last_analysis"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// MeasureReport is the answer to a measure query on one component.
type MeasureReport struct {
	Component Component `json:"component"`
	Snapshot  Snapshot  `json:"snapshot"`
	Measures  []Measure `json:"measures"`
	Trends    bool      `json:"trends"`
}

// AnalysisSummary describes the outcome of one analysis job.
type AnalysisSummary struct {
	ProjectKey     string        `json:"project_key"`
	SnapshotID     int64         `json:"snapshot_id"`
	AnalysisDate   time.Time     `json:"analysis_date"`
	IssuesInserted int           `json:"issues_inserted"`
	IssuesUpdated  int           `json:"issues_updated"`
	IssuesClosed   int           `json:"issues_closed"`
	Changes        int           `json:"changes"`
	Comments       int           `json:"comments"`
	MeasuresStored int           `json:"measures_stored"`
	MeasuresPurged int           `json:"measures_purged"`
	Periods        []Period      `json:"periods"`
	Duration       time.Duration `json:"duration"`
}
