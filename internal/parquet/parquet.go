// Package parquet exports stored issues, change logs, snapshots and measures
// to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/trendline/schema"
	"github.com/parquet-go/parquet-go"
)

// Issue is one row of the issues export.
type Issue struct {
	Key           string     `parquet:"issue_key,snappy"`
	RuleKey       string     `parquet:"rule_key,snappy"`
	ComponentKey  string     `parquet:"component_key,snappy"`
	ComponentUUID string     `parquet:"component_uuid,snappy"`
	ProjectUUID   string     `parquet:"project_uuid,snappy"`
	Severity      string     `parquet:"severity,snappy"`
	Message       string     `parquet:"message,snappy"`
	Line          *int32     `parquet:"line,optional,snappy"`
	Debt          *int64     `parquet:"technical_debt,optional,snappy"`
	Status        string     `parquet:"status,snappy"`
	Resolution    *string    `parquet:"resolution,optional,snappy"`
	Checksum      string     `parquet:"checksum,snappy"`
	Assignee      *string    `parquet:"assignee,optional,snappy"`
	AuthorLogin   *string    `parquet:"author_login,optional,snappy"`
	Attributes    string     `parquet:"attributes,snappy"`
	CreatedAt     *time.Time `parquet:"issue_creation_date,optional,snappy"`
	UpdatedAt     *time.Time `parquet:"issue_update_date,optional,snappy"`
	ClosedAt      *time.Time `parquet:"issue_close_date,optional,snappy"`
}

// IssueChange is one row of the change log export.
type IssueChange struct {
	ID        int64     `parquet:"id,snappy"`
	Key       string    `parquet:"change_key,snappy"`
	IssueKey  string    `parquet:"issue_key,snappy"`
	UserLogin string    `parquet:"user_login,snappy"`
	Type      string    `parquet:"change_type,snappy"`
	Field     string    `parquet:"field_name,snappy"`
	OldValue  string    `parquet:"old_value,snappy"`
	NewValue  string    `parquet:"new_value,snappy"`
	Data      string    `parquet:"change_data,snappy"`
	ChangedAt time.Time `parquet:"changed_at,snappy"`
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// SnapshotPeriod is one resolved differential period of a snapshot.
type SnapshotPeriod struct {
	Index      int32     `parquet:"index"`
	Mode       string    `parquet:"mode"`
	Param      string    `parquet:"param"`
	SnapshotID int64     `parquet:"snapshot_id"`
	Date       time.Time `parquet:"date"`
}

// Snapshot is one row of the snapshots export.
type Snapshot struct {
	ID          int64            `parquet:"id,snappy"`
	ProjectUUID string           `parquet:"project_uuid,snappy"`
	CreatedAt   time.Time        `parquet:"created_at,snappy"`
	Version     string           `parquet:"version,snappy"`
	Last        bool             `parquet:"is_last"`
	Periods     []SnapshotPeriod `parquet:"periods,list"`
}

// Measure is one row of the measures export. Absent values stay null.
type Measure struct {
	ID            int64    `parquet:"id,snappy"`
	SnapshotID    int64    `parquet:"snapshot_id,snappy"`
	ComponentUUID string   `parquet:"component_uuid,snappy"`
	MetricKey     string   `parquet:"metric_key,snappy"`
	Value         *float64 `parquet:"value,optional,snappy"`
	Variation1    *float64 `parquet:"variation_value_1,optional,snappy"`
	Variation2    *float64 `parquet:"variation_value_2,optional,snappy"`
	Variation3    *float64 `parquet:"variation_value_3,optional,snappy"`
	Variation4    *float64 `parquet:"variation_value_4,optional,snappy"`
	Variation5    *float64 `parquet:"variation_value_5,optional,snappy"`
}

// WriteRows writes a slice of export rows to a Parquet file. The schema is
// derived from the row struct tags.
func WriteRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertIssues converts stored issues to export rows.
func ConvertIssues(issues []schema.Issue) []Issue {
	result := make([]Issue, len(issues))
	for i, is := range issues {
		var line *int32
		if is.Line != nil {
			v := int32(*is.Line)
			line = &v
		}
		result[i] = Issue{
			Key:           is.Key,
			RuleKey:       is.RuleKey.String(),
			ComponentKey:  is.ComponentKey,
			ComponentUUID: is.ComponentUUID,
			ProjectUUID:   is.ProjectUUID,
			Severity:      string(is.Severity),
			Message:       is.Message,
			Line:          line,
			Debt:          is.Debt,
			Status:        string(is.Status),
			Resolution:    optional(string(is.Resolution)),
			Checksum:      is.Checksum,
			Assignee:      optional(is.Assignee),
			AuthorLogin:   optional(is.AuthorLogin),
			Attributes:    is.AttributesString(),
			CreatedAt:     is.CreatedAt,
			UpdatedAt:     is.UpdatedAt,
			ClosedAt:      is.ClosedAt,
		}
	}
	return result
}

// ConvertIssueChanges converts change log rows to export rows.
func ConvertIssueChanges(changes []schema.IssueChange) []IssueChange {
	result := make([]IssueChange, len(changes))
	for i, c := range changes {
		result[i] = IssueChange{
			ID:        c.ID,
			Key:       c.Key,
			IssueKey:  c.IssueKey,
			UserLogin: c.UserLogin,
			Type:      string(c.Type),
			Field:     c.Field,
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
			Data:      c.Data,
			ChangedAt: c.ChangedAt,
			CreatedAt: c.CreatedAt,
		}
	}
	return result
}

// ConvertSnapshots converts snapshots and their periods to export rows.
func ConvertSnapshots(snapshots []schema.Snapshot) []Snapshot {
	result := make([]Snapshot, len(snapshots))
	for i, s := range snapshots {
		periods := make([]SnapshotPeriod, len(s.Periods))
		for j, p := range s.Periods {
			periods[j] = SnapshotPeriod{
				Index:      int32(p.Index),
				Mode:       string(p.Mode),
				Param:      p.Param,
				SnapshotID: p.SnapshotID,
				Date:       p.SnapshotDate,
			}
		}
		result[i] = Snapshot{
			ID:          s.ID,
			ProjectUUID: s.ProjectUUID,
			CreatedAt:   s.CreatedAt,
			Version:     s.Version,
			Last:        s.Last,
			Periods:     periods,
		}
	}
	return result
}

// ConvertMeasures converts stored measures to export rows.
func ConvertMeasures(measures []schema.Measure) []Measure {
	result := make([]Measure, len(measures))
	for i, m := range measures {
		result[i] = Measure{
			ID:            m.ID,
			SnapshotID:    m.SnapshotID,
			ComponentUUID: m.ComponentUUID,
			MetricKey:     m.MetricKey,
			Value:         m.Value,
			Variation1:    m.Variations[0],
			Variation2:    m.Variations[1],
			Variation3:    m.Variations[2],
			Variation4:    m.Variations[3],
			Variation5:    m.Variations[4],
		}
	}
	return result
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
