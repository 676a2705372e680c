package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/trendline/internal/parquet"
)

// ExecuteExport writes every issue, change, snapshot and measure to Parquet
// files named after prefix.
func ExecuteExport(ctx context.Context, s *Store, prefix string, w io.Writer) error {
	if prefix == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := s.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TableSizes[snapshotsTable] == 0 {
		return errors.New("no analysis data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	issues, err := s.AllIssues(ctx)
	if err != nil {
		return err
	}
	changes, err := s.AllIssueChanges(ctx)
	if err != nil {
		return err
	}
	snapshots, err := s.AllSnapshots(ctx)
	if err != nil {
		return err
	}
	measures, err := s.AllMeasures(ctx)
	if err != nil {
		return err
	}

	exports := []struct {
		name  string
		count int
		write func(path string) error
	}{
		{"issues", len(issues), func(p string) error { return parquet.WriteRows(parquet.ConvertIssues(issues), p) }},
		{"issue_changes", len(changes), func(p string) error { return parquet.WriteRows(parquet.ConvertIssueChanges(changes), p) }},
		{"snapshots", len(snapshots), func(p string) error { return parquet.WriteRows(parquet.ConvertSnapshots(snapshots), p) }},
		{"measures", len(measures), func(p string) error { return parquet.WriteRows(parquet.ConvertMeasures(measures), p) }},
	}
	for _, e := range exports {
		path := prefix + "." + e.name + ".parquet"
		if err := e.write(path); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
		_, _ = fmt.Fprintf(w, "Exported %d %s to: %s\n", e.count, e.name, path)
	}
	return nil
}
