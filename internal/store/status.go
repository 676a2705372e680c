package store

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/trendline/schema"
)

// GetStatus returns status information about the store.
func (s *Store) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}

	version, dirty, err := schemaVersion(s.db, s.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get schema version: %w", err)
	}
	status.SchemaVersion = version
	status.Dirty = dirty

	for _, table := range AllTables {
		var count int64
		if err := s.queryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	if err := s.queryRow(ctx, `SELECT COUNT(DISTINCT project_uuid) FROM snapshots`).Scan(&status.Projects); err != nil {
		return status, fmt.Errorf("failed to count projects: %w", err)
	}
	if status.TableSizes[snapshotsTable] > 0 {
		var last int64
		if err := s.queryRow(ctx, `SELECT MAX(created_at) FROM snapshots`).Scan(&last); err != nil {
			return status, fmt.Errorf("failed to get last analysis: %w", err)
		}
		status.LastAnalysis = fromMillis(last)
	}
	return status, nil
}

// PrintStatus prints store status information.
func PrintStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Schema Version: %d (dirty: %t)\n", status.SchemaVersion, status.Dirty)
	_, _ = fmt.Fprintf(w, "Projects: %d\n", status.Projects)
	if !status.LastAnalysis.IsZero() {
		_, _ = fmt.Fprintf(w, "Last Analysis: %s (%s)\n", status.LastAnalysis.Format("2006-01-02 15:04:05"), humanize.Time(status.LastAnalysis))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}

// Clear deletes every row of every table, children first.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range AllTables {
		if _, err := s.exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}
