package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/trendline/internal/store"
	"github.com/spf13/cobra"
)

// dbCmd focused on database management.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the trendline database",
	Long: `Manage the database holding issues, change logs, snapshots and measures.

Supported backends: SQLite (default), MySQL, PostgreSQL

Subcommands:
  status  - Show connection details, schema version and table sizes
  export  - Export data to Parquet for analytics
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  # Check status
  trendline db status

  # Use PostgreSQL (set connection string via env variable)
  TRENDLINE_DB_BACKEND=postgresql TRENDLINE_DB_CONNECT="host=... dbname=..." trendline db status`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display database statistics and connection details",
	Long: `Show detailed information about the trendline database.

Displays:
- Backend type and connection status
- Schema version
- Number of analyzed projects and the last analysis date
- Table sizes`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(st *store.Store) error {
			status, err := st.GetStatus(rootCtx)
			if err != nil {
				return fmt.Errorf("failed to get store status: %w", err)
			}
			store.PrintStatus(os.Stdout, status)
			return nil
		})
	},
}

// dbClearCmd clears all stored data.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored issues, snapshots and measures",
	Long: `Delete every row of every trendline table. The schema is kept.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  trendline db export --output-file backup
  trendline db clear`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(st *store.Store) error {
			if err := st.Clear(rootCtx); err != nil {
				return err
			}
			fmt.Println("Database cleared successfully.")
			return nil
		})
	},
}

// dbExportCmd exports stored data to Parquet files.
var dbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored data to Parquet for BI tools and analytics",
	Long: `Export issues, issue changes, snapshots and measures to Parquet files named
<output-file>.<table>.parquet.

Requires: --output-file parameter

Examples:
  trendline db export --output-file trendline
  duckdb -c "SELECT * FROM read_parquet('trendline.measures.parquet') LIMIT 10"`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(st *store.Store) error {
			return store.ExecuteExport(rootCtx, st, cfg.OutputFile, os.Stdout)
		})
	},
}

// dbMigrateCmd runs database migrations.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  trendline db migrate

  # Rollback to initial state
  trendline db migrate --target-version 0`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		result, err := store.Migrate(cfg.DBBackend, cfg.DBConnect, cfg.TargetVersion)
		if err != nil {
			return err
		}
		if !result.Changed {
			fmt.Printf("Database already at version %d.\n", result.ToVersion)
			return nil
		}
		fmt.Printf("Migrated database from version %d to %d.\n", result.FromVersion, result.ToVersion)
		return nil
	},
}
