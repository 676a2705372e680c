package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/trendline/schema"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult describes what a migration run did.
type MigrationResult struct {
	FromVersion uint
	ToVersion   uint
	Changed     bool
}

// Migrate runs database migrations against the configured database.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func Migrate(backend schema.DatabaseBackend, connStr string, targetVersion int) (MigrationResult, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return MigrationResult{}, err
	}
	defer func() { _ = db.Close() }()
	return migrateDB(db, backend, targetVersion)
}

// newMigrator builds a migrate instance over an open database.
func newMigrator(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		dir    string
		err    error
	)
	switch backend {
	case schema.SQLiteBackend:
		dir = "sqlite"
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		dir = "mysql"
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case schema.PostgreSQLBackend:
		dir = "postgres"
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "trendline", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// migrateDB migrates an open database. The migrate instance is not closed
// because that would close db.
func migrateDB(db *sql.DB, backend schema.DatabaseBackend, targetVersion int) (MigrationResult, error) {
	m, err := newMigrator(db, backend)
	if err != nil {
		return MigrationResult{}, err
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return MigrationResult{}, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	result := MigrationResult{FromVersion: currentVersion}
	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		result.ToVersion = currentVersion
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("failed to migrate from version %d (target %d): %w", currentVersion, targetVersion, err)
	}

	newVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("failed to get new migration version: %w", err)
	}
	result.ToVersion = newVersion
	result.Changed = true
	log.Debug().Str("backend", string(backend)).Uint("from", currentVersion).Uint("to", newVersion).Msg("migrated database")
	return result, nil
}

// schemaVersion reports the applied migration version.
func schemaVersion(db *sql.DB, backend schema.DatabaseBackend) (uint, bool, error) {
	m, err := newMigrator(db, backend)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
