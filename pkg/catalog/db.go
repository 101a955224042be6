// Package catalog maintains a SQLite index of a discovered skill corpus so
// that listing, filtering, and serving skills does not require re-parsing
// every document. The index is rebuilt wholesale from a discovery scan;
// documents remain the source of truth.
package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the default path for the catalog database.
func DefaultDBPath() (string, error) {
	if basePath := os.Getenv("SKILLCTL_BASE_PATH"); basePath != "" {
		return filepath.Join(basePath, "catalog.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".skillctl", "catalog.db"), nil
}

// open opens or creates the SQLite database at the given path with WAL
// mode configured.
func open(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := configure(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}

	return db, nil
}

func configure(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if strings.ToLower(journalMode) != "wal" {
		return errors.Errorf("WAL mode not enabled, current mode: %s", journalMode)
	}

	return nil
}

// migration is a schema migration with timestamp-based versioning.
type migration struct {
	Version     int64
	Description string
	Up          func(*sql.Tx) error
}

var migrations = []migration{
	{
		Version:     20260115120000,
		Description: "create scans and skills tables",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS scans (
					id TEXT PRIMARY KEY,
					started_at TIMESTAMP NOT NULL,
					finished_at TIMESTAMP,
					skill_count INTEGER NOT NULL DEFAULT 0
				);

				CREATE TABLE IF NOT EXISTS skills (
					name TEXT PRIMARY KEY,
					description TEXT NOT NULL,
					license TEXT NOT NULL DEFAULT '',
					compatibility TEXT NOT NULL DEFAULT '',
					allowed_tools TEXT NOT NULL DEFAULT '',
					user_invocable INTEGER NOT NULL DEFAULT 1,
					author TEXT NOT NULL DEFAULT '',
					version TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					directory TEXT NOT NULL DEFAULT '',
					builtin INTEGER NOT NULL DEFAULT 0,
					body_hash TEXT NOT NULL DEFAULT '',
					scan_id TEXT NOT NULL REFERENCES scans(id),
					updated_at TIMESTAMP NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     20260115120001,
		Description: "add category index",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_skills_category ON skills(category)`)
			return err
		},
	},
}

// runMigrations applies all pending migrations in version order.
func runMigrations(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	applied := make(map[int64]bool)
	var versions []int64
	if err := db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return errors.Wrap(err, "failed to query applied migrations")
	}
	for _, v := range versions {
		applied[v] = true
	}

	sorted := make([]migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, m := range sorted {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return errors.Wrapf(err, "failed to apply migration %d: %s", m.Version, m.Description)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return errors.Wrap(err, "failed to record migration")
	}

	return tx.Commit()
}
