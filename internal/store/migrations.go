package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at       TEXT NOT NULL,
			ended_at         TEXT,
			duration_seconds REAL NOT NULL DEFAULT 0,
			score            REAL NOT NULL DEFAULT 0,
			typing_rate      REAL NOT NULL DEFAULT 0,
			backspace_rate   REAL NOT NULL DEFAULT 0,
			pointer_distance REAL NOT NULL DEFAULT 0,
			tab_switches     INTEGER NOT NULL DEFAULT 0,
			idle_seconds     REAL NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS session_metrics (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id       INTEGER NOT NULL REFERENCES sessions(id),
			taken_at         TEXT NOT NULL,
			score            REAL NOT NULL,
			typing_rate      REAL NOT NULL,
			backspace_rate   REAL NOT NULL,
			pointer_distance REAL NOT NULL,
			tab_switches     INTEGER NOT NULL,
			idle_seconds     REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS interventions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			kind       TEXT NOT NULL,
			reason     TEXT NOT NULL,
			triggered_at TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_session_metrics_session ON session_metrics(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interventions_session ON interventions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}

// SchemaVersion returns the current schema version recorded in the database.
func (db *DB) SchemaVersion() (int, error) {
	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}
