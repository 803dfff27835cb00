// Package sqlite provides the SQLite ledger archive.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is the archive schema version stored in PRAGMA user_version.
const SchemaVersion = 1

//go:embed schema.sql
var schema string

// DB is an archive database handle.
type DB struct {
	*sql.DB
	path string
}

// Open opens the archive at path. ":memory:" opens a private in-memory
// archive on a single connection.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	if path == ":memory:" {
		dsn = "file::memory:?_busy_timeout=5000"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}

	return &DB{DB: conn, path: path}, nil
}

// Version returns the schema version of the archive, 0 when uninitialized.
func (db *DB) Version(ctx context.Context) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Migrate creates the ledger schema if the archive is older than
// SchemaVersion. An archive written by a newer version is refused.
func (db *DB) Migrate() error {
	ctx := context.Background()

	v, err := db.Version(ctx)
	if err != nil {
		return err
	}
	switch {
	case v == SchemaVersion:
		return nil
	case v > SchemaVersion:
		return fmt.Errorf("archive %s has schema version %d, newer than supported %d", db.path, v, SchemaVersion)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}
