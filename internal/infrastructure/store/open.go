package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/doeshing/repty/internal/domain"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT    NOT NULL,
	timestamp   INTEGER NOT NULL,
	directory   TEXT    NOT NULL DEFAULT '',
	exit_code   INTEGER,
	tags        TEXT,
	description TEXT
);
CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);
CREATE INDEX IF NOT EXISTS idx_commands_tags ON commands(tags);
CREATE INDEX IF NOT EXISTS idx_commands_directory ON commands(directory);

CREATE TABLE IF NOT EXISTS command_chains (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	commands_text TEXT    NOT NULL UNIQUE,
	count         INTEGER NOT NULL DEFAULT 1,
	last_used     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chains_frequency ON command_chains(count DESC, last_used DESC);

CREATE TABLE IF NOT EXISTS aliases (
	name          TEXT PRIMARY KEY,
	commands_text TEXT NOT NULL,
	type          TEXT NOT NULL CHECK (type IN ('single', 'chain'))
);
`

// pragmas are applied with EXEC so they work regardless of DSN support.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

// openDB opens the database at path, applies pragmas and ensures the schema.
func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
