// Package store persists commands, command chains and aliases in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/repty/internal/domain"
	"github.com/doeshing/repty/internal/ports"
)

const commandColumns = `id, command, timestamp, directory, exit_code, COALESCE(tags, ''), COALESCE(description, '')`

// SQLiteStore persists history in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Option customises a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the clock used for chain timestamps, stats and pruning.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// Open creates (or opens) the database at path.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, domain.ErrStoreNotReady
	}
	return s.db, nil
}

// Insert stores a command and returns its id. A zero timestamp means now.
func (s *SQLiteStore) Insert(ctx context.Context, cmd domain.Command) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, domain.ErrStoreNotReady
	}
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = s.now()
	}
	var exitCode sql.NullInt64
	if cmd.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*cmd.ExitCode), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO commands
		(command, timestamp, directory, exit_code, tags, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cmd.Text,
		cmd.Timestamp.UnixMilli(),
		cmd.Directory,
		exitCode,
		nullString(cmd.Tags),
		nullString(cmd.Description),
	)
	if err != nil {
		return 0, fmt.Errorf("insert command: %w", err)
	}
	return res.LastInsertId()
}

// SearchCommands returns commands matching every set filter, newest first.
// Keywords are OR'd substring matches; a project root scopes by directory prefix
// and takes precedence over an exact directory.
func (s *SQLiteStore) SearchCommands(ctx context.Context, filters domain.SearchFilters, limit int) ([]domain.Command, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []interface{}
	)
	if filters.StartDate != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, filters.StartDate.UnixMilli())
	}
	if filters.EndDate != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, filters.EndDate.UnixMilli())
	}
	if filters.CommandType != "" {
		where = append(where, `command LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(filters.CommandType)+"%")
	}
	if len(filters.Keywords) > 0 {
		ors := make([]string, 0, len(filters.Keywords))
		for _, kw := range filters.Keywords {
			ors = append(ors, `command LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(kw)+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	switch {
	case filters.ProjectRoot != "":
		where = append(where, `directory LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(filters.ProjectRoot)+"%")
	case filters.Directory != "":
		where = append(where, "directory = ?")
		args = append(args, filters.Directory)
	}

	builder := strings.Builder{}
	builder.WriteString("SELECT " + commandColumns + " FROM commands")
	if len(where) > 0 {
		builder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	builder.WriteString(" ORDER BY timestamp DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search commands: %w", err)
	}
	return scanCommands(rows)
}

// RecentCommands returns the latest commands across all directories, newest first.
func (s *SQLiteStore) RecentCommands(ctx context.Context, limit int) ([]domain.Command, error) {
	return s.SearchCommands(ctx, domain.SearchFilters{}, limit)
}

// FrequentChains lists chains by (count desc, lastUsed desc).
func (s *SQLiteStore) FrequentChains(ctx context.Context, limit int) ([]domain.CommandChain, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	query := "SELECT id, commands_text, count, last_used FROM command_chains ORDER BY count DESC, last_used DESC, id ASC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var chains []domain.CommandChain
	for rows.Next() {
		var (
			chain    domain.CommandChain
			lastUsed int64
		)
		if err := rows.Scan(&chain.ID, &chain.CommandsText, &chain.Count, &lastUsed); err != nil {
			return nil, err
		}
		chain.LastUsed = time.UnixMilli(lastUsed)
		chains = append(chains, chain)
	}
	return chains, rows.Err()
}

// RecordChainUsage inserts the chain with count 1, or bumps count and lastUsed.
func (s *SQLiteStore) RecordChainUsage(ctx context.Context, commands []string) error {
	if len(commands) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.ErrStoreNotReady
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO command_chains (commands_text, count, last_used)
		VALUES (?, 1, ?)
		ON CONFLICT(commands_text) DO UPDATE SET count = count + 1, last_used = excluded.last_used`,
		domain.JoinChain(commands),
		s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record chain: %w", err)
	}
	return nil
}

// AddAlias creates or replaces an alias.
func (s *SQLiteStore) AddAlias(ctx context.Context, alias domain.Alias) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.ErrStoreNotReady
	}
	kind := alias.Kind
	if kind == "" {
		kind = domain.AliasSingle
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO aliases (name, commands_text, type) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET commands_text = excluded.commands_text, type = excluded.type`,
		alias.Name, alias.CommandsText, string(kind))
	if err != nil {
		return fmt.Errorf("save alias %q: %w", alias.Name, err)
	}
	return nil
}

// Alias looks up one alias by name.
func (s *SQLiteStore) Alias(ctx context.Context, name string) (domain.Alias, error) {
	db, err := s.handle()
	if err != nil {
		return domain.Alias{}, err
	}
	var (
		alias domain.Alias
		kind  string
	)
	err = db.QueryRowContext(ctx, "SELECT name, commands_text, type FROM aliases WHERE name = ?", name).
		Scan(&alias.Name, &alias.CommandsText, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Alias{}, fmt.Errorf("%w: %s", domain.ErrAliasNotFound, name)
	}
	if err != nil {
		return domain.Alias{}, fmt.Errorf("load alias %q: %w", name, err)
	}
	alias.Kind = domain.AliasKind(kind)
	return alias, nil
}

// Aliases lists all aliases by name.
func (s *SQLiteStore) Aliases(ctx context.Context) ([]domain.Alias, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT name, commands_text, type FROM aliases ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []domain.Alias
	for rows.Next() {
		var (
			alias domain.Alias
			kind  string
		)
		if err := rows.Scan(&alias.Name, &alias.CommandsText, &kind); err != nil {
			return nil, err
		}
		alias.Kind = domain.AliasKind(kind)
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}

// DeleteAlias removes an alias. Missing names yield ErrAliasNotFound.
func (s *SQLiteStore) DeleteAlias(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.ErrStoreNotReady
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM aliases WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete alias %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAliasNotFound, name)
	}
	return nil
}

// Stats counts all commands, those of the last 24 hours and 7 days, and the
// most frequent command texts.
func (s *SQLiteStore) Stats(ctx context.Context, now time.Time) (domain.HistoryStats, error) {
	db, err := s.handle()
	if err != nil {
		return domain.HistoryStats{}, err
	}
	var stats domain.HistoryStats
	err = db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN timestamp >= ? THEN 1 ELSE 0 END), 0)
		FROM commands`,
		now.Add(-domain.Day).UnixMilli(),
		now.Add(-7*domain.Day).UnixMilli(),
	).Scan(&stats.Total, &stats.Today, &stats.ThisWeek)
	if err != nil {
		return domain.HistoryStats{}, fmt.Errorf("count commands: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT command, COUNT(*) AS uses FROM commands
		GROUP BY command ORDER BY uses DESC, MAX(timestamp) DESC LIMIT ?`, domain.DefaultTopCommands)
	if err != nil {
		return domain.HistoryStats{}, fmt.Errorf("top commands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stat domain.CommandStatistic
		if err := rows.Scan(&stat.Command, &stat.Count); err != nil {
			return domain.HistoryStats{}, err
		}
		stats.TopCommands = append(stats.TopCommands, stat)
	}
	return stats, rows.Err()
}

// ClearHistory deletes all logged commands. Chains and aliases are kept.
func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	return s.exec(ctx, "DELETE FROM commands")
}

// ClearChains forgets every recorded chain.
func (s *SQLiteStore) ClearChains(ctx context.Context) error {
	return s.exec(ctx, "DELETE FROM command_chains")
}

// PruneOlderThan removes commands older than N days. Non-positive N keeps everything.
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, days int) error {
	if days <= 0 {
		return nil
	}
	cutoff := s.now().AddDate(0, 0, -days)
	return s.exec(ctx, "DELETE FROM commands WHERE timestamp < ?", cutoff.UnixMilli())
}

// ExportJSON writes the command table to a jsonl file, oldest first.
func (s *SQLiteStore) ExportJSON(ctx context.Context, dest string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	rows, err := db.QueryContext(ctx, "SELECT "+commandColumns+" FROM commands ORDER BY timestamp ASC, id ASC")
	if err != nil {
		return fmt.Errorf("export commands: %w", err)
	}
	commands, err := scanCommands(rows)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, cmd := range commands {
		if err := enc.Encode(cmd); err != nil {
			return err
		}
	}
	return file.Sync()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database. Later calls fail with ErrStoreNotReady.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return domain.ErrStoreNotReady
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec %q: %w", query, err)
	}
	return nil
}

func scanCommands(rows *sql.Rows) ([]domain.Command, error) {
	defer rows.Close()
	var commands []domain.Command
	for rows.Next() {
		var (
			cmd      domain.Command
			ts       int64
			exitCode sql.NullInt64
		)
		if err := rows.Scan(&cmd.ID, &cmd.Text, &ts, &cmd.Directory, &exitCode, &cmd.Tags, &cmd.Description); err != nil {
			return nil, err
		}
		cmd.Timestamp = time.UnixMilli(ts)
		if exitCode.Valid {
			code := int(exitCode.Int64)
			cmd.ExitCode = &code
		}
		commands = append(commands, cmd)
	}
	return commands, rows.Err()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
