// Package storage persists the collections served by the self-hosted data
// service in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lockiemedia/lockie/internal/api"
	"go.uber.org/zap"

	// Pure-Go SQLite driver, registers "sqlite".
	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the current database schema version.
// Increment this when making schema changes and add a migration.
const currentSchemaVersion = 2

// ErrEmptyTicketID is returned when subtasks are saved without a ticket.
var ErrEmptyTicketID = errors.New("ticket id is required")

// SQLiteStore keeps one row per collection holding the collection's JSON.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex // serializes read-modify-write cycles
	logger *zap.Logger
}

// SaveInfo describes the most recent successful save.
type SaveInfo struct {
	RequestID   string
	Collections []string
	SavedAt     time.Time
}

// NewSQLiteStore opens or creates a SQLite database at path and applies any
// pending migrations. Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("storage")
	logger.Info("opening database", zap.String("path", path))

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("database ready", zap.Int("schema_version", currentSchemaVersion))
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "collections table",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS collections (
				name TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     2,
		description: "save log",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS save_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				request_id TEXT NOT NULL DEFAULT '',
				collections TEXT NOT NULL,
				saved_at TEXT NOT NULL
			)`,
		},
	},
}

func (s *SQLiteStore) initSchema() error {
	const schemaVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`

	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.migrate(m); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}

	return nil
}

func (s *SQLiteStore) migrate(m migration) error {
	s.logger.Info("applying migration",
		zap.Int("version", m.version),
		zap.String("description", m.description),
	)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_version (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("check schema version: %w", err)
	}
	return version, nil
}

// Load returns the raw JSON of every stored collection, keyed by name.
// Collections that were never saved are absent.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, data FROM collections")
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		out[name] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	return out, nil
}

// Save merges the given collections into storage in one transaction.
// Collections not present in the map are left untouched.
func (s *SQLiteStore) Save(ctx context.Context, requestID string, collections map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	names := make([]string, 0, len(collections))
	for name, data := range collections {
		if err := upsert(ctx, tx, name, data, now); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO save_log (request_id, collections, saved_at) VALUES (?, ?, ?)",
		requestID, strings.Join(names, ","), now.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("record save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("collections saved",
		zap.Strings("collections", names),
		zap.String("request_id", requestID),
	)
	return nil
}

// ReplaceTicketSubtasks replaces every subtask of one ticket inside the
// dev_subtasks collection. Each stored subtask carries the ticket id.
func (s *SQLiteStore) ReplaceTicketSubtasks(ctx context.Context, requestID string, ticketID api.ID, subtasks []api.Record) error {
	if ticketID == "" {
		return ErrEmptyTicketID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []api.Record
	var data string
	err = tx.QueryRowContext(ctx, "SELECT data FROM collections WHERE name = ?", api.CollectionDevSubtasks).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("load subtasks: %w", err)
	default:
		if err := json.Unmarshal([]byte(data), &existing); err != nil {
			s.logger.Warn("discarding malformed subtasks", zap.Error(err))
			existing = nil
		}
	}

	kept := make([]api.Record, 0, len(existing)+len(subtasks))
	for _, r := range existing {
		if api.IDOf(r["ticket_id"]) != ticketID {
			kept = append(kept, r)
		}
	}
	for _, r := range subtasks {
		r = r.Clone()
		if r == nil {
			continue
		}
		r["ticket_id"] = ticketID
		kept = append(kept, r)
	}

	encoded, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encode subtasks: %w", err)
	}

	now := time.Now().UTC()
	if err := upsert(ctx, tx, api.CollectionDevSubtasks, encoded, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO save_log (request_id, collections, saved_at) VALUES (?, ?, ?)",
		requestID, api.CollectionDevSubtasks, now.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("record save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("ticket subtasks replaced",
		zap.String("ticket", string(ticketID)),
		zap.Int("count", len(subtasks)),
	)
	return nil
}

// LastSave returns the most recent save, or nil when nothing was saved yet.
func (s *SQLiteStore) LastSave(ctx context.Context) (*SaveInfo, error) {
	var info SaveInfo
	var names, savedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT request_id, collections, saved_at FROM save_log ORDER BY id DESC LIMIT 1",
	).Scan(&info.RequestID, &names, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query save log: %w", err)
	}

	if names != "" {
		info.Collections = strings.Split(names, ",")
	}
	info.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("parse save time: %w", err)
	}

	return &info, nil
}

func upsert(ctx context.Context, tx *sql.Tx, name string, data json.RawMessage, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, string(data), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save collection %s: %w", name, err)
	}
	return nil
}
