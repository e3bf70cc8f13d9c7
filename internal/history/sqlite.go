package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store over SQLite, for installs that want the
// history queryable with standard tools.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the history database at path, creating it and its
// schema if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// WAL keeps readers from blocking the write path
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		params TEXT NOT NULL,
		tx_id TEXT,
		amount TEXT,
		at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_executions_at ON executions(at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists one record.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO executions (id, kind, params, tx_id, amount, at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, string(params), rec.TxID, rec.Amount, rec.At.UTC())
	return err
}

// List returns records at or after since, oldest first.
func (s *SQLiteStore) List(ctx context.Context, since time.Time, limit int) ([]*Record, error) {
	query := `SELECT id, kind, params, tx_id, amount, at FROM executions WHERE at >= ? ORDER BY at ASC`
	args := []interface{}{since.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var params string
		var txID, amount sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Kind, &params, &txID, &amount, &rec.At); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(params), &rec.Params)
		rec.TxID = txID.String
		rec.Amount = amount.String
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Summarize aggregates all records at or after since.
func (s *SQLiteStore) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	records, err := s.List(ctx, since, 0)
	if err != nil {
		return nil, err
	}
	return summarize(records, since), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
