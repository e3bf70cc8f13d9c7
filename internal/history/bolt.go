package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var executionsBucket = []byte("executions")

// BoltStore implements Store over a local bbolt file. Keys are
// RFC3339Nano timestamps plus the record ID, so a cursor scan iterates in
// execution order.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the history database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(executionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func recordKey(rec *Record) []byte {
	return []byte(rec.At.UTC().Format(time.RFC3339Nano) + "/" + rec.ID)
}

// Save persists one record.
func (s *BoltStore) Save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(executionsBucket)
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		return b.Put(recordKey(rec), data)
	})
}

// List returns records at or after since, oldest first, up to limit
// (limit <= 0 means no limit).
func (s *BoltStore) List(ctx context.Context, since time.Time, limit int) ([]*Record, error) {
	var records []*Record
	start := []byte(since.UTC().Format(time.RFC3339Nano))

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(executionsBucket)
		if b == nil {
			return bolt.ErrBucketNotFound
		}
		c := b.Cursor()
		for k, v := c.Seek(start); k != nil; k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // skip corrupt entries rather than fail the scan
			}
			records = append(records, &rec)
			if limit > 0 && len(records) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize aggregates all records at or after since.
func (s *BoltStore) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	records, err := s.List(ctx, since, 0)
	if err != nil {
		return nil, err
	}
	return summarize(records, since), nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BoltStore)(nil)
