// Package history records every successful mutating dispatch so spending
// can be reported and audited locally, independent of the settlement
// layer's own bookkeeping.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one executed action.
type Record struct {
	ID     string            `json:"id"`
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params"`
	TxID   string            `json:"tx_id"`
	Amount string            `json:"amount"` // decimal string, "" for non-monetary actions
	At     time.Time         `json:"at"`
}

// Summary aggregates spending over a window.
type Summary struct {
	Since   time.Time                  `json:"since"`
	Total   decimal.Decimal            `json:"total"`
	ByKind  map[string]decimal.Decimal `json:"by_kind"`
	Entries int                        `json:"entries"`
}

// Store is the execution-history interface. Two backends exist: bbolt
// (default, zero-setup) and sqlite.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	List(ctx context.Context, since time.Time, limit int) ([]*Record, error)
	Summarize(ctx context.Context, since time.Time) (*Summary, error)
	Close() error
}

// summarize folds records into a Summary; shared by both backends.
func summarize(records []*Record, since time.Time) *Summary {
	s := &Summary{
		Since:  since,
		Total:  decimal.Zero,
		ByKind: make(map[string]decimal.Decimal),
	}
	for _, rec := range records {
		if rec.Amount == "" {
			continue
		}
		amt, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			continue
		}
		s.Total = s.Total.Add(amt)
		s.ByKind[rec.Kind] = s.ByKind[rec.Kind].Add(amt)
		s.Entries++
	}
	return s
}
