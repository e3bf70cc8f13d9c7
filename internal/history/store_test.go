package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	boltStore, err := NewBoltStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { boltStore.Close() })

	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "history.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"bolt":   boltStore,
		"sqlite": sqliteStore,
	}
}

func record(id, kind, amount string, at time.Time) *Record {
	return &Record{
		ID:     id,
		Kind:   kind,
		Params: map[string]string{"recipient": "0xABC", "amount": amount},
		TxID:   "0xmock" + id,
		Amount: amount,
		At:     at,
	}
}

func TestStoreSaveAndList(t *testing.T) {
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				rec := record(fmt.Sprintf("id-%d", i), "transfer", "10", base.Add(time.Duration(i)*time.Minute))
				require.NoError(t, store.Save(ctx, rec))
			}

			records, err := store.List(ctx, base, 0)
			require.NoError(t, err)
			require.Len(t, records, 5)

			// Oldest first.
			for i := 1; i < len(records); i++ {
				assert.False(t, records[i].At.Before(records[i-1].At), "records out of order")
			}
			assert.Equal(t, "id-0", records[0].ID)
			assert.Equal(t, map[string]string{"recipient": "0xABC", "amount": "10"}, records[0].Params)
		})
	}
}

func TestStoreListSinceAndLimit(t *testing.T) {
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 10; i++ {
				rec := record(fmt.Sprintf("id-%d", i), "transfer", "10", base.Add(time.Duration(i)*time.Minute))
				require.NoError(t, store.Save(ctx, rec))
			}

			// since cuts off the first half
			records, err := store.List(ctx, base.Add(5*time.Minute), 0)
			require.NoError(t, err)
			assert.Len(t, records, 5)

			// limit caps the result
			records, err = store.List(ctx, base, 3)
			require.NoError(t, err)
			assert.Len(t, records, 3)
		})
	}
}

func TestStoreSummarize(t *testing.T) {
	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, record("a", "transfer", "50", base)))
			require.NoError(t, store.Save(ctx, record("b", "transfer", "25.50", base.Add(time.Minute))))
			require.NoError(t, store.Save(ctx, record("c", "pay_invoice", "100", base.Add(2*time.Minute))))

			// Non-monetary executions don't contribute to totals.
			blocklist := record("d", "add_blocklist", "", base.Add(3*time.Minute))
			require.NoError(t, store.Save(ctx, blocklist))

			summary, err := store.Summarize(ctx, base)
			require.NoError(t, err)

			assert.Equal(t, "175.5", summary.Total.String())
			assert.Equal(t, "75.5", summary.ByKind["transfer"].String())
			assert.Equal(t, "100", summary.ByKind["pay_invoice"].String())
			assert.Equal(t, 3, summary.Entries)
		})
	}
}

func TestStoreEmpty(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			records, err := store.List(ctx, time.Time{}, 0)
			require.NoError(t, err)
			assert.Empty(t, records)

			summary, err := store.Summarize(ctx, time.Time{})
			require.NoError(t, err)
			assert.True(t, summary.Total.IsZero())
			assert.Zero(t, summary.Entries)
		})
	}
}
