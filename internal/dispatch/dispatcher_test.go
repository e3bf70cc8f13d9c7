package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/history"
	"github.com/payagent/payagent/internal/intent"
	"github.com/payagent/payagent/internal/settlement/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *mock.Client) {
	t.Helper()
	client := mock.NewClient("10000")
	d := NewDispatcher(client, Options{
		RequireConfirmation: true,
		Threshold:           "100",
		DefaultToken:        "USDC",
	})
	return d, client
}

func transferIntent(recipient, amount string) intent.Intent {
	return intent.Intent{
		Kind:       catalog.ActionTransfer,
		Params:     map[string]string{"recipient": recipient, "amount": amount},
		Confidence: intent.PatternConfidence,
		Origin:     intent.OriginPattern,
	}
}

func TestDispatchBelowThresholdExecutesImmediately(t *testing.T) {
	d, client := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), transferIntent("0xABC", "50"))

	require.True(t, result.Success)
	assert.False(t, result.NeedsConfirmation)
	require.NotNil(t, result.Reference)
	assert.NotEmpty(t, result.Reference.TxID)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "transfer", calls[0].Op)
	assert.Equal(t, []string{"0xABC", "50", "USDC"}, calls[0].Args)
}

func TestDispatchAtThresholdRequiresConfirmation(t *testing.T) {
	d, client := newTestDispatcher(t)

	it := intent.Intent{
		Kind: catalog.ActionCreateEscrow,
		Params: map[string]string{
			"beneficiary": "0xDEF",
			"amount":      "500",
		},
	}
	result := d.Dispatch(context.Background(), it)

	require.True(t, result.NeedsConfirmation)
	assert.Contains(t, result.ConfirmationPrompt, "500")
	assert.Contains(t, result.ConfirmationPrompt, "0xDEF")
	assert.Zero(t, client.CallCount("create_escrow"), "nothing settles before confirm")

	confirmed := d.Confirm(context.Background())
	require.True(t, confirmed.Success)
	assert.Equal(t, 1, client.CallCount("create_escrow"), "confirm settles exactly once")

	// The slot is cleared; confirming again is a protocol error.
	again := d.Confirm(context.Background())
	assert.False(t, again.Success)
	assert.Equal(t, 1, client.CallCount("create_escrow"))
}

func TestDispatchThresholdBoundaries(t *testing.T) {
	tests := []struct {
		amount  string
		pending bool
	}{
		{"99.99", false},
		{"100", true},
		{"100.01", true},
		{"1", false},
		{"5000", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, _ := newTestDispatcher(t)
			result := d.Dispatch(context.Background(), transferIntent("0xABC", tt.amount))
			assert.Equal(t, tt.pending, result.NeedsConfirmation, "amount %s", tt.amount)
			assert.Equal(t, tt.pending, d.HasPending())
		})
	}
}

func TestConfirmWithNothingPending(t *testing.T) {
	d, _ := newTestDispatcher(t)

	result := d.Confirm(context.Background())

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestNewCommandSilentlyOverwritesPending(t *testing.T) {
	d, client := newTestDispatcher(t)

	first := d.Dispatch(context.Background(), transferIntent("0xAAA", "200"))
	require.True(t, first.NeedsConfirmation)

	second := d.Dispatch(context.Background(), transferIntent("0xBBB", "300"))
	require.True(t, second.NeedsConfirmation)
	assert.NotEqual(t, first.ConfirmationPrompt, second.ConfirmationPrompt)

	confirmed := d.Confirm(context.Background())
	require.True(t, confirmed.Success)

	calls := client.Calls()
	require.Len(t, calls, 1, "the overwritten action must never execute")
	assert.Equal(t, []string{"0xBBB", "300", "USDC"}, calls[0].Args)
}

func TestCancelClearsPending(t *testing.T) {
	d, client := newTestDispatcher(t)

	d.Dispatch(context.Background(), transferIntent("0xABC", "500"))
	require.True(t, d.HasPending())

	d.Cancel()
	assert.False(t, d.HasPending())

	result := d.Confirm(context.Background())
	assert.False(t, result.Success)
	assert.Zero(t, client.CallCount("transfer"))
}

func TestConfirmationDisabledExecutesImmediately(t *testing.T) {
	client := mock.NewClient("10000")
	d := NewDispatcher(client, Options{
		RequireConfirmation: false,
		Threshold:           "100",
	})

	result := d.Dispatch(context.Background(), transferIntent("0xABC", "9999"))

	assert.True(t, result.Success)
	assert.False(t, result.NeedsConfirmation)
	assert.Equal(t, 1, client.CallCount("transfer"))
}

func TestUngatedKindIgnoresThreshold(t *testing.T) {
	d, client := newTestDispatcher(t)

	it := intent.Intent{
		Kind:   catalog.ActionSubscribe,
		Params: map[string]string{"service": "newsfeed", "amount": "500"},
	}
	result := d.Dispatch(context.Background(), it)

	assert.True(t, result.Success)
	assert.False(t, result.NeedsConfirmation)
	assert.Equal(t, 1, client.CallCount("subscribe"))
}

func TestDispatchValidationFailure(t *testing.T) {
	d, client := newTestDispatcher(t)

	it := intent.Intent{
		Kind:   catalog.ActionTransfer,
		Params: map[string]string{"amount": "50"},
	}
	result := d.Dispatch(context.Background(), it)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "recipient")
	assert.Empty(t, client.Calls(), "validation failures must not reach settlement")
}

func TestDispatchUnknownIntent(t *testing.T) {
	d, client := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), intent.Unknown("do the thing", []string{"send 50 USDC to 0xABC"}))

	assert.False(t, result.Success)
	assert.Equal(t, ActionUnknown, result.Action)
	assert.NotEmpty(t, result.Suggestions)
	assert.Empty(t, client.Calls())
}

func TestDispatchSettlementFailure(t *testing.T) {
	d, client := newTestDispatcher(t)
	client.FailOps["transfer"] = fmt.Errorf("insufficient liquidity")

	result := d.Dispatch(context.Background(), transferIntent("0xABC", "50"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "insufficient liquidity")
}

func TestParkHoldsUngatedAction(t *testing.T) {
	d, client := newTestDispatcher(t)

	it := intent.Intent{
		Kind:   catalog.ActionReleaseEscrow,
		Params: map[string]string{"escrow_id": "esc-1"},
	}
	result := d.Park(it, "Release escrow esc-1?")

	require.True(t, result.NeedsConfirmation)
	assert.Equal(t, "Release escrow esc-1?", result.ConfirmationPrompt)
	assert.Zero(t, client.CallCount("release_escrow"))

	d.Confirm(context.Background())
	assert.Equal(t, 1, client.CallCount("release_escrow"))
}

// memoryStore is a minimal history.Store for recording assertions.
type memoryStore struct {
	records []*history.Record
	fail    error
}

func (m *memoryStore) Save(ctx context.Context, rec *history.Record) error {
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryStore) List(ctx context.Context, since time.Time, limit int) ([]*history.Record, error) {
	return m.records, nil
}

func (m *memoryStore) Summarize(ctx context.Context, since time.Time) (*history.Summary, error) {
	return &history.Summary{}, nil
}

func (m *memoryStore) Close() error { return nil }

func TestSuccessfulExecutionIsRecorded(t *testing.T) {
	client := mock.NewClient("10000")
	store := &memoryStore{}
	d := NewDispatcher(client, Options{
		RequireConfirmation: true,
		Threshold:           "100",
		History:             store,
	})

	d.Dispatch(context.Background(), transferIntent("0xABC", "50"))

	require.Len(t, store.records, 1)
	assert.Equal(t, "transfer", store.records[0].Kind)
	assert.Equal(t, "50", store.records[0].Amount)
	assert.NotEmpty(t, store.records[0].TxID)
}

func TestHistoryWriteFailureDoesNotFailDispatch(t *testing.T) {
	client := mock.NewClient("10000")
	store := &memoryStore{fail: fmt.Errorf("disk full")}
	d := NewDispatcher(client, Options{History: store})

	result := d.Dispatch(context.Background(), transferIntent("0xABC", "50"))

	assert.True(t, result.Success, "history is best effort")
}

func TestFailedExecutionIsNotRecorded(t *testing.T) {
	client := mock.NewClient("10000")
	client.FailOps["transfer"] = fmt.Errorf("rejected")
	store := &memoryStore{}
	d := NewDispatcher(client, Options{History: store})

	d.Dispatch(context.Background(), transferIntent("0xABC", "50"))

	assert.Empty(t, store.records)
}

func TestDefaultThresholdWhenUnparsable(t *testing.T) {
	client := mock.NewClient("10000")
	d := NewDispatcher(client, Options{
		RequireConfirmation: true,
		Threshold:           "not-a-number",
	})

	result := d.Dispatch(context.Background(), transferIntent("0xABC", "150"))
	assert.True(t, result.NeedsConfirmation, "falls back to the default threshold of 100")
}
