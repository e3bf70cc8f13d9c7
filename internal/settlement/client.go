// Package settlement defines the chain-agnostic port to the external
// layer that actually moves value. The dispatcher talks ONLY to this
// interface, never to a chain, wallet, or contract directly.
package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Client is the settlement port: one asynchronous call per action kind.
// Every mutating call either resolves with a Receipt carrying at least a
// transaction identifier, or fails; the dispatcher treats any failure
// uniformly and never retries.
type Client interface {
	Transfer(ctx context.Context, recipient, amount, token string) (*Receipt, error)
	CreateEscrow(ctx context.Context, beneficiary, amount, duration string) (*Receipt, error)
	ReleaseEscrow(ctx context.Context, escrowID string) (*Receipt, error)
	RefundEscrow(ctx context.Context, escrowID string) (*Receipt, error)
	CreateStream(ctx context.Context, recipient, amount, duration string) (*Receipt, error)
	CancelStream(ctx context.Context, streamID string) (*Receipt, error)
	HireAgent(ctx context.Context, agent, amount, task string) (*Receipt, error)
	ApproveWork(ctx context.Context, jobID string) (*Receipt, error)
	PrivateTransfer(ctx context.Context, recipient, amount string) (*Receipt, error)
	AddAllowlist(ctx context.Context, address string) (*Receipt, error)
	AddBlocklist(ctx context.Context, address string) (*Receipt, error)
	PayInvoice(ctx context.Context, invoiceID, amount string) (*Receipt, error)
	Subscribe(ctx context.Context, service, amount, interval string) (*Receipt, error)

	GetBalance(ctx context.Context, token string) (*Balance, error)
	GetSpendingReport(ctx context.Context, period string) (*SpendingReport, error)
}

// Receipt is returned by every mutating settlement call.
type Receipt struct {
	TxID      string          // transaction or settlement identifier
	Kind      string          // which operation produced it
	Amount    decimal.Decimal // amount moved or locked, zero for non-monetary calls
	Reference string          // operation-specific reference: escrow ID, stream ID, job ID
	Timestamp time.Time
}

// Balance is the result of a balance read.
type Balance struct {
	Token  string
	Amount decimal.Decimal
}

// SpendingReport summarizes outgoing value over a period.
type SpendingReport struct {
	Period  string
	Total   decimal.Decimal
	ByKind  map[string]decimal.Decimal
	Entries int
}
