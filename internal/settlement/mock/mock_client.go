// Package mock provides an in-memory settlement.Client for tests and the
// CLI demo. Behavior is controllable: individual operations can be made
// to fail, and every call is recorded for assertions.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/payagent/payagent/internal/settlement"
	"github.com/shopspring/decimal"
)

// Call records one settlement invocation for test assertions.
type Call struct {
	Op     string
	Args   []string
	TxID   string
	Failed bool
}

// Client implements settlement.Client in memory.
type Client struct {
	mu      sync.Mutex
	logger  *slog.Logger
	balance decimal.Decimal
	token   string
	escrows map[string]decimal.Decimal
	streams map[string]decimal.Decimal
	allow   map[string]bool
	block   map[string]bool
	calls   []Call

	// FailOps maps operation names ("transfer", "create_escrow", ...) to
	// an error returned instead of executing. Used to exercise the
	// external-failure paths.
	FailOps map[string]error
}

// NewClient creates a mock settlement client with a starting balance.
func NewClient(startingBalance string) *Client {
	bal, err := decimal.NewFromString(startingBalance)
	if err != nil {
		bal = decimal.NewFromInt(10_000)
	}
	return &Client{
		logger:  slog.Default().With("component", "mock_settlement"),
		balance: bal,
		token:   "USDC",
		escrows: make(map[string]decimal.Decimal),
		streams: make(map[string]decimal.Decimal),
		allow:   make(map[string]bool),
		block:   make(map[string]bool),
		FailOps: make(map[string]error),
	}
}

// Calls returns a copy of all recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (c *Client) CallCount(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

func (c *Client) begin(op string, args ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.FailOps[op]; err != nil {
		c.calls = append(c.calls, Call{Op: op, Args: args, Failed: true})
		return "", err
	}

	txID := fmt.Sprintf("0xmock%s", uuid.NewString()[:8])
	c.calls = append(c.calls, Call{Op: op, Args: args, TxID: txID})
	c.logger.Debug("settlement call", "op", op, "tx", txID)
	return txID, nil
}

func (c *Client) receipt(op, txID, reference, amount string) *settlement.Receipt {
	amt, _ := decimal.NewFromString(amount)
	return &settlement.Receipt{
		TxID:      txID,
		Kind:      op,
		Amount:    amt,
		Reference: reference,
		Timestamp: time.Now(),
	}
}

func (c *Client) debit(amount string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if amt, err := decimal.NewFromString(amount); err == nil {
		c.balance = c.balance.Sub(amt)
	}
}

func (c *Client) Transfer(ctx context.Context, recipient, amount, token string) (*settlement.Receipt, error) {
	txID, err := c.begin("transfer", recipient, amount, token)
	if err != nil {
		return nil, err
	}
	c.debit(amount)
	return c.receipt("transfer", txID, recipient, amount), nil
}

func (c *Client) CreateEscrow(ctx context.Context, beneficiary, amount, duration string) (*settlement.Receipt, error) {
	txID, err := c.begin("create_escrow", beneficiary, amount, duration)
	if err != nil {
		return nil, err
	}
	escrowID := fmt.Sprintf("escrow_%s", uuid.NewString()[:8])
	amt, _ := decimal.NewFromString(amount)
	c.mu.Lock()
	c.escrows[escrowID] = amt
	c.mu.Unlock()
	c.debit(amount)
	return c.receipt("create_escrow", txID, escrowID, amount), nil
}

func (c *Client) ReleaseEscrow(ctx context.Context, escrowID string) (*settlement.Receipt, error) {
	txID, err := c.begin("release_escrow", escrowID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	amt, ok := c.escrows[escrowID]
	delete(c.escrows, escrowID)
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("escrow %s not found", escrowID)
	}
	return c.receipt("release_escrow", txID, escrowID, amt.String()), nil
}

func (c *Client) RefundEscrow(ctx context.Context, escrowID string) (*settlement.Receipt, error) {
	txID, err := c.begin("refund_escrow", escrowID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	amt, ok := c.escrows[escrowID]
	delete(c.escrows, escrowID)
	if ok {
		c.balance = c.balance.Add(amt)
	}
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("escrow %s not found", escrowID)
	}
	return c.receipt("refund_escrow", txID, escrowID, amt.String()), nil
}

func (c *Client) CreateStream(ctx context.Context, recipient, amount, duration string) (*settlement.Receipt, error) {
	txID, err := c.begin("create_stream", recipient, amount, duration)
	if err != nil {
		return nil, err
	}
	streamID := fmt.Sprintf("stream_%s", uuid.NewString()[:8])
	amt, _ := decimal.NewFromString(amount)
	c.mu.Lock()
	c.streams[streamID] = amt
	c.mu.Unlock()
	c.debit(amount)
	return c.receipt("create_stream", txID, streamID, amount), nil
}

func (c *Client) CancelStream(ctx context.Context, streamID string) (*settlement.Receipt, error) {
	txID, err := c.begin("cancel_stream", streamID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	_, ok := c.streams[streamID]
	delete(c.streams, streamID)
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("stream %s not found", streamID)
	}
	return c.receipt("cancel_stream", txID, streamID, "0"), nil
}

func (c *Client) HireAgent(ctx context.Context, agent, amount, task string) (*settlement.Receipt, error) {
	txID, err := c.begin("hire_agent", agent, amount, task)
	if err != nil {
		return nil, err
	}
	jobID := fmt.Sprintf("job_%s", uuid.NewString()[:8])
	c.debit(amount)
	return c.receipt("hire_agent", txID, jobID, amount), nil
}

func (c *Client) ApproveWork(ctx context.Context, jobID string) (*settlement.Receipt, error) {
	txID, err := c.begin("approve_work", jobID)
	if err != nil {
		return nil, err
	}
	return c.receipt("approve_work", txID, jobID, "0"), nil
}

func (c *Client) PrivateTransfer(ctx context.Context, recipient, amount string) (*settlement.Receipt, error) {
	txID, err := c.begin("private_transfer", recipient, amount)
	if err != nil {
		return nil, err
	}
	c.debit(amount)
	return c.receipt("private_transfer", txID, recipient, amount), nil
}

func (c *Client) AddAllowlist(ctx context.Context, address string) (*settlement.Receipt, error) {
	txID, err := c.begin("add_allowlist", address)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.allow[address] = true
	c.mu.Unlock()
	return c.receipt("add_allowlist", txID, address, "0"), nil
}

func (c *Client) AddBlocklist(ctx context.Context, address string) (*settlement.Receipt, error) {
	txID, err := c.begin("add_blocklist", address)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.block[address] = true
	c.mu.Unlock()
	return c.receipt("add_blocklist", txID, address, "0"), nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID, amount string) (*settlement.Receipt, error) {
	txID, err := c.begin("pay_invoice", invoiceID, amount)
	if err != nil {
		return nil, err
	}
	c.debit(amount)
	return c.receipt("pay_invoice", txID, invoiceID, amount), nil
}

func (c *Client) Subscribe(ctx context.Context, service, amount, interval string) (*settlement.Receipt, error) {
	txID, err := c.begin("subscribe", service, amount, interval)
	if err != nil {
		return nil, err
	}
	subID := fmt.Sprintf("sub_%s", uuid.NewString()[:8])
	return c.receipt("subscribe", txID, subID, amount), nil
}

func (c *Client) GetBalance(ctx context.Context, token string) (*settlement.Balance, error) {
	if _, err := c.begin("get_balance", token); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		token = c.token
	}
	return &settlement.Balance{Token: token, Amount: c.balance}, nil
}

func (c *Client) GetSpendingReport(ctx context.Context, period string) (*settlement.SpendingReport, error) {
	if _, err := c.begin("get_spending_report", period); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	byKind := make(map[string]decimal.Decimal)
	entries := 0
	for _, call := range c.calls {
		if call.Failed || len(call.Args) < 2 {
			continue
		}
		switch call.Op {
		case "transfer", "create_escrow", "create_stream", "hire_agent", "private_transfer", "pay_invoice":
			if amt, err := decimal.NewFromString(call.Args[1]); err == nil {
				total = total.Add(amt)
				byKind[call.Op] = byKind[call.Op].Add(amt)
				entries++
			}
		}
	}

	return &settlement.SpendingReport{
		Period:  period,
		Total:   total,
		ByKind:  byKind,
		Entries: entries,
	}, nil
}

var _ settlement.Client = (*Client)(nil)
