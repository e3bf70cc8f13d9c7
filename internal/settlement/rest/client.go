// Package rest is the HTTP adapter to an external settlement service.
// One POST per operation; the service owns all chain interaction and
// returns a settlement receipt or an error status.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/payagent/payagent/internal/errors"
	"github.com/payagent/payagent/internal/settlement"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 30 * time.Second

// Client talks to a settlement service over JSON HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

var _ settlement.Client = (*Client)(nil)

// receiptPayload is the wire form of a settlement receipt.
type receiptPayload struct {
	TxID      string    `json:"tx_id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.InternalErrorf("failed to encode settlement request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.InternalErrorf("failed to build settlement request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.ExternalError(err, "settlement service unreachable")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return errors.ExternalError(
			fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody))),
			"settlement service rejected the request")
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.ExternalError(err, "malformed settlement response")
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, path, kind string, body any) (*settlement.Receipt, error) {
	var wire receiptPayload
	if err := c.post(ctx, path, body, &wire); err != nil {
		return nil, err
	}

	amount := decimal.Zero
	if wire.Amount != "" {
		if a, err := decimal.NewFromString(wire.Amount); err == nil {
			amount = a
		}
	}
	return &settlement.Receipt{
		TxID:      wire.TxID,
		Kind:      kind,
		Amount:    amount,
		Reference: wire.Reference,
		Timestamp: wire.Timestamp,
	}, nil
}

func (c *Client) Transfer(ctx context.Context, recipient, amount, token string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/transfer", "transfer", map[string]string{
		"recipient": recipient, "amount": amount, "token": token,
	})
}

func (c *Client) CreateEscrow(ctx context.Context, beneficiary, amount, duration string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/escrow", "create_escrow", map[string]string{
		"beneficiary": beneficiary, "amount": amount, "duration": duration,
	})
}

func (c *Client) ReleaseEscrow(ctx context.Context, escrowID string) (*settlement.Receipt, error) {
	return c.call(ctx, fmt.Sprintf("/v1/escrow/%s/release", escrowID), "release_escrow", nil)
}

func (c *Client) RefundEscrow(ctx context.Context, escrowID string) (*settlement.Receipt, error) {
	return c.call(ctx, fmt.Sprintf("/v1/escrow/%s/refund", escrowID), "refund_escrow", nil)
}

func (c *Client) CreateStream(ctx context.Context, recipient, amount, duration string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/stream", "create_stream", map[string]string{
		"recipient": recipient, "amount": amount, "duration": duration,
	})
}

func (c *Client) CancelStream(ctx context.Context, streamID string) (*settlement.Receipt, error) {
	return c.call(ctx, fmt.Sprintf("/v1/stream/%s/cancel", streamID), "cancel_stream", nil)
}

func (c *Client) HireAgent(ctx context.Context, agentName, amount, task string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/jobs", "hire_agent", map[string]string{
		"agent": agentName, "amount": amount, "task": task,
	})
}

func (c *Client) ApproveWork(ctx context.Context, jobID string) (*settlement.Receipt, error) {
	return c.call(ctx, fmt.Sprintf("/v1/jobs/%s/approve", jobID), "approve_work", nil)
}

func (c *Client) PrivateTransfer(ctx context.Context, recipient, amount string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/private-transfer", "private_transfer", map[string]string{
		"recipient": recipient, "amount": amount,
	})
}

func (c *Client) AddAllowlist(ctx context.Context, address string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/allowlist", "add_allowlist", map[string]string{"address": address})
}

func (c *Client) AddBlocklist(ctx context.Context, address string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/blocklist", "add_blocklist", map[string]string{"address": address})
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID, amount string) (*settlement.Receipt, error) {
	return c.call(ctx, fmt.Sprintf("/v1/invoices/%s/pay", invoiceID), "pay_invoice", map[string]string{
		"amount": amount,
	})
}

func (c *Client) Subscribe(ctx context.Context, service, amount, interval string) (*settlement.Receipt, error) {
	return c.call(ctx, "/v1/subscriptions", "subscribe", map[string]string{
		"service": service, "amount": amount, "interval": interval,
	})
}

func (c *Client) GetBalance(ctx context.Context, token string) (*settlement.Balance, error) {
	var wire struct {
		Token  string `json:"token"`
		Amount string `json:"amount"`
	}
	if err := c.post(ctx, "/v1/balance", map[string]string{"token": token}, &wire); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(wire.Amount)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "malformed balance amount %q", wire.Amount)
	}
	return &settlement.Balance{Token: wire.Token, Amount: amount}, nil
}

func (c *Client) GetSpendingReport(ctx context.Context, period string) (*settlement.SpendingReport, error) {
	var wire struct {
		Period  string            `json:"period"`
		Total   string            `json:"total"`
		ByKind  map[string]string `json:"by_kind"`
		Entries int               `json:"entries"`
	}
	if err := c.post(ctx, "/v1/spending-report", map[string]string{"period": period}, &wire); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(wire.Total)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "malformed report total %q", wire.Total)
	}
	byKind := make(map[string]decimal.Decimal, len(wire.ByKind))
	for k, v := range wire.ByKind {
		if a, err := decimal.NewFromString(v); err == nil {
			byKind[k] = a
		}
	}
	return &settlement.SpendingReport{
		Period:  wire.Period,
		Total:   total,
		ByKind:  byKind,
		Entries: wire.Entries,
	}, nil
}
