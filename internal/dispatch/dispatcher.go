// Package dispatch maps a validated intent to exactly one settlement
// call, guarded by a two-state confirmation gate: Idle and
// AwaitingConfirmation. The pending slot is the only mutable state and is
// owned exclusively by its Dispatcher instance.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/history"
	"github.com/payagent/payagent/internal/intent"
	"github.com/payagent/payagent/internal/settlement"
	"github.com/shopspring/decimal"
)

// DefaultThreshold is the confirmation threshold applied when the
// configured one is empty or unparsable.
var DefaultThreshold = decimal.NewFromInt(100)

// PendingExecution is a parked, not-yet-performed action awaiting
// explicit confirmation. At most one exists per Dispatcher; a new gated
// command silently replaces it.
type PendingExecution struct {
	ID        string
	Intent    intent.Intent
	Invoke    func(ctx context.Context) ExecutionResult
	Prompt    string
	CreatedAt time.Time
}

// Options configure a Dispatcher.
type Options struct {
	// RequireConfirmation enables the gate. Default true.
	RequireConfirmation bool
	// Threshold is the decimal amount at or above which gated kinds are
	// held. Default "100".
	Threshold string
	// DefaultToken is assumed when an intent names no token.
	DefaultToken string
	// History receives a record of every successful mutating execution.
	// Optional; write failures are logged, never surfaced.
	History history.Store
}

// Dispatcher validates, gates, and executes intents against the
// settlement client. Not safe for concurrent use; each caller session
// owns its own instance.
type Dispatcher struct {
	client    settlement.Client
	opts      Options
	threshold decimal.Decimal
	pending   *PendingExecution
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher in the Idle state.
func NewDispatcher(client settlement.Client, opts Options) *Dispatcher {
	threshold := DefaultThreshold
	if opts.Threshold != "" {
		if t, err := decimal.NewFromString(opts.Threshold); err == nil {
			threshold = t
		}
	}
	if opts.DefaultToken == "" {
		opts.DefaultToken = "USDC"
	}

	return &Dispatcher{
		client:    client,
		opts:      opts,
		threshold: threshold,
		logger:    slog.Default().With("component", "dispatcher"),
	}
}

// HasPending reports whether an execution is parked awaiting
// confirmation. Callers can check before issuing a new command to avoid
// silently overwriting it.
func (d *Dispatcher) HasPending() bool {
	return d.pending != nil
}

// Pending returns the current pending execution, or nil.
func (d *Dispatcher) Pending() *PendingExecution {
	return d.pending
}

// Dispatch validates the intent, then either executes it immediately or
// parks it behind the confirmation gate. Every path returns a terminal
// ExecutionResult; Dispatch never panics or returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, it intent.Intent) ExecutionResult {
	if it.Kind == catalog.ActionUnknown {
		return ExecutionResult{
			Success:     false,
			Action:      ActionUnknown,
			Message:     "Sorry, I couldn't map that to a payment action. Try one of the examples.",
			Suggestions: it.Suggestions,
		}
	}

	if v := intent.Validate(it); !v.Valid {
		return Failure(string(it.Kind), "Validation failed: "+strings.Join(v.Errors, "; "))
	}

	invoke := d.invocation(it)

	if d.shouldConfirm(it) {
		pe := &PendingExecution{
			ID:        uuid.NewString(),
			Intent:    it,
			Invoke:    invoke,
			Prompt:    confirmationPrompt(it),
			CreatedAt: time.Now(),
		}
		if d.pending != nil {
			d.logger.Warn("overwriting pending execution",
				"previous", d.pending.Intent.Kind,
				"new", it.Kind,
			)
		}
		d.pending = pe

		return ExecutionResult{
			Success:            true,
			Action:             string(it.Kind),
			Message:            "Confirmation required before executing.",
			NeedsConfirmation:  true,
			ConfirmationPrompt: pe.Prompt,
		}
	}

	return invoke(ctx)
}

// Park validates the intent and holds it for confirmation regardless of
// the amount gate. Used when the caller, not the threshold, decides that
// confirmation is needed, such as an escrow release backed by a delivery
// proof. Returns the same NeedsConfirmation result shape as Dispatch.
func (d *Dispatcher) Park(it intent.Intent, prompt string) ExecutionResult {
	if v := intent.Validate(it); !v.Valid {
		return Failure(string(it.Kind), "Validation failed: "+strings.Join(v.Errors, "; "))
	}
	if prompt == "" {
		prompt = confirmationPrompt(it)
	}

	if d.pending != nil {
		d.logger.Warn("overwriting pending execution",
			"previous", d.pending.Intent.Kind,
			"new", it.Kind,
		)
	}
	d.pending = &PendingExecution{
		ID:        uuid.NewString(),
		Intent:    it,
		Invoke:    d.invocation(it),
		Prompt:    prompt,
		CreatedAt: time.Now(),
	}

	return ExecutionResult{
		Success:            true,
		Action:             string(it.Kind),
		Message:            "Confirmation required before executing.",
		NeedsConfirmation:  true,
		ConfirmationPrompt: prompt,
	}
}

// Confirm executes the pending action exactly once and clears the slot.
// Confirming with nothing pending is a caller error reported as a failure
// result, never a panic.
func (d *Dispatcher) Confirm(ctx context.Context) ExecutionResult {
	if d.pending == nil {
		return Failure(ActionError, "No pending action to confirm.")
	}

	pe := d.pending
	d.pending = nil
	d.logger.Info("pending execution confirmed", "action", pe.Intent.Kind, "pending_id", pe.ID)
	return pe.Invoke(ctx)
}

// Cancel discards the pending action, if any.
func (d *Dispatcher) Cancel() {
	if d.pending != nil {
		d.logger.Info("pending execution cancelled", "action", d.pending.Intent.Kind)
		d.pending = nil
	}
}

// shouldConfirm applies the gate: the kind is monetarily sensitive, the
// amount parses as a decimal at or above the threshold, and confirmation
// is enabled. A missing or unparsable amount never gates - validation has
// already ensured required amounts are present.
func (d *Dispatcher) shouldConfirm(it intent.Intent) bool {
	if !d.opts.RequireConfirmation {
		return false
	}
	if !catalog.Gated(it.Kind) {
		return false
	}
	amount, err := decimal.NewFromString(it.Param("amount"))
	if err != nil {
		return false
	}
	return amount.GreaterThanOrEqual(d.threshold)
}

// invocation maps the intent to its single settlement call. The closure
// defers the call so the gate can park it unchanged.
func (d *Dispatcher) invocation(it intent.Intent) func(ctx context.Context) ExecutionResult {
	return func(ctx context.Context) ExecutionResult {
		result := d.execute(ctx, it)
		if result.Success && result.Reference != nil {
			d.record(ctx, it, result.Reference)
		}
		return result
	}
}

// execute performs the settlement call for the intent's kind. Failures
// become failure results carrying the underlying message; there are no
// retries.
func (d *Dispatcher) execute(ctx context.Context, it intent.Intent) ExecutionResult {
	action := string(it.Kind)

	switch it.Kind {
	case catalog.ActionTransfer:
		token := it.Param("token")
		if token == "" {
			token = d.opts.DefaultToken
		}
		ref, err := d.client.Transfer(ctx, it.Param("recipient"), it.Param("amount"), token)
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Sent %s %s to %s.", it.Param("amount"), token, it.Param("recipient")), ref)

	case catalog.ActionCreateEscrow:
		ref, err := d.client.CreateEscrow(ctx, it.Param("beneficiary"), it.Param("amount"), it.Param("duration"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Escrow %s created for %s.", ref.Reference, it.Param("beneficiary")), ref)

	case catalog.ActionReleaseEscrow:
		ref, err := d.client.ReleaseEscrow(ctx, it.Param("escrow_id"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Escrow %s released.", it.Param("escrow_id")), ref)

	case catalog.ActionRefundEscrow:
		ref, err := d.client.RefundEscrow(ctx, it.Param("escrow_id"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Escrow %s refunded.", it.Param("escrow_id")), ref)

	case catalog.ActionCreateStream:
		ref, err := d.client.CreateStream(ctx, it.Param("recipient"), it.Param("amount"), it.Param("duration"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Streaming %s to %s over %s.", it.Param("amount"), it.Param("recipient"), it.Param("duration")), ref)

	case catalog.ActionCancelStream:
		ref, err := d.client.CancelStream(ctx, it.Param("stream_id"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Stream %s cancelled.", it.Param("stream_id")), ref)

	case catalog.ActionHireAgent:
		ref, err := d.client.HireAgent(ctx, it.Param("agent"), it.Param("amount"), it.Param("task"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Hired %s for %s (job %s).", it.Param("agent"), it.Param("amount"), ref.Reference), ref)

	case catalog.ActionApproveWork:
		ref, err := d.client.ApproveWork(ctx, it.Param("job_id"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Work on job %s approved.", it.Param("job_id")), ref)

	case catalog.ActionPrivateTransfer:
		ref, err := d.client.PrivateTransfer(ctx, it.Param("recipient"), it.Param("amount"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Privately sent %s to %s.", it.Param("amount"), it.Param("recipient")), ref)

	case catalog.ActionAddAllowlist:
		ref, err := d.client.AddAllowlist(ctx, it.Param("address"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("%s added to allowlist.", it.Param("address")), ref)

	case catalog.ActionAddBlocklist:
		ref, err := d.client.AddBlocklist(ctx, it.Param("address"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("%s added to blocklist.", it.Param("address")), ref)

	case catalog.ActionPayInvoice:
		ref, err := d.client.PayInvoice(ctx, it.Param("invoice_id"), it.Param("amount"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Invoice %s paid.", it.Param("invoice_id")), ref)

	case catalog.ActionSubscribe:
		ref, err := d.client.Subscribe(ctx, it.Param("service"), it.Param("amount"), it.Param("interval"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return Success(action, fmt.Sprintf("Subscribed to %s at %s per %s.", it.Param("service"), it.Param("amount"), orDefault(it.Param("interval"), "month")), ref)

	case catalog.ActionGetBalance:
		bal, err := d.client.GetBalance(ctx, it.Param("token"))
		if err != nil {
			return Failure(action, err.Error())
		}
		return ExecutionResult{
			Success: true,
			Action:  action,
			Message: fmt.Sprintf("Balance: %s %s", bal.Amount.String(), bal.Token),
			Data:    map[string]any{"token": bal.Token, "amount": bal.Amount.String()},
		}

	case catalog.ActionGetSpendingReport:
		report, err := d.client.GetSpendingReport(ctx, it.Param("period"))
		if err != nil {
			return Failure(action, err.Error())
		}
		byKind := make(map[string]any, len(report.ByKind))
		for k, v := range report.ByKind {
			byKind[k] = v.String()
		}
		return ExecutionResult{
			Success: true,
			Action:  action,
			Message: fmt.Sprintf("Spent %s across %d transactions.", report.Total.String(), report.Entries),
			Data:    map[string]any{"total": report.Total.String(), "by_kind": byKind, "entries": report.Entries},
		}

	default:
		return Failure(ActionError, fmt.Sprintf("unsupported action: %s", it.Kind))
	}
}

// record writes the execution to the history store. Best effort: history
// must never fail a dispatch that already settled.
func (d *Dispatcher) record(ctx context.Context, it intent.Intent, ref *settlement.Receipt) {
	if d.opts.History == nil {
		return
	}

	rec := &history.Record{
		ID:     uuid.NewString(),
		Kind:   string(it.Kind),
		Params: it.Params,
		TxID:   ref.TxID,
		Amount: it.Param("amount"),
		At:     time.Now(),
	}
	if err := d.opts.History.Save(ctx, rec); err != nil {
		d.logger.Warn("failed to record execution history", "error", err)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
