// Package agent is the caller-facing surface of the payment pipeline.
// Its four operations, ProcessCommand, ProcessImage, Confirm, and
// Cancel, are the entire public contract; front-ends (CLI, voice, chat
// UI) compose on top of them and never reach into the pipeline directly.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/chat"
	"github.com/payagent/payagent/internal/dispatch"
	"github.com/payagent/payagent/internal/intent"
	"github.com/payagent/payagent/internal/interpreter"
	"github.com/payagent/payagent/internal/vision"
)

// ImageOptions qualify a ProcessImage call.
type ImageOptions struct {
	// Hint is free-text context forwarded to the analyzer.
	Hint string
	// EscrowID names the escrow a delivery proof belongs to.
	EscrowID string
	// AutoRelease opts in to releasing the escrow without confirmation
	// when the delivery-proof analysis clears the confidence bar. Off by
	// default; analysis alone never releases funds.
	AutoRelease bool
}

// Agent wires the resolver, dispatcher, and front-end adapters into one
// session. Not safe for concurrent use; one Agent per caller session.
type Agent struct {
	resolver   *interpreter.Resolver
	dispatcher *dispatch.Dispatcher
	analyzer   *vision.Analyzer
	responder  *chat.Responder
	logger     *slog.Logger
}

// Options carry the optional collaborators.
type Options struct {
	// Analyzer enables ProcessImage. Nil disables image input.
	Analyzer *vision.Analyzer
	// Responder answers non-command input conversationally. Nil falls
	// back to suggestions.
	Responder *chat.Responder
}

func New(resolver *interpreter.Resolver, dispatcher *dispatch.Dispatcher, opts Options) *Agent {
	return &Agent{
		resolver:   resolver,
		dispatcher: dispatcher,
		analyzer:   opts.Analyzer,
		responder:  opts.Responder,
		logger:     slog.Default().With("component", "agent"),
	}
}

// ProcessCommand resolves the text to an intent and dispatches it.
// Every outcome, including "I don't understand", is a result value.
func (a *Agent) ProcessCommand(ctx context.Context, text string) dispatch.ExecutionResult {
	it := a.resolver.Resolve(ctx, text)

	if it.Kind == catalog.ActionUnknown && a.responder != nil {
		if reply, err := a.responder.Reply(ctx, text); err == nil {
			return dispatch.ExecutionResult{
				Success: true,
				Action:  dispatch.ActionChat,
				Message: reply,
			}
		} else {
			a.logger.Debug("chat fallback failed", "error", err)
		}
	}

	return a.dispatcher.Dispatch(ctx, it)
}

// ProcessImage analyzes the image under the given mode and adapts the
// analysis into the dispatch pipeline. Invoices feed pay_invoice through
// the normal confirmation gate; delivery proofs park (or, with explicit
// opt-in and high confidence, execute) an escrow release; receipts and
// generic analyses are informational.
func (a *Agent) ProcessImage(ctx context.Context, image []byte, mimeType string, mode vision.Mode, opts ImageOptions) dispatch.ExecutionResult {
	if a.analyzer == nil {
		return dispatch.Failure(dispatch.ActionError, "Image analysis is not configured; a Gemini or OpenAI API key is required.")
	}

	analysis := a.analyzer.Analyze(ctx, image, mimeType, mode, opts.Hint)

	switch mode {
	case vision.ModeInvoice:
		return a.handleInvoice(ctx, analysis.Invoice)
	case vision.ModeReceipt:
		return handleReceipt(analysis.Receipt)
	case vision.ModeDeliveryProof:
		return a.handleDeliveryProof(ctx, analysis, opts)
	default:
		return handleGeneric(analysis.Generic)
	}
}

// Confirm executes the pending action, if any.
func (a *Agent) Confirm(ctx context.Context) dispatch.ExecutionResult {
	return a.dispatcher.Confirm(ctx)
}

// Cancel discards the pending action, if any.
func (a *Agent) Cancel() {
	a.dispatcher.Cancel()
}

// HasPending reports whether an action awaits confirmation.
func (a *Agent) HasPending() bool {
	return a.dispatcher.HasPending()
}

func (a *Agent) handleInvoice(ctx context.Context, inv *vision.InvoiceAnalysis) dispatch.ExecutionResult {
	if inv == nil || !inv.Detected {
		return dispatch.Failure("pay_invoice", "No invoice detected in the image.")
	}

	it := intent.Intent{
		Kind: catalog.ActionPayInvoice,
		Params: map[string]string{
			"invoice_id": inv.InvoiceID,
			"amount":     inv.Amount,
		},
		Confidence: inv.Confidence,
		Origin:     intent.OriginModel,
	}
	result := a.dispatcher.Dispatch(ctx, it)
	result.Data = map[string]any{
		"vendor":     inv.Vendor,
		"invoice_id": inv.InvoiceID,
		"amount":     inv.Amount,
		"due_date":   inv.DueDate,
		"confidence": inv.Confidence,
	}
	return result
}

func handleReceipt(rec *vision.ReceiptAnalysis) dispatch.ExecutionResult {
	if rec == nil || !rec.Detected {
		return dispatch.Failure("analyze_receipt", "No receipt detected in the image.")
	}
	return dispatch.ExecutionResult{
		Success: true,
		Action:  "analyze_receipt",
		Message: fmt.Sprintf("Receipt from %s for %s %s.", rec.Merchant, rec.Amount, rec.Token),
		Data: map[string]any{
			"merchant":   rec.Merchant,
			"amount":     rec.Amount,
			"token":      rec.Token,
			"date":       rec.Date,
			"category":   rec.Category,
			"confidence": rec.Confidence,
		},
	}
}

func (a *Agent) handleDeliveryProof(ctx context.Context, analysis *vision.Analysis, opts ImageOptions) dispatch.ExecutionResult {
	dp := analysis.DeliveryProof
	if dp == nil || !dp.Detected {
		return dispatch.Failure("release_escrow", "Could not assess the delivery proof; holding the escrow.")
	}

	data := map[string]any{
		"description":    dp.Description,
		"recommendation": string(dp.Recommendation),
		"reasoning":      dp.Reasoning,
		"confidence":     dp.Confidence,
	}

	if opts.EscrowID == "" {
		// No escrow to act on; still a manual decision, never an
		// automatic release.
		return dispatch.ExecutionResult{
			Success:           true,
			Action:            "analyze_delivery_proof",
			Message:           fmt.Sprintf("Delivery assessment: %s (%.0f%% confidence).", dp.Recommendation, dp.Confidence*100),
			Data:              data,
			NeedsConfirmation: true,
		}
	}

	it := intent.Intent{
		Kind:       catalog.ActionReleaseEscrow,
		Params:     map[string]string{"escrow_id": opts.EscrowID},
		Confidence: dp.Confidence,
		Origin:     intent.OriginModel,
	}

	if vision.ShouldAutoRelease(analysis, opts.AutoRelease) {
		a.logger.Info("auto-releasing escrow on delivery proof",
			"escrow_id", opts.EscrowID, "confidence", dp.Confidence)
		result := a.dispatcher.Dispatch(ctx, it)
		result.Data = data
		return result
	}

	prompt := fmt.Sprintf("Delivery proof suggests %q (%.0f%% confidence). Release escrow %s?",
		dp.Recommendation, dp.Confidence*100, opts.EscrowID)
	result := a.dispatcher.Park(it, prompt)
	result.Data = data
	return result
}

func handleGeneric(pa *vision.PaymentImageAnalysis) dispatch.ExecutionResult {
	if pa == nil || !pa.Detected {
		return dispatch.Failure("analyze_image", "Nothing payment-related detected in the image.")
	}
	return dispatch.ExecutionResult{
		Success: true,
		Action:  "analyze_image",
		Message: pa.Description,
		Data: map[string]any{
			"action":     pa.Action,
			"amount":     pa.Amount,
			"recipient":  pa.Recipient,
			"confidence": pa.Confidence,
		},
	}
}
