// Package vision turns payment-relevant images (invoices, receipts,
// delivery proofs) into structured analyses via the model's
// image-capable entry point. Analysis never fails outward: a model error
// or unparsable response degrades to a "not detected" result, which is
// the safe default for a financial-release decision.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/payagent/payagent/internal/interpreter"
	"github.com/payagent/payagent/internal/llm"
)

// AutoReleaseConfidence is the minimum delivery-proof confidence at
// which an opted-in caller's escrow may release without confirmation.
const AutoReleaseConfidence = 0.8

// Analyzer runs mode-specific image analyses against the model client.
type Analyzer struct {
	client *llm.Client
	logger *slog.Logger
}

func NewAnalyzer(client *llm.Client) *Analyzer {
	return &Analyzer{
		client: client,
		logger: slog.Default().With("component", "vision"),
	}
}

// Analyze sends the image with a mode-specific instruction and parses
// the JSON from the response. hint is optional caller context appended
// to the instruction, such as the escrow the proof belongs to.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string, mode Mode, hint string) *Analysis {
	instruction := instructionFor(mode)
	if hint != "" {
		instruction += "\nAdditional context from the user: " + hint
	}

	raw, err := a.client.CompleteVision(ctx, instruction, image, mimeType)
	if err != nil {
		a.logger.Warn("image analysis call failed", "mode", mode, "error", err)
		return defaultAnalysis(mode)
	}

	payload, err := interpreter.ExtractJSON(raw)
	if err != nil {
		a.logger.Warn("no JSON found in image analysis response", "mode", mode, "error", err)
		return defaultAnalysis(mode)
	}

	analysis, err := parseAnalysis(mode, payload)
	if err != nil {
		a.logger.Warn("failed to parse image analysis", "mode", mode, "error", err)
		return defaultAnalysis(mode)
	}
	return analysis
}

// AnalyzeInvoice reads the image as an invoice.
func (a *Analyzer) AnalyzeInvoice(ctx context.Context, image []byte, mimeType, hint string) *InvoiceAnalysis {
	return a.Analyze(ctx, image, mimeType, ModeInvoice, hint).Invoice
}

// AnalyzeReceipt reads the image as a payment receipt.
func (a *Analyzer) AnalyzeReceipt(ctx context.Context, image []byte, mimeType, hint string) *ReceiptAnalysis {
	return a.Analyze(ctx, image, mimeType, ModeReceipt, hint).Receipt
}

// AnalyzeDeliveryProof reads the image as delivery evidence for an
// escrow; the recommendation defaults to review on any failure.
func (a *Analyzer) AnalyzeDeliveryProof(ctx context.Context, image []byte, mimeType, hint string) *DeliveryProofAnalysis {
	return a.Analyze(ctx, image, mimeType, ModeDeliveryProof, hint).DeliveryProof
}

// AnalyzePaymentImage reads the image without assuming a document type.
func (a *Analyzer) AnalyzePaymentImage(ctx context.Context, image []byte, mimeType, hint string) *PaymentImageAnalysis {
	return a.Analyze(ctx, image, mimeType, ModeGeneric, hint).Generic
}

// ShouldAutoRelease applies the only automatic-release policy there is:
// the analysis recommends release, its confidence clears the bar, and
// the caller explicitly opted in. Anything else requires confirmation.
func ShouldAutoRelease(analysis *Analysis, autoRelease bool) bool {
	if !autoRelease || analysis == nil || analysis.DeliveryProof == nil {
		return false
	}
	dp := analysis.DeliveryProof
	return dp.Recommendation == RecommendRelease && dp.Confidence >= AutoReleaseConfidence
}

func instructionFor(mode Mode) string {
	switch mode {
	case ModeInvoice:
		return `Analyze this image as an invoice. Respond with only a JSON object:
{"detected": bool, "vendor": string, "recipient": string, "amount": string, "token": string, "invoice_id": string, "due_date": string, "confidence": number between 0 and 1}
If the image is not an invoice, set detected to false and confidence to 0.`
	case ModeReceipt:
		return `Analyze this image as a payment receipt. Respond with only a JSON object:
{"detected": bool, "merchant": string, "amount": string, "token": string, "date": string, "category": string, "confidence": number between 0 and 1}
If the image is not a receipt, set detected to false and confidence to 0.`
	case ModeDeliveryProof:
		return `Analyze this image as proof that goods or work were delivered. Respond with only a JSON object:
{"detected": bool, "description": string, "recommendation": "release" or "hold" or "review", "reasoning": string, "confidence": number between 0 and 1}
Recommend "release" only when the image clearly shows the agreed delivery. When in doubt, recommend "review".`
	default:
		return `Analyze this image for payment-relevant content. Respond with only a JSON object:
{"detected": bool, "description": string, "action": string, "amount": string, "recipient": string, "confidence": number between 0 and 1}
If nothing payment-related is visible, set detected to false and confidence to 0.`
	}
}

func parseAnalysis(mode Mode, payload string) (*Analysis, error) {
	analysis := &Analysis{Mode: mode}
	var err error

	switch mode {
	case ModeInvoice:
		var v InvoiceAnalysis
		err = json.Unmarshal([]byte(payload), &v)
		analysis.Invoice = &v
	case ModeReceipt:
		var v ReceiptAnalysis
		err = json.Unmarshal([]byte(payload), &v)
		analysis.Receipt = &v
	case ModeDeliveryProof:
		var v DeliveryProofAnalysis
		err = json.Unmarshal([]byte(payload), &v)
		if err == nil {
			switch v.Recommendation {
			case RecommendRelease, RecommendHold, RecommendReview:
			default:
				v.Recommendation = RecommendReview
			}
		}
		analysis.DeliveryProof = &v
	default:
		var v PaymentImageAnalysis
		err = json.Unmarshal([]byte(payload), &v)
		analysis.Generic = &v
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s analysis: %w", mode, err)
	}
	return analysis, nil
}

// defaultAnalysis is the degrade-to-safe result: nothing detected, zero
// confidence, and for delivery proofs a "review" recommendation.
func defaultAnalysis(mode Mode) *Analysis {
	analysis := &Analysis{Mode: mode}
	switch mode {
	case ModeInvoice:
		analysis.Invoice = &InvoiceAnalysis{}
	case ModeReceipt:
		analysis.Receipt = &ReceiptAnalysis{}
	case ModeDeliveryProof:
		analysis.DeliveryProof = &DeliveryProofAnalysis{Recommendation: RecommendReview}
	default:
		analysis.Generic = &PaymentImageAnalysis{}
	}
	return analysis
}
