package vision

import (
	"testing"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		payload string
		check   func(t *testing.T, a *Analysis)
	}{
		{
			name:    "invoice",
			mode:    ModeInvoice,
			payload: `{"detected": true, "vendor": "Acme", "amount": "250", "invoice_id": "INV-1042", "confidence": 0.92}`,
			check: func(t *testing.T, a *Analysis) {
				if a.Invoice == nil || !a.Invoice.Detected {
					t.Fatal("invoice not parsed")
				}
				if a.Invoice.Vendor != "Acme" || a.Invoice.InvoiceID != "INV-1042" {
					t.Errorf("fields = %+v", a.Invoice)
				}
			},
		},
		{
			name:    "receipt",
			mode:    ModeReceipt,
			payload: `{"detected": true, "merchant": "Cloudy Hosting", "amount": "12.99", "category": "infrastructure", "confidence": 0.8}`,
			check: func(t *testing.T, a *Analysis) {
				if a.Receipt == nil || a.Receipt.Merchant != "Cloudy Hosting" {
					t.Errorf("receipt = %+v", a.Receipt)
				}
			},
		},
		{
			name:    "delivery proof",
			mode:    ModeDeliveryProof,
			payload: `{"detected": true, "description": "package at door", "recommendation": "release", "confidence": 0.9}`,
			check: func(t *testing.T, a *Analysis) {
				if a.DeliveryProof == nil || a.DeliveryProof.Recommendation != RecommendRelease {
					t.Errorf("proof = %+v", a.DeliveryProof)
				}
			},
		},
		{
			name:    "delivery proof with invalid recommendation degrades to review",
			mode:    ModeDeliveryProof,
			payload: `{"detected": true, "recommendation": "ship it", "confidence": 0.9}`,
			check: func(t *testing.T, a *Analysis) {
				if a.DeliveryProof.Recommendation != RecommendReview {
					t.Errorf("recommendation = %q, want review", a.DeliveryProof.Recommendation)
				}
			},
		},
		{
			name:    "generic",
			mode:    ModeGeneric,
			payload: `{"detected": true, "description": "a QR payment code", "action": "transfer", "confidence": 0.7}`,
			check: func(t *testing.T, a *Analysis) {
				if a.Generic == nil || a.Generic.Action != "transfer" {
					t.Errorf("generic = %+v", a.Generic)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnalysis(tt.mode, tt.payload)
			if err != nil {
				t.Fatalf("parseAnalysis() error: %v", err)
			}
			if a.Mode != tt.mode {
				t.Errorf("mode = %s, want %s", a.Mode, tt.mode)
			}
			tt.check(t, a)
		})
	}
}

func TestParseAnalysisMalformed(t *testing.T) {
	if _, err := parseAnalysis(ModeInvoice, `{"detected": "yes"`); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestDefaultAnalysisIsSafe(t *testing.T) {
	for _, mode := range []Mode{ModeInvoice, ModeReceipt, ModeDeliveryProof, ModeGeneric} {
		a := defaultAnalysis(mode)
		if a.Confidence() != 0 {
			t.Errorf("%s default confidence = %v, want 0", mode, a.Confidence())
		}
	}

	dp := defaultAnalysis(ModeDeliveryProof).DeliveryProof
	if dp.Detected {
		t.Error("default delivery proof must not claim detection")
	}
	if dp.Recommendation != RecommendReview {
		t.Errorf("default recommendation = %q, want review", dp.Recommendation)
	}
}

func TestShouldAutoRelease(t *testing.T) {
	proof := func(rec Recommendation, conf float64) *Analysis {
		return &Analysis{
			Mode:          ModeDeliveryProof,
			DeliveryProof: &DeliveryProofAnalysis{Detected: true, Recommendation: rec, Confidence: conf},
		}
	}

	tests := []struct {
		name        string
		analysis    *Analysis
		autoRelease bool
		expected    bool
	}{
		{"release, confident, opted in", proof(RecommendRelease, 0.9), true, true},
		{"release, confident, opted out", proof(RecommendRelease, 0.9), false, false},
		{"release at confidence boundary", proof(RecommendRelease, 0.8), true, true},
		{"release below confidence", proof(RecommendRelease, 0.79), true, false},
		{"hold never releases", proof(RecommendHold, 0.99), true, false},
		{"review never releases", proof(RecommendReview, 0.99), true, false},
		{"nil analysis", nil, true, false},
		{"wrong variant", &Analysis{Mode: ModeInvoice, Invoice: &InvoiceAnalysis{}}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAutoRelease(tt.analysis, tt.autoRelease); got != tt.expected {
				t.Errorf("ShouldAutoRelease() = %v, want %v", got, tt.expected)
			}
		})
	}
}
