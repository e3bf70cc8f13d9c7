package interpreter

import (
	"testing"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/errors"
	"github.com/payagent/payagent/internal/intent"
)

func TestParseResponse(t *testing.T) {
	m := NewModelInterpreter(nil)

	tests := []struct {
		name       string
		raw        string
		kind       catalog.ActionKind
		confidence float64
		wantErr    bool
	}{
		{
			name:       "bare JSON",
			raw:        `{"action": "transfer", "confidence": 0.9, "params": {"recipient": "0xABC", "amount": "50"}}`,
			kind:       catalog.ActionTransfer,
			confidence: 0.9,
		},
		{
			name:       "fenced JSON parses identically",
			raw:        "```json\n{\"action\": \"transfer\", \"confidence\": 0.9, \"params\": {\"recipient\": \"0xABC\", \"amount\": \"50\"}}\n```",
			kind:       catalog.ActionTransfer,
			confidence: 0.9,
		},
		{
			name:       "unknown action is a valid outcome",
			raw:        `{"action": "unknown", "confidence": 0}`,
			kind:       catalog.ActionUnknown,
			confidence: 0,
		},
		{
			name:       "confidence clamped to [0,1]",
			raw:        `{"action": "transfer", "confidence": 3.5, "params": {"recipient": "a", "amount": "1"}}`,
			kind:       catalog.ActionTransfer,
			confidence: 1,
		},
		{
			name:    "invented action rejected",
			raw:     `{"action": "mint_money", "confidence": 0.99}`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			raw:     "I'd be happy to help you send money!",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			raw:     `{"action": "transfer",`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := m.parseResponse(tt.raw, "original input")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", it)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResponse() error: %v", err)
			}
			if it.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", it.Kind, tt.kind)
			}
			if it.Confidence != tt.confidence {
				t.Errorf("confidence = %v, want %v", it.Confidence, tt.confidence)
			}
			if it.Origin != intent.OriginModel {
				t.Errorf("origin = %s, want model", it.Origin)
			}
			if it.RawInput != "original input" {
				t.Errorf("raw input not preserved: %q", it.RawInput)
			}
		})
	}
}

func TestParseResponseFailureIsInterpretationError(t *testing.T) {
	m := NewModelInterpreter(nil)

	_, err := m.parseResponse("sorry, I could not parse that", "original input")
	if err == nil {
		t.Fatal("expected error")
	}

	perr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("error is %T, want *errors.Error", err)
	}
	if perr.Type != errors.ErrorTypeInterpretation {
		t.Errorf("error type = %v, want interpretation", perr.Type)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"50", "50"},
		{float64(50), "50"},
		{50.5, "50.5"},
		{true, "true"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
