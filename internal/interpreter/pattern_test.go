package interpreter

import (
	"testing"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/intent"
)

func TestPatternInterpret(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   catalog.ActionKind
		params map[string]string
	}{
		{
			name:   "plain transfer with token",
			input:  "send 50 USDC to 0xABC",
			kind:   catalog.ActionTransfer,
			params: map[string]string{"amount": "50", "token": "USDC", "recipient": "0xABC"},
		},
		{
			name:   "transfer without token",
			input:  "transfer 12.50 to alice",
			kind:   catalog.ActionTransfer,
			params: map[string]string{"amount": "12.50", "recipient": "alice"},
		},
		{
			name:   "escrow beats the generic transfer rule",
			input:  "create escrow for 500 USDC to 0xDEF",
			kind:   catalog.ActionCreateEscrow,
			params: map[string]string{"amount": "500", "beneficiary": "0xDEF"},
		},
		{
			name:   "release escrow",
			input:  "release escrow esc-42",
			kind:   catalog.ActionReleaseEscrow,
			params: map[string]string{"escrow_id": "esc-42"},
		},
		{
			name:   "refund escrow",
			input:  "refund the escrow esc-42",
			kind:   catalog.ActionRefundEscrow,
			params: map[string]string{"escrow_id": "esc-42"},
		},
		{
			name:   "stream with duration",
			input:  "stream 300 USDC to 0xABC over 30 days",
			kind:   catalog.ActionCreateStream,
			params: map[string]string{"amount": "300", "recipient": "0xABC", "duration": "30 days"},
		},
		{
			name:   "cancel stream",
			input:  "cancel stream str-7",
			kind:   catalog.ActionCancelStream,
			params: map[string]string{"stream_id": "str-7"},
		},
		{
			name:   "hire agent with task",
			input:  "hire agent scout for 200 USDC to find arbitrage",
			kind:   catalog.ActionHireAgent,
			params: map[string]string{"agent": "scout", "amount": "200", "task": "find arbitrage"},
		},
		{
			name:   "approve work",
			input:  "approve work on job-19",
			kind:   catalog.ActionApproveWork,
			params: map[string]string{"job_id": "job-19"},
		},
		{
			name:   "private transfer beats generic transfer",
			input:  "privately send 75 to 0xCAFE",
			kind:   catalog.ActionPrivateTransfer,
			params: map[string]string{"amount": "75", "recipient": "0xCAFE"},
		},
		{
			name:   "pay invoice",
			input:  "pay invoice INV-1042 for 250",
			kind:   catalog.ActionPayInvoice,
			params: map[string]string{"invoice_id": "INV-1042", "amount": "250"},
		},
		{
			name:   "subscribe with interval",
			input:  "subscribe to newsfeed for 10 USDC per month",
			kind:   catalog.ActionSubscribe,
			params: map[string]string{"service": "newsfeed", "amount": "10", "interval": "month"},
		},
		{
			name:   "allowlist",
			input:  "add 0xBEEF to the allowlist",
			kind:   catalog.ActionAddAllowlist,
			params: map[string]string{"address": "0xBEEF"},
		},
		{
			name:   "balance",
			input:  "what's my balance",
			kind:   catalog.ActionGetBalance,
			params: map[string]string{},
		},
		{
			name:   "spending report",
			input:  "show me my spending report",
			kind:   catalog.ActionGetSpendingReport,
			params: map[string]string{},
		},
	}

	p := NewPatternInterpreter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := p.Interpret(tt.input)
			if it.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", it.Kind, tt.kind)
			}
			if it.Confidence != intent.PatternConfidence {
				t.Errorf("confidence = %v, want %v", it.Confidence, intent.PatternConfidence)
			}
			if it.Origin != intent.OriginPattern {
				t.Errorf("origin = %s, want %s", it.Origin, intent.OriginPattern)
			}
			for name, want := range tt.params {
				if got := it.Param(name); got != want {
					t.Errorf("param %s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

// Resolving the same input repeatedly must give the same intent; the
// pattern path has no nondeterminism to hide.
func TestPatternInterpretDeterministic(t *testing.T) {
	p := NewPatternInterpreter()
	first := p.Interpret("send 50 USDC to 0xABC")
	for i := 0; i < 10; i++ {
		again := p.Interpret("send 50 USDC to 0xABC")
		if again.Kind != first.Kind || again.Confidence != first.Confidence {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
		for name, want := range first.Params {
			if again.Param(name) != want {
				t.Fatalf("run %d param %s differed", i, name)
			}
		}
	}
}

func TestPatternInterpretNoMatch(t *testing.T) {
	p := NewPatternInterpreter()
	it := p.Interpret("tell me a joke about databases")

	if it.Kind != catalog.ActionUnknown {
		t.Fatalf("kind = %s, want unknown", it.Kind)
	}
	if it.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", it.Confidence)
	}
	if len(it.Suggestions) == 0 {
		t.Error("unknown intent should carry example commands")
	}
}

func TestPatternInterpretPreservesAddressCase(t *testing.T) {
	p := NewPatternInterpreter()
	it := p.Interpret("SEND 50 usdc TO 0xAbCd")

	if it.Kind != catalog.ActionTransfer {
		t.Fatalf("kind = %s, want transfer", it.Kind)
	}
	if got := it.Param("recipient"); got != "0xAbCd" {
		t.Errorf("recipient = %q, casing must survive matching", got)
	}
	if got := it.Param("token"); got != "USDC" {
		t.Errorf("token = %q, want USDC", got)
	}
}
