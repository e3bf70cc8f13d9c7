package agent

import (
	"context"
	"testing"

	"github.com/payagent/payagent/internal/dispatch"
	"github.com/payagent/payagent/internal/interpreter"
	"github.com/payagent/payagent/internal/settlement/mock"
	"github.com/payagent/payagent/internal/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAgent(t *testing.T) (*Agent, *mock.Client) {
	t.Helper()
	client := mock.NewClient("10000")
	resolver := interpreter.NewResolver(interpreter.NewPatternInterpreter(), nil)
	dispatcher := dispatch.NewDispatcher(client, dispatch.Options{
		RequireConfirmation: true,
		Threshold:           "100",
		DefaultToken:        "USDC",
	})
	return New(resolver, dispatcher, Options{}), client
}

func TestProcessCommandImmediateTransfer(t *testing.T) {
	a, client := newTestAgent(t)

	result := a.ProcessCommand(context.Background(), "send 50 USDC to 0xABC")

	require.True(t, result.Success)
	assert.False(t, result.NeedsConfirmation)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "transfer", calls[0].Op)
	assert.Equal(t, []string{"0xABC", "50", "USDC"}, calls[0].Args)
}

func TestProcessCommandEscrowConfirmFlow(t *testing.T) {
	a, client := newTestAgent(t)

	result := a.ProcessCommand(context.Background(), "create escrow for 500 USDC to 0xDEF")

	require.True(t, result.NeedsConfirmation)
	assert.Contains(t, result.ConfirmationPrompt, "500")
	assert.Contains(t, result.ConfirmationPrompt, "0xDEF")
	assert.True(t, a.HasPending())
	assert.Zero(t, client.CallCount("create_escrow"))

	confirmed := a.Confirm(context.Background())
	require.True(t, confirmed.Success)
	assert.Equal(t, 1, client.CallCount("create_escrow"))
	assert.False(t, a.HasPending())
}

func TestProcessCommandUnknownWithoutResponder(t *testing.T) {
	a, client := newTestAgent(t)

	result := a.ProcessCommand(context.Background(), "compose a haiku about my wallet")

	assert.False(t, result.Success)
	assert.Equal(t, dispatch.ActionUnknown, result.Action)
	assert.NotEmpty(t, result.Suggestions)
	assert.Empty(t, client.Calls())
}

func TestCancelDiscardsPending(t *testing.T) {
	a, client := newTestAgent(t)

	a.ProcessCommand(context.Background(), "send 200 USDC to 0xABC")
	require.True(t, a.HasPending())

	a.Cancel()
	assert.False(t, a.HasPending())

	result := a.Confirm(context.Background())
	assert.False(t, result.Success)
	assert.Zero(t, client.CallCount("transfer"))
}

func TestSecondCommandOverwritesPending(t *testing.T) {
	a, client := newTestAgent(t)

	a.ProcessCommand(context.Background(), "send 200 USDC to 0xAAA")
	a.ProcessCommand(context.Background(), "send 300 USDC to 0xBBB")

	a.Confirm(context.Background())

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"0xBBB", "300", "USDC"}, calls[0].Args)
}

// openEscrow settles an escrow through the normal flow and returns its ID.
func openEscrow(t *testing.T, a *Agent) string {
	t.Helper()
	a.ProcessCommand(context.Background(), "create escrow for 500 USDC to 0xDEF")
	confirmed := a.Confirm(context.Background())
	require.True(t, confirmed.Success)
	require.NotNil(t, confirmed.Reference)
	return confirmed.Reference.Reference
}

func deliveryProof(rec vision.Recommendation, confidence float64) *vision.Analysis {
	return &vision.Analysis{
		Mode: vision.ModeDeliveryProof,
		DeliveryProof: &vision.DeliveryProofAnalysis{
			Detected:       true,
			Description:    "package at the door",
			Recommendation: rec,
			Confidence:     confidence,
		},
	}
}

func TestDeliveryProofParksReleaseWithoutOptIn(t *testing.T) {
	a, client := newTestAgent(t)
	escrowID := openEscrow(t, a)

	analysis := deliveryProof(vision.RecommendRelease, 0.9)
	result := a.handleDeliveryProof(context.Background(), analysis, ImageOptions{EscrowID: escrowID})

	// High-confidence release recommendation alone never moves funds.
	require.True(t, result.NeedsConfirmation)
	assert.Contains(t, result.ConfirmationPrompt, escrowID)
	assert.True(t, a.HasPending())
	assert.Zero(t, client.CallCount("release_escrow"))

	confirmed := a.Confirm(context.Background())
	require.True(t, confirmed.Success)
	assert.Equal(t, 1, client.CallCount("release_escrow"))
	assert.False(t, a.HasPending())

	again := a.Confirm(context.Background())
	assert.False(t, again.Success)
	assert.Equal(t, 1, client.CallCount("release_escrow"))
}

func TestDeliveryProofAutoReleaseWithOptIn(t *testing.T) {
	a, client := newTestAgent(t)
	escrowID := openEscrow(t, a)

	analysis := deliveryProof(vision.RecommendRelease, 0.9)
	result := a.handleDeliveryProof(context.Background(), analysis,
		ImageOptions{EscrowID: escrowID, AutoRelease: true})

	require.True(t, result.Success)
	assert.False(t, result.NeedsConfirmation)
	assert.False(t, a.HasPending())
	assert.Equal(t, 1, client.CallCount("release_escrow"))
}

func TestDeliveryProofHoldParksDespiteOptIn(t *testing.T) {
	a, client := newTestAgent(t)
	escrowID := openEscrow(t, a)

	analysis := deliveryProof(vision.RecommendHold, 0.95)
	result := a.handleDeliveryProof(context.Background(), analysis,
		ImageOptions{EscrowID: escrowID, AutoRelease: true})

	require.True(t, result.NeedsConfirmation)
	assert.True(t, a.HasPending())
	assert.Zero(t, client.CallCount("release_escrow"))
}

func TestDeliveryProofNotDetected(t *testing.T) {
	a, client := newTestAgent(t)

	analysis := &vision.Analysis{
		Mode:          vision.ModeDeliveryProof,
		DeliveryProof: &vision.DeliveryProofAnalysis{Recommendation: vision.RecommendReview},
	}
	result := a.handleDeliveryProof(context.Background(), analysis, ImageOptions{EscrowID: "escrow_1"})

	assert.False(t, result.Success)
	assert.False(t, a.HasPending())
	assert.Empty(t, client.Calls())
}

func TestProcessImageWithoutAnalyzer(t *testing.T) {
	a, _ := newTestAgent(t)

	result := a.ProcessImage(context.Background(), []byte{0xFF}, "image/png", "invoice", ImageOptions{})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}
