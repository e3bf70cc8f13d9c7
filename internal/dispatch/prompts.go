package dispatch

import (
	"fmt"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/intent"
)

// confirmationPrompt builds the human-readable question shown before a
// gated action executes. One phrasing per action kind.
func confirmationPrompt(it intent.Intent) string {
	amount := it.Param("amount")
	switch it.Kind {
	case catalog.ActionTransfer:
		return fmt.Sprintf("Send %s to %s?", amount, it.Param("recipient"))
	case catalog.ActionPayInvoice:
		return fmt.Sprintf("Pay invoice %s (%s)?", it.Param("invoice_id"), amount)
	case catalog.ActionCreateEscrow:
		return fmt.Sprintf("Lock %s in escrow for %s?", amount, it.Param("beneficiary"))
	case catalog.ActionReleaseEscrow:
		if amount == "" {
			return fmt.Sprintf("Release escrow %s?", it.Param("escrow_id"))
		}
		return fmt.Sprintf("Release escrow %s (%s)?", it.Param("escrow_id"), amount)
	case catalog.ActionCreateStream:
		return fmt.Sprintf("Stream %s to %s over %s?", amount, it.Param("recipient"), it.Param("duration"))
	case catalog.ActionHireAgent:
		return fmt.Sprintf("Hire %s for %s?", it.Param("agent"), amount)
	case catalog.ActionPrivateTransfer:
		return fmt.Sprintf("Privately send %s to %s?", amount, it.Param("recipient"))
	default:
		return fmt.Sprintf("Execute %s for %s?", it.Kind, amount)
	}
}
