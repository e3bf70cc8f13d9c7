package dispatch

import "github.com/payagent/payagent/internal/settlement"

// Result action values that are not catalog kinds.
const (
	ActionError   = "error"
	ActionChat    = "chat"
	ActionUnknown = "unknown"
)

// ExecutionResult is the terminal value returned to the caller on every
// code path. Nothing in the dispatch pipeline throws outward; failures
// are carried in Success/Message.
type ExecutionResult struct {
	Success            bool                `json:"success"`
	Action             string              `json:"action"`
	Message            string              `json:"message"`
	Reference          *settlement.Receipt `json:"reference,omitempty"`
	Data               map[string]any      `json:"data,omitempty"`
	NeedsConfirmation  bool                `json:"needs_confirmation"`
	ConfirmationPrompt string              `json:"confirmation_prompt,omitempty"`
	Suggestions        []string            `json:"suggestions,omitempty"`
}

// Failure builds a failed result for an action.
func Failure(action, message string) ExecutionResult {
	return ExecutionResult{Success: false, Action: action, Message: message}
}

// Success builds a successful result carrying a settlement receipt.
func Success(action, message string, ref *settlement.Receipt) ExecutionResult {
	return ExecutionResult{Success: true, Action: action, Message: message, Reference: ref}
}
