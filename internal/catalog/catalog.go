package catalog

// ActionKind identifies one of the fixed financial operations the agent can
// execute. The set is closed: anything the interpreters produce is checked
// against it before use.
type ActionKind string

const (
	ActionTransfer          ActionKind = "transfer"
	ActionCreateEscrow      ActionKind = "create_escrow"
	ActionReleaseEscrow     ActionKind = "release_escrow"
	ActionRefundEscrow      ActionKind = "refund_escrow"
	ActionCreateStream      ActionKind = "create_stream"
	ActionCancelStream      ActionKind = "cancel_stream"
	ActionHireAgent         ActionKind = "hire_agent"
	ActionApproveWork       ActionKind = "approve_work"
	ActionPrivateTransfer   ActionKind = "private_transfer"
	ActionGetBalance        ActionKind = "get_balance"
	ActionGetSpendingReport ActionKind = "get_spending_report"
	ActionAddAllowlist      ActionKind = "add_allowlist"
	ActionAddBlocklist      ActionKind = "add_blocklist"
	ActionPayInvoice        ActionKind = "pay_invoice"
	ActionSubscribe         ActionKind = "subscribe"
	ActionUnknown           ActionKind = "unknown"
)

// ParamType describes the semantic type of an action parameter. Validation
// is structural only; types guide the model interpreter's prompts.
type ParamType int

const (
	ParamAddress  ParamType = iota // address or contact name
	ParamAmount                    // decimal amount as a string, e.g. "50" or "12.50"
	ParamDuration                  // duration string, e.g. "7d", "30 days"
	ParamText                      // free text
	ParamChoice                    // one of a fixed set of values
)

// Param is a single named parameter in an action schema.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	Choices     []string // only for ParamChoice
}

// Schema describes one action kind: what it does and which parameters it
// takes. Schemas are immutable after init.
type Schema struct {
	Kind        ActionKind
	Description string
	Params      []Param
}

// RequiredParams returns the names of all required parameters.
func (s Schema) RequiredParams() []string {
	var names []string
	for _, p := range s.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// kindOrder fixes the iteration order for prompts and tool declarations.
var kindOrder = []ActionKind{
	ActionTransfer,
	ActionCreateEscrow,
	ActionReleaseEscrow,
	ActionRefundEscrow,
	ActionCreateStream,
	ActionCancelStream,
	ActionHireAgent,
	ActionApproveWork,
	ActionPrivateTransfer,
	ActionGetBalance,
	ActionGetSpendingReport,
	ActionAddAllowlist,
	ActionAddBlocklist,
	ActionPayInvoice,
	ActionSubscribe,
}

var schemas = map[ActionKind]Schema{
	ActionTransfer: {
		Kind:        ActionTransfer,
		Description: "Send tokens to a recipient address or contact name",
		Params: []Param{
			{Name: "recipient", Type: ParamAddress, Required: true, Description: "Destination address or contact name"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Amount to send as a decimal string"},
			{Name: "token", Type: ParamText, Required: false, Description: "Token symbol, defaults to USDC"},
		},
	},
	ActionCreateEscrow: {
		Kind:        ActionCreateEscrow,
		Description: "Lock funds in escrow for a beneficiary, released on approval or after a timeout",
		Params: []Param{
			{Name: "beneficiary", Type: ParamAddress, Required: true, Description: "Who receives the funds on release"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Amount to lock as a decimal string"},
			{Name: "duration", Type: ParamDuration, Required: false, Description: "Escrow timeout, e.g. \"7d\""},
		},
	},
	ActionReleaseEscrow: {
		Kind:        ActionReleaseEscrow,
		Description: "Release a previously created escrow to its beneficiary",
		Params: []Param{
			{Name: "escrow_id", Type: ParamText, Required: true, Description: "Identifier of the escrow to release"},
			{Name: "amount", Type: ParamAmount, Required: false, Description: "Escrowed amount, if known"},
		},
	},
	ActionRefundEscrow: {
		Kind:        ActionRefundEscrow,
		Description: "Refund an expired or disputed escrow back to its creator",
		Params: []Param{
			{Name: "escrow_id", Type: ParamText, Required: true, Description: "Identifier of the escrow to refund"},
		},
	},
	ActionCreateStream: {
		Kind:        ActionCreateStream,
		Description: "Stream tokens continuously to a recipient over a period",
		Params: []Param{
			{Name: "recipient", Type: ParamAddress, Required: true, Description: "Stream recipient"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Total amount to stream"},
			{Name: "duration", Type: ParamDuration, Required: true, Description: "Streaming period, e.g. \"30d\""},
		},
	},
	ActionCancelStream: {
		Kind:        ActionCancelStream,
		Description: "Cancel an active payment stream",
		Params: []Param{
			{Name: "stream_id", Type: ParamText, Required: true, Description: "Identifier of the stream to cancel"},
		},
	},
	ActionHireAgent: {
		Kind:        ActionHireAgent,
		Description: "Hire an autonomous agent for a task, funding it up front",
		Params: []Param{
			{Name: "agent", Type: ParamAddress, Required: true, Description: "Agent address or registry name"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Payment offered for the task"},
			{Name: "task", Type: ParamText, Required: false, Description: "Description of the work"},
		},
	},
	ActionApproveWork: {
		Kind:        ActionApproveWork,
		Description: "Approve a hired agent's delivered work, releasing its payment",
		Params: []Param{
			{Name: "job_id", Type: ParamText, Required: true, Description: "Identifier of the job to approve"},
		},
	},
	ActionPrivateTransfer: {
		Kind:        ActionPrivateTransfer,
		Description: "Send tokens through the shielded pool so the transfer is not publicly linkable",
		Params: []Param{
			{Name: "recipient", Type: ParamAddress, Required: true, Description: "Destination address"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Amount to send"},
		},
	},
	ActionGetBalance: {
		Kind:        ActionGetBalance,
		Description: "Read the wallet balance",
		Params: []Param{
			{Name: "token", Type: ParamText, Required: false, Description: "Token symbol to query, defaults to all"},
		},
	},
	ActionGetSpendingReport: {
		Kind:        ActionGetSpendingReport,
		Description: "Summarize spending over a recent period",
		Params: []Param{
			{Name: "period", Type: ParamDuration, Required: false, Description: "Reporting window, e.g. \"30d\""},
		},
	},
	ActionAddAllowlist: {
		Kind:        ActionAddAllowlist,
		Description: "Add an address to the allowlist of trusted recipients",
		Params: []Param{
			{Name: "address", Type: ParamAddress, Required: true, Description: "Address to allow"},
		},
	},
	ActionAddBlocklist: {
		Kind:        ActionAddBlocklist,
		Description: "Add an address to the blocklist",
		Params: []Param{
			{Name: "address", Type: ParamAddress, Required: true, Description: "Address to block"},
		},
	},
	ActionPayInvoice: {
		Kind:        ActionPayInvoice,
		Description: "Pay an invoice by its identifier",
		Params: []Param{
			{Name: "invoice_id", Type: ParamText, Required: true, Description: "Invoice identifier or payment reference"},
			{Name: "amount", Type: ParamAmount, Required: false, Description: "Amount due, if stated on the invoice"},
		},
	},
	ActionSubscribe: {
		Kind:        ActionSubscribe,
		Description: "Start a recurring subscription payment to a service",
		Params: []Param{
			{Name: "service", Type: ParamAddress, Required: true, Description: "Service address or name"},
			{Name: "amount", Type: ParamAmount, Required: true, Description: "Amount per billing interval"},
			{Name: "interval", Type: ParamDuration, Required: false, Description: "Billing interval, defaults to monthly"},
		},
	},
}

// gatedKinds is the set of monetarily sensitive actions that pass through
// the confirmation gate when their amount meets the threshold.
var gatedKinds = map[ActionKind]bool{
	ActionTransfer:        true,
	ActionPayInvoice:      true,
	ActionCreateEscrow:    true,
	ActionReleaseEscrow:   true,
	ActionCreateStream:    true,
	ActionHireAgent:       true,
	ActionPrivateTransfer: true,
}

// Lookup returns the schema for a kind. ok is false for unknown kinds,
// including ActionUnknown itself, which has no schema.
func Lookup(kind ActionKind) (Schema, bool) {
	s, ok := schemas[kind]
	return s, ok
}

// Valid reports whether kind is a member of the catalog. ActionUnknown is
// valid as an intent outcome but has no executable schema.
func Valid(kind ActionKind) bool {
	if kind == ActionUnknown {
		return true
	}
	_, ok := schemas[kind]
	return ok
}

// Gated reports whether kind is monetarily sensitive and subject to the
// confirmation gate.
func Gated(kind ActionKind) bool {
	return gatedKinds[kind]
}

// Kinds returns all executable action kinds in a stable order.
func Kinds() []ActionKind {
	out := make([]ActionKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}
