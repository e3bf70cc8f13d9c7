package vision

// Mode selects which interpretation an image analysis applies.
type Mode string

const (
	ModeInvoice       Mode = "invoice"
	ModeReceipt       Mode = "receipt"
	ModeDeliveryProof Mode = "delivery-proof"
	ModeGeneric       Mode = "generic"
)

// Recommendation is the tri-state verdict of a delivery-proof analysis.
type Recommendation string

const (
	RecommendRelease Recommendation = "release"
	RecommendHold    Recommendation = "hold"
	RecommendReview  Recommendation = "review"
)

// InvoiceAnalysis is the structured extraction of an invoice image.
type InvoiceAnalysis struct {
	Detected   bool    `json:"detected"`
	Vendor     string  `json:"vendor"`
	Recipient  string  `json:"recipient"`
	Amount     string  `json:"amount"`
	Token      string  `json:"token"`
	InvoiceID  string  `json:"invoice_id"`
	DueDate    string  `json:"due_date"`
	Confidence float64 `json:"confidence"`
}

// ReceiptAnalysis is the structured extraction of a payment receipt.
type ReceiptAnalysis struct {
	Detected   bool    `json:"detected"`
	Merchant   string  `json:"merchant"`
	Amount     string  `json:"amount"`
	Token      string  `json:"token"`
	Date       string  `json:"date"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// DeliveryProofAnalysis is the structured assessment of delivery
// evidence attached to an escrow.
type DeliveryProofAnalysis struct {
	Detected       bool           `json:"detected"`
	Description    string         `json:"description"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`
	Confidence     float64        `json:"confidence"`
}

// PaymentImageAnalysis is the catch-all extraction when no specific mode
// applies.
type PaymentImageAnalysis struct {
	Detected    bool    `json:"detected"`
	Description string  `json:"description"`
	Action      string  `json:"action"`
	Amount      string  `json:"amount"`
	Recipient   string  `json:"recipient"`
	Confidence  float64 `json:"confidence"`
}

// Analysis carries the result of one image analysis. Exactly one of the
// mode-specific fields is populated, matching Mode.
type Analysis struct {
	Mode          Mode
	Invoice       *InvoiceAnalysis
	Receipt       *ReceiptAnalysis
	DeliveryProof *DeliveryProofAnalysis
	Generic       *PaymentImageAnalysis
}

// Confidence returns the confidence score of whichever variant is set.
func (a *Analysis) Confidence() float64 {
	switch {
	case a.Invoice != nil:
		return a.Invoice.Confidence
	case a.Receipt != nil:
		return a.Receipt.Confidence
	case a.DeliveryProof != nil:
		return a.DeliveryProof.Confidence
	case a.Generic != nil:
		return a.Generic.Confidence
	}
	return 0
}
