package finance

// FeeRecord is one append-only ledger entry. Records are never mutated or
// deleted in normal flow.
type FeeRecord struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"student_id"`
	Amount        float64 `json:"amount"`
	PaidAt        int64   `json:"paid_at"`
	PaymentMode   string  `json:"payment_mode"`
	TransactionID string  `json:"transaction_id"`
	Remarks       string  `json:"remarks"`
	CollectedBy   string  `json:"collected_by"`
}
