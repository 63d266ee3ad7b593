// Package finance implements the fee ledger read model. Payments are an
// append-only ledger; paid/pending and the currently due installment are
// derived on every read and never stored.
package finance

type Installment struct {
	Amount  float64 `json:"amount"`
	DueDate string  `json:"due_date"`
}

type Summary struct {
	StudentID      string  `json:"student_id"`
	FeeAgreed      float64 `json:"fee_agreed"`
	WaiveOff       float64 `json:"waive_off"`
	EffectiveFee   float64 `json:"effective_fee"`
	Paid           float64 `json:"paid"`
	Pending        float64 `json:"pending"`
	DueInstallment float64 `json:"due_installment"`
}

// Project computes the fee summary. Effective fee is max(0, agreed - waived)
// everywhere; pending is floored at zero. The currently due installment is
// found by walking the ordered schedule accumulating amounts until the
// cumulative sum exceeds paid; the shortfall there is due (0 if fully paid).
func Project(feeAgreed, waiveOff float64, schedule []Installment, paid float64) Summary {
	effective := feeAgreed - waiveOff
	if effective < 0 {
		effective = 0
	}
	pending := effective - paid
	if pending < 0 {
		pending = 0
	}

	var due float64
	if pending > 0 {
		cumulative := 0.0
		for _, ins := range schedule {
			cumulative += ins.Amount
			if cumulative > paid {
				due = cumulative - paid
				break
			}
		}
		if due == 0 && len(schedule) == 0 {
			due = pending
		}
		if due > pending {
			due = pending
		}
	}

	return Summary{
		FeeAgreed:      feeAgreed,
		WaiveOff:       waiveOff,
		EffectiveFee:   effective,
		Paid:           paid,
		Pending:        pending,
		DueInstallment: due,
	}
}
