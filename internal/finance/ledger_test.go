package finance_test

import (
	"testing"

	"github.com/brightprep/brightprep-erp/internal/finance"
)

func TestProject_InstallmentWalk(t *testing.T) {
	schedule := []finance.Installment{{Amount: 50000}, {Amount: 50000}, {Amount: 50000}}

	// Paid 60000 against 150000: second installment is partially covered,
	// the 40000 shortfall there is due now.
	s := finance.Project(150000, 0, schedule, 60000)
	if s.EffectiveFee != 150000 {
		t.Errorf("effective = %v, want 150000", s.EffectiveFee)
	}
	if s.Pending != 90000 {
		t.Errorf("pending = %v, want 90000", s.Pending)
	}
	if s.DueInstallment != 40000 {
		t.Errorf("due = %v, want 40000", s.DueInstallment)
	}
}

func TestProject_FullyPaid(t *testing.T) {
	schedule := []finance.Installment{{Amount: 50000}, {Amount: 50000}}
	s := finance.Project(100000, 0, schedule, 100000)
	if s.Pending != 0 || s.DueInstallment != 0 {
		t.Fatalf("fully paid: pending=%v due=%v", s.Pending, s.DueInstallment)
	}
}

func TestProject_Overpaid(t *testing.T) {
	s := finance.Project(100000, 0, nil, 120000)
	if s.Pending != 0 || s.DueInstallment != 0 {
		t.Fatalf("overpaid: pending=%v due=%v", s.Pending, s.DueInstallment)
	}
}

func TestProject_WaiveOff(t *testing.T) {
	s := finance.Project(100000, 20000, nil, 30000)
	if s.EffectiveFee != 80000 {
		t.Errorf("effective = %v, want 80000", s.EffectiveFee)
	}
	if s.Pending != 50000 {
		t.Errorf("pending = %v, want 50000", s.Pending)
	}
	// No schedule: everything pending is due.
	if s.DueInstallment != 50000 {
		t.Errorf("due = %v, want 50000", s.DueInstallment)
	}
}

func TestProject_WaiveExceedsAgreed(t *testing.T) {
	s := finance.Project(50000, 80000, nil, 0)
	if s.EffectiveFee != 0 || s.Pending != 0 {
		t.Fatalf("effective floored at zero: %+v", s)
	}
}

func TestProject_DueCappedAtPending(t *testing.T) {
	// Schedule exceeds the effective fee; due never exceeds pending.
	schedule := []finance.Installment{{Amount: 90000}}
	s := finance.Project(100000, 40000, schedule, 0)
	if s.Pending != 60000 {
		t.Fatalf("pending = %v, want 60000", s.Pending)
	}
	if s.DueInstallment != 60000 {
		t.Fatalf("due = %v, want 60000 (capped)", s.DueInstallment)
	}
}
