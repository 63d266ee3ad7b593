package finance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brightprep/brightprep-erp/internal/db"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/finance"
)

func newTestDB(t *testing.T, name string) (*finance.SQLStore, *directory.SQLStore) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return finance.NewSQLStore(dbh), directory.NewSQLStore(dbh)
}

func seedStudent(t *testing.T, dir *directory.SQLStore, username string) directory.Student {
	t.Helper()
	st, err := dir.CreateStudent(context.Background(), directory.NewStudentInput{
		Username:  username,
		Password:  "secret123",
		FullName:  "Test Student",
		FeeAgreed: 150000,
		Installments: []finance.Installment{
			{Amount: 50000, DueDate: "2026-04-01"},
			{Amount: 50000, DueDate: "2026-07-01"},
			{Amount: 50000, DueDate: "2026-10-01"},
		},
	})
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

func TestCollect_AppendsAndSummaryProjects(t *testing.T) {
	fs, dir := newTestDB(t, "fee_collect")
	ctx := context.Background()
	st := seedStudent(t, dir, "fee.student")

	if _, err := fs.Collect(ctx, finance.FeeRecord{StudentID: st.ID, Amount: 50000, PaymentMode: "upi"}); err != nil {
		t.Fatalf("collect 1: %v", err)
	}
	if _, err := fs.Collect(ctx, finance.FeeRecord{StudentID: st.ID, Amount: 10000, PaymentMode: "cash"}); err != nil {
		t.Fatalf("collect 2: %v", err)
	}

	sum, err := fs.SummaryForStudent(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Paid != 60000 {
		t.Errorf("paid = %v, want 60000", sum.Paid)
	}
	if sum.Pending != 90000 {
		t.Errorf("pending = %v, want 90000", sum.Pending)
	}
	if sum.DueInstallment != 40000 {
		t.Errorf("due = %v, want 40000", sum.DueInstallment)
	}

	recs, err := fs.RecordsForStudent(ctx, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(recs))
	}
}

func TestCollect_Validation(t *testing.T) {
	fs, dir := newTestDB(t, "fee_validate")
	ctx := context.Background()
	st := seedStudent(t, dir, "fee.validate")

	if _, err := fs.Collect(ctx, finance.FeeRecord{StudentID: st.ID, Amount: 0}); err == nil {
		t.Fatalf("zero amount accepted")
	}
	if _, err := fs.Collect(ctx, finance.FeeRecord{StudentID: "missing", Amount: 100}); !errors.Is(err, finance.ErrStudentNotFound) {
		t.Fatalf("missing student: got %v", err)
	}
}

func TestStudentLookupHelpers(t *testing.T) {
	fs, dir := newTestDB(t, "fee_lookup")
	ctx := context.Background()

	p, err := dir.CreateParent(ctx, directory.NewParentInput{
		Username: "parent.one", Password: "secret123", FullName: "Parent One",
	})
	if err != nil {
		t.Fatal(err)
	}
	st, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "child.one", Password: "secret123", FullName: "Child One", ParentID: p.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	id, err := fs.StudentIDForUser(ctx, st.UserID)
	if err != nil || id != st.ID {
		t.Fatalf("StudentIDForUser = %q err=%v, want %q", id, err, st.ID)
	}
	ids, err := fs.StudentIDsForParent(ctx, p.UserID)
	if err != nil || len(ids) != 1 || ids[0] != st.ID {
		t.Fatalf("StudentIDsForParent = %v err=%v", ids, err)
	}
	if _, err := fs.StudentIDForUser(ctx, "nobody"); !errors.Is(err, finance.ErrStudentNotFound) {
		t.Fatalf("unknown user: got %v", err)
	}
}
