package finance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brightprep/brightprep-erp/internal/eventlog"
)

var ErrStudentNotFound = errors.New("student not found")

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Collect appends one payment to the ledger. The results are named so the
// deferred commit can surface its error to the caller.
func (s *SQLStore) Collect(ctx context.Context, rec FeeRecord) (out FeeRecord, err error) {
	if rec.Amount <= 0 {
		return FeeRecord{}, errors.New("amount must be positive")
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id=$1`, rec.StudentID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FeeRecord{}, ErrStudentNotFound
		}
		return FeeRecord{}, err
	}
	rec.ID = uuid.NewString()
	if rec.PaidAt == 0 {
		rec.PaidAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return FeeRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO fee_records
		(id,student_id,amount,paid_at,payment_mode,transaction_id,remarks,collected_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.StudentID, rec.Amount, rec.PaidAt, rec.PaymentMode, rec.TransactionID, rec.Remarks, rec.CollectedBy)
	if err != nil {
		return FeeRecord{}, err
	}
	err = eventlog.Append(ctx, tx, "FeeCollected", rec.ID, map[string]any{
		"student_id": rec.StudentID, "amount": rec.Amount,
	})
	if err != nil {
		return FeeRecord{}, err
	}
	return rec, nil
}

func (s *SQLStore) RecordsForStudent(ctx context.Context, studentID string) ([]FeeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,amount,paid_at,payment_mode,transaction_id,remarks,collected_by
		FROM fee_records WHERE student_id=$1 ORDER BY paid_at`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []FeeRecord{}
	for rows.Next() {
		var r FeeRecord
		if err := rows.Scan(&r.ID, &r.StudentID, &r.Amount, &r.PaidAt, &r.PaymentMode, &r.TransactionID, &r.Remarks, &r.CollectedBy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SummaryForStudent recomputes the projection from the student row and the
// ledger sum on every call.
func (s *SQLStore) SummaryForStudent(ctx context.Context, studentID string) (Summary, error) {
	var feeAgreed, waiveOff float64
	var installmentsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT fee_agreed, waive_off, installments_json FROM students WHERE id=$1`, studentID,
	).Scan(&feeAgreed, &waiveOff, &installmentsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, ErrStudentNotFound
	}
	if err != nil {
		return Summary{}, err
	}

	var schedule []Installment
	if err := json.Unmarshal([]byte(installmentsJSON), &schedule); err != nil {
		schedule = nil
	}

	var paid float64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount),0) FROM fee_records WHERE student_id=$1`, studentID,
	).Scan(&paid); err != nil {
		return Summary{}, err
	}

	sum := Project(feeAgreed, waiveOff, schedule, paid)
	sum.StudentID = studentID
	return sum, nil
}

// StudentIDForUser maps a portal user to their student row.
func (s *SQLStore) StudentIDForUser(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM students WHERE user_id=$1`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrStudentNotFound
	}
	return id, err
}

// StudentIDsForParent returns the student rows linked to a parent user.
func (s *SQLStore) StudentIDsForParent(ctx context.Context, parentUserID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT s.id FROM students s
		JOIN parents p ON p.id = s.parent_id WHERE p.user_id=$1`, parentUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
