package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *SQLStore) PutBankQuestion(ctx context.Context, q BankQuestion) (BankQuestion, error) {
	sq := sanitizeQuestion(Question{
		Text: q.Text, Options: q.Options, CorrectOption: q.CorrectOption,
		Subject: q.Subject, Difficulty: q.Difficulty, Marks: q.Marks, Negative: q.Negative,
	})
	if sq.Text == "" {
		return BankQuestion{}, errors.New("question text required")
	}
	q.Text, q.Options, q.CorrectOption = sq.Text, sq.Options, sq.CorrectOption
	q.Subject, q.Difficulty, q.Marks, q.Negative = sq.Subject, sq.Difficulty, sq.Marks, sq.Negative
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return BankQuestion{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO question_bank
		(id,question_text,options_json,correct_option,subject,difficulty,marks,negative,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET question_text=EXCLUDED.question_text, options_json=EXCLUDED.options_json,
		correct_option=EXCLUDED.correct_option, subject=EXCLUDED.subject, difficulty=EXCLUDED.difficulty,
		marks=EXCLUDED.marks, negative=EXCLUDED.negative`,
		q.ID, q.Text, string(oj), q.CorrectOption, q.Subject, q.Difficulty, q.Marks, q.Negative, q.CreatedAt)
	if err != nil {
		return BankQuestion{}, err
	}
	return q, nil
}

func (s *SQLStore) GetBankQuestion(ctx context.Context, id string) (BankQuestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,question_text,options_json,correct_option,subject,difficulty,marks,negative,created_at
		FROM question_bank WHERE id=$1`, id)
	var q BankQuestion
	var oj string
	if err := row.Scan(&q.ID, &q.Text, &oj, &q.CorrectOption, &q.Subject, &q.Difficulty, &q.Marks, &q.Negative, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BankQuestion{}, ErrQuestionNotFound
		}
		return BankQuestion{}, err
	}
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		q.Options = map[string]string{}
	}
	return q, nil
}

func (s *SQLStore) ListBankQuestions(ctx context.Context, opts BankListOpts) ([]BankQuestion, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	where := []string{"1=1"}
	args := []any{}
	n := 0
	add := func(cond, val string) {
		n++
		where = append(where, fmt.Sprintf(cond, n))
		args = append(args, val)
	}
	if opts.Subject != "" {
		add("LOWER(subject)=$%d", strings.ToLower(opts.Subject))
	}
	if opts.Difficulty != "" {
		add("difficulty=$%d", opts.Difficulty)
	}
	if opts.Q != "" {
		add("LOWER(question_text) LIKE $%d", "%"+strings.ToLower(opts.Q)+"%")
	}
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT id,question_text,options_json,correct_option,subject,difficulty,marks,negative,created_at
		FROM question_bank WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), n+1, n+2)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BankQuestion{}
	for rows.Next() {
		var bq BankQuestion
		var oj string
		if err := rows.Scan(&bq.ID, &bq.Text, &oj, &bq.CorrectOption, &bq.Subject, &bq.Difficulty, &bq.Marks, &bq.Negative, &bq.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &bq.Options); err != nil {
			bq.Options = map[string]string{}
		}
		out = append(out, bq)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteBankQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question_bank WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}
