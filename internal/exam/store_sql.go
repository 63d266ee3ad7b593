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

	"github.com/brightprep/brightprep-erp/internal/eventlog"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) (Exam, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Title = SanitizeText(e.Title)
	if e.Title == "" {
		return Exam{}, errors.New("title required")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO exams (id,title,scheduled_at,duration_min,total_marks,is_published,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, scheduled_at=EXCLUDED.scheduled_at, duration_min=EXCLUDED.duration_min`,
		e.ID, e.Title, e.ScheduledAt, e.DurationMin, e.TotalMarks, boolToInt(e.IsPublished), e.CreatedAt)
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.getExam(ctx, id, false)
	if err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) GetExamFull(ctx context.Context, id string) (Exam, error) {
	return s.getExam(ctx, id, true)
}

func (s *SQLStore) getExam(ctx context.Context, id string, withKeys bool) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,scheduled_at,duration_min,total_marks,is_published,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var published int
	if err := row.Scan(&e.ID, &e.Title, &e.ScheduledAt, &e.DurationMin, &e.TotalMarks, &published, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, err
	}
	e.IsPublished = published != 0
	qs, err := s.examQuestions(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	if !withKeys {
		for i := range qs {
			qs[i].CorrectOption = ""
		}
	}
	e.Questions = qs
	return e, nil
}

func (s *SQLStore) examQuestions(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,exam_id,question_text,options_json,correct_option,subject,difficulty,marks,negative,order_index
		 FROM exam_questions WHERE exam_id=$1 ORDER BY order_index`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		var oj string
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Text, &oj, &q.CorrectOption, &q.Subject, &q.Difficulty, &q.Marks, &q.Negative, &q.OrderIndex); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			q.Options = map[string]string{}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error) {
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	where := []string{"1=1"}
	args := []any{}
	n := 0
	if opts.Q != "" {
		n++
		where = append(where, fmt.Sprintf("LOWER(e.title) LIKE $%d", n))
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
	}
	if opts.PublishedOnly {
		where = append(where, "e.is_published=1")
	}
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT e.id,e.title,e.scheduled_at,e.duration_min,e.total_marks,e.is_published,
			(SELECT COUNT(*) FROM exam_questions q WHERE q.exam_id=e.id)
		FROM exams e WHERE %s ORDER BY e.scheduled_at DESC, e.created_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), n+1, n+2)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSummary{}
	for rows.Next() {
		var es ExamSummary
		var published int
		if err := rows.Scan(&es.ID, &es.Title, &es.ScheduledAt, &es.DurationMin, &es.TotalMarks, &published, &es.QuestionCount); err != nil {
			return nil, err
		}
		es.IsPublished = published != 0
		out = append(out, es)
	}
	return out, rows.Err()
}

// ImportQuestions copies bank questions and/or raw question objects into
// the exam's snapshot set, then recomputes total_marks and publishes the
// exam, all inside one transaction. Returns the number of questions added.
func (s *SQLStore) ImportQuestions(ctx context.Context, examID string, in ImportInput) (count int, err error) {
	var exists int
	if err = s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrExamNotFound
		}
		return 0, err
	}

	incoming := make([]Question, 0, len(in.BankIDs)+len(in.Questions))
	for _, id := range in.BankIDs {
		bq, berr := s.GetBankQuestion(ctx, id)
		if berr != nil {
			return 0, berr
		}
		incoming = append(incoming, Question{
			Text:          bq.Text,
			Options:       bq.Options,
			CorrectOption: bq.CorrectOption,
			Subject:       bq.Subject,
			Difficulty:    bq.Difficulty,
			Marks:         bq.Marks,
			Negative:      bq.Negative,
		})
	}
	incoming = append(incoming, in.Questions...)
	if len(incoming) == 0 {
		return 0, nil // no-op success
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var next int
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_index),-1)+1 FROM exam_questions WHERE exam_id=$1`, examID).Scan(&next); err != nil {
		return 0, err
	}
	for _, q := range incoming {
		q = sanitizeQuestion(q)
		oj, merr := json.Marshal(q.Options)
		if merr != nil {
			return 0, merr
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO exam_questions
			(id,exam_id,question_text,options_json,correct_option,subject,difficulty,marks,negative,order_index)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			uuid.NewString(), examID, q.Text, string(oj), q.CorrectOption, q.Subject, q.Difficulty, q.Marks, q.Negative, next)
		if err != nil {
			return 0, err
		}
		next++
		count++
	}

	_, err = tx.ExecContext(ctx, `UPDATE exams SET
		total_marks=(SELECT COALESCE(SUM(marks),0) FROM exam_questions WHERE exam_id=$1),
		is_published=1
		WHERE id=$1`, examID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func sanitizeQuestion(q Question) Question {
	q.Text = SanitizeText(q.Text)
	q.CorrectOption = SanitizeText(q.CorrectOption)
	opts := make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		opts[SanitizeText(k)] = SanitizeText(v)
	}
	q.Options = opts
	if q.Marks == 0 {
		q.Marks = DefaultMarks
	}
	if q.Negative == 0 {
		q.Negative = DefaultNegative
	}
	if q.Subject = SanitizeText(q.Subject); q.Subject == "" {
		q.Subject = DefaultSubject
	}
	if q.Difficulty = SanitizeText(q.Difficulty); q.Difficulty == "" {
		q.Difficulty = DefaultDifficulty
	}
	return q
}

// StartAttempt creates an in_progress attempt, or returns the existing one
// (idempotent resume). A submitted or evaluated attempt blocks a new start.
// The UNIQUE (user_id, exam_id) constraint closes the check-then-act race:
// a concurrent duplicate insert falls back to re-reading the winner's row.
func (s *SQLStore) StartAttempt(ctx context.Context, examID, userID string) (StartResult, error) {
	e, err := s.GetExam(ctx, examID)
	if err != nil {
		return StartResult{}, err
	}
	if !e.IsPublished {
		return StartResult{}, ErrExamNotPublished
	}
	if len(e.Questions) == 0 {
		return StartResult{}, ErrExamNoQuestions
	}

	now := time.Now().Unix()
	res := StartResult{Exam: e, ServerTime: now}

	a, err := s.AttemptForUser(ctx, examID, userID)
	switch {
	case err == nil:
		if a.Status != StatusInProgress {
			return StartResult{}, ErrAlreadySubmitted
		}
		res.Attempt, res.Resumed = a, true
		return res, nil
	case !errors.Is(err, ErrAttemptNotFound):
		return StartResult{}, err
	}

	a = Attempt{ID: uuid.NewString(), ExamID: examID, UserID: userID, Status: StatusInProgress, StartedAt: now}
	a, lost, err := s.insertAttempt(ctx, a)
	if err != nil {
		return StartResult{}, err
	}
	if lost && a.Status != StatusInProgress {
		return StartResult{}, ErrAlreadySubmitted
	}
	res.Attempt, res.Resumed = a, lost
	return res, nil
}

// insertAttempt writes a fresh attempt row. When a concurrent start won
// the UNIQUE (user_id, exam_id) race between our existence check and the
// insert, the winner's row is returned instead with lost=true.
func (s *SQLStore) insertAttempt(ctx context.Context, a Attempt) (_ Attempt, lost bool, _ error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,exam_id,user_id,status,started_at) VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.ExamID, a.UserID, a.Status, a.StartedAt)
	if err == nil {
		return a, false, nil
	}
	if !isUniqueViolation(err) {
		return Attempt{}, false, err
	}
	winner, err := s.AttemptForUser(ctx, a.ExamID, a.UserID)
	if err != nil {
		return Attempt{}, false, err
	}
	return winner, true, nil
}

// SubmitAttempt grades every question of the exam against the submitted
// answers and persists one answer row per question plus the attempt update
// as a single transaction. The results are named so the deferred commit
// can surface its error to the caller.
func (s *SQLStore) SubmitAttempt(ctx context.Context, examID, userID string, answers []SubmittedAnswer) (a Attempt, err error) {
	a, err = s.AttemptForUser(ctx, examID, userID)
	if err != nil {
		if errors.Is(err, ErrAttemptNotFound) {
			return Attempt{}, ErrNoActiveAttempt
		}
		return Attempt{}, err
	}
	if a.Status != StatusInProgress {
		return Attempt{}, ErrNoActiveAttempt
	}

	questions, err := s.examQuestions(ctx, examID)
	if err != nil {
		return Attempt{}, err
	}
	g := GradeSubmission(questions, answers)
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, ans := range g.Answers {
		var sel any
		if ans.SelectedOption != "" {
			sel = ans.SelectedOption
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO answers
			(id,attempt_id,question_id,selected_option,is_correct,marks_awarded,time_taken_sec)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), a.ID, ans.QuestionID, sel, boolToInt(ans.IsCorrect), ans.MarksAwarded, ans.TimeTakenSec)
		if err != nil {
			return Attempt{}, err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE attempts SET status=$1, submitted_at=$2, total_score=$3,
		physics_score=$4, chemistry_score=$5, maths_score=$6, biology_score=$7,
		correct_count=$8, wrong_count=$9, skipped_count=$10
		WHERE id=$11 AND status=$12`,
		StatusSubmitted, now, g.TotalScore,
		g.Subjects.Physics, g.Subjects.Chemistry, g.Subjects.Maths, g.Subjects.Biology,
		g.CorrectCount, g.WrongCount, g.SkippedCount, a.ID, StatusInProgress)
	if err != nil {
		return Attempt{}, err
	}

	if err = eventlog.Append(ctx, tx, "AttemptSubmitted", a.ID, map[string]any{
		"exam_id": examID, "user_id": userID, "total_score": g.TotalScore,
	}); err != nil {
		return Attempt{}, err
	}

	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.TotalScore = g.TotalScore
	a.Subjects = g.Subjects
	a.CorrectCount, a.WrongCount, a.SkippedCount = g.CorrectCount, g.WrongCount, g.SkippedCount
	return a, nil
}

const attemptCols = `id,exam_id,user_id,status,started_at,submitted_at,total_score,
	physics_score,chemistry_score,maths_score,biology_score,correct_count,wrong_count,skipped_count`

func scanAttempt(row interface{ Scan(...any) error }) (Attempt, error) {
	var a Attempt
	var submittedAt sql.NullInt64
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.StartedAt, &submittedAt, &a.TotalScore,
		&a.Subjects.Physics, &a.Subjects.Chemistry, &a.Subjects.Maths, &a.Subjects.Biology,
		&a.CorrectCount, &a.WrongCount, &a.SkippedCount)
	if err != nil {
		return Attempt{}, err
	}
	if submittedAt.Valid {
		a.SubmittedAt = &submittedAt.Int64
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	a, err := scanAttempt(s.db.QueryRowContext(ctx, `SELECT `+attemptCols+` FROM attempts WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, err
}

func (s *SQLStore) AttemptForUser(ctx context.Context, examID, userID string) (Attempt, error) {
	a, err := scanAttempt(s.db.QueryRowContext(ctx,
		`SELECT `+attemptCols+` FROM attempts WHERE exam_id=$1 AND user_id=$2`, examID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
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
	if opts.ExamID != "" {
		add("exam_id=$%d", opts.ExamID)
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.Status != "" {
		add("status=$%d", opts.Status)
	}
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT `+attemptCols+` FROM attempts WHERE %s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), n+1, n+2)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AttemptAnswers returns the persisted answers joined with their questions,
// correct options included. Only meaningful after submission.
func (s *SQLStore) AttemptAnswers(ctx context.Context, attemptID string) ([]AnswerReview, error) {
	if _, err := s.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT a.attempt_id, a.question_id, a.selected_option,
			a.is_correct, a.marks_awarded, a.time_taken_sec,
			q.question_text, q.options_json, q.correct_option, q.subject
		FROM answers a
		JOIN exam_questions q ON q.id = a.question_id
		WHERE a.attempt_id=$1 ORDER BY q.order_index`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AnswerReview{}
	for rows.Next() {
		var ar AnswerReview
		var sel sql.NullString
		var correct int
		var oj string
		if err := rows.Scan(&ar.AttemptID, &ar.QuestionID, &sel, &correct, &ar.MarksAwarded, &ar.TimeTakenSec,
			&ar.QuestionText, &oj, &ar.CorrectOption, &ar.Subject); err != nil {
			return nil, err
		}
		ar.SelectedOption = sel.String
		ar.IsCorrect = correct != 0
		if err := json.Unmarshal([]byte(oj), &ar.Options); err != nil {
			ar.Options = map[string]string{}
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

// EnterManualMarks overrides an attempt's scores and moves it to evaluated.
// Only submitted attempts can be evaluated.
func (s *SQLStore) EnterManualMarks(ctx context.Context, attemptID string, total float64, subjects SubjectScores) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusInProgress {
		return Attempt{}, ErrNoActiveAttempt
	}
	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET status=$1, total_score=$2,
		physics_score=$3, chemistry_score=$4, maths_score=$5, biology_score=$6 WHERE id=$7`,
		StatusEvaluated, total, subjects.Physics, subjects.Chemistry, subjects.Maths, subjects.Biology, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
