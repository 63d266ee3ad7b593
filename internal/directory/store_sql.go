package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightprep/brightprep-erp/internal/finance"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// ---- batches ----

func (s *SQLStore) PutBatch(ctx context.Context, b Batch) (Batch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
		b.Active = true
	}
	if strings.TrimSpace(b.Name) == "" {
		return Batch{}, errors.New("batch name required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO batches (id,name,course,starts_on,active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, course=EXCLUDED.course,
		starts_on=EXCLUDED.starts_on, active=EXCLUDED.active`,
		b.ID, b.Name, b.Course, b.StartsOn, boolToInt(b.Active))
	return b, err
}

func (s *SQLStore) ListBatches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,course,starts_on,active FROM batches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Batch{}
	for rows.Next() {
		var b Batch
		var active int
		if err := rows.Scan(&b.ID, &b.Name, &b.Course, &b.StartsOn, &active); err != nil {
			return nil, err
		}
		b.Active = active != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- users ----

func (s *SQLStore) createUser(ctx context.Context, tx *sql.Tx, username, password, fullName, role string) (string, error) {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username).Scan(&exists)
	if err == nil {
		return "", ErrDuplicateUsername
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO users (id,username,password_hash,role,full_name,active,created_at)
		VALUES ($1,$2,$3,$4,$5,1,$6)`,
		id, username, string(hash), role, fullName, time.Now().Unix())
	return id, err
}

// ---- students ----

func (s *SQLStore) CreateStudent(ctx context.Context, in NewStudentInput) (st Student, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	userID, err := s.createUser(ctx, tx, strings.TrimSpace(in.Username), in.Password, in.FullName, "student")
	if err != nil {
		return Student{}, err
	}
	if in.Installments == nil {
		in.Installments = []finance.Installment{}
	}
	ij, err := json.Marshal(in.Installments)
	if err != nil {
		return Student{}, err
	}
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO students
		(id,user_id,batch_id,parent_id,fee_agreed,waive_off,installments_json,active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,1)`,
		id, userID, nullable(in.BatchID), nullable(in.ParentID), in.FeeAgreed, in.WaiveOff, string(ij))
	if err != nil {
		return Student{}, err
	}
	return Student{
		ID: id, UserID: userID, Username: in.Username, FullName: in.FullName,
		BatchID: in.BatchID, ParentID: in.ParentID,
		FeeAgreed: in.FeeAgreed, WaiveOff: in.WaiveOff,
		EffectiveFee: effectiveFee(in.FeeAgreed, in.WaiveOff),
		Installments: in.Installments, Active: true,
	}, nil
}

const studentCols = `s.id, s.user_id, u.username, u.full_name,
	COALESCE(s.batch_id,''), COALESCE(s.parent_id,''),
	s.fee_agreed, s.waive_off, s.installments_json, s.active`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var st Student
	var ij string
	var active int
	err := row.Scan(&st.ID, &st.UserID, &st.Username, &st.FullName, &st.BatchID, &st.ParentID,
		&st.FeeAgreed, &st.WaiveOff, &ij, &active)
	if err != nil {
		return Student{}, err
	}
	st.Active = active != 0
	st.EffectiveFee = effectiveFee(st.FeeAgreed, st.WaiveOff)
	if err := json.Unmarshal([]byte(ij), &st.Installments); err != nil {
		st.Installments = []finance.Installment{}
	}
	return st, nil
}

func (s *SQLStore) GetStudent(ctx context.Context, id string) (Student, error) {
	st, err := scanStudent(s.db.QueryRowContext(ctx,
		`SELECT `+studentCols+` FROM students s JOIN users u ON u.id=s.user_id WHERE s.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return st, err
}

func (s *SQLStore) ListStudents(ctx context.Context, batchID string) ([]Student, error) {
	query := `SELECT ` + studentCols + ` FROM students s JOIN users u ON u.id=s.user_id`
	args := []any{}
	if batchID != "" {
		query += ` WHERE s.batch_id=$1`
		args = append(args, batchID)
	}
	query += ` ORDER BY u.full_name`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateStudent adjusts enrollment and fee agreement fields.
func (s *SQLStore) UpdateStudent(ctx context.Context, st Student) (Student, error) {
	ij, err := json.Marshal(st.Installments)
	if err != nil {
		return Student{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE students SET batch_id=$1, parent_id=$2,
		fee_agreed=$3, waive_off=$4, installments_json=$5, active=$6 WHERE id=$7`,
		nullable(st.BatchID), nullable(st.ParentID), st.FeeAgreed, st.WaiveOff, string(ij),
		boolToInt(st.Active), st.ID)
	if err != nil {
		return Student{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Student{}, ErrNotFound
	}
	return s.GetStudent(ctx, st.ID)
}

// UserIsChildOfParent reports whether the student portal user is linked
// to the given parent user.
func (s *SQLStore) UserIsChildOfParent(ctx context.Context, childUserID, parentUserID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM students s
		JOIN parents p ON p.id = s.parent_id
		WHERE s.user_id=$1 AND p.user_id=$2`, childUserID, parentUserID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// StudentBelongsToParent gates cross-family reads for parent users.
func (s *SQLStore) StudentBelongsToParent(ctx context.Context, studentID, parentUserID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM students s
		JOIN parents p ON p.id=s.parent_id WHERE s.id=$1 AND p.user_id=$2`,
		studentID, parentUserID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ---- parents ----

func (s *SQLStore) CreateParent(ctx context.Context, in NewParentInput) (p Parent, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Parent{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	userID, err := s.createUser(ctx, tx, strings.TrimSpace(in.Username), in.Password, in.FullName, "parent")
	if err != nil {
		return Parent{}, err
	}
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO parents (id,user_id,phone) VALUES ($1,$2,$3)`, id, userID, in.Phone)
	if err != nil {
		return Parent{}, err
	}
	return Parent{ID: id, UserID: userID, Username: in.Username, FullName: in.FullName, Phone: in.Phone}, nil
}

func (s *SQLStore) ListParents(ctx context.Context) ([]Parent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id,p.user_id,u.username,u.full_name,p.phone
		FROM parents p JOIN users u ON u.id=p.user_id ORDER BY u.full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Parent{}
	for rows.Next() {
		var p Parent
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.FullName, &p.Phone); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- teachers ----

func (s *SQLStore) CreateTeacher(ctx context.Context, in NewTeacherInput) (t TeacherProfile, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TeacherProfile{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	userID, err := s.createUser(ctx, tx, strings.TrimSpace(in.Username), in.Password, in.FullName, "teacher")
	if err != nil {
		return TeacherProfile{}, err
	}
	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO teacher_profiles (id,user_id,subject,phone) VALUES ($1,$2,$3,$4)`,
		id, userID, in.Subject, in.Phone)
	if err != nil {
		return TeacherProfile{}, err
	}
	return TeacherProfile{ID: id, UserID: userID, Username: in.Username, FullName: in.FullName, Subject: in.Subject, Phone: in.Phone}, nil
}

func (s *SQLStore) ListTeachers(ctx context.Context) ([]TeacherProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id,t.user_id,u.username,u.full_name,t.subject,t.phone
		FROM teacher_profiles t JOIN users u ON u.id=t.user_id ORDER BY u.full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TeacherProfile{}
	for rows.Next() {
		var t TeacherProfile
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.FullName, &t.Subject, &t.Phone); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ---- expenses ----

func (s *SQLStore) AddExpense(ctx context.Context, e Expense) (Expense, error) {
	if e.Amount <= 0 {
		return Expense{}, errors.New("amount must be positive")
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO expenses (id,title,amount,category,spent_on,remarks,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Title, e.Amount, e.Category, e.SpentOn, e.Remarks, e.CreatedAt)
	return e, err
}

func (s *SQLStore) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,amount,category,spent_on,remarks,created_at
		FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.Category, &e.SpentOn, &e.Remarks, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- enquiries ----

func (s *SQLStore) PutEnquiry(ctx context.Context, e Enquiry) (Enquiry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
		e.CreatedAt = time.Now().Unix()
		if e.Status == "" {
			e.Status = "open"
		}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO enquiries (id,name,phone,course,note,status,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, phone=EXCLUDED.phone, course=EXCLUDED.course,
		note=EXCLUDED.note, status=EXCLUDED.status`,
		e.ID, e.Name, e.Phone, e.Course, e.Note, e.Status, e.CreatedAt)
	return e, err
}

func (s *SQLStore) ListEnquiries(ctx context.Context, status string) ([]Enquiry, error) {
	query := `SELECT id,name,phone,course,note,status,created_at FROM enquiries`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Enquiry{}
	for rows.Next() {
		var e Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.Course, &e.Note, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- resources ----

func (s *SQLStore) AddResource(ctx context.Context, r Resource) (Resource, error) {
	if strings.TrimSpace(r.Title) == "" {
		return Resource{}, errors.New("title required")
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO resources (id,title,subject,blob_key,uploaded_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.Title, r.Subject, r.BlobKey, r.UploadedBy, r.CreatedAt)
	return r, err
}

func (s *SQLStore) GetResource(ctx context.Context, id string) (Resource, error) {
	var r Resource
	err := s.db.QueryRowContext(ctx, `SELECT id,title,subject,blob_key,uploaded_by,created_at
		FROM resources WHERE id=$1`, id).
		Scan(&r.ID, &r.Title, &r.Subject, &r.BlobKey, &r.UploadedBy, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) ListResources(ctx context.Context, subject string) ([]Resource, error) {
	query := `SELECT id,title,subject,blob_key,uploaded_by,created_at FROM resources`
	args := []any{}
	if subject != "" {
		query += ` WHERE LOWER(subject)=$1`
		args = append(args, strings.ToLower(subject))
	}
	query += ` ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Resource{}
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.Subject, &r.BlobKey, &r.UploadedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- attendance ----

func (s *SQLStore) MarkAttendance(ctx context.Context, a Attendance) (Attendance, error) {
	if a.StudentID == "" || a.Day == "" {
		return Attendance{}, errors.New("student_id and day required")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attendance (id,student_id,day,present,marked_by)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (student_id, day) DO UPDATE SET present=EXCLUDED.present, marked_by=EXCLUDED.marked_by`,
		a.ID, a.StudentID, a.Day, boolToInt(a.Present), a.MarkedBy)
	return a, err
}

func (s *SQLStore) AttendanceForStudent(ctx context.Context, studentID string) ([]Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_id,day,present,marked_by
		FROM attendance WHERE student_id=$1 ORDER BY day DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attendance{}
	for rows.Next() {
		var a Attendance
		var present int
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Day, &present, &a.MarkedBy); err != nil {
			return nil, err
		}
		a.Present = present != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

// ---- helpers ----

func effectiveFee(agreed, waived float64) float64 {
	if v := agreed - waived; v > 0 {
		return v
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
