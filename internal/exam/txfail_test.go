package exam_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brightprep/brightprep-erp/internal/db"
	"github.com/brightprep/brightprep-erp/internal/exam"
)

// failCommitDriver wraps the sqlite driver so a test can make tx commits
// fail on demand, the way a dropped connection or SQLITE_BUSY would.
type failCommitDriver struct{ inner driver.Driver }

func (d *failCommitDriver) Open(name string) (driver.Conn, error) {
	c, err := d.inner.Open(name)
	if err != nil {
		return nil, err
	}
	return &failCommitConn{Conn: c}, nil
}

type failCommitConn struct{ driver.Conn }

func (c *failCommitConn) Begin() (driver.Tx, error) {
	tx, err := c.Conn.Begin()
	if err != nil {
		return nil, err
	}
	return &failCommitTx{Tx: tx}, nil
}

type failCommitTx struct{ driver.Tx }

func (t *failCommitTx) Commit() error {
	if commitShouldFail.Load() {
		_ = t.Tx.Rollback()
		return errors.New("commit failed")
	}
	return t.Tx.Commit()
}

var (
	commitShouldFail atomic.Bool
	registerFailOnce sync.Once
)

func openFailCommitDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	registerFailOnce.Do(func() {
		probe, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			panic(err)
		}
		sql.Register("sqlite-failcommit", &failCommitDriver{inner: probe.Driver()})
		_ = probe.Close()
	})
	dbh, err := sql.Open("sqlite-failcommit", dsn)
	if err != nil {
		t.Fatalf("open failcommit db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func TestSubmitAttempt_CommitErrorPropagates(t *testing.T) {
	dsn := "file:exam_commitfail?mode=memory&cache=shared"
	// Open through the normal path first so the schema exists, then attach
	// the commit-failing handle to the same in-memory database.
	base, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = base.Close() })
	st := exam.NewSQLStore(openFailCommitDB(t, dsn), "sqlite")

	ctx := context.Background()
	e := seedExam(t, st)
	if _, err := st.StartAttempt(ctx, e.ID, "u-commit"); err != nil {
		t.Fatalf("start: %v", err)
	}

	commitShouldFail.Store(true)
	_, err = st.SubmitAttempt(ctx, e.ID, "u-commit", []exam.SubmittedAnswer{
		{QuestionID: e.ID, SelectedOption: "b"},
	})
	commitShouldFail.Store(false)
	if err == nil {
		t.Fatal("expected commit error to reach the caller")
	}

	// Nothing from the failed transaction may be visible: the attempt is
	// still in_progress and no answer rows exist.
	a, err := st.AttemptForUser(ctx, e.ID, "u-commit")
	if err != nil {
		t.Fatalf("attempt for user: %v", err)
	}
	if a.Status != exam.StatusInProgress {
		t.Fatalf("status after failed commit = %q, want %q", a.Status, exam.StatusInProgress)
	}
	items, err := st.AttemptAnswers(ctx, a.ID)
	if err != nil {
		t.Fatalf("attempt answers: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("answers after failed commit = %d, want 0", len(items))
	}

	// The retry goes through once commits work again.
	if _, err := st.SubmitAttempt(ctx, e.ID, "u-commit", nil); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}
