package notify_test

import (
	"context"
	"testing"

	"github.com/brightprep/brightprep-erp/internal/db"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/notify"
)

type recordingSender struct {
	sent []notify.Subscription
}

func (r *recordingSender) Send(_ context.Context, sub notify.Subscription, _ notify.Payload) error {
	r.sent = append(r.sent, sub)
	return nil
}

func newNotifyDB(t *testing.T, name string) (*notify.SQLStore, *directory.SQLStore) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return notify.NewSQLStore(dbh), directory.NewSQLStore(dbh)
}

func TestBatchNotice_AudienceAtCreationTime(t *testing.T) {
	st, dir := newNotifyDB(t, "notify_batch")
	ctx := context.Background()

	batch, err := dir.PutBatch(ctx, directory.Batch{Name: "JEE 2027", Active: true})
	if err != nil {
		t.Fatal(err)
	}
	member, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "member.one", Password: "secret123", FullName: "Member One", BatchID: batch.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveSubscription(ctx, notify.Subscription{
		UserID: member.UserID, Endpoint: "https://push.example/1", P256dh: "k", Auth: "a",
	}); err != nil {
		t.Fatal(err)
	}

	sender := &recordingSender{}
	svc := notify.NewService(st, sender)
	saved, err := svc.Publish(ctx, notify.Notice{
		Title: "Extra class Sunday", Target: notify.TargetBatch, BatchID: batch.ID, CreatedBy: "t1",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].UserID != member.UserID {
		t.Fatalf("push audience = %v, want only batch member", sender.sent)
	}

	// A student joining the batch later sees the notice in their feed but
	// received no push: delivery was resolved at creation time.
	late, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "member.two", Password: "secret123", FullName: "Member Two", BatchID: batch.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	feed, err := st.ListNoticesForUser(ctx, late.UserID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 1 || feed[0].ID != saved.ID {
		t.Fatalf("late joiner feed = %v", feed)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("push count changed after publish")
	}
}

func TestListNoticesForUser_Scoping(t *testing.T) {
	st, dir := newNotifyDB(t, "notify_scope")
	ctx := context.Background()

	stu, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "scoped.student", Password: "secret123", FullName: "Scoped",
	})
	if err != nil {
		t.Fatal(err)
	}
	other, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "other.student", Password: "secret123", FullName: "Other",
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := notify.NewService(st, nil)
	if _, err := svc.Publish(ctx, notify.Notice{Title: "All hands", Target: notify.TargetGlobal}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Publish(ctx, notify.Notice{Title: "Just you", Target: notify.TargetStudent, StudentID: stu.ID}); err != nil {
		t.Fatal(err)
	}

	mine, err := st.ListNoticesForUser(ctx, stu.UserID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("scoped student sees %d notices, want 2", len(mine))
	}
	theirs, err := st.ListNoticesForUser(ctx, other.UserID, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(theirs) != 1 || theirs[0].Title != "All hands" {
		t.Fatalf("other student sees %v, want only the global notice", theirs)
	}
}

func TestSaveSubscription_UpsertsByEndpoint(t *testing.T) {
	st, dir := newNotifyDB(t, "notify_subs")
	ctx := context.Background()

	stu, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "sub.student", Password: "secret123", FullName: "Sub",
	})
	if err != nil {
		t.Fatal(err)
	}

	first := notify.Subscription{UserID: stu.UserID, Endpoint: "https://push.example/x", P256dh: "k1", Auth: "a1"}
	if _, err := st.SaveSubscription(ctx, first); err != nil {
		t.Fatal(err)
	}
	// Same endpoint re-registered with fresh keys replaces, not duplicates.
	second := notify.Subscription{UserID: stu.UserID, Endpoint: "https://push.example/x", P256dh: "k2", Auth: "a2"}
	if _, err := st.SaveSubscription(ctx, second); err != nil {
		t.Fatal(err)
	}

	subs, err := st.SubscriptionsForUsers(ctx, []string{stu.UserID})
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	if subs[0].P256dh != "k2" {
		t.Fatalf("keys not refreshed: %+v", subs[0])
	}

	if err := st.DeleteSubscription(ctx, subs[0].ID); err != nil {
		t.Fatal(err)
	}
	subs, _ = st.SubscriptionsForUsers(ctx, []string{stu.UserID})
	if len(subs) != 0 {
		t.Fatalf("subscription not deleted")
	}
}
