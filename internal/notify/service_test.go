package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/brightprep/brightprep-erp/internal/notify"
)

// ---- fakes ----

type fakeStore struct {
	notices  []notify.Notice
	audience map[string][]string // target|id -> user ids
	subs     map[string][]notify.Subscription
	deleted  []string

	resolveBeforeSave bool
	saved             bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		audience: map[string][]string{},
		subs:     map[string][]notify.Subscription{},
	}
}

func audienceKey(n notify.Notice) string {
	return fmt.Sprintf("%s|%s%s%s", n.Target, n.BatchID, n.StudentID, n.ParentID)
}

func (s *fakeStore) SaveNotice(_ context.Context, n notify.Notice) (notify.Notice, error) {
	if n.ID == "" {
		n.ID = fmt.Sprintf("n-%d", len(s.notices)+1)
	}
	s.notices = append(s.notices, n)
	s.saved = true
	return n, nil
}

func (s *fakeStore) ListNoticesForUser(context.Context, string, int, int) ([]notify.Notice, error) {
	return s.notices, nil
}

func (s *fakeStore) ResolveAudience(_ context.Context, n notify.Notice) ([]string, error) {
	if !s.saved {
		s.resolveBeforeSave = true
	}
	return s.audience[audienceKey(n)], nil
}

func (s *fakeStore) SubscriptionsForUsers(_ context.Context, userIDs []string) ([]notify.Subscription, error) {
	var out []notify.Subscription
	for _, id := range userIDs {
		out = append(out, s.subs[id]...)
	}
	return out, nil
}

func (s *fakeStore) SaveSubscription(_ context.Context, sub notify.Subscription) (notify.Subscription, error) {
	s.subs[sub.UserID] = append(s.subs[sub.UserID], sub)
	return sub, nil
}

func (s *fakeStore) DeleteSubscription(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type fakeSender struct {
	sent   []notify.Subscription
	errFor map[string]error // subscription id -> error
}

func (f *fakeSender) Send(_ context.Context, sub notify.Subscription, _ notify.Payload) error {
	f.sent = append(f.sent, sub)
	if err, ok := f.errFor[sub.ID]; ok {
		return err
	}
	return nil
}

// ---- tests ----

func TestPublish_BatchFanOut(t *testing.T) {
	st := newFakeStore()
	sender := &fakeSender{}
	svc := notify.NewService(st, sender)

	n := notify.Notice{Title: "Holiday", Target: notify.TargetBatch, BatchID: "b1"}
	st.audience[audienceKey(n)] = []string{"u1", "u2"}
	st.subs["u1"] = []notify.Subscription{{ID: "s1", UserID: "u1", Endpoint: "e1"}}
	st.subs["u2"] = []notify.Subscription{{ID: "s2", UserID: "u2", Endpoint: "e2"}}
	// u3 subscribes but is not in the batch.
	st.subs["u3"] = []notify.Subscription{{ID: "s3", UserID: "u3", Endpoint: "e3"}}

	saved, err := svc.Publish(context.Background(), n)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("notice not persisted")
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d pushes, want 2", len(sender.sent))
	}
	for _, sub := range sender.sent {
		if sub.UserID == "u3" {
			t.Fatalf("pushed to user outside the batch")
		}
	}
	// Audience must be captured before the notice exists, i.e. at creation.
	if !st.resolveBeforeSave {
		t.Fatalf("audience resolved after save")
	}
}

func TestPublish_TargetValidation(t *testing.T) {
	svc := notify.NewService(newFakeStore(), &fakeSender{})
	ctx := context.Background()

	bad := []notify.Notice{
		{Title: "x", Target: notify.TargetBatch},                                // missing batch id
		{Title: "x", Target: notify.TargetStudent, ParentID: "p1"},              // wrong fk
		{Title: "x", Target: notify.TargetGlobal, BatchID: "b1"},                // global with fk
		{Title: "x", Target: notify.TargetBatch, BatchID: "b1", ParentID: "p1"}, // two fks
		{Title: "x", Target: "everyone"},                                        // unknown mode
	}
	for i, n := range bad {
		if _, err := svc.Publish(ctx, n); !errors.Is(err, notify.ErrBadTarget) {
			t.Errorf("case %d: got %v, want ErrBadTarget", i, err)
		}
	}

	good := notify.Notice{Title: "x", Target: notify.TargetGlobal}
	if _, err := svc.Publish(ctx, good); err != nil {
		t.Fatalf("global notice: %v", err)
	}
}

func TestPublish_SendFailuresAreSwallowed(t *testing.T) {
	st := newFakeStore()
	sender := &fakeSender{errFor: map[string]error{"s1": errors.New("boom")}}
	svc := notify.NewService(st, sender)

	n := notify.Notice{Title: "x", Target: notify.TargetStudent, StudentID: "st1"}
	st.audience[audienceKey(n)] = []string{"u1"}
	st.subs["u1"] = []notify.Subscription{{ID: "s1", UserID: "u1"}, {ID: "s2", UserID: "u1"}}

	if _, err := svc.Publish(context.Background(), n); err != nil {
		t.Fatalf("push failure must not fail publish: %v", err)
	}
	// Both subscriptions attempted exactly once, none pruned.
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d, want 2", len(sender.sent))
	}
	if len(st.deleted) != 0 {
		t.Fatalf("transient failure pruned subscription")
	}
}

func TestPublish_GoneSubscriptionPruned(t *testing.T) {
	st := newFakeStore()
	sender := &fakeSender{errFor: map[string]error{"s1": notify.ErrSubscriptionGone}}
	svc := notify.NewService(st, sender)

	n := notify.Notice{Title: "x", Target: notify.TargetParent, ParentID: "p1"}
	st.audience[audienceKey(n)] = []string{"u1"}
	st.subs["u1"] = []notify.Subscription{{ID: "s1", UserID: "u1"}}

	if _, err := svc.Publish(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	if len(st.deleted) != 1 || st.deleted[0] != "s1" {
		t.Fatalf("expected s1 pruned, got %v", st.deleted)
	}
}

func TestPublish_NoSenderStillPersists(t *testing.T) {
	st := newFakeStore()
	svc := notify.NewService(st, nil)

	st.subs["u1"] = []notify.Subscription{{ID: "s1", UserID: "u1"}}
	n := notify.Notice{Title: "x", Target: notify.TargetGlobal}
	st.audience[audienceKey(n)] = []string{"u1"}

	saved, err := svc.Publish(context.Background(), n)
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || len(st.notices) != 1 {
		t.Fatalf("notice not persisted without sender")
	}
}
