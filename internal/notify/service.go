package notify

import (
	"context"
	"errors"
	"log"
)

var (
	ErrNoticeNotFound = errors.New("notice not found")
	ErrBadTarget      = errors.New("notice target and scoping id mismatch")
)

// Store is the persistence surface the service needs.
type Store interface {
	SaveNotice(ctx context.Context, n Notice) (Notice, error)
	ListNoticesForUser(ctx context.Context, userID string, limit, offset int) ([]Notice, error)
	ResolveAudience(ctx context.Context, n Notice) ([]string, error)
	SubscriptionsForUsers(ctx context.Context, userIDs []string) ([]Subscription, error)
	SaveSubscription(ctx context.Context, sub Subscription) (Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
}

// Sender delivers one push message. ErrSubscriptionGone marks a dead
// subscription that should be pruned.
type Sender interface {
	Send(ctx context.Context, sub Subscription, p Payload) error
}

var ErrSubscriptionGone = errors.New("subscription gone")

type Service struct {
	store  Store
	sender Sender
}

func NewService(store Store, sender Sender) *Service {
	return &Service{store: store, sender: sender}
}

// Publish validates the target, persists the notice, then attempts
// best-effort push delivery to every resolved user's subscriptions.
// Delivery is at-most-once with no retry: failures are logged and do not
// affect the persisted notice.
func (s *Service) Publish(ctx context.Context, n Notice) (Notice, error) {
	if err := validateTarget(n); err != nil {
		return Notice{}, err
	}

	// Audience is resolved against membership at creation time; later
	// batch changes do not re-target the notice.
	audience, err := s.store.ResolveAudience(ctx, n)
	if err != nil {
		return Notice{}, err
	}

	saved, err := s.store.SaveNotice(ctx, n)
	if err != nil {
		return Notice{}, err
	}

	s.fanOut(ctx, saved, audience)
	return saved, nil
}

func (s *Service) fanOut(ctx context.Context, n Notice, audience []string) {
	if s.sender == nil || len(audience) == 0 {
		return
	}
	subs, err := s.store.SubscriptionsForUsers(ctx, audience)
	if err != nil {
		log.Printf("notice %s: load subscriptions: %v", n.ID, err)
		return
	}
	p := Payload{Title: n.Title, Body: n.Body, URL: n.URL}
	for _, sub := range subs {
		if err := s.sender.Send(ctx, sub, p); err != nil {
			if errors.Is(err, ErrSubscriptionGone) {
				_ = s.store.DeleteSubscription(ctx, sub.ID)
				continue
			}
			log.Printf("notice %s: push to user %s failed: %v", n.ID, sub.UserID, err)
		}
	}
}

func validateTarget(n Notice) error {
	set := 0
	if n.BatchID != "" {
		set++
	}
	if n.StudentID != "" {
		set++
	}
	if n.ParentID != "" {
		set++
	}
	switch n.Target {
	case TargetGlobal:
		if set != 0 {
			return ErrBadTarget
		}
	case TargetBatch:
		if n.BatchID == "" || set != 1 {
			return ErrBadTarget
		}
	case TargetStudent:
		if n.StudentID == "" || set != 1 {
			return ErrBadTarget
		}
	case TargetParent:
		if n.ParentID == "" || set != 1 {
			return ErrBadTarget
		}
	default:
		return ErrBadTarget
	}
	return nil
}
