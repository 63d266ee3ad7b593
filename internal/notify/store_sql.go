package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightprep/brightprep-erp/internal/eventlog"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) SaveNotice(ctx context.Context, n Notice) (saved Notice, err error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Notice{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO notices
		(id,title,body,url,target,batch_id,student_id,parent_id,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		n.ID, n.Title, n.Body, n.URL, n.Target,
		nullable(n.BatchID), nullable(n.StudentID), nullable(n.ParentID),
		n.CreatedBy, n.CreatedAt)
	if err != nil {
		return Notice{}, err
	}
	err = eventlog.Append(ctx, tx, "NoticePublished", n.ID, map[string]any{"target": n.Target})
	if err != nil {
		return Notice{}, err
	}
	return n, nil
}

// ResolveAudience maps a notice's target mode to the set of user ids it
// addresses, evaluated at call time.
func (s *SQLStore) ResolveAudience(ctx context.Context, n Notice) ([]string, error) {
	var (
		query string
		args  []any
	)
	switch n.Target {
	case TargetGlobal:
		query = `SELECT u.id FROM users u JOIN students s ON s.user_id=u.id WHERE s.active=1 AND u.active=1`
	case TargetBatch:
		query = `SELECT u.id FROM users u JOIN students s ON s.user_id=u.id WHERE s.batch_id=$1 AND s.active=1 AND u.active=1`
		args = append(args, n.BatchID)
	case TargetStudent:
		query = `SELECT u.id FROM users u JOIN students s ON s.user_id=u.id WHERE s.id=$1`
		args = append(args, n.StudentID)
	case TargetParent:
		query = `SELECT u.id FROM users u JOIN parents p ON p.user_id=u.id WHERE p.id=$1`
		args = append(args, n.ParentID)
	default:
		return nil, ErrBadTarget
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

// ListNoticesForUser returns notices addressed to the user: global ones,
// their batch's, and ones scoped to their student or parent row.
func (s *SQLStore) ListNoticesForUser(ctx context.Context, userID string, limit, offset int) ([]Notice, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT n.id,n.title,n.body,n.url,n.target,
			COALESCE(n.batch_id,''),COALESCE(n.student_id,''),COALESCE(n.parent_id,''),n.created_by,n.created_at
		FROM notices n
		WHERE n.target='global'
		   OR (n.target='batch' AND n.batch_id IN (SELECT batch_id FROM students WHERE user_id=$1))
		   OR (n.target='student' AND n.student_id IN (SELECT id FROM students WHERE user_id=$1))
		   OR (n.target='parent' AND n.parent_id IN (SELECT id FROM parents WHERE user_id=$1))
		ORDER BY n.created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Notice{}
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.URL, &n.Target,
			&n.BatchID, &n.StudentID, &n.ParentID, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveSubscription(ctx context.Context, sub Subscription) (Subscription, error) {
	if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return Subscription{}, errors.New("endpoint, p256dh and auth required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO push_subscriptions (id,user_id,endpoint,p256dh,auth,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (endpoint) DO UPDATE SET user_id=EXCLUDED.user_id, p256dh=EXCLUDED.p256dh, auth=EXCLUDED.auth`,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, time.Now().Unix())
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (s *SQLStore) SubscriptionsForUsers(ctx context.Context, userIDs []string) ([]Subscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	ph := make([]string, len(userIDs))
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id,user_id,endpoint,p256dh,auth FROM push_subscriptions WHERE user_id IN (%s)`,
		strings.Join(ph, ",")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subscription{}
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteSubscription(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id=$1`, id)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
