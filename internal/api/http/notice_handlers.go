package http

import (
	"net/http"

	authmw "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/notify"
)

type createNoticeReq struct {
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body"`
	URL       string `json:"url"`
	Target    string `json:"target" validate:"required,oneof=global batch student parent"`
	BatchID   string `json:"batch_id"`
	StudentID string `json:"student_id"`
	ParentID  string `json:"parent_id"`
}

// POST /notices — persist and fan out best-effort push.
func CreateNoticeHandler(svc *notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNoticeReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n, err := svc.Publish(r.Context(), notify.Notice{
			Title:     req.Title,
			Body:      req.Body,
			URL:       req.URL,
			Target:    req.Target,
			BatchID:   req.BatchID,
			StudentID: req.StudentID,
			ParentID:  req.ParentID,
			CreatedBy: authmw.SubjectFromContext(r.Context()),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

// GET /notices — notices addressed to the caller.
func ListNoticesHandler(store notify.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.ListNoticesForUser(r.Context(), authmw.SubjectFromContext(r.Context()),
			parseIntDefault(q.Get("limit"), 50), parseIntDefault(q.Get("offset"), 0))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type subscribeReq struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// POST /push/subscribe — register a web-push subscription for the caller.
func SubscribePushHandler(store notify.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sub, err := store.SaveSubscription(r.Context(), notify.Subscription{
			UserID:   authmw.SubjectFromContext(r.Context()),
			Endpoint: req.Endpoint,
			P256dh:   req.P256dh,
			Auth:     req.Auth,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}
