package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/exam"
	"github.com/brightprep/brightprep-erp/internal/rbac"
)

// POST /exams/{examID}/attempt — start or resume the caller's attempt.
// The returned exam carries no correct options.
func StartAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		userID := authmw.SubjectFromContext(r.Context())
		res, err := store.StartAttempt(r.Context(), examID, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type submitReq struct {
	Answers []exam.SubmittedAnswer `json:"answers"`
}

// POST /exams/{examID}/submit — grade and finalize the caller's attempt.
// Responds with the total score only; per-question correctness is exposed
// on the review endpoint after submission.
func SubmitAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		userID := authmw.SubjectFromContext(r.Context())
		var req submitReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := store.SubmitAttempt(r.Context(), examID, userID, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "exam submitted",
			"total_score": a.TotalScore,
		})
	}
}

// GET /exams/{examID}/result — the caller's own attempt summary, or a
// linked child's when a parent passes ?user_id=.
func MyResultHandler(store exam.Store, dir *directory.SQLStore, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		sub := authmw.SubjectFromContext(r.Context())
		userID := sub
		if qid := r.URL.Query().Get("user_id"); qid != "" && qid != sub {
			role := rbac.RoleFromContext(r.Context())
			allowed := checker.Has(role, "attempt:view-all")
			if !allowed && checker.Has(role, "attempt:view-child") {
				ok, err := dir.UserIsChildOfParent(r.Context(), qid, sub)
				if err != nil {
					writeErr(w, err)
					return
				}
				allowed = ok
			}
			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			userID = qid
		}
		a, err := store.AttemptForUser(r.Context(), examID, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts — attempt listing with filters. Teachers/admins see all;
// parents may filter to a linked child's user id; everyone else is scoped
// to their own attempts regardless of the filters sent.
func ListAttemptsHandler(store exam.Store, dir *directory.SQLStore, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := exam.AttemptListOpts{
			ExamID: q.Get("exam_id"),
			UserID: q.Get("user_id"),
			Status: q.Get("status"),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		}
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if !checker.Has(role, "attempt:view-all") {
			allowed := opts.UserID == sub || opts.UserID == ""
			if !allowed && checker.Has(role, "attempt:view-child") {
				ok, err := dir.UserIsChildOfParent(r.Context(), opts.UserID, sub)
				if err != nil {
					writeErr(w, err)
					return
				}
				allowed = ok
			}
			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if opts.UserID == "" {
				opts.UserID = sub
			}
		}
		list, err := store.ListAttempts(r.Context(), opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /attempts/{attemptID}/answers — post-exam review with correct
// options. Owners see their own, parents their children's,
// attempt:view-all any.
func AttemptAnswersHandler(store exam.Store, dir *directory.SQLStore, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		a, err := store.GetAttempt(r.Context(), attemptID)
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		allowed := a.UserID == sub || checker.Has(role, "attempt:view-all")
		if !allowed && checker.Has(role, "attempt:view-child") {
			ok, err := dir.UserIsChildOfParent(r.Context(), a.UserID, sub)
			if err != nil {
				writeErr(w, err)
				return
			}
			allowed = ok
		}
		if !allowed {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if a.Status == exam.StatusInProgress {
			http.Error(w, "attempt not submitted", http.StatusConflict)
			return
		}
		items, err := store.AttemptAnswers(r.Context(), attemptID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type manualMarksReq struct {
	TotalScore float64            `json:"total_score"`
	Subjects   exam.SubjectScores `json:"subject_scores"`
}

// POST /attempts/{attemptID}/marks — manual marks entry; the only path
// that reaches evaluated.
func EnterManualMarksHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req manualMarksReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := store.EnterManualMarks(r.Context(), attemptID, req.TotalScore, req.Subjects)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
