package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightprep/brightprep-erp/internal/exam"
	"github.com/brightprep/brightprep-erp/internal/rbac"
)

type createExamReq struct {
	Title       string `json:"title" validate:"required"`
	ScheduledAt int64  `json:"scheduled_at"`
	DurationMin int    `json:"duration_min" validate:"gte=0"`
}

// POST /erp/exams
func CreateExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createExamReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := store.PutExam(r.Context(), exam.Exam{
			Title:       req.Title,
			ScheduledAt: req.ScheduledAt,
			DurationMin: req.DurationMin,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /exams
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		list, err := store.ListExams(r.Context(), exam.ListOpts{
			Q:             strings.TrimSpace(r.URL.Query().Get("q")),
			PublishedOnly: role == "student" || role == "parent",
			Limit:         parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:        parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /exams/{examID} — students get the answer-stripped view, staff with
// exam:view-full get correct options too.
func GetExamHandler(store exam.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		role := rbac.RoleFromContext(r.Context())
		var (
			e   exam.Exam
			err error
		)
		if checker.Has(role, "exam:view-full") {
			e, err = store.GetExamFull(r.Context(), id)
		} else {
			e, err = store.GetExam(r.Context(), id)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// POST /erp/exams/{examID}/import
func ImportQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		var in exam.ImportInput
		if err := decodeValid(r, &in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		count, err := store.ImportQuestions(r.Context(), id, in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"imported": count})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
