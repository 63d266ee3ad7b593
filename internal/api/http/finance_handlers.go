package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/finance"
	"github.com/brightprep/brightprep-erp/internal/rbac"
)

type collectFeeReq struct {
	StudentID     string  `json:"student_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMode   string  `json:"payment_mode"`
	TransactionID string  `json:"transaction_id"`
	Remarks       string  `json:"remarks"`
}

// POST /finance/collect
func CollectFeeHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req collectFeeReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// collected_by is printed on receipts; the username reads better
		// there than the subject id.
		collectedBy := authmw.UsernameFromContext(r.Context())
		if collectedBy == "" {
			collectedBy = authmw.SubjectFromContext(r.Context())
		}
		rec, err := store.Collect(r.Context(), finance.FeeRecord{
			StudentID:     req.StudentID,
			Amount:        req.Amount,
			PaymentMode:   req.PaymentMode,
			TransactionID: req.TransactionID,
			Remarks:       req.Remarks,
			CollectedBy:   collectedBy,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// GET /finance/my-summary — the caller's own (student) or children's
// (parent) fee summaries.
func MyFeeSummaryHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())

		if role == "parent" {
			ids, err := store.StudentIDsForParent(r.Context(), userID)
			if err != nil {
				writeErr(w, err)
				return
			}
			out := []finance.Summary{}
			for _, id := range ids {
				sum, err := store.SummaryForStudent(r.Context(), id)
				if err != nil {
					writeErr(w, err)
					return
				}
				out = append(out, sum)
			}
			writeJSON(w, http.StatusOK, out)
			return
		}

		studentID, err := store.StudentIDForUser(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		sum, err := store.SummaryForStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// GET /finance/students/{studentID}/summary — staff view, or a parent
// reading their own child.
func StudentFeeSummaryHandler(store *finance.SQLStore, dir *directory.SQLStore, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		if !checker.Has(role, "finance:view-all") {
			ok, err := dir.StudentBelongsToParent(r.Context(), studentID, authmw.SubjectFromContext(r.Context()))
			if err != nil {
				writeErr(w, err)
				return
			}
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
		sum, err := store.SummaryForStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

// GET /finance/students/{studentID}/records — the raw ledger.
func StudentFeeRecordsHandler(store *finance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := store.RecordsForStudent(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}
