package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightprep/brightprep-erp/internal/exam"
)

// POST /erp/question-bank
func CreateBankQuestionHandler(store exam.BankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.BankQuestion
		if err := decodeValid(r, &q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q.ID = "" // server-assigned
		saved, err := store.PutBankQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// PUT /erp/question-bank/{questionID}
func UpdateBankQuestionHandler(store exam.BankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		if _, err := store.GetBankQuestion(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		var q exam.BankQuestion
		if err := decodeValid(r, &q); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		q.ID = id
		saved, err := store.PutBankQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// GET /erp/question-bank
func ListBankQuestionsHandler(store exam.BankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.ListBankQuestions(r.Context(), exam.BankListOpts{
			Subject:    q.Get("subject"),
			Difficulty: q.Get("difficulty"),
			Q:          q.Get("q"),
			Limit:      parseIntDefault(q.Get("limit"), 50),
			Offset:     parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DELETE /erp/question-bank/{questionID}
func DeleteBankQuestionHandler(store exam.BankStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteBankQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
