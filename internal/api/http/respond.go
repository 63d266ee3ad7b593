package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/exam"
	"github.com/brightprep/brightprep-erp/internal/finance"
	"github.com/brightprep/brightprep-erp/internal/notify"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain sentinel errors onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, exam.ErrExamNotFound),
		errors.Is(err, exam.ErrAttemptNotFound),
		errors.Is(err, exam.ErrQuestionNotFound),
		errors.Is(err, finance.ErrStudentNotFound),
		errors.Is(err, notify.ErrNoticeNotFound),
		errors.Is(err, directory.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, exam.ErrExamNotPublished),
		errors.Is(err, exam.ErrExamNoQuestions),
		errors.Is(err, exam.ErrAlreadySubmitted),
		errors.Is(err, exam.ErrNoActiveAttempt),
		errors.Is(err, directory.ErrDuplicateUsername):
		code = http.StatusConflict
	case errors.Is(err, notify.ErrBadTarget):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), code)
}

// decodeValid decodes a JSON body into dst and runs struct validation.
func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("bad json: " + err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
