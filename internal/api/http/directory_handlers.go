package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/directory"
)

// POST /erp/batches
func CreateBatchHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var b directory.Batch
		if err := decodeValid(r, &b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.ID = ""
		saved, err := store.PutBatch(r.Context(), b)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// GET /erp/batches
func ListBatchesHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListBatches(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /erp/students
func CreateStudentHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.NewStudentInput
		if err := decodeValid(r, &in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st, err := store.CreateStudent(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

// GET /erp/students?batch_id=
func ListStudentsHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListStudents(r.Context(), r.URL.Query().Get("batch_id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /erp/students/{studentID}
func GetStudentHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.GetStudent(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// PUT /erp/students/{studentID}
func UpdateStudentHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st directory.Student
		if err := decodeValid(r, &st); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		st.ID = chi.URLParam(r, "studentID")
		saved, err := store.UpdateStudent(r.Context(), st)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// POST /erp/parents
func CreateParentHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.NewParentInput
		if err := decodeValid(r, &in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := store.CreateParent(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// GET /erp/parents
func ListParentsHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListParents(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /erp/teachers
func CreateTeacherHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.NewTeacherInput
		if err := decodeValid(r, &in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t, err := store.CreateTeacher(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// GET /erp/teachers
func ListTeachersHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListTeachers(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type expenseReq struct {
	Title    string  `json:"title" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Category string  `json:"category"`
	SpentOn  string  `json:"spent_on"`
	Remarks  string  `json:"remarks"`
}

// POST /erp/expenses
func AddExpenseHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req expenseReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := store.AddExpense(r.Context(), directory.Expense{
			Title: req.Title, Amount: req.Amount, Category: req.Category,
			SpentOn: req.SpentOn, Remarks: req.Remarks,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /erp/expenses
func ListExpensesHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListExpenses(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /erp/enquiries
func CreateEnquiryHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e directory.Enquiry
		if err := decodeValid(r, &e); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e.ID = ""
		saved, err := store.PutEnquiry(r.Context(), e)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// GET /erp/enquiries?status=
func ListEnquiriesHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListEnquiries(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type attendanceReq struct {
	StudentID string `json:"student_id" validate:"required"`
	Day       string `json:"day" validate:"required"`
	Present   bool   `json:"present"`
}

// POST /erp/attendance
func MarkAttendanceHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attendanceReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := store.MarkAttendance(r.Context(), directory.Attendance{
			StudentID: req.StudentID, Day: req.Day, Present: req.Present,
			MarkedBy: authmw.SubjectFromContext(r.Context()),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /erp/students/{studentID}/attendance
func StudentAttendanceHandler(store *directory.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.AttendanceForStudent(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
