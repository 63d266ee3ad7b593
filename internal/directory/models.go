// Package directory holds the institute's people and record keeping:
// batches, students, parents, teachers, expenses, enquiries, resources
// and daily attendance.
package directory

import "github.com/brightprep/brightprep-erp/internal/finance"

type Batch struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Course   string `json:"course"`
	StartsOn string `json:"starts_on"`
	Active   bool   `json:"active"`
}

// Student joins the portal user with enrollment and fee agreement fields.
// EffectiveFee is always max(0, FeeAgreed - WaiveOff); listings use the
// same definition as the finance summary.
type Student struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	Username     string                `json:"username"`
	FullName     string                `json:"full_name"`
	BatchID      string                `json:"batch_id,omitempty"`
	ParentID     string                `json:"parent_id,omitempty"`
	FeeAgreed    float64               `json:"fee_agreed"`
	WaiveOff     float64               `json:"waive_off"`
	EffectiveFee float64               `json:"effective_fee"`
	Installments []finance.Installment `json:"installment_schedule"`
	Active       bool                  `json:"active"`
}

type Parent struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type TeacherProfile struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Subject  string `json:"subject"`
	Phone    string `json:"phone"`
}

type Expense struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	SpentOn   string  `json:"spent_on"`
	Remarks   string  `json:"remarks"`
	CreatedAt int64   `json:"created_at"`
}

type Enquiry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Course    string `json:"course"`
	Note      string `json:"note"`
	Status    string `json:"status"` // open|followup|closed
	CreatedAt int64  `json:"created_at"`
}

type Resource struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	BlobKey    string `json:"blob_key,omitempty"`
	UploadedBy string `json:"uploaded_by"`
	CreatedAt  int64  `json:"created_at"`
}

type Attendance struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Day       string `json:"day"` // YYYY-MM-DD
	Present   bool   `json:"present"`
	MarkedBy  string `json:"marked_by"`
}

// NewStudentInput creates a user row plus a student row in one unit.
type NewStudentInput struct {
	Username     string                `json:"username" validate:"required,min=3"`
	Password     string                `json:"password" validate:"required,min=6"`
	FullName     string                `json:"full_name" validate:"required"`
	BatchID      string                `json:"batch_id"`
	ParentID     string                `json:"parent_id"`
	FeeAgreed    float64               `json:"fee_agreed" validate:"gte=0"`
	WaiveOff     float64               `json:"waive_off" validate:"gte=0"`
	Installments []finance.Installment `json:"installment_schedule"`
}

type NewParentInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
}

type NewTeacherInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Subject  string `json:"subject"`
	Phone    string `json:"phone"`
}
