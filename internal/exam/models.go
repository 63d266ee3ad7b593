package exam

// Attempt status lifecycle. Submission is one-way: in_progress -> submitted.
// evaluated is only reached through manual marks entry, never through the
// student submission path.
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusEvaluated  = "evaluated"
)

// Question is an exam-scoped snapshot copied from the question bank (or
// supplied raw) at import time. Options map label -> display text.
// CorrectOption may encode multiple correct labels as a comma-joined list.
type Question struct {
	ID            string            `json:"id"`
	ExamID        string            `json:"exam_id,omitempty"`
	Text          string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option,omitempty"` // blanked when served to students
	Subject       string            `json:"subject"`
	Difficulty    string            `json:"difficulty"`
	Marks         float64           `json:"marks"`
	Negative      float64           `json:"negative"`
	OrderIndex    int               `json:"order_index"`
}

type Exam struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	ScheduledAt int64      `json:"scheduled_at"`
	DurationMin int        `json:"duration_min"`
	TotalMarks  float64    `json:"total_marks"`
	IsPublished bool       `json:"is_published"`
	Questions   []Question `json:"questions,omitempty"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}

type ExamSummary struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ScheduledAt   int64   `json:"scheduled_at"`
	DurationMin   int     `json:"duration_min"`
	TotalMarks    float64 `json:"total_marks"`
	IsPublished   bool    `json:"is_published"`
	QuestionCount int     `json:"question_count"`
}

type SubjectScores struct {
	Physics   float64 `json:"physics"`
	Chemistry float64 `json:"chemistry"`
	Maths     float64 `json:"maths"`
	Biology   float64 `json:"biology"`
}

type Attempt struct {
	ID           string        `json:"id"`
	ExamID       string        `json:"exam_id"`
	UserID       string        `json:"user_id"`
	Status       string        `json:"status"`
	StartedAt    int64         `json:"started_at"`
	SubmittedAt  *int64        `json:"submitted_at,omitempty"`
	TotalScore   float64       `json:"total_score"`
	Subjects     SubjectScores `json:"subject_scores"`
	CorrectCount int           `json:"correct_count"`
	WrongCount   int           `json:"wrong_count"`
	SkippedCount int           `json:"skipped_count"`
}

// Answer rows are written once, at submission, one per exam question
// (including skipped ones).
type Answer struct {
	AttemptID      string  `json:"attempt_id"`
	QuestionID     string  `json:"question_id"`
	SelectedOption string  `json:"selected_option,omitempty"`
	IsCorrect      bool    `json:"is_correct"`
	MarksAwarded   float64 `json:"marks_awarded"`
	TimeTakenSec   int     `json:"time_taken"`
}

// SubmittedAnswer is one entry of the student's submit payload.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	TimeTakenSec   int    `json:"time_taken"`
}

// AnswerReview pairs a persisted answer with its question, correct option
// included, for post-exam review surfaces.
type AnswerReview struct {
	Answer
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
	Subject       string            `json:"subject"`
}

// BankQuestion is an institution-wide reusable question, distinct from the
// per-exam snapshot copies.
type BankQuestion struct {
	ID            string            `json:"id"`
	Text          string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
	Subject       string            `json:"subject"`
	Difficulty    string            `json:"difficulty"`
	Marks         float64           `json:"marks"`
	Negative      float64           `json:"negative"`
	CreatedAt     int64             `json:"created_at,omitempty"`
}
