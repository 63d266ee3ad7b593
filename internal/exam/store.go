package exam

import (
	"context"
	"errors"
)

var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotPublished = errors.New("exam not published")
	ErrExamNoQuestions  = errors.New("exam has no questions")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrNoActiveAttempt  = errors.New("no active attempt")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type ListOpts struct {
	Q             string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type AttemptListOpts struct {
	ExamID string
	UserID string
	Status string
	Limit  int
	Offset int
}

type BankListOpts struct {
	Subject    string
	Difficulty string
	Q          string
	Limit      int
	Offset     int
}

// ImportInput carries question-bank ids and/or raw question objects to be
// copied into an exam's snapshot set.
type ImportInput struct {
	BankIDs   []string   `json:"bank_ids"`
	Questions []Question `json:"questions"`
}

// StartResult is the payload returned to a student starting (or resuming)
// an attempt. Exam questions carry no correct options.
type StartResult struct {
	Attempt    Attempt `json:"attempt"`
	Exam       Exam    `json:"exam"`
	ServerTime int64   `json:"server_time"`
	Resumed    bool    `json:"resumed"`
}

type Store interface {
	PutExam(ctx context.Context, e Exam) (Exam, error)
	GetExam(ctx context.Context, id string) (Exam, error)     // student-safe: no correct options
	GetExamFull(ctx context.Context, id string) (Exam, error) // teacher/admin view
	ListExams(ctx context.Context, opts ListOpts) ([]ExamSummary, error)

	ImportQuestions(ctx context.Context, examID string, in ImportInput) (int, error)

	StartAttempt(ctx context.Context, examID, userID string) (StartResult, error)
	SubmitAttempt(ctx context.Context, examID, userID string, answers []SubmittedAnswer) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	AttemptForUser(ctx context.Context, examID, userID string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
	AttemptAnswers(ctx context.Context, attemptID string) ([]AnswerReview, error)

	// EnterManualMarks is the separate path that reaches evaluated.
	EnterManualMarks(ctx context.Context, attemptID string, total float64, subjects SubjectScores) (Attempt, error)
}

type BankStore interface {
	PutBankQuestion(ctx context.Context, q BankQuestion) (BankQuestion, error)
	GetBankQuestion(ctx context.Context, id string) (BankQuestion, error)
	ListBankQuestions(ctx context.Context, opts BankListOpts) ([]BankQuestion, error)
	DeleteBankQuestion(ctx context.Context, id string) error
}
