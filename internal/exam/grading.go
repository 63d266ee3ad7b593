package exam

import (
	"strings"
	"unicode"
)

// Defaults applied to imported questions with missing fields.
const (
	DefaultMarks      = 4.0
	DefaultNegative   = -1.0
	DefaultSubject    = "General"
	DefaultDifficulty = "MEDIUM"
)

// NormalizeOption lowercases and trims a submitted or stored option string.
func NormalizeOption(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// OptionMatches reports whether a submitted option matches the stored
// correct option. If the stored value contains a comma both sides are
// compared as sets of trimmed tokens: order-independent, duplicate-
// insensitive, and the sets must be equal. Otherwise the comparison is
// exact string equality after normalization.
func OptionMatches(correct, submitted string) bool {
	c := NormalizeOption(correct)
	s := NormalizeOption(submitted)
	if c == "" || s == "" {
		return false
	}
	if strings.Contains(c, ",") {
		return setEqual(tokenSet(c), tokenSet(s))
	}
	return c == s
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// bucketFor classifies a free-form subject string into one of the four
// score buckets by case-insensitive substring match. Unmatched subjects
// return "" and contribute only to the total.
func bucketFor(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "physics"):
		return "physics"
	case strings.Contains(s, "chemistry"):
		return "chemistry"
	case strings.Contains(s, "math"):
		return "maths"
	case strings.Contains(s, "biology"):
		return "biology"
	}
	return ""
}

// SanitizeText trims a free-text field and drops control and NUL
// characters, keeping newlines and tabs.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == 0 || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Graded is the outcome of grading one submission against the full
// question set of an exam.
type Graded struct {
	Answers      []Answer
	TotalScore   float64
	Subjects     SubjectScores
	CorrectCount int
	WrongCount   int
	SkippedCount int
}

// GradeSubmission grades every question of the exam, not just answered
// ones: absent or empty selections count as skipped and still produce an
// Answer row. Correct answers award Marks, wrong non-empty answers award
// Negative, skipped award 0.
func GradeSubmission(questions []Question, submitted []SubmittedAnswer) Graded {
	byQuestion := make(map[string]SubmittedAnswer, len(submitted))
	for _, sa := range submitted {
		if _, ok := byQuestion[sa.QuestionID]; !ok {
			byQuestion[sa.QuestionID] = sa
		}
	}

	g := Graded{Answers: make([]Answer, 0, len(questions))}
	for _, q := range questions {
		sa, answered := byQuestion[q.ID]
		sel := NormalizeOption(sa.SelectedOption)
		ans := Answer{QuestionID: q.ID, SelectedOption: sel, TimeTakenSec: sa.TimeTakenSec}

		var awarded float64
		switch {
		case !answered || sel == "":
			g.SkippedCount++
		case OptionMatches(q.CorrectOption, sel):
			awarded = q.Marks
			ans.IsCorrect = true
			g.CorrectCount++
		default:
			awarded = q.Negative
			g.WrongCount++
		}
		ans.MarksAwarded = awarded
		g.TotalScore += awarded

		switch bucketFor(q.Subject) {
		case "physics":
			g.Subjects.Physics += awarded
		case "chemistry":
			g.Subjects.Chemistry += awarded
		case "maths":
			g.Subjects.Maths += awarded
		case "biology":
			g.Subjects.Biology += awarded
		}
		g.Answers = append(g.Answers, ans)
	}
	return g
}
