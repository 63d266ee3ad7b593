package exam_test

import (
	"testing"

	"github.com/brightprep/brightprep-erp/internal/exam"
)

func threeQuestions() []exam.Question {
	return []exam.Question{
		{ID: "q1", CorrectOption: "b", Subject: "Physics", Marks: 4, Negative: -1},
		{ID: "q2", CorrectOption: "a,c", Subject: "Organic Chemistry", Marks: 4, Negative: -1},
		{ID: "q3", CorrectOption: "d", Subject: "Mathematics", Marks: 4, Negative: -1},
	}
}

func TestGradeSubmission_BasicScoring(t *testing.T) {
	qs := []exam.Question{{ID: "q1", CorrectOption: "b", Subject: "Physics", Marks: 4, Negative: -1}}

	cases := []struct {
		name      string
		submitted []exam.SubmittedAnswer
		score     float64
		correct   int
		wrong     int
		skipped   int
	}{
		{"correct", []exam.SubmittedAnswer{{QuestionID: "q1", SelectedOption: "b"}}, 4, 1, 0, 0},
		{"correct normalized", []exam.SubmittedAnswer{{QuestionID: "q1", SelectedOption: " B "}}, 4, 1, 0, 0},
		{"wrong", []exam.SubmittedAnswer{{QuestionID: "q1", SelectedOption: "c"}}, -1, 0, 1, 0},
		{"absent", nil, 0, 0, 0, 1},
		{"empty selection", []exam.SubmittedAnswer{{QuestionID: "q1", SelectedOption: ""}}, 0, 0, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := exam.GradeSubmission(qs, tc.submitted)
			if g.TotalScore != tc.score {
				t.Fatalf("total = %v, want %v", g.TotalScore, tc.score)
			}
			if g.CorrectCount != tc.correct || g.WrongCount != tc.wrong || g.SkippedCount != tc.skipped {
				t.Fatalf("counts = %d/%d/%d, want %d/%d/%d",
					g.CorrectCount, g.WrongCount, g.SkippedCount, tc.correct, tc.wrong, tc.skipped)
			}
			if len(g.Answers) != len(qs) {
				t.Fatalf("answers = %d, want one per question (%d)", len(g.Answers), len(qs))
			}
		})
	}
}

func TestGradeSubmission_AnswerRowPerQuestion(t *testing.T) {
	// Only one of three questions answered: still three answer rows.
	g := exam.GradeSubmission(threeQuestions(), []exam.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: "b", TimeTakenSec: 30},
	})
	if len(g.Answers) != 3 {
		t.Fatalf("answers = %d, want 3", len(g.Answers))
	}
	if g.SkippedCount != 2 {
		t.Fatalf("skipped = %d, want 2", g.SkippedCount)
	}
	if g.TotalScore != 4 {
		t.Fatalf("total = %v, want 4", g.TotalScore)
	}
}

func TestGradeSubmission_SubjectBuckets(t *testing.T) {
	g := exam.GradeSubmission(threeQuestions(), []exam.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: "b"}, // physics +4
		{QuestionID: "q2", SelectedOption: "b"}, // chemistry -1
		{QuestionID: "q3", SelectedOption: "d"}, // maths +4
	})
	if g.Subjects.Physics != 4 {
		t.Errorf("physics = %v, want 4", g.Subjects.Physics)
	}
	if g.Subjects.Chemistry != -1 {
		t.Errorf("chemistry = %v, want -1", g.Subjects.Chemistry)
	}
	if g.Subjects.Maths != 4 {
		t.Errorf("maths = %v, want 4", g.Subjects.Maths)
	}
	if g.TotalScore != 7 {
		t.Errorf("total = %v, want 7", g.TotalScore)
	}
}

func TestGradeSubmission_UnmatchedSubjectCountsOnlyTowardTotal(t *testing.T) {
	qs := []exam.Question{{ID: "q1", CorrectOption: "a", Subject: "General Knowledge", Marks: 4, Negative: -1}}
	g := exam.GradeSubmission(qs, []exam.SubmittedAnswer{{QuestionID: "q1", SelectedOption: "a"}})
	if g.TotalScore != 4 {
		t.Fatalf("total = %v, want 4", g.TotalScore)
	}
	if g.Subjects != (exam.SubjectScores{}) {
		t.Fatalf("expected empty subject buckets, got %+v", g.Subjects)
	}
}

func TestGradeSubmission_DuplicateSubmissionsFirstWins(t *testing.T) {
	qs := []exam.Question{{ID: "q1", CorrectOption: "b", Marks: 4, Negative: -1}}
	g := exam.GradeSubmission(qs, []exam.SubmittedAnswer{
		{QuestionID: "q1", SelectedOption: "b"},
		{QuestionID: "q1", SelectedOption: "c"},
	})
	if g.TotalScore != 4 || g.CorrectCount != 1 {
		t.Fatalf("expected first submission to win, got total=%v correct=%d", g.TotalScore, g.CorrectCount)
	}
}

func TestOptionMatches_MultiSelect(t *testing.T) {
	cases := []struct {
		correct, submitted string
		want               bool
	}{
		{"a,c", "c,a", true},      // order-independent
		{"a,c", "a, c", true},     // whitespace-insensitive
		{"a,c", "c,a,c", true},    // duplicate-insensitive
		{"a,c", "a", false},       // partial selection is incorrect
		{"a,c", "a,c,d", false},   // superset is incorrect
		{"b", "b", true},          // single exact
		{"b", "B ", true},         // normalized
		{"b", "b,c", false},       // multi against single
		{"a,c", "", false},        // empty never matches
		{"", "a", false},          // no key never matches
	}
	for _, tc := range cases {
		if got := exam.OptionMatches(tc.correct, tc.submitted); got != tc.want {
			t.Errorf("OptionMatches(%q, %q) = %v, want %v", tc.correct, tc.submitted, got, tc.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line1\nline2", "line1\nline2"},
		{"col1\tcol2", "col1\tcol2"},
		{"bell\x07 char", "bell char"},
		{"\x1b[31mred\x1b[0m", "[31mred[0m"},
	}
	for _, tc := range cases {
		if got := exam.SanitizeText(tc.in); got != tc.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
