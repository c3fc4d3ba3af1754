package session

import (
	"math"
	"testing"

	"github.com/Balram-8696/examprephub/internal/exam"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// 5 questions, 2 marks each, 0.5 negative marking;
// answers = correct, incorrect, absent, correct, incorrect
// score = 2 - 0.5 + 0 + 2 - 0.5 = 3; percentage = 3/10*100 = 30.
func TestComputeResultWorkedExample(t *testing.T) {
	tt := fixtureTest(5, 2, 0.5, 60)
	st := NewState(tt)
	st.Answers[0] = UserAnswer{Answer: exam.OptionA, Status: StatusAnswered}
	st.Answers[1] = UserAnswer{Answer: exam.OptionB, Status: StatusAnswered}
	st.Answers[3] = UserAnswer{Answer: exam.OptionA, Status: StatusAnswered}
	st.Answers[4] = UserAnswer{Answer: exam.OptionC, Status: StatusAnsweredMarked}
	st.SecondsRemaining = 60*60 - 125

	r := ComputeResult(tt, st, "u1")
	if !almostEqual(r.Score, 3) {
		t.Fatalf("score = %v, want 3", r.Score)
	}
	if !almostEqual(r.TotalPossible, 10) {
		t.Fatalf("total = %v, want 10", r.TotalPossible)
	}
	if !almostEqual(r.Percentage, 30) {
		t.Fatalf("percentage = %v, want 30", r.Percentage)
	}
	if r.CorrectCount != 2 || r.IncorrectCount != 2 || r.UnattemptedCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/1", r.CorrectCount, r.IncorrectCount, r.UnattemptedCount)
	}
	if r.TimeTakenSeconds != 125 {
		t.Fatalf("time taken = %d, want 125", r.TimeTakenSeconds)
	}
	if r.UserID != "u1" || r.TestID != tt.ID {
		t.Fatalf("attribution wrong: %q %q", r.UserID, r.TestID)
	}
}

// Percentage is the literal arithmetic, not clamped at zero.
func TestComputeResultNegativePercentage(t *testing.T) {
	tt := fixtureTest(2, 1, 2, 10)
	st := NewState(tt)
	st.Answers[0] = UserAnswer{Answer: exam.OptionB, Status: StatusAnswered}
	st.Answers[1] = UserAnswer{Answer: exam.OptionC, Status: StatusAnswered}

	r := ComputeResult(tt, st, "u1")
	if !almostEqual(r.Score, -4) {
		t.Fatalf("score = %v, want -4", r.Score)
	}
	if !almostEqual(r.Percentage, -200) {
		t.Fatalf("percentage = %v, want -200", r.Percentage)
	}
}

func TestComputeResultAllAbsent(t *testing.T) {
	tt := fixtureTest(3, 4, 1, 10)
	r := ComputeResult(tt, NewState(tt), "u1")
	if r.Score != 0 || r.Percentage != 0 || r.UnattemptedCount != 3 {
		t.Fatalf("unexpected result: %+v", r)
	}
}

// Fractional marks configurations survive the arithmetic untouched.
func TestComputeResultFractionalMarks(t *testing.T) {
	tt := fixtureTest(3, 1.5, 0.25, 10)
	st := NewState(tt)
	st.Answers[0] = UserAnswer{Answer: exam.OptionA, Status: StatusAnswered}
	st.Answers[1] = UserAnswer{Answer: exam.OptionD, Status: StatusAnswered}

	r := ComputeResult(tt, st, "u1")
	if !almostEqual(r.Score, 1.25) {
		t.Fatalf("score = %v, want 1.25", r.Score)
	}
}
