package session

import (
	"testing"

	"github.com/Balram-8696/examprephub/internal/exam"
)

func TestPracticeRejectsEmptyTest(t *testing.T) {
	tt := fixtureTest(0, 1, 0, 10)
	if _, err := NewPractice("u1", tt); err != ErrEmptyTest {
		t.Fatalf("got %v, want ErrEmptyTest", err)
	}
}

func TestPracticeSelectLocksAndReveals(t *testing.T) {
	tt := fixtureTest(3, 1, 0, 10)
	p, err := NewPractice("u1", tt)
	if err != nil {
		t.Fatal(err)
	}

	rv, err := p.Select(exam.OptionA)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !rv.Correct || rv.CorrectAnswer != exam.OptionA {
		t.Fatalf("reveal = %+v", rv)
	}

	// locked: the second selection changes nothing
	if _, err := p.Select(exam.OptionB); err != ErrAnswerLocked {
		t.Fatalf("got %v, want ErrAnswerLocked", err)
	}
	if got := p.Answers()[0]; got.Answer != exam.OptionA || got.Status != StatusAnswered {
		t.Fatalf("locked answer mutated: %+v", got)
	}

	p.Next()
	rv, err = p.Select(exam.OptionC)
	if err != nil {
		t.Fatal(err)
	}
	if rv.Correct || rv.CorrectAnswer != exam.OptionA {
		t.Fatalf("wrong-answer reveal = %+v", rv)
	}
	if got := p.Answers()[1].Status; got != StatusIncorrect {
		t.Fatalf("status = %q, want incorrect", got)
	}
}

func TestPracticeSelectRejectsBadOption(t *testing.T) {
	tt := fixtureTest(1, 1, 0, 10)
	p, _ := NewPractice("u1", tt)
	if _, err := p.Select("Z"); err != ErrBadOption {
		t.Fatalf("got %v, want ErrBadOption", err)
	}
}

func TestPracticeNavigationClamps(t *testing.T) {
	tt := fixtureTest(3, 1, 0, 10)
	p, _ := NewPractice("u1", tt)

	if got := p.Prev(); got != 0 {
		t.Fatalf("Prev at 0 moved to %d", got)
	}
	if got := p.JumpTo(2); got != 2 {
		t.Fatalf("JumpTo(2) = %d", got)
	}
	if got := p.Next(); got != 2 {
		t.Fatalf("Next at last moved to %d", got)
	}
	if got := p.JumpTo(7); got != 2 {
		t.Fatalf("out-of-range jump moved to %d", got)
	}
}

func TestPracticeSummaryCountsAndShares(t *testing.T) {
	tt := fixtureTest(4, 1, 0, 10)
	p, _ := NewPractice("u1", tt)

	if _, err := p.Select(exam.OptionA); err != nil { // correct
		t.Fatal(err)
	}
	p.Next()
	if _, err := p.Select(exam.OptionD); err != nil { // incorrect
		t.Fatal(err)
	}
	// questions 2 and 3 left untouched

	s := p.Summary()
	if s.TotalQuestions != 4 || s.Correct != 1 || s.Incorrect != 1 || s.Unattempted != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if !almostEqual(s.CorrectShare, 0.25) ||
		!almostEqual(s.IncorrectShare, 0.25) ||
		!almostEqual(s.UnattemptedShare, 0.5) {
		t.Fatalf("shares = %+v", s)
	}
}

func TestPracticePaletteIsSolutionMode(t *testing.T) {
	tt := fixtureTest(3, 1, 0, 10)
	p, _ := NewPractice("u1", tt)

	if _, err := p.Select(exam.OptionA); err != nil {
		t.Fatal(err)
	}
	p.Next()
	if _, err := p.Select(exam.OptionB); err != nil {
		t.Fatal(err)
	}

	pal := p.Palette()
	want := []Status{StatusAnswered, StatusIncorrect, StatusUnattempted}
	for i, w := range want {
		if pal.Statuses[i] != w {
			t.Fatalf("palette[%d] = %q, want %q", i, pal.Statuses[i], w)
		}
	}
	total := 0
	for _, n := range pal.Legend {
		total += n
	}
	if total != 3 {
		t.Fatalf("legend sums to %d, want 3", total)
	}
}

func TestPracticeTestForClientStripsKeys(t *testing.T) {
	tt := fixtureTest(2, 1, 0, 10)
	p, _ := NewPractice("u1", tt)

	stripped := p.TestForClient()
	for i, q := range stripped.Questions {
		if q.CorrectAnswer != "" || q.Explanation != nil {
			t.Fatalf("question %d leaks grading material: %+v", i, q)
		}
	}
	// the original definition still carries its keys
	if p.test.Questions[0].CorrectAnswer != exam.OptionA {
		t.Fatal("strip mutated the backing test")
	}
}
