package session

import (
	"testing"

	"github.com/Balram-8696/examprephub/internal/exam"
)

func legendTotal(p Palette) int {
	total := 0
	for _, n := range p.Legend {
		total += n
	}
	return total
}

func TestPaletteTestModePassesStatusesThrough(t *testing.T) {
	tt := fixtureTest(4, 1, 0, 10)
	answers := []UserAnswer{
		{Answer: exam.OptionA, Status: StatusAnswered},
		{Status: StatusMarked},
		{Answer: exam.OptionB, Status: StatusAnsweredMarked},
		{Status: StatusUnattempted},
	}

	p := BuildPalette(tt, answers, PaletteTest)
	for i, ua := range answers {
		if p.Statuses[i] != ua.Status {
			t.Fatalf("statuses[%d] = %q, want %q", i, p.Statuses[i], ua.Status)
		}
	}
	if legendTotal(p) != 4 {
		t.Fatalf("legend sums to %d, want 4", legendTotal(p))
	}
	if p.Legend[StatusMarked] != 1 || p.Legend[StatusAnswered] != 1 {
		t.Fatalf("legend = %v", p.Legend)
	}
}

func TestPaletteSolutionModeDerivesFromCorrectness(t *testing.T) {
	tt := fixtureTest(4, 1, 0, 10) // correct key is always A
	answers := []UserAnswer{
		{Answer: exam.OptionA, Status: StatusAnswered},       // correct
		{Answer: exam.OptionC, Status: StatusAnsweredMarked}, // wrong, mark ignored
		{Status: StatusMarked},                               // mark without answer
		{Status: StatusUnattempted},
	}

	p := BuildPalette(tt, answers, PaletteSolution)
	want := []Status{StatusAnswered, StatusIncorrect, StatusUnattempted, StatusUnattempted}
	for i, w := range want {
		if p.Statuses[i] != w {
			t.Fatalf("statuses[%d] = %q, want %q", i, p.Statuses[i], w)
		}
	}
	if p.Legend[StatusUnattempted] != 2 || p.Legend[StatusIncorrect] != 1 {
		t.Fatalf("legend = %v", p.Legend)
	}
	if legendTotal(p) != 4 {
		t.Fatalf("legend sums to %d, want 4", legendTotal(p))
	}
}

func TestPaletteEmptyAnswers(t *testing.T) {
	tt := fixtureTest(0, 1, 0, 10)
	p := BuildPalette(tt, nil, PaletteTest)
	if len(p.Statuses) != 0 || legendTotal(p) != 0 {
		t.Fatalf("palette = %+v", p)
	}
}
