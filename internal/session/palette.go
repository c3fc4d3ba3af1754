package session

import "github.com/Balram-8696/examprephub/internal/exam"

// PaletteMode selects how per-question indicators are derived.
type PaletteMode string

const (
	// PaletteTest shows the live statuses of an attempt in progress.
	PaletteTest PaletteMode = "test"
	// PaletteSolution re-derives statuses from correctness for review screens.
	PaletteSolution PaletteMode = "solution"
)

// Palette is the read-model behind the question grid: one status per
// question plus a tally legend. The legend always sums to the question count.
type Palette struct {
	Statuses []Status       `json:"statuses"`
	Legend   map[Status]int `json:"legend"`
}

// BuildPalette computes the palette for a mode. Test mode passes the live
// statuses through. Solution mode collapses to correct (answered), incorrect,
// unattempted; a review mark without an answer counts as unattempted.
func BuildPalette(t exam.Test, answers []UserAnswer, mode PaletteMode) Palette {
	statuses := make([]Status, len(answers))
	for i, ua := range answers {
		switch mode {
		case PaletteSolution:
			statuses[i] = solutionStatus(t, i, ua)
		default:
			statuses[i] = ua.Status
		}
	}
	legend := map[Status]int{}
	for _, s := range statuses {
		legend[s]++
	}
	return Palette{Statuses: statuses, Legend: legend}
}

func solutionStatus(t exam.Test, i int, ua UserAnswer) Status {
	if !ua.answered() {
		return StatusUnattempted
	}
	if i < len(t.Questions) && ua.Answer == t.Questions[i].CorrectAnswer {
		return StatusAnswered
	}
	return StatusIncorrect
}
