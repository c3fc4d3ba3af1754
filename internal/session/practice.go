package session

import (
	"sync"

	"github.com/Balram-8696/examprephub/internal/exam"
)

// Practice is the untimed variant of an attempt: the first selection on a
// question locks it and reveals correctness immediately. There is no mark
// concept, no countdown, and nothing durable — abandoning a practice run
// loses it, which is the intended behavior.
type Practice struct {
	mu sync.Mutex

	userID  string
	test    exam.Test
	answers []UserAnswer
	current int
}

// Reveal is the immediate feedback for a locked-in selection.
type Reveal struct {
	Correct       bool           `json:"correct"`
	CorrectAnswer exam.OptionKey `json:"correct_answer"`
	Explanation   *exam.Text     `json:"explanation,omitempty"`
}

func NewPractice(userID string, t exam.Test) (*Practice, error) {
	if len(t.Questions) == 0 {
		return nil, ErrEmptyTest
	}
	answers := make([]UserAnswer, len(t.Questions))
	for i := range answers {
		answers[i].Status = StatusUnattempted
	}
	return &Practice{userID: userID, test: t, answers: answers}, nil
}

func (p *Practice) UserID() string { return p.userID }
func (p *Practice) TestID() string { return p.test.ID }

// TestForClient returns the definition with grading material stripped.
// Correctness reaches the client through Reveal, one question at a time.
func (p *Practice) TestForClient() exam.Test {
	t := p.test
	qs := make([]exam.Question, len(t.Questions))
	copy(qs, t.Questions)
	t.Questions = qs
	t.StripKeys()
	return t
}

// Select locks in an answer for the current question. A second selection on
// an already-answered question is a no-op and returns ErrAnswerLocked.
func (p *Practice) Select(key exam.OptionKey) (Reveal, error) {
	if !key.Valid() {
		return Reveal{}, ErrBadOption
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.current
	if p.answers[i].answered() {
		return Reveal{}, ErrAnswerLocked
	}
	q := p.test.Questions[i]
	status := StatusIncorrect
	if key == q.CorrectAnswer {
		status = StatusAnswered
	}
	p.answers[i] = UserAnswer{Answer: key, Status: status}
	return Reveal{
		Correct:       status == StatusAnswered,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}, nil
}

func (p *Practice) Next() int { return p.jump(p.currentIndex() + 1) }
func (p *Practice) Prev() int { return p.jump(p.currentIndex() - 1) }

func (p *Practice) JumpTo(index int) int { return p.jump(index) }

func (p *Practice) jump(target int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = clampIndex(target, p.current, len(p.answers))
	return p.current
}

func (p *Practice) currentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Answers returns a snapshot of the per-question records.
func (p *Practice) Answers() []UserAnswer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]UserAnswer(nil), p.answers...)
}

// Palette for practice is always correctness-derived.
func (p *Practice) Palette() Palette {
	p.mu.Lock()
	defer p.mu.Unlock()
	return BuildPalette(p.test, p.answers, PaletteSolution)
}

// PracticeSummary closes out a practice run: plain counts plus proportional
// shares for charting.
type PracticeSummary struct {
	TotalQuestions   int     `json:"total_questions"`
	Correct          int     `json:"correct"`
	Incorrect        int     `json:"incorrect"`
	Unattempted      int     `json:"unattempted"`
	CorrectShare     float64 `json:"correct_share"`
	IncorrectShare   float64 `json:"incorrect_share"`
	UnattemptedShare float64 `json:"unattempted_share"`
}

func (p *Practice) Summary() PracticeSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PracticeSummary{TotalQuestions: len(p.answers)}
	for _, ua := range p.answers {
		switch ua.Status {
		case StatusAnswered:
			s.Correct++
		case StatusIncorrect:
			s.Incorrect++
		default:
			s.Unattempted++
		}
	}
	if s.TotalQuestions > 0 {
		n := float64(s.TotalQuestions)
		s.CorrectShare = float64(s.Correct) / n
		s.IncorrectShare = float64(s.Incorrect) / n
		s.UnattemptedShare = float64(s.Unattempted) / n
	}
	return s
}
