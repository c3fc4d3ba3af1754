package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Balram-8696/examprephub/internal/exam"
)

// fixtureTest builds a published n-question test; every correct answer is A.
func fixtureTest(n int, marks, negative float64, durationMin int) exam.Test {
	qs := make([]exam.Question, n)
	for i := range qs {
		opts := make([]exam.Option, 0, len(exam.OptionKeys))
		for _, k := range exam.OptionKeys {
			opts = append(opts, exam.Option{
				Key:   k,
				Label: exam.Text{English: fmt.Sprintf("option %s", k), Hindi: fmt.Sprintf("विकल्प %s", k)},
			})
		}
		qs[i] = exam.Question{
			ID:            fmt.Sprintf("q%d", i+1),
			Prompt:        exam.Text{English: fmt.Sprintf("question %d", i+1)},
			Options:       opts,
			CorrectAnswer: exam.OptionA,
		}
	}
	return exam.Test{
		ID:               "test-1",
		Title:            exam.Text{English: "Fixture Test"},
		DurationMinutes:  durationMin,
		MarksPerQuestion: marks,
		NegativeMarking:  negative,
		Status:           exam.StatusPublished,
		Questions:        qs,
	}
}

// fakeSource serves fixed tests by ID.
type fakeSource struct {
	tests map[string]exam.Test
}

func newFakeSource(tests ...exam.Test) *fakeSource {
	m := map[string]exam.Test{}
	for _, t := range tests {
		m[t.ID] = t
	}
	return &fakeSource{tests: m}
}

func (f *fakeSource) FetchTest(_ context.Context, id string) (exam.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return exam.Test{}, exam.ErrTestNotFound
	}
	return t, nil
}

// failingSink rejects the first `failures` submissions, then accepts.
type failingSink struct {
	failures int
	calls    int
	accepted []Result
}

func (s *failingSink) SubmitResult(_ context.Context, r Result) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("sink unavailable")
	}
	s.accepted = append(s.accepted, r)
	return nil
}
