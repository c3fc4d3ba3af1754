package session

import (
	"github.com/Balram-8696/examprephub/internal/exam"
)

// Language selects which translation of a question the client renders.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageHindi   Language = "hindi"
)

// Status is the four-valued per-question state of a live attempt.
// StatusIncorrect is only ever produced retrospectively (solution/practice
// rendering), never during a live timed attempt.
type Status string

const (
	StatusUnattempted    Status = "unattempted"
	StatusAnswered       Status = "answered"
	StatusMarked         Status = "marked"
	StatusAnsweredMarked Status = "answered_marked"
	StatusIncorrect      Status = "incorrect"
)

// UserAnswer is the per-question record, ordinal-aligned with the test's
// question list. Answer == "" means no option is selected.
type UserAnswer struct {
	Answer exam.OptionKey `json:"answer,omitempty"`
	Status Status         `json:"status"`
}

func (ua UserAnswer) answered() bool {
	return ua.Answer != ""
}

func (ua UserAnswer) markedForReview() bool {
	return ua.Status == StatusMarked || ua.Status == StatusAnsweredMarked
}

// statusOf maps (answer presence, mark flag) to the live status. This is the
// single source of truth for live statuses; every transition goes through it.
func statusOf(answered, marked bool) Status {
	switch {
	case answered && marked:
		return StatusAnsweredMarked
	case answered:
		return StatusAnswered
	case marked:
		return StatusMarked
	default:
		return StatusUnattempted
	}
}

// applySelect handles an option selection. Selecting the currently-selected
// option clears the answer (toggle-off); selecting a different option
// overwrites it. The mark flag is untouched either way.
func applySelect(ua UserAnswer, key exam.OptionKey) UserAnswer {
	marked := ua.markedForReview()
	if ua.Answer == key {
		return UserAnswer{Answer: "", Status: statusOf(false, marked)}
	}
	return UserAnswer{Answer: key, Status: statusOf(true, marked)}
}

// applyToggleMark flips the mark-for-review flag, leaving the answer alone.
func applyToggleMark(ua UserAnswer) UserAnswer {
	return UserAnswer{Answer: ua.Answer, Status: statusOf(ua.answered(), !ua.markedForReview())}
}

// State is the mutable aggregate for one timed attempt. It is what the
// durable session cache round-trips, so every field is JSON-tagged.
type State struct {
	TestID           string       `json:"test_id"`
	CurrentQuestion  int          `json:"current_question"`
	Answers          []UserAnswer `json:"answers"`
	SecondsRemaining int          `json:"seconds_remaining"`
	Language         Language     `json:"language"`
}

// NewState builds the fresh aggregate for a test: everything unattempted,
// the full duration on the clock, English by default.
func NewState(t exam.Test) State {
	answers := make([]UserAnswer, len(t.Questions))
	for i := range answers {
		answers[i].Status = StatusUnattempted
	}
	return State{
		TestID:           t.ID,
		Answers:          answers,
		SecondsRemaining: t.DurationSeconds(),
		Language:         LanguageEnglish,
	}
}

// Clone deep-copies the state so snapshots handed out of the engine cannot
// alias the live answers slice.
func (s State) Clone() State {
	out := s
	out.Answers = make([]UserAnswer, len(s.Answers))
	copy(out.Answers, s.Answers)
	return out
}

// clampIndex keeps navigation inside [0, n-1]; out-of-range requests resolve
// to the current index (a no-op for the caller).
func clampIndex(requested, current, n int) int {
	if requested < 0 || requested >= n {
		return current
	}
	return requested
}

// AttemptedCount tallies questions with an answer present.
func (s State) AttemptedCount() int {
	n := 0
	for _, ua := range s.Answers {
		if ua.answered() {
			n++
		}
	}
	return n
}
