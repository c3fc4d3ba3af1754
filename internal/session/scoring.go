package session

import (
	"time"

	"github.com/Balram-8696/examprephub/internal/exam"
)

// Result is the terminal artifact of an attempt, computed once at submission
// time and handed to the ResultSink. The session state is discarded after.
type Result struct {
	ID               string       `json:"id"`
	UserID           string       `json:"user_id"`
	TestID           string       `json:"test_id"`
	Score            float64      `json:"score"`
	TotalPossible    float64      `json:"total_possible"`
	CorrectCount     int          `json:"correct_count"`
	IncorrectCount   int          `json:"incorrect_count"`
	UnattemptedCount int          `json:"unattempted_count"`
	Percentage       float64      `json:"percentage"`
	TimeTakenSeconds int          `json:"time_taken_seconds"`
	Answers          []UserAnswer `json:"answers"`
	SubmittedAt      int64        `json:"submitted_at"`
}

// ComputeResult applies the scoring rule: absent answers contribute 0,
// correct answers +MarksPerQuestion, incorrect answers -NegativeMarking.
// Percentage is score over total possible, deliberately not clamped: a
// heavily negative-scoring attempt yields a negative percentage.
func ComputeResult(t exam.Test, st State, userID string) Result {
	r := Result{
		UserID:           userID,
		TestID:           t.ID,
		TotalPossible:    t.TotalMarks(),
		TimeTakenSeconds: t.DurationSeconds() - st.SecondsRemaining,
		Answers:          append([]UserAnswer(nil), st.Answers...),
		SubmittedAt:      time.Now().Unix(),
	}
	for i, q := range t.Questions {
		if i >= len(st.Answers) {
			break
		}
		ua := st.Answers[i]
		switch {
		case !ua.answered():
			r.UnattemptedCount++
		case ua.Answer == q.CorrectAnswer:
			r.CorrectCount++
			r.Score += t.MarksPerQuestion
		default:
			r.IncorrectCount++
			r.Score -= t.NegativeMarking
		}
	}
	if r.TotalPossible != 0 {
		r.Percentage = r.Score / r.TotalPossible * 100
	}
	return r
}
