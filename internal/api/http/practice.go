package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/Balram-8696/examprephub/internal/auth/middleware"
	"github.com/Balram-8696/examprephub/internal/exam"
	"github.com/Balram-8696/examprephub/internal/session"
)

// POST /practice {test_id} — start a fresh practice run (no timer, answers
// lock on selection, nothing is persisted).
func StartPracticeHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req struct {
			TestID string `json:"test_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TestID == "" {
			http.Error(w, "test_id required", http.StatusBadRequest)
			return
		}
		p, err := mgr.StartPractice(r.Context(), userID, req.TestID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct {
			Test    exam.Test       `json:"test"`
			Palette session.Palette `json:"palette"`
		}{Test: p.TestForClient(), Palette: p.Palette()})
	}
}

func livePractice(mgr *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Practice, bool) {
	p, ok := mgr.Practice(authmw.SubjectFromContext(r.Context()))
	if !ok {
		httpError(w, session.ErrNoSession)
		return nil, false
	}
	return p, true
}

// POST /practice/answer {option} — lock in an answer and reveal correctness.
func PracticeAnswerHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := livePractice(mgr, w, r)
		if !ok {
			return
		}
		var req struct {
			Option exam.OptionKey `json:"option"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		reveal, err := p.Select(req.Option)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct {
			session.Reveal
			Palette session.Palette `json:"palette"`
		}{Reveal: reveal, Palette: p.Palette()})
	}
}

// POST /practice/nav {op, index}
func PracticeNavigateHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := livePractice(mgr, w, r)
		if !ok {
			return
		}
		var req struct {
			Op    string `json:"op"`
			Index int    `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var idx int
		switch req.Op {
		case "next":
			idx = p.Next()
		case "prev":
			idx = p.Prev()
		case "jump":
			idx = p.JumpTo(req.Index)
		default:
			http.Error(w, "op must be next|prev|jump", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]int{"current_question": idx})
	}
}

// GET /practice/summary — counts plus proportional shares for the chart.
func PracticeSummaryHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := livePractice(mgr, w, r)
		if !ok {
			return
		}
		writeJSON(w, p.Summary())
	}
}

// POST /practice/finish — drop the run; practice leaves no artifact.
func FinishPracticeHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := livePractice(mgr, w, r)
		if !ok {
			return
		}
		summary := p.Summary()
		mgr.ReleasePractice(p.UserID())
		writeJSON(w, summary)
	}
}
