package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/Balram-8696/examprephub/internal/auth/middleware"
	"github.com/Balram-8696/examprephub/internal/exam"
	"github.com/Balram-8696/examprephub/internal/session"
)

// sessionView is what every session endpoint returns: the state snapshot
// plus the palette, so the client never recomputes statuses itself.
type sessionView struct {
	State   session.State   `json:"state"`
	Palette session.Palette `json:"palette"`
	Summary session.Summary `json:"summary"`
}

func viewOf(e *session.Engine) sessionView {
	return sessionView{
		State:   e.State(),
		Palette: e.Palette(session.PaletteTest),
		Summary: e.Summary(),
	}
}

// POST /session {test_id} — start a timed attempt, or resume the cached one.
func StartSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req struct {
			TestID string `json:"test_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TestID == "" {
			http.Error(w, "test_id required", http.StatusBadRequest)
			return
		}
		e, resumed, err := mgr.StartOrResume(r.Context(), userID, req.TestID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, struct {
			Resumed bool      `json:"resumed"`
			Test    exam.Test `json:"test"`
			sessionView
		}{Resumed: resumed, Test: e.TestForClient(), sessionView: viewOf(e)})
	}
}

func liveEngine(mgr *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Engine, bool) {
	userID := authmw.SubjectFromContext(r.Context())
	e, ok := mgr.Engine(userID)
	if !ok || e.Submitted() {
		httpError(w, session.ErrNoSession)
		return nil, false
	}
	return e, true
}

// GET /session — current attempt snapshot.
func GetSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		writeJSON(w, viewOf(e))
	}
}

// POST /session/answer {option} — select (or toggle off) an option on the
// current question.
func AnswerHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
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
		if err := e.SelectOption(r.Context(), req.Option); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, viewOf(e))
	}
}

// POST /session/mark — toggle mark-for-review on the current question.
func ToggleMarkHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		if err := e.ToggleMark(r.Context()); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, viewOf(e))
	}
}

// POST /session/nav {op: "next"|"prev"|"jump", index} — arrow keys map to
// next/prev on the client; palette clicks map to jump.
func NavigateHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
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
		switch req.Op {
		case "next":
			e.Next(r.Context())
		case "prev":
			e.Prev(r.Context())
		case "jump":
			e.JumpTo(r.Context(), req.Index)
		default:
			http.Error(w, "op must be next|prev|jump", http.StatusBadRequest)
			return
		}
		writeJSON(w, viewOf(e))
	}
}

// POST /session/language {language}
func SetLanguageHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		var req struct {
			Language session.Language `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := e.SetLanguage(r.Context(), req.Language); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, viewOf(e))
	}
}

// GET /session/summary — feeds the submit confirmation dialog.
func SessionSummaryHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		writeJSON(w, e.Summary())
	}
}

// GET /session/palette?mode=test|solution
func SessionPaletteHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		mode := session.PaletteMode(r.URL.Query().Get("mode"))
		if mode != session.PaletteSolution {
			mode = session.PaletteTest
		}
		writeJSON(w, e.Palette(mode))
	}
}

// POST /session/submit — score, persist the result, clear the cache. On sink
// failure the session stays live and the submit can simply be retried.
func SubmitSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		res, err := e.Submit(r.Context())
		if err != nil {
			http.Error(w, "submit failed, try again: "+err.Error(), http.StatusBadGateway)
			return
		}
		mgr.Release(e.UserID())
		writeJSON(w, res)
	}
}

// POST /session/exit — abandon for now; the cache stays so the attempt is
// resumable later.
func ExitSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := liveEngine(mgr, w, r)
		if !ok {
			return
		}
		e.Exit(r.Context())
		mgr.Release(e.UserID())
		w.WriteHeader(http.StatusNoContent)
	}
}
