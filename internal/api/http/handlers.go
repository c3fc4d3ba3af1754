package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Balram-8696/examprephub/internal/exam"
	"github.com/Balram-8696/examprephub/internal/session"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// httpError maps domain sentinels to status codes; everything else is a 400
// so storage errors don't leak as 500s for caller mistakes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrTestNotFound),
		errors.Is(err, session.ErrResultNotFound),
		errors.Is(err, session.ErrNoSession):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrAlreadySub),
		errors.Is(err, session.ErrAnswerLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, session.ErrTestNotAvailable):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
