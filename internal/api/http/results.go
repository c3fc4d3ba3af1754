package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/Balram-8696/examprephub/internal/auth/middleware"
	"github.com/Balram-8696/examprephub/internal/rbac"
	"github.com/Balram-8696/examprephub/internal/session"
)

// GET /results?test_id=&user_id=&limit=&offset=
// Students only ever see their own results; admins may filter freely.
func ListResultsHandler(store session.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if role != "admin" {
			userID = sub
		}
		list, err := store.ListResults(r.Context(), session.ResultListOpts{
			TestID: strings.TrimSpace(r.URL.Query().Get("test_id")),
			UserID: userID,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, list)
	}
}

// GET /results/{resultID}
func GetResultHandler(store session.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			httpError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != "admin" && res.UserID != authmw.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, res)
	}
}
