package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Balram-8696/examprephub/internal/exam"
	"github.com/Balram-8696/examprephub/internal/rbac"
	syncx "github.com/Balram-8696/examprephub/internal/sync"
)

// POST /tests — create or replace a test definition (admin).
func UploadTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t exam.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if len(t.Questions) == 0 {
			http.Error(w, "questions required", http.StatusBadRequest)
			return
		}
		if t.DurationMinutes <= 0 {
			http.Error(w, "duration_minutes must be positive", http.StatusBadRequest)
			return
		}
		if t.MarksPerQuestion <= 0 {
			http.Error(w, "marks_per_question must be positive", http.StatusBadRequest)
			return
		}
		for i := range t.Questions {
			q := &t.Questions[i]
			if q.ID == "" {
				q.ID = uuid.NewString()
			}
			if !q.CorrectAnswer.Valid() {
				http.Error(w, "each question needs a correct_answer of A|B|C|D", http.StatusBadRequest)
				return
			}
			if len(q.Options) != len(exam.OptionKeys) {
				http.Error(w, "each question needs exactly four options", http.StatusBadRequest)
				return
			}
		}
		if t.Status == "" {
			t.Status = exam.StatusDraft
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]string{"id": t.ID, "status": t.Status})
	}
}

// GET /tests/{testID} — answer keys are stripped unless the viewer is admin.
func GetTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		var (
			t   exam.Test
			err error
		)
		if rbac.RoleFromContext(r.Context()) == "admin" {
			t, err = store.GetTestWithKeys(r.Context(), id)
		} else {
			t, err = store.GetTest(r.Context(), id)
		}
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, t)
	}
}

// GET /tests?q=&category=&status=&limit=&offset=
func ListTestsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListTests(r.Context(), exam.ListOpts{
			Q:          strings.TrimSpace(r.URL.Query().Get("q")),
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
			ViewerRole: rbac.RoleFromContext(r.Context()),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, list)
	}
}

// POST /tests/{testID}/publish and /tests/{testID}/unpublish (admin).
// Publishing appends a TestPublished event; event-log failure is logged, the
// status change is the source of truth.
func SetTestStatusHandler(store exam.Store, status string, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		if err := store.SetStatus(r.Context(), id, status); err != nil {
			httpError(w, err)
			return
		}
		if events != nil && status == exam.StatusPublished {
			if err := events.Append(r.Context(), syncx.Event{Type: syncx.EventTestPublished, Key: id, DataJSON: "{}"}); err != nil {
				log.Printf("tests: event log append failed for test=%s: %v", id, err)
			}
		}
		writeJSON(w, map[string]string{"id": id, "status": status})
	}
}

// DELETE /tests/{testID} (admin).
func DeleteTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "testID")
		if err := store.DeleteTest(r.Context(), id); err != nil {
			httpError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
