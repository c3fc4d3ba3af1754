package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

// GET /announcements — public notice board, newest first.
func ListAnnouncementsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
		rows, err := db.QueryContext(r.Context(),
			`SELECT id,title,body,created_at FROM announcements ORDER BY created_at DESC LIMIT $1`, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []announcement{}
		for rows.Next() {
			var a announcement
			if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, a)
		}
		writeJSON(w, out)
	}
}

// POST /announcements (admin)
func CreateAnnouncementHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a announcement
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil || a.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		a.ID = uuid.NewString()
		a.CreatedAt = time.Now().Unix()
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO announcements (id,title,body,created_at) VALUES ($1,$2,$3,$4)`,
			a.ID, a.Title, a.Body, a.CreatedAt)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, a)
	}
}

// DELETE /announcements/{announcementID} (admin)
func DeleteAnnouncementHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "announcementID")
		res, err := db.ExecContext(r.Context(), `DELETE FROM announcements WHERE id=$1`, id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			http.Error(w, "announcement not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
