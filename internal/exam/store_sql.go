package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	tj, err := json.Marshal(t.Title)
	if err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = StatusDraft
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests
		(id,title_json,category,duration_min,marks_per_question,negative_marking,status,publish_at,expire_at,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
		  title_json=EXCLUDED.title_json, category=EXCLUDED.category,
		  duration_min=EXCLUDED.duration_min, marks_per_question=EXCLUDED.marks_per_question,
		  negative_marking=EXCLUDED.negative_marking, status=EXCLUDED.status,
		  publish_at=EXCLUDED.publish_at, expire_at=EXCLUDED.expire_at,
		  questions_json=EXCLUDED.questions_json`,
		t.ID, string(tj), t.Category, t.DurationMinutes, t.MarksPerQuestion, t.NegativeMarking,
		t.Status, t.PublishAt, t.ExpireAt, string(qj), t.CreatedAt)
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := s.GetTestWithKeys(ctx, id)
	if err != nil {
		return Test{}, err
	}
	t.StripKeys()
	return t, nil
}

func (s *SQLStore) GetTestWithKeys(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title_json,category,duration_min,marks_per_question,
		negative_marking,status,publish_at,expire_at,questions_json,created_at FROM tests WHERE id=$1`, id)
	return scanTest(row, true)
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]Test, error) {
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if opts.ViewerRole != "admin" {
		where = append(where, "status="+arg(StatusPublished))
	} else if opts.Status != "" {
		where = append(where, "status="+arg(opts.Status))
	}
	if opts.Category != "" {
		where = append(where, "category="+arg(opts.Category))
	}
	if opts.Q != "" {
		where = append(where, "title_json LIKE "+arg("%"+opts.Q+"%"))
	}
	q := `SELECT id,title_json,category,duration_min,marks_per_question,negative_marking,
		status,publish_at,expire_at,questions_json,created_at FROM tests`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s OFFSET %s", arg(limit), arg(opts.Offset))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Test{}
	for rows.Next() {
		t, err := scanTest(rows, false)
		if err != nil {
			return nil, err
		}
		t.Questions = nil // listings carry metadata only
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tests SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	return oneRowOrNotFound(res)
}

func (s *SQLStore) DeleteTest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return oneRowOrNotFound(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner, withQuestions bool) (Test, error) {
	var t Test
	var titleJSON, questionsJSON string
	err := row.Scan(&t.ID, &titleJSON, &t.Category, &t.DurationMinutes, &t.MarksPerQuestion,
		&t.NegativeMarking, &t.Status, &t.PublishAt, &t.ExpireAt, &questionsJSON, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(titleJSON), &t.Title); err != nil {
		return Test{}, err
	}
	if withQuestions {
		if err := json.Unmarshal([]byte(questionsJSON), &t.Questions); err != nil {
			return Test{}, err
		}
	}
	return t, nil
}

func oneRowOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTestNotFound
	}
	return nil
}
