package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	syncx "github.com/Balram-8696/examprephub/internal/sync"
)

// SQLSessionStore persists the single in-progress slot per user. The row is
// keyed by user_id alone: saving a session for a different test overwrites
// the slot, which is the documented resume limitation.
type SQLSessionStore struct {
	db *sql.DB
}

func NewSQLSessionStore(db *sql.DB) *SQLSessionStore {
	return &SQLSessionStore{db: db}
}

func (s *SQLSessionStore) Load(ctx context.Context, userID, testID string) (State, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM sessions WHERE user_id=$1`, userID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, false, err
	}
	if st.TestID != testID {
		// slot holds a paused attempt for another test
		return State{}, false, nil
	}
	return st, true, nil
}

func (s *SQLSessionStore) Save(ctx context.Context, userID string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (user_id, test_id, state_json, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE SET
		  test_id=EXCLUDED.test_id, state_json=EXCLUDED.state_json, updated_at=EXCLUDED.updated_at`,
		userID, st.TestID, string(raw), time.Now().Unix())
	return err
}

func (s *SQLSessionStore) Clear(ctx context.Context, userID, testID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id=$1 AND test_id=$2`, userID, testID)
	return err
}

// ResultListOpts filters and pages a result listing.
type ResultListOpts struct {
	TestID string
	UserID string
	Limit  int
	Offset int
}

// ResultStore is the sink plus the read side used by the results API.
type ResultStore interface {
	ResultSink
	GetResult(ctx context.Context, id string) (Result, error)
	ListResults(ctx context.Context, opts ResultListOpts) ([]Result, error)
}

// SQLResultStore persists submitted results and appends a ResultSubmitted
// event for each. Event-log failures are logged, never surfaced: the result
// row is the source of truth.
type SQLResultStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLResultStore(db *sql.DB, events *syncx.EventRepo) *SQLResultStore {
	return &SQLResultStore{db: db, events: events}
}

func (s *SQLResultStore) SubmitResult(ctx context.Context, r Result) error {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results
		(id,user_id,test_id,score,total_possible,correct_count,incorrect_count,unattempted_count,
		 percentage,time_taken_sec,answers_json,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.UserID, r.TestID, r.Score, r.TotalPossible, r.CorrectCount, r.IncorrectCount,
		r.UnattemptedCount, r.Percentage, r.TimeTakenSeconds, string(aj), r.SubmittedAt)
	if err != nil {
		return err
	}
	if s.events != nil {
		data, _ := json.Marshal(map[string]any{"result_id": r.ID, "user_id": r.UserID, "test_id": r.TestID, "score": r.Score})
		if err := s.events.Append(ctx, syncx.Event{Type: syncx.EventResultSubmitted, Key: r.ID, DataJSON: string(data)}); err != nil {
			log.Printf("session: event log append failed for result=%s: %v", r.ID, err)
		}
	}
	return nil
}

func (s *SQLResultStore) GetResult(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,test_id,score,total_possible,correct_count,
		incorrect_count,unattempted_count,percentage,time_taken_sec,answers_json,submitted_at
		FROM results WHERE id=$1`, id)
	return scanResult(row)
}

func (s *SQLResultStore) ListResults(ctx context.Context, opts ResultListOpts) ([]Result, error) {
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if opts.UserID != "" {
		where = append(where, "user_id="+arg(opts.UserID))
	}
	if opts.TestID != "" {
		where = append(where, "test_id="+arg(opts.TestID))
	}
	q := `SELECT id,user_id,test_id,score,total_possible,correct_count,incorrect_count,
		unattempted_count,percentage,time_taken_sec,answers_json,submitted_at FROM results`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q += fmt.Sprintf(" ORDER BY submitted_at DESC LIMIT %s OFFSET %s", arg(limit), arg(opts.Offset))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var aj string
	err := row.Scan(&r.ID, &r.UserID, &r.TestID, &r.Score, &r.TotalPossible, &r.CorrectCount,
		&r.IncorrectCount, &r.UnattemptedCount, &r.Percentage, &r.TimeTakenSeconds, &aj, &r.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
		return Result{}, err
	}
	return r, nil
}
