package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Balram-8696/examprephub/internal/exam"
)

var (
	ErrNoSession      = errors.New("no session in progress")
	ErrAlreadySub     = errors.New("attempt already submitted")
	ErrBadOption      = errors.New("invalid option key")
	ErrAnswerLocked   = errors.New("answer locked")
	ErrResultNotFound = errors.New("result not found")
)

// TestSource supplies the immutable test definition, with answer keys, before
// the engine starts. One-shot read.
type TestSource interface {
	FetchTest(ctx context.Context, testID string) (exam.Test, error)
}

// SessionStore is the durable session cache. One slot per user: Save
// overwrites whatever attempt the user had in progress, Load reports absent
// when the slot is empty or holds a different test.
type SessionStore interface {
	Load(ctx context.Context, userID, testID string) (State, bool, error)
	Save(ctx context.Context, userID string, st State) error
	Clear(ctx context.Context, userID, testID string) error
}

// ResultSink receives the terminal Result. On failure the engine keeps the
// durable cache so the attempt is not silently lost and the submit is
// retryable.
type ResultSink interface {
	SubmitResult(ctx context.Context, r Result) error
}

// --- in-memory implementations (tests, single-process dev) ---

type memorySessionStore struct {
	mu    sync.RWMutex
	slots map[string]State // userID -> single in-progress slot
}

func NewInMemorySessionStore() SessionStore {
	return &memorySessionStore{slots: map[string]State{}}
}

func (m *memorySessionStore) Load(_ context.Context, userID, testID string) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.slots[userID]
	if !ok || st.TestID != testID {
		return State{}, false, nil
	}
	return st.Clone(), true, nil
}

func (m *memorySessionStore) Save(_ context.Context, userID string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[userID] = st.Clone()
	return nil
}

func (m *memorySessionStore) Clear(_ context.Context, userID, testID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.slots[userID]; ok && st.TestID == testID {
		delete(m.slots, userID)
	}
	return nil
}

type memoryResultSink struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewInMemoryResultSink() *memoryResultSink {
	return &memoryResultSink{results: map[string]Result{}}
}

func (m *memoryResultSink) SubmitResult(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *memoryResultSink) GetResult(_ context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return Result{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryResultSink) ListResults(_ context.Context, opts ResultListOpts) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Result{}
	for _, r := range m.results {
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		if opts.TestID != "" && r.TestID != opts.TestID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
