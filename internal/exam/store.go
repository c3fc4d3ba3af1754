package exam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrTestNotFound = errors.New("test not found")

// ListOpts filters and pages a test listing.
type ListOpts struct {
	Q        string
	Category string
	Status   string // admin only; students always see published
	Limit    int
	Offset   int

	ViewerRole string
}

// Store is the persistence boundary for tests.
//
// GetTest strips answer keys (student view). GetTestWithKeys returns the
// full definition and is reserved for the session engine and admin surfaces.
type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error)
	GetTestWithKeys(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context, opts ListOpts) ([]Test, error)
	SetStatus(ctx context.Context, id, status string) error
	DeleteTest(ctx context.Context, id string) error
}

type memoryStore struct {
	mu    sync.RWMutex
	tests map[string]Test
}

// NewInMemoryStore is used by tests and single-process dev setups.
func NewInMemoryStore() Store {
	return &memoryStore{tests: map[string]Test{}}
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := m.GetTestWithKeys(ctx, id)
	if err != nil {
		return Test{}, err
	}
	t.StripKeys()
	return t, nil
}

func (m *memoryStore) GetTestWithKeys(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	// copy questions so callers cannot mutate the stored slice
	qs := make([]Question, len(t.Questions))
	copy(qs, t.Questions)
	t.Questions = qs
	return t, nil
}

func (m *memoryStore) ListTests(_ context.Context, opts ListOpts) ([]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Test, 0, len(m.tests))
	for _, t := range m.tests {
		if !matchList(t, opts) {
			continue
		}
		t.Questions = nil // listings carry metadata only
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) SetStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	if !ok {
		return ErrTestNotFound
	}
	t.Status = status
	m.tests[id] = t
	return nil
}

func (m *memoryStore) DeleteTest(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[id]; !ok {
		return ErrTestNotFound
	}
	delete(m.tests, id)
	return nil
}

func matchList(t Test, opts ListOpts) bool {
	if opts.ViewerRole != "admin" && t.Status != StatusPublished {
		return false
	}
	if opts.Status != "" && t.Status != opts.Status {
		return false
	}
	if opts.Category != "" && t.Category != opts.Category {
		return false
	}
	if opts.Q != "" {
		q := strings.ToLower(opts.Q)
		if !strings.Contains(strings.ToLower(t.Title.English), q) &&
			!strings.Contains(strings.ToLower(t.Title.Hindi), q) {
			return false
		}
	}
	return true
}

func page(in []Test, limit, offset int) []Test {
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(in) {
		return []Test{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}
