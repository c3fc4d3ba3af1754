package session

import (
	"context"
	"sync"
)

// Manager tracks the active engines in this process, one per user (the
// durable cache is a single slot per user, so the registry mirrors that).
// Starting a second test while one is paused parks the first: its countdown
// stops and its cache slot is overwritten by the new attempt's first save.
type Manager struct {
	mu sync.Mutex

	src   TestSource
	store SessionStore
	sink  ResultSink

	engines  map[string]*Engine   // userID -> live timed attempt
	practice map[string]*Practice // userID -> live practice run
}

func NewManager(src TestSource, store SessionStore, sink ResultSink) *Manager {
	return &Manager{
		src:      src,
		store:    store,
		sink:     sink,
		engines:  map[string]*Engine{},
		practice: map[string]*Practice{},
	}
}

// StartOrResume returns the user's engine for testID, resuming the cached
// attempt when one exists. The countdown goroutine is started here and runs
// until submit, exit, or process shutdown.
func (m *Manager) StartOrResume(ctx context.Context, userID, testID string) (*Engine, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[userID]; ok {
		if e.TestID() == testID && !e.Submitted() {
			return e, true, nil
		}
		// switching tests parks the old attempt (cache slot gets overwritten)
		e.Exit(context.WithoutCancel(ctx))
		delete(m.engines, userID)
	}

	e, resumed, err := Start(ctx, userID, testID, m.src, m.store, m.sink)
	if err != nil {
		return nil, false, err
	}
	m.engines[userID] = e
	go e.Run(context.WithoutCancel(ctx))
	return e, resumed, nil
}

// Engine returns the user's live timed attempt, if any.
func (m *Manager) Engine(userID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.engines[userID]
	return e, ok
}

// Release drops the user's engine from the registry. Called after submit
// (terminal) or exit (resumable later via StartOrResume).
func (m *Manager) Release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, userID)
}

// StartPractice begins a fresh practice run, replacing any previous one.
func (m *Manager) StartPractice(ctx context.Context, userID, testID string) (*Practice, error) {
	t, err := m.src.FetchTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	p, err := NewPractice(userID, t)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.practice[userID] = p
	m.mu.Unlock()
	return p, nil
}

// Practice returns the user's live practice run, if any.
func (m *Manager) Practice(userID string) (*Practice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.practice[userID]
	return p, ok
}

// ReleasePractice drops the user's practice run.
func (m *Manager) ReleasePractice(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.practice, userID)
}
