package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Balram-8696/examprephub/internal/exam"
)

var ErrEmptyTest = errors.New("test has no questions")

// Engine owns one live, timed attempt: navigation, answer capture,
// review-marking, countdown, and submission. All mutations are serialized by
// the engine mutex and followed by a best-effort write to the durable
// session cache, so an attempt survives a process restart.
type Engine struct {
	mu sync.Mutex

	userID string
	test   exam.Test
	st     State

	store SessionStore
	sink  ResultSink

	submitted bool // result accepted by the sink; cache cleared
	autoFired bool // the zero-second auto-submission already ran

	stop     chan struct{}
	stopOnce sync.Once
}

// Start loads the test definition and any previously-persisted session for
// (user, test), then returns a ready engine. The second return reports
// whether an existing attempt was resumed. Either load failing is fatal:
// there is no partially-initialized engine.
func Start(ctx context.Context, userID, testID string, src TestSource, store SessionStore, sink ResultSink) (*Engine, bool, error) {
	test, err := src.FetchTest(ctx, testID)
	if err != nil {
		return nil, false, err
	}
	if len(test.Questions) == 0 {
		return nil, false, ErrEmptyTest
	}

	st, resumed, err := store.Load(ctx, userID, testID)
	if err != nil {
		return nil, false, err
	}
	if resumed && len(st.Answers) != len(test.Questions) {
		// cached state from an older revision of the test is unusable
		resumed = false
	}
	if !resumed {
		st = NewState(test)
	}

	e := &Engine{
		userID: userID,
		test:   test,
		st:     st,
		store:  store,
		sink:   sink,
		stop:   make(chan struct{}),
	}
	e.persist(ctx)
	return e, resumed, nil
}

func (e *Engine) UserID() string { return e.userID }
func (e *Engine) TestID() string { return e.test.ID }

// TestForClient returns the definition with grading material stripped.
func (e *Engine) TestForClient() exam.Test {
	t := e.test
	qs := make([]exam.Question, len(t.Questions))
	copy(qs, t.Questions)
	t.Questions = qs
	t.StripKeys()
	return t
}

// State returns a snapshot safe to hand across the API boundary.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Clone()
}

func (e *Engine) Submitted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitted
}

// SelectOption applies an option selection to the current question.
// Re-selecting the current answer toggles it off; the mark flag survives.
func (e *Engine) SelectOption(ctx context.Context, key exam.OptionKey) error {
	if !key.Valid() {
		return ErrBadOption
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted {
		return ErrAlreadySub
	}
	i := e.st.CurrentQuestion
	e.st.Answers[i] = applySelect(e.st.Answers[i], key)
	e.persist(ctx)
	return nil
}

// ToggleMark flips the mark-for-review flag on the current question.
func (e *Engine) ToggleMark(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted {
		return ErrAlreadySub
	}
	i := e.st.CurrentQuestion
	e.st.Answers[i] = applyToggleMark(e.st.Answers[i])
	e.persist(ctx)
	return nil
}

func (e *Engine) Next(ctx context.Context) int { return e.jump(ctx, +1, true) }
func (e *Engine) Prev(ctx context.Context) int { return e.jump(ctx, -1, true) }

// JumpTo navigates directly (palette selection). Out-of-range indexes are
// no-ops; the resulting index is returned either way.
func (e *Engine) JumpTo(ctx context.Context, index int) int {
	return e.jump(ctx, index, false)
}

func (e *Engine) jump(ctx context.Context, v int, relative bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted {
		return e.st.CurrentQuestion
	}
	target := v
	if relative {
		target = e.st.CurrentQuestion + v
	}
	next := clampIndex(target, e.st.CurrentQuestion, len(e.st.Answers))
	if next != e.st.CurrentQuestion {
		e.st.CurrentQuestion = next
		e.persist(ctx)
	}
	return e.st.CurrentQuestion
}

// SetLanguage switches the rendered translation for the rest of the attempt.
func (e *Engine) SetLanguage(ctx context.Context, lang Language) error {
	if lang != LanguageEnglish && lang != LanguageHindi {
		return errors.New("unknown language")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted {
		return ErrAlreadySub
	}
	e.st.Language = lang
	e.persist(ctx)
	return nil
}

// Tick advances the countdown by one second. secondsRemaining never
// increases, and reaching zero triggers exactly one automatic submission.
// Exposed so tests can drive the clock directly; Run drives it in production.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted || e.st.SecondsRemaining <= 0 {
		return
	}
	e.st.SecondsRemaining--
	e.persist(ctx)
	if e.st.SecondsRemaining == 0 && !e.autoFired {
		e.autoFired = true
		if _, err := e.submitLocked(ctx); err != nil {
			// keep the cache; the attempt stays manually submittable
			log.Printf("session: auto-submit failed for user=%s test=%s: %v", e.userID, e.test.ID, err)
		}
		e.stopCountdown()
	}
}

// Run drives Tick once per second until the context is cancelled, the
// attempt is submitted, or the clock reaches zero.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stop:
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Summary feeds the pre-submit confirmation dialog.
type Summary struct {
	TotalQuestions   int `json:"total_questions"`
	Attempted        int `json:"attempted"`
	Unattempted      int `json:"unattempted"`
	SecondsRemaining int `json:"seconds_remaining"`
}

func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	attempted := e.st.AttemptedCount()
	return Summary{
		TotalQuestions:   len(e.st.Answers),
		Attempted:        attempted,
		Unattempted:      len(e.st.Answers) - attempted,
		SecondsRemaining: e.st.SecondsRemaining,
	}
}

// Palette computes the question grid read-model for the attempt.
func (e *Engine) Palette(mode PaletteMode) Palette {
	e.mu.Lock()
	defer e.mu.Unlock()
	return BuildPalette(e.test, e.st.Answers, mode)
}

// Submit scores the attempt and hands the result to the sink. On sink
// failure the durable cache is NOT cleared and the same submit may be
// retried; on success the cache is cleared and the engine is terminal.
func (e *Engine) Submit(ctx context.Context) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.submitted {
		return Result{}, ErrAlreadySub
	}
	return e.submitLocked(ctx)
}

func (e *Engine) submitLocked(ctx context.Context) (Result, error) {
	r := ComputeResult(e.test, e.st, e.userID)
	r.ID = uuid.NewString()
	if err := e.sink.SubmitResult(ctx, r); err != nil {
		return Result{}, err
	}
	e.submitted = true
	e.stopCountdown()
	if err := e.store.Clear(ctx, e.userID, e.test.ID); err != nil {
		log.Printf("session: clear cache failed for user=%s test=%s: %v", e.userID, e.test.ID, err)
	}
	return r, nil
}

// Exit abandons the attempt for now: the countdown stops and the durable
// cache is left intact so the attempt is resumable later.
func (e *Engine) Exit(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persist(ctx)
	e.stopCountdown()
}

func (e *Engine) stopCountdown() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// persist is best-effort: a cache-write failure is logged and the attempt
// continues in memory. Callers must hold e.mu.
func (e *Engine) persist(ctx context.Context) {
	if e.submitted {
		return
	}
	if err := e.store.Save(ctx, e.userID, e.st); err != nil {
		log.Printf("session: save failed for user=%s test=%s: %v", e.userID, e.test.ID, err)
	}
}
