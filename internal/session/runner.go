package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/study"
	"github.com/quizdeck/quizdeck/internal/worker"
)

// State is the runner's lifecycle position.
type State int

const (
	StateNew State = iota
	StateLoading
	StateActive
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Feedback is the immediate per-card evaluation shown after an answer.
type Feedback struct {
	Correct       bool
	UserAnswer    string
	CorrectAnswer string
}

// Journal persists buffered test answers as they are given so an
// interrupted test can be resumed. Implementations are best-effort.
type Journal interface {
	RecordAnswer(ctx context.Context, sessionID, quizID string, ans models.TestAnswer) error
	Clear(ctx context.Context, sessionID string) error
}

// Runner drives a single learn or test session from creation to
// completion. All methods are safe for concurrent use, though the CLI
// drives it from one goroutine; the lock mainly fences the background
// progress jobs.
type Runner struct {
	backend api.Backend
	jobs    worker.Queue
	journal Journal
	user    models.User
	quizID  string
	mode    models.SessionMode
	rng     *rand.Rand
	log     *logger.Logger

	mu          sync.Mutex
	state       State
	session     *models.Session
	cards       []models.Flashcard
	current     int
	seen        []int
	history     map[string]study.CardHistory
	answers     map[string]models.TestAnswer
	answerOrder []string
	feedback    *Feedback
	startedAt   time.Time
	cardShownAt time.Time
	result      *models.TestResult
	learnTotal  int
	learnRight  int
	failure     error
}

// Option configures a Runner.
type Option func(*Runner)

// WithJournal enables crash-safe buffering of test answers.
func WithJournal(j Journal) Option {
	return func(r *Runner) { r.journal = j }
}

// WithRand fixes the shuffle source, for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

// NewRunner creates a runner for one quiz and one mode. The mode is fixed
// for the runner's lifetime.
func NewRunner(backend api.Backend, jobs worker.Queue, user models.User, quizID string, mode models.SessionMode, opts ...Option) *Runner {
	r := &Runner{
		backend: backend,
		jobs:    jobs,
		user:    user,
		quizID:  quizID,
		mode:    mode,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logger.Default().WithPrefix("session"),
		state:   StateNew,
		history: map[string]study.CardHistory{},
		answers: map[string]models.TestAnswer{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start creates the server-side session record, fetches the quiz's cards
// and shuffles them locally. Any failure here is terminal; there is no
// automatic retry.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateNew {
		r.mu.Unlock()
		return fmt.Errorf("session already started (state %s)", r.state)
	}
	r.state = StateLoading
	r.mu.Unlock()

	sess, err := r.backend.CreateSession(ctx, r.user.ID, r.quizID, r.mode)
	if err != nil {
		return r.fail(fmt.Errorf("create session: %w", err))
	}

	cards, err := r.backend.ListFlashcards(ctx, r.quizID)
	if err != nil {
		return r.fail(fmt.Errorf("fetch flashcards: %w", err))
	}
	if len(cards) == 0 {
		return r.fail(fmt.Errorf("quiz %s has no flashcards", r.quizID))
	}

	// No server-specified ordering; shuffle locally.
	r.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	now := time.Now()
	r.mu.Lock()
	r.session = sess
	r.cards = cards
	r.current = 0
	r.seen = []int{0}
	r.startedAt = now
	r.cardShownAt = now
	r.state = StateActive
	r.mu.Unlock()

	r.log.Info("session %s started: quiz=%s mode=%s cards=%d", sess.ID, r.quizID, r.mode, len(cards))
	return nil
}

func (r *Runner) fail(err error) error {
	r.mu.Lock()
	r.state = StateFailed
	r.failure = err
	r.mu.Unlock()
	r.log.Error("session failed: %v", err)
	return err
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the terminal error after StateFailed.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// Session returns the server-side session record once Start succeeded.
func (r *Runner) Session() *models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Current returns the card at the current position.
func (r *Runner) Current() (models.Flashcard, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive || r.current >= len(r.cards) {
		return models.Flashcard{}, 0, false
	}
	return r.cards[r.current], r.current, true
}

// Deck returns the shuffled card count.
func (r *Runner) Deck() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// Seen returns a copy of the visited indices, in first-visit order.
func (r *Runner) Seen() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.seen))
	copy(out, r.seen)
	return out
}

// Feedback returns the evaluation of the last answer on the current card,
// or nil when none was given yet.
func (r *Runner) Feedback() *Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feedback
}

// SubmitAnswer evaluates the user's answer against the current card. Both
// sides are trimmed and lower-cased. In learn mode a progress tick is
// enqueued fire-and-forget; in test mode the answer is buffered (latest
// wins per card) and nothing goes on the wire until Submit.
func (r *Runner) SubmitAnswer(ctx context.Context, userAnswer string) (Feedback, error) {
	r.mu.Lock()
	if r.state != StateActive {
		r.mu.Unlock()
		return Feedback{}, fmt.Errorf("session is not active (state %s)", r.state)
	}

	card := r.cards[r.current]
	correct := card.Matches(userAnswer)
	fb := Feedback{
		Correct:       correct,
		UserAnswer:    userAnswer,
		CorrectAnswer: card.Answer.Text,
	}
	r.feedback = &fb
	r.history[card.ID] = r.history[card.ID].Record(correct)

	var sessionID, quizID string
	if r.session != nil {
		sessionID = r.session.ID
	}
	quizID = r.quizID

	switch r.mode {
	case models.ModeLearn:
		r.learnTotal++
		if correct {
			r.learnRight++
		}
		confidence := study.Confidence(r.history[card.ID])
		r.mu.Unlock()
		r.enqueueProgress(sessionID, card.ID, confidence)
	case models.ModeTest:
		elapsed := int(time.Since(r.cardShownAt).Seconds())
		ans := models.TestAnswer{
			FlashcardID: card.ID,
			UserAnswer:  userAnswer,
			TimeTaken:   elapsed,
		}
		if _, buffered := r.answers[card.ID]; !buffered {
			r.answerOrder = append(r.answerOrder, card.ID)
		}
		r.answers[card.ID] = ans
		r.mu.Unlock()
		if r.journal != nil {
			if err := r.journal.RecordAnswer(ctx, sessionID, quizID, ans); err != nil {
				r.log.Warn("failed to journal answer: %v", err)
			}
		}
	default:
		r.mu.Unlock()
	}

	return fb, nil
}

// enqueueProgress ships one learn-mode tick through the worker pool.
// Failure is logged and never surfaced; progress tracking is telemetry.
func (r *Runner) enqueueProgress(sessionID, flashcardID string, confidence int) {
	job := &progressJob{
		backend:   r.backend,
		sessionID: sessionID,
		entry: models.ProgressEntry{
			FlashcardID: flashcardID,
			Reviewed:    true,
			Confidence:  confidence,
		},
	}
	if r.jobs == nil {
		// No pool wired; run inline but still swallow the error.
		if err := job.Run(context.Background()); err != nil {
			r.log.Warn("progress tick failed: %v", err)
		}
		return
	}
	if err := r.jobs.Submit(job); err != nil {
		r.log.Warn("progress tick dropped: %v", err)
	}
}

// Next advances to the following card, clearing per-card transient state.
// Reaching the end of the deck completes a learn session directly and
// triggers the atomic final submission for a test session.
func (r *Runner) Next(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateActive {
		r.mu.Unlock()
		return fmt.Errorf("session is not active (state %s)", r.state)
	}

	if r.current+1 >= len(r.cards) {
		mode := r.mode
		r.mu.Unlock()
		if mode == models.ModeTest {
			_, err := r.Submit(ctx)
			return err
		}
		return r.completeLearn(ctx)
	}

	r.current++
	if !contains(r.seen, r.current) {
		r.seen = append(r.seen, r.current)
	}
	r.feedback = nil
	r.cardShownAt = time.Now()
	r.mu.Unlock()
	return nil
}

// GoTo jumps back to an already-visited card. Indices outside seen are a
// no-op: no peeking ahead.
func (r *Runner) GoTo(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive || !contains(r.seen, index) {
		return
	}
	r.current = index
	r.feedback = nil
	r.cardShownAt = time.Now()
}

func (r *Runner) completeLearn(ctx context.Context) error {
	r.mu.Lock()
	sessionID := ""
	if r.session != nil {
		sessionID = r.session.ID
	}
	r.state = StateCompleted
	correct, total := r.learnRight, r.learnTotal
	r.mu.Unlock()

	// The completion marker is idempotent and best-effort: the tally never
	// left the client, so a failed call does not change what the user sees.
	if err := r.backend.CompleteSession(ctx, sessionID); err != nil {
		r.log.Warn("failed to mark session complete: %v", err)
	}

	r.log.Info("learn session %s completed: %d/%d", sessionID, correct, total)
	return nil
}

// Submit posts all buffered test answers in one request. On failure the
// buffer is kept and the runner stays active so Submit can be retried.
func (r *Runner) Submit(ctx context.Context) (*models.TestResult, error) {
	r.mu.Lock()
	if r.state == StateCompleted {
		result := r.result
		r.mu.Unlock()
		return result, nil
	}
	if r.state != StateActive {
		r.mu.Unlock()
		return nil, fmt.Errorf("session is not active (state %s)", r.state)
	}
	if r.mode != models.ModeTest {
		r.mu.Unlock()
		return nil, fmt.Errorf("submit is only valid in test mode")
	}

	sessionID := ""
	if r.session != nil {
		sessionID = r.session.ID
	}
	answers := make([]models.TestAnswer, 0, len(r.answerOrder))
	for _, id := range r.answerOrder {
		answers = append(answers, r.answers[id])
	}
	duration := int(time.Since(r.startedAt).Seconds())
	r.mu.Unlock()

	result, err := r.backend.SubmitTest(ctx, api.TestSubmission{
		SessionID: sessionID,
		Answers:   answers,
		Duration:  duration,
	})
	if err != nil {
		r.log.Error("test submission failed (answers kept for retry): %v", err)
		return nil, err
	}

	r.mu.Lock()
	r.state = StateCompleted
	r.result = result
	r.mu.Unlock()

	if r.journal != nil {
		if err := r.journal.Clear(ctx, sessionID); err != nil {
			r.log.Warn("failed to clear answer journal: %v", err)
		}
	}

	r.log.Info("test session %s completed: score=%.1f (%d/%d)", sessionID, result.FinalScore, result.Correct, result.Total)
	return result, nil
}

// Result returns the server-graded result of a completed test session.
func (r *Runner) Result() *models.TestResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// LearnTally returns the local learn-mode score.
func (r *Runner) LearnTally() (correct, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.learnRight, r.learnTotal
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
