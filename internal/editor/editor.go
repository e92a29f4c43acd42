package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
)

// Draft is one in-progress flashcard. Key is a local identity that never
// changes; ServerID is empty until the first successful create.
type Draft struct {
	Key      string
	ServerID string
	Card     models.Flashcard
	Dirty    bool
}

// Valid reports whether the draft may be sent to the backend: question
// title, question text and answer text must all be non-empty after
// trimming. Invalid drafts are never saved, dirty or not.
func (d *Draft) Valid() bool {
	return strings.TrimSpace(d.Card.Question.Title) != "" &&
		strings.TrimSpace(d.Card.Question.Text) != "" &&
		strings.TrimSpace(d.Card.Answer.Text) != ""
}

// Editor maintains the draft list for one quiz and persists edits without
// an explicit save action. Saves are driven by a single shared debounce
// timer; switching drafts flushes the outgoing one synchronously so no
// edit is lost on navigation.
type Editor struct {
	backend  api.Backend
	debounce time.Duration
	log      *logger.Logger

	mu        sync.Mutex
	quizID    string
	meta      api.QuizInput
	metaDirty bool
	drafts    []*Draft
	active    int
	timer     *time.Timer

	// saveMu serializes saves so two saves for the same draft never race.
	saveMu sync.Mutex
}

// New creates an editor for a quiz. quizID may be empty for a brand-new
// quiz; it is filled in by the first SaveMetadata. The editor starts with
// one blank draft.
func New(backend api.Backend, quizID string, debounce time.Duration) *Editor {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	e := &Editor{
		backend:  backend,
		debounce: debounce,
		quizID:   quizID,
		log:      logger.Default().WithPrefix("editor"),
	}
	e.drafts = []*Draft{e.newDraft()}
	return e
}

// Load seeds the editor with a quiz's existing cards, replacing the blank
// starter draft.
func (e *Editor) Load(ctx context.Context) error {
	cards, err := e.backend.ListFlashcards(ctx, e.quizID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(cards) == 0 {
		return nil
	}
	e.drafts = make([]*Draft, len(cards))
	for i, card := range cards {
		e.drafts[i] = &Draft{Key: uuid.NewString(), ServerID: card.ID, Card: card}
	}
	e.active = 0
	return nil
}

func (e *Editor) newDraft() *Draft {
	return &Draft{
		Key: uuid.NewString(),
		Card: models.Flashcard{
			QuizID: e.quizID,
			Question: models.Question{Difficulty: 3},
			Answer:   models.Answer{Type: models.AnswerText},
		},
	}
}

// Drafts returns a snapshot of the draft list.
func (e *Editor) Drafts() []Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Draft, len(e.drafts))
	for i, d := range e.drafts {
		out[i] = *d
	}
	return out
}

// Active returns the current draft and its index.
func (e *Editor) Active() (Draft, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.drafts[e.active], e.active
}

// Update mutates the active draft through fn, marks it dirty and resets
// the shared debounce timer. Only the active draft is ever auto-saved.
func (e *Editor) Update(fn func(*models.Flashcard)) {
	e.mu.Lock()
	d := e.drafts[e.active]
	fn(&d.Card)
	d.Dirty = true
	e.resetTimerLocked(d.Key)
	e.mu.Unlock()
}

func (e *Editor) resetTimerLocked(key string) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.debounce, func() {
		// The active draft may have changed since the timer was armed;
		// save the draft the edits belonged to, not whatever is active now.
		if err := e.saveByKey(context.Background(), key); err != nil {
			e.log.Warn("auto-save failed: %v", err)
		}
	})
}

// SetActive switches to draft i, flushing the outgoing draft first so the
// switch never loses an edit. Out-of-range indices are clamped.
func (e *Editor) SetActive(ctx context.Context, i int) error {
	e.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i >= len(e.drafts) {
		i = len(e.drafts) - 1
	}
	if i == e.active {
		e.mu.Unlock()
		return nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	outgoing := e.drafts[e.active].Key
	e.mu.Unlock()

	if err := e.saveByKey(ctx, outgoing); err != nil {
		return err
	}

	e.mu.Lock()
	if i < len(e.drafts) {
		e.active = i
	}
	e.mu.Unlock()
	return nil
}

// Add appends a blank draft and makes it active, flushing the outgoing
// draft on the way.
func (e *Editor) Add(ctx context.Context) (int, error) {
	e.mu.Lock()
	d := e.newDraft()
	e.drafts = append(e.drafts, d)
	target := len(e.drafts) - 1
	e.mu.Unlock()

	if err := e.SetActive(ctx, target); err != nil {
		return target, err
	}
	return target, nil
}

// Delete removes draft i. A draft that was already created server-side
// issues one delete call before local removal; a purely local draft is
// removed with no network call. The active index is clamped afterwards.
func (e *Editor) Delete(ctx context.Context, i int) error {
	e.mu.Lock()
	if i < 0 || i >= len(e.drafts) {
		e.mu.Unlock()
		return nil
	}
	d := e.drafts[i]
	serverID := d.ServerID
	if i == e.active && e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if serverID != "" {
		if err := e.backend.DeleteFlashcard(ctx, serverID); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Re-find the draft; the list may have shifted while the delete call
	// was in flight.
	idx := -1
	for j, other := range e.drafts {
		if other.Key == d.Key {
			idx = j
			break
		}
	}
	if idx < 0 {
		return nil
	}
	e.drafts = append(e.drafts[:idx], e.drafts[idx+1:]...)
	if len(e.drafts) == 0 {
		e.drafts = []*Draft{e.newDraft()}
	}
	if e.active >= len(e.drafts) {
		e.active = len(e.drafts) - 1
	}
	return nil
}

// Flush saves the active draft immediately, cancelling any pending timer.
// This is the unload hook.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	key := e.drafts[e.active].Key
	e.mu.Unlock()
	return e.saveByKey(ctx, key)
}

// FlushAll saves every dirty, valid draft. Used before quitting the
// editor for good.
func (e *Editor) FlushAll(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	keys := make([]string, 0, len(e.drafts))
	for _, d := range e.drafts {
		keys = append(keys, d.Key)
	}
	e.mu.Unlock()

	for _, key := range keys {
		if err := e.saveByKey(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// saveByKey persists one draft if it is dirty and valid. ServerID present
// means update; absent means create, with the returned id written back.
// saveMu makes saves single-flight so a timer fire and a flush cannot
// issue two creates for the same draft.
func (e *Editor) saveByKey(ctx context.Context, key string) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	var d *Draft
	for _, other := range e.drafts {
		if other.Key == key {
			d = other
			break
		}
	}
	if d == nil || !d.Dirty || !d.Valid() {
		e.mu.Unlock()
		return nil
	}
	card := d.Card
	card.ID = d.ServerID
	card.QuizID = e.quizID
	serverID := d.ServerID
	e.mu.Unlock()

	if serverID != "" {
		if err := e.backend.UpdateFlashcard(ctx, card); err != nil {
			return err
		}
		e.mu.Lock()
		d.Dirty = false
		e.mu.Unlock()
		e.log.Debug("updated flashcard %s", serverID)
		return nil
	}

	created, err := e.backend.CreateFlashcard(ctx, card)
	if err != nil {
		return err
	}
	e.mu.Lock()
	// The draft may have been deleted while the create was in flight; only
	// write the id back if it is still in the list.
	for _, other := range e.drafts {
		if other.Key == key {
			other.ServerID = created.ID
			other.Card.ID = created.ID
			other.Dirty = false
			break
		}
	}
	e.mu.Unlock()
	e.log.Debug("created flashcard %s", created.ID)
	return nil
}
