package editor

import (
	"context"
	"strings"

	"github.com/quizdeck/quizdeck/internal/api"
)

// SetMetadata replaces the quiz metadata fields and marks them dirty.
func (e *Editor) SetMetadata(meta api.QuizInput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta = meta
	e.metaDirty = true
}

// Metadata returns the current quiz metadata fields.
func (e *Editor) Metadata() api.QuizInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meta
}

// QuizID returns the quiz this editor writes to; empty until the quiz has
// been created.
func (e *Editor) QuizID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quizID
}

// SaveMetadata persists the quiz metadata: create for a brand-new quiz,
// update otherwise. On create the new quiz id becomes the target for all
// subsequent flashcard saves.
func (e *Editor) SaveMetadata(ctx context.Context) error {
	e.mu.Lock()
	meta := e.meta
	quizID := e.quizID
	dirty := e.metaDirty
	e.mu.Unlock()

	if !dirty {
		return nil
	}

	if quizID == "" {
		quiz, err := e.backend.CreateQuiz(ctx, meta)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.quizID = quiz.ID
		e.metaDirty = false
		for _, d := range e.drafts {
			d.Card.QuizID = quiz.ID
		}
		e.mu.Unlock()
		e.log.Info("created quiz %s", quiz.ID)
		return nil
	}

	if _, err := e.backend.UpdateQuiz(ctx, quizID, meta); err != nil {
		return err
	}
	e.mu.Lock()
	e.metaDirty = false
	e.mu.Unlock()
	return nil
}

// UnsavedWork reports whether quitting now would lose something: a dirty
// draft, a valid draft that was never created server-side, or edited quiz
// metadata. The CLI consults this before letting a quit through.
func (e *Editor) UnsavedWork() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.drafts {
		if d.Dirty || (d.Valid() && d.ServerID == "") {
			return true
		}
	}
	if e.metaDirty && hasContent(e.meta) {
		return true
	}
	return false
}

func hasContent(meta api.QuizInput) bool {
	return strings.TrimSpace(meta.Name) != "" ||
		strings.TrimSpace(meta.Subject) != "" ||
		strings.TrimSpace(meta.Description) != ""
}
