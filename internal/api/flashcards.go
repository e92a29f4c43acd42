package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/qerr"
)

// ListFlashcards fetches all cards of a quiz. The backend speaks the flat
// wire shape; cards are folded into the nested form here, at the boundary.
func (c *Client) ListFlashcards(ctx context.Context, quizID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("api")

	var wire []models.WireFlashcard
	path := "/flashcards/?quiz_id=" + url.QueryEscape(quizID)
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, len(wire))
	for i, w := range wire {
		cards[i] = w.ToFlashcard()
	}
	log.Debug("fetched %d flashcards for quiz %s", len(cards), quizID)
	return cards, nil
}

// CreateFlashcard persists a new card and returns it with the server id.
func (c *Client) CreateFlashcard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error) {
	if card.QuizID == "" {
		return nil, qerr.BadRequest("flashcard has no quiz id")
	}
	var wire models.WireFlashcard
	if err := c.do(ctx, http.MethodPost, "/flashcards/", card.ToWire(), &wire); err != nil {
		return nil, err
	}
	created := wire.ToFlashcard()
	return &created, nil
}

// UpdateFlashcard persists edits to an existing card.
func (c *Client) UpdateFlashcard(ctx context.Context, card models.Flashcard) error {
	if card.ID == "" {
		return qerr.BadRequest("flashcard has no id")
	}
	return c.do(ctx, http.MethodPut, "/flashcards/"+card.ID, card.ToWire(), nil)
}

// DeleteFlashcard removes a card. The deletion is immediate and
// irreversible from the client's perspective.
func (c *Client) DeleteFlashcard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/flashcards/"+id, nil, nil)
}
