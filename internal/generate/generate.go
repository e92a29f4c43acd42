package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
)

// Request describes what to generate drafts for.
type Request struct {
	Topic      string
	Count      int
	Difficulty int // 1..5, 0 means let the model pick
	Language   string
}

// Generator drafts flashcards with an LLM. The drafts come back without
// ids; they enter the normal create/auto-save path through the editor.
type Generator struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

func New(apiKey, model string) *Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    logger.Default().WithPrefix("generate"),
	}
}

const systemPrompt = "You are an expert flashcard author. Produce concise question/answer " +
	"flashcards. Answers must be short enough to type exactly. Respond only with JSON."

type generatedCard struct {
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options,omitempty"`
	Examples []string `json:"examples,omitempty"`
}

// Drafts asks the model for req.Count cards on req.Topic.
func (g *Generator) Drafts(ctx context.Context, req Request) ([]models.Flashcard, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if req.Count <= 0 {
		req.Count = 10
	}

	g.log.Info("generating %d flashcards for topic %q", req.Count, req.Topic)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: g.buildPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	var payload struct {
		Cards []generatedCard `json:"cards"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty < 1 || difficulty > 5 {
		difficulty = 3
	}

	cards := make([]models.Flashcard, 0, len(payload.Cards))
	for _, gc := range payload.Cards {
		if strings.TrimSpace(gc.Question) == "" || strings.TrimSpace(gc.Answer) == "" {
			continue
		}
		title := gc.Title
		if title == "" {
			title = req.Topic
		}
		card := models.Flashcard{
			Question: models.Question{
				Title:      title,
				Text:       gc.Question,
				Difficulty: difficulty,
				Lang:       req.Language,
				Examples:   gc.Examples,
			},
			Answer: models.Answer{
				Text: gc.Answer,
				Type: models.AnswerText,
				Lang: req.Language,
			},
		}
		if len(gc.Options) > 0 {
			card.Answer.Type = models.AnswerChoice
			for _, opt := range gc.Options {
				card.Answer.Options = append(card.Answer.Options, models.AnswerOption{Value: opt, Label: opt})
			}
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("model produced no usable cards")
	}
	g.log.Info("generated %d usable flashcards", len(cards))
	return cards, nil
}

func (g *Generator) buildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d flashcards about %q.\n", req.Count, req.Topic)
	if req.Difficulty >= 1 && req.Difficulty <= 5 {
		fmt.Fprintf(&sb, "Difficulty level: %d of 5.\n", req.Difficulty)
	}
	if req.Language != "" {
		fmt.Fprintf(&sb, "Write them in language %q.\n", req.Language)
	}
	sb.WriteString(`Return JSON: {"cards":[{"title":...,"question":...,"answer":...,` +
		`"options":[...optional multiple choice options including the answer...],` +
		`"examples":[...optional usage examples...]}]}`)
	return sb.String()
}
