package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/editor"
	"github.com/quizdeck/quizdeck/internal/generate"
	"github.com/quizdeck/quizdeck/internal/models"
)

func (a *app) debounce() time.Duration {
	return time.Duration(a.cfg.AutosaveDebounceMS) * time.Millisecond
}

func (a *app) cmdCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	name := fs.String("name", "", "Quiz name")
	subject := fs.String("subject", "", "Quiz subject")
	description := fs.String("description", "", "Quiz description")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}

	n, err := promptRequired("Name", *name)
	if err != nil {
		return err
	}
	s, err := promptRequired("Subject", *subject)
	if err != nil {
		return err
	}

	ed := editor.New(a.client, "", a.debounce())
	ed.SetMetadata(api.QuizInput{
		Name:        n,
		Subject:     s,
		Description: *description,
		IsDraft:     true,
		Status:      models.StatusDraft,
	})
	if err := ed.SaveMetadata(ctx); err != nil {
		return err
	}
	fmt.Printf("created quiz %s\n", ed.QuizID())

	return a.editLoop(ctx, ed)
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	id := fs.String("id", "", "Quiz id (required)")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("quiz id is required")
	}

	quiz, err := a.client.GetQuiz(ctx, *id)
	if err != nil {
		return err
	}

	ed := editor.New(a.client, *id, a.debounce())
	ed.SetMetadata(quizToInput(*quiz))
	if err := ed.Load(ctx); err != nil {
		return err
	}

	return a.editLoop(ctx, ed)
}

const editHelp = `commands:
  t <text>   set question title        a <text>   set answer text
  q <text>   set question text         d <1-5>    set difficulty
  list       list all cards            new        add a card
  go <n>     switch to card n          del <n>    delete card n
  help       show this help            quit       save and exit`

// editLoop is the interactive flashcard editor. Field edits auto-save
// through the debounce pipeline; switching cards flushes the outgoing one.
func (a *app) editLoop(ctx context.Context, ed *editor.Editor) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println(editHelp)

	for {
		draft, idx := ed.Active()
		status := "unsaved"
		if draft.ServerID != "" {
			status = draft.ServerID
		}
		if draft.Dirty {
			status += "*"
		}
		fmt.Printf("\ncard %d [%s] %q / %q -> %q\n> ", idx+1, status,
			draft.Card.Question.Title, draft.Card.Question.Text, draft.Card.Answer.Text)

		line, err := reader.ReadString('\n')
		if err != nil {
			return a.finishEditing(ctx, ed, true)
		}
		line = strings.TrimSpace(line)
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "t":
			ed.Update(func(c *models.Flashcard) { c.Question.Title = rest })
		case "q":
			ed.Update(func(c *models.Flashcard) { c.Question.Text = rest })
		case "a":
			ed.Update(func(c *models.Flashcard) { c.Answer.Text = rest })
		case "d":
			n, convErr := strconv.Atoi(rest)
			if convErr != nil || n < 1 || n > 5 {
				fmt.Println("difficulty must be 1..5")
				continue
			}
			ed.Update(func(c *models.Flashcard) { c.Question.Difficulty = n })
		case "list":
			for i, d := range ed.Drafts() {
				marker := " "
				if d.Dirty {
					marker = "*"
				}
				fmt.Printf("%s %2d. %q -> %q\n", marker, i+1, d.Card.Question.Title, d.Card.Answer.Text)
			}
		case "new":
			if _, err := ed.Add(ctx); err != nil {
				a.log.Error("could not save card before adding: %v", err)
			}
		case "go":
			n, convErr := strconv.Atoi(rest)
			if convErr != nil {
				fmt.Println("usage: go <card number>")
				continue
			}
			if err := ed.SetActive(ctx, n-1); err != nil {
				a.log.Error("could not save card before switching: %v", err)
			}
		case "del":
			n, convErr := strconv.Atoi(rest)
			if convErr != nil {
				fmt.Println("usage: del <card number>")
				continue
			}
			if err := ed.Delete(ctx, n-1); err != nil {
				a.log.Error("delete failed: %v", err)
			}
		case "help":
			fmt.Println(editHelp)
		case "quit", "q!":
			return a.finishEditing(ctx, ed, cmd != "q!")
		case "":
		default:
			fmt.Printf("unknown command %q (try 'help')\n", cmd)
		}
	}
}

// finishEditing is the navigation guard: when unsaved work exists the user
// chooses between flushing it and abandoning it.
func (a *app) finishEditing(ctx context.Context, ed *editor.Editor, save bool) error {
	if !ed.UnsavedWork() {
		return nil
	}
	if !save {
		fmt.Println("discarding unsaved changes")
		return nil
	}
	if err := ed.SaveMetadata(ctx); err != nil {
		return err
	}
	if err := ed.FlushAll(ctx); err != nil {
		return fmt.Errorf("could not save all cards: %w", err)
	}
	fmt.Println("all changes saved")
	return nil
}

// cmdGenerate drafts cards with the LLM and pushes them through the same
// editor pipeline manual edits use.
func (a *app) cmdGenerate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate")
	quizID := fs.String("quiz", "", "Quiz id to add cards to (required)")
	topic := fs.String("topic", "", "Topic to generate cards for (required)")
	count := fs.Int("n", 10, "Number of cards")
	difficulty := fs.Int("difficulty", 0, "Difficulty 1..5 (0 lets the model pick)")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}
	if *quizID == "" || *topic == "" {
		return fmt.Errorf("both -quiz and -topic are required")
	}
	if a.cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	gen := generate.New(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel)
	drafts, err := gen.Drafts(ctx, generate.Request{
		Topic:      *topic,
		Count:      *count,
		Difficulty: *difficulty,
	})
	if err != nil {
		return err
	}

	ed := editor.New(a.client, *quizID, a.debounce())
	for i, card := range drafts {
		card := card
		ed.Update(func(c *models.Flashcard) {
			c.Question = card.Question
			c.Answer = card.Answer
		})
		if i < len(drafts)-1 {
			// Add flushes the card we just filled in before switching.
			if _, err := ed.Add(ctx); err != nil {
				return err
			}
		}
	}
	if err := ed.FlushAll(ctx); err != nil {
		return err
	}

	fmt.Printf("added %d generated cards to quiz %s\n", len(drafts), *quizID)
	return nil
}
