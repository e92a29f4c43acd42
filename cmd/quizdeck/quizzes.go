package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/qerr"
	"github.com/quizdeck/quizdeck/internal/resource"
)

func (a *app) cmdQuizzes(ctx context.Context, args []string) error {
	fs := newFlagSet("quizzes")
	status := fs.String("status", "", "Filter by status (draft, published, archived)")
	search := fs.String("search", "", "Filter by name")
	favourite := fs.Bool("favourite", false, "Only favourites")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}

	list := resource.QuizList(a.client, api.QuizFilter{
		Status:    models.QuizStatus(*status),
		Search:    *search,
		Favourite: *favourite,
	})
	quizzes, err := list.Load(ctx)
	if err != nil {
		return err
	}

	if len(quizzes) == 0 {
		fmt.Println("no quizzes found")
		return nil
	}
	for _, q := range quizzes {
		marker := " "
		if q.Favourite {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-10s %3d cards  %s\n", marker, q.ID, q.Status, q.FlashcardCount, q.Name)
	}
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "Quiz id (required)")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("quiz id is required")
	}

	if !*yes {
		answer, err := prompt(fmt.Sprintf("Delete quiz %s? [y/N]", *id))
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			fmt.Println("aborted")
			return nil
		}
	}

	if err := a.client.DeleteQuiz(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted quiz %s\n", *id)
	return nil
}

// cmdSetStatus handles publish and archive. Transitions are checked
// client-side: a draft can be published, anything can be archived, and an
// archived quiz never goes straight back to published.
func (a *app) cmdSetStatus(ctx context.Context, args []string, action string) error {
	fs := newFlagSet(action)
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

	target := models.StatusPublished
	if action == "archive" {
		target = models.StatusArchived
	}
	if !quiz.Status.CanTransition(target) {
		return fmt.Errorf("quiz %s is %s and cannot become %s", *id, quiz.Status, target)
	}

	in := quizToInput(*quiz)
	in.Status = target
	in.IsDraft = false
	if _, err := a.client.UpdateQuiz(ctx, *id, in); err != nil {
		return err
	}
	fmt.Printf("quiz %s is now %s\n", *id, target)
	return nil
}

func quizToInput(q models.Quiz) api.QuizInput {
	return api.QuizInput{
		Name:        q.Name,
		Subject:     q.Subject,
		Category:    q.Category,
		Level:       q.Level,
		Description: q.Description,
		TagIDs:      q.TagIDs,
		Image:       q.Image,
		Status:      q.Status,
		IsDraft:     q.IsDraft,
		Favourite:   q.Favourite,
	}
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := newFlagSet("export")
	id := fs.String("id", "", "Quiz id (required)")
	out := fs.String("o", "", "Output file (default <id>.json)")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("quiz id is required")
	}

	blob, err := a.client.ExportQuiz(ctx, *id)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = *id + ".json"
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", len(blob), path)
	return nil
}

func (a *app) cmdTags(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	tags, err := resource.Tags(a.client).Load(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Println("no tags")
		return nil
	}
	for _, t := range tags {
		fmt.Printf("%-12s %-8s %s\n", t.ID, t.Color, t.Name)
	}
	return nil
}

// cmdStats shows dashboard aggregates, falling back to the local cache
// when the backend is unreachable.
func (a *app) cmdStats(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := resource.Stats(a.client).Load(ctx)
	if err != nil {
		if !qerr.IsTransport(err) {
			return err
		}
		cached, ok, cacheErr := st.CachedStats(ctx)
		if cacheErr != nil || !ok {
			return err
		}
		a.log.Warn("backend unreachable, showing cached statistics")
		stats = &cached
	} else {
		if err := st.CacheStats(ctx, *stats); err != nil {
			a.log.Warn("failed to cache statistics: %v", err)
		}
	}

	fmt.Printf("quizzes:            %d\n", stats.TotalQuizzes)
	fmt.Printf("flashcards:         %d\n", stats.TotalFlashcards)
	fmt.Printf("sessions completed: %d\n", stats.SessionsCompleted)
	fmt.Printf("average score:      %.1f\n", stats.AverageScore)
	fmt.Printf("study streak:       %d days\n", stats.StudyStreakDays)

	sessions, err := resource.RecentSessions(a.client, 10).Load(ctx)
	if err == nil {
		if cacheErr := st.CacheSessions(ctx, sessions); cacheErr != nil {
			a.log.Warn("failed to cache sessions: %v", cacheErr)
		}
		if prev, ok := resource.LastCompletedBefore(sessions); ok && prev.Score != nil {
			fmt.Printf("previous session:   %.1f (%s)\n", *prev.Score, prev.Mode)
		}
	}
	return nil
}
