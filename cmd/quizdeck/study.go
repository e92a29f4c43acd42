package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/session"
	"github.com/quizdeck/quizdeck/internal/speech"
)

func (a *app) cmdStudy(ctx context.Context, args []string) error {
	fs := newFlagSet("study")
	quizID := fs.String("quiz", "", "Quiz id (required)")
	mode := fs.String("mode", "learn", "Session mode: learn or test")
	speak := fs.Bool("speak", false, "Synthesize card audio in the background")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}
	if *quizID == "" {
		return fmt.Errorf("quiz id is required")
	}

	sessionMode := models.SessionMode(*mode)
	if sessionMode != models.ModeLearn && sessionMode != models.ModeTest {
		return fmt.Errorf("mode must be learn or test, got %q", *mode)
	}

	user := a.auth.User()
	if user == nil {
		fetched, err := a.client.Me(ctx)
		if err != nil {
			return err
		}
		user = fetched
	}

	opts := []session.Option{}
	if sessionMode == models.ModeTest {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, session.WithJournal(st))
	}

	var synth *speech.Synthesizer
	if *speak {
		synth = speech.New(a.cfg.GoogleCredentials, a.cfg.AudioCacheDir, a.cfg.SpeechLanguage, a.cfg.SpeechVoice)
		if !synth.Enabled() {
			a.log.Warn("speech requested but GOOGLE_CREDENTIALS_JSON is not set")
			synth = nil
		}
	}

	runner := session.NewRunner(a.client, a.pool, *user, *quizID, sessionMode, opts...)
	if err := runner.Start(ctx); err != nil {
		return err
	}

	return a.studyLoop(ctx, runner, synth)
}

func (a *app) studyLoop(ctx context.Context, runner *session.Runner, synth *speech.Synthesizer) error {
	reader := bufio.NewReader(os.Stdin)
	total := runner.Deck()

	for runner.State() == session.StateActive {
		card, idx, ok := runner.Current()
		if !ok {
			break
		}

		if synth != nil {
			// Audio is best-effort; a dropped job is fine.
			_ = a.pool.Submit(synth.Job(card))
		}

		fmt.Printf("\n[%d/%d] %s\n", idx+1, total, card.Question.Title)
		fmt.Println(card.Question.Text)
		for i, opt := range card.Answer.Options {
			fmt.Printf("  %d) %s\n", i+1, opt.Label)
		}
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			// Stdin closed; flush what we have in test mode.
			if _, serr := runner.Submit(ctx); serr != nil && runner.State() == session.StateActive {
				return serr
			}
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "/quit":
			return a.quitSession(ctx, runner)
		case line == "/skip":
			if err := runner.Next(ctx); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(line, "/back "):
			n, convErr := strconv.Atoi(strings.TrimPrefix(line, "/back "))
			if convErr != nil {
				fmt.Println("usage: /back <card number>")
				continue
			}
			runner.GoTo(n - 1)
			continue
		}

		fb, err := runner.SubmitAnswer(ctx, line)
		if err != nil {
			return err
		}
		if fb.Correct {
			fmt.Println("correct!")
		} else {
			fmt.Printf("incorrect — the answer was: %s\n", fb.CorrectAnswer)
		}

		if err := runner.Next(ctx); err != nil {
			return err
		}
	}

	return a.printOutcome(runner)
}

// quitSession handles an early /quit. A test session keeps its journaled
// answers so 'quizdeck resume' can finish the submission later.
func (a *app) quitSession(ctx context.Context, runner *session.Runner) error {
	if sess := runner.Session(); sess != nil && sess.Mode == models.ModeTest {
		fmt.Printf("session %s left unfinished; run 'quizdeck resume' to submit buffered answers\n", sess.ID)
		return nil
	}
	correct, totalAnswered := runner.LearnTally()
	fmt.Printf("stopped early: %d/%d correct so far\n", correct, totalAnswered)
	return nil
}

func (a *app) printOutcome(runner *session.Runner) error {
	switch runner.State() {
	case session.StateCompleted:
		if result := runner.Result(); result != nil {
			fmt.Printf("\nfinal score: %.1f (%d/%d)\n", result.FinalScore, result.Correct, result.Total)
			for _, entry := range result.Breakdown {
				if entry.Evaluation == models.EvalCorrect {
					continue
				}
				if entry.UserAnswer == "" {
					fmt.Printf("  unanswered: %s -> %s\n", entry.Question, entry.CorrectAnswer)
				} else {
					fmt.Printf("  missed: %s -> %s (you said %q)\n", entry.Question, entry.CorrectAnswer, entry.UserAnswer)
				}
			}
			return nil
		}
		correct, total := runner.LearnTally()
		fmt.Printf("\nsession complete: %d/%d correct\n", correct, total)
		return nil
	case session.StateFailed:
		return runner.Err()
	default:
		return nil
	}
}

// cmdResume lists interrupted test sessions and resubmits one from the
// local journal.
func (a *app) cmdResume(ctx context.Context, args []string) error {
	fs := newFlagSet("resume")
	sessionID := fs.String("session", "", "Session id to resubmit (lists pending when omitted)")
	fs.Parse(args)

	if err := a.requireLogin(); err != nil {
		return err
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if *sessionID == "" {
		pending, err := st.PendingSessions(ctx)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("no interrupted sessions")
			return nil
		}
		for _, p := range pending {
			fmt.Printf("%-12s quiz=%-12s %d answers  (last activity %s)\n",
				p.SessionID, p.QuizID, p.Answers, p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println("\nrun 'quizdeck resume -session <id>' to submit")
		return nil
	}

	answers, err := st.PendingAnswers(ctx, *sessionID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		return fmt.Errorf("no journaled answers for session %s", *sessionID)
	}

	duration := 0
	for _, ans := range answers {
		duration += ans.TimeTaken
	}

	result, err := a.client.SubmitTest(ctx, api.TestSubmission{
		SessionID: *sessionID,
		Answers:   answers,
		Duration:  duration,
	})
	if err != nil {
		return fmt.Errorf("submission failed (answers kept): %w", err)
	}

	if err := st.Clear(ctx, *sessionID); err != nil {
		a.log.Warn("failed to clear journal: %v", err)
	}

	fmt.Printf("final score: %.1f (%d/%d)\n", result.FinalScore, result.Correct, result.Total)
	return nil
}
