package session_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/session"
	"github.com/quizdeck/quizdeck/internal/testutil"
)

var testUser = models.User{ID: "u1", Email: "student@example.com"}

func seededRunner(t *testing.T, mode models.SessionMode, cards int, opts ...session.Option) (*session.Runner, *testutil.FakeBackend) {
	t.Helper()
	fake := testutil.NewFakeBackend()
	t.Cleanup(fake.Close)

	quizID := fake.AddQuiz("Geography")
	for i := 0; i < cards; i++ {
		fake.AddCard(quizID, fmt.Sprintf("card %d", i), fmt.Sprintf("question %d?", i), fmt.Sprintf("answer %d", i))
	}

	client := api.New(fake.BaseURL(), api.StaticToken(testutil.TestToken))
	opts = append(opts, session.WithRand(rand.New(rand.NewSource(1))))
	return session.NewRunner(client, nil, testUser, quizID, mode, opts...), fake
}

func TestRunner_Start(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 3)

	require.NoError(t, runner.Start(context.Background()))
	assert.Equal(t, session.StateActive, runner.State())
	assert.Equal(t, 3, runner.Deck())
	assert.Equal(t, []int{0}, runner.Seen())

	_, idx, ok := runner.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestRunner_StartTwice(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeLearn, 1)
	require.NoError(t, runner.Start(context.Background()))
	assert.Error(t, runner.Start(context.Background()))
}

func TestRunner_StartFailsOnEmptyQuiz(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 0)

	err := runner.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, session.StateFailed, runner.State())
	assert.Equal(t, err, runner.Err())
}

func TestRunner_SeenGatesNavigation(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 3)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	// Jumping ahead of what was shown is a no-op.
	runner.GoTo(2)
	_, idx, _ := runner.Current()
	assert.Equal(t, 0, idx)

	require.NoError(t, runner.Next(ctx))
	assert.Equal(t, []int{0, 1}, runner.Seen())

	// Going back to a visited card works.
	runner.GoTo(0)
	_, idx, _ = runner.Current()
	assert.Equal(t, 0, idx)

	// Revisiting never duplicates the index.
	require.NoError(t, runner.Next(ctx))
	assert.Equal(t, []int{0, 1}, runner.Seen())
}

func TestRunner_TestModeLatestAnswerWins(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeTest, 2)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	card, _, _ := runner.Current()
	_, err := runner.SubmitAnswer(ctx, "first try")
	require.NoError(t, err)
	require.NoError(t, runner.Next(ctx))

	// Go back and change the answer.
	runner.GoTo(0)
	_, err = runner.SubmitAnswer(ctx, card.Answer.Text)
	require.NoError(t, err)

	runner.GoTo(1)
	second, _, _ := runner.Current()
	_, err = runner.SubmitAnswer(ctx, second.Answer.Text)
	require.NoError(t, err)

	result, err := runner.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)

	answers, ok := fake.LastSubmission()
	require.True(t, ok)
	require.Len(t, answers, 2, "one buffered answer per card")
	assert.Equal(t, card.ID, answers[0].FlashcardID, "revised answer keeps its original position")
	assert.Equal(t, card.Answer.Text, answers[0].UserAnswer)
}

func TestRunner_TestModeNothingOnWireBeforeSubmit(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeTest, 2)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	_, err := runner.SubmitAnswer(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, 0, fake.SubmissionCount())
}

func TestRunner_PerfectScore(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 3)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	for runner.State() == session.StateActive {
		card, _, ok := runner.Current()
		if !ok {
			break
		}
		fb, err := runner.SubmitAnswer(ctx, card.Answer.Text)
		require.NoError(t, err)
		assert.True(t, fb.Correct)
		require.NoError(t, runner.Next(ctx))
	}

	assert.Equal(t, session.StateCompleted, runner.State())
	result := runner.Result()
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Correct)
	assert.Equal(t, 3, result.Total)
	assert.InDelta(t, 100.0, result.FinalScore, 0.01)
}

func TestRunner_MixedScore(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 3)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	var missed models.Flashcard
	first := true
	for runner.State() == session.StateActive {
		card, _, ok := runner.Current()
		if !ok {
			break
		}
		answer := card.Answer.Text
		if first {
			missed = card
			answer = "not even close"
			first = false
		}
		_, err := runner.SubmitAnswer(ctx, answer)
		require.NoError(t, err)
		require.NoError(t, runner.Next(ctx))
	}

	result := runner.Result()
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 3, result.Total)

	var entry *models.BreakdownEntry
	for i := range result.Breakdown {
		if result.Breakdown[i].FlashcardID == missed.ID {
			entry = &result.Breakdown[i]
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, models.EvalIncorrect, entry.Evaluation)
	assert.Equal(t, "not even close", entry.UserAnswer)
	assert.Equal(t, missed.Answer.Text, entry.CorrectAnswer)
}

func TestRunner_SkippedCardGradedAsUnanswered(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 2)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	skipped, _, _ := runner.Current()
	require.NoError(t, runner.Next(ctx)) // no answer given

	card, _, _ := runner.Current()
	_, err := runner.SubmitAnswer(ctx, card.Answer.Text)
	require.NoError(t, err)
	require.NoError(t, runner.Next(ctx))

	result := runner.Result()
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 2, result.Total)

	for _, entry := range result.Breakdown {
		if entry.FlashcardID == skipped.ID {
			assert.Equal(t, models.EvalIncorrect, entry.Evaluation)
			assert.Empty(t, entry.UserAnswer)
		}
	}
}

func TestRunner_SubmitFailureKeepsBuffer(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeTest, 1)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	card, _, _ := runner.Current()
	_, err := runner.SubmitAnswer(ctx, card.Answer.Text)
	require.NoError(t, err)

	fake.FailSubmit = true
	require.Error(t, runner.Next(ctx))
	assert.Equal(t, session.StateActive, runner.State(), "failed submission leaves the session retryable")

	fake.FailSubmit = false
	result, err := runner.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Correct)

	answers, ok := fake.LastSubmission()
	require.True(t, ok)
	assert.Len(t, answers, 1, "buffer survived the failed attempt")
	assert.Equal(t, session.StateCompleted, runner.State())
}

func TestRunner_SubmitIdempotentAfterCompletion(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeTest, 1)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	card, _, _ := runner.Current()
	_, err := runner.SubmitAnswer(ctx, card.Answer.Text)
	require.NoError(t, err)
	require.NoError(t, runner.Next(ctx))

	first := runner.Result()
	again, err := runner.Submit(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, fake.SubmissionCount())
}

func TestRunner_LearnModeProgressTicks(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeLearn, 2)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	sess := runner.Session()
	require.NotNil(t, sess)

	for runner.State() == session.StateActive {
		card, _, ok := runner.Current()
		if !ok {
			break
		}
		_, err := runner.SubmitAnswer(ctx, card.Answer.Text)
		require.NoError(t, err)
		require.NoError(t, runner.Next(ctx))
	}

	assert.Equal(t, session.StateCompleted, runner.State())
	correct, total := runner.LearnTally()
	assert.Equal(t, 2, correct)
	assert.Equal(t, 2, total)

	// With no pool wired, ticks run inline and are visible immediately.
	entries := fake.ProgressEntries(sess.ID)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Reviewed)
		assert.Equal(t, 1, e.Confidence, "first correct answer starts a streak of one")
	}
	assert.Equal(t, 0, fake.SubmissionCount(), "learn mode never posts a test submission")
}

func TestRunner_LearnModeSurvivesProgressFailure(t *testing.T) {
	runner, fake := seededRunner(t, models.ModeLearn, 1)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	// Dropping the session server-side makes every progress tick 404.
	sess := runner.Session()
	require.NotNil(t, sess)
	delete(fake.Sessions, sess.ID)

	card, _, _ := runner.Current()
	fb, err := runner.SubmitAnswer(ctx, card.Answer.Text)
	require.NoError(t, err, "a failed tick never surfaces to the caller")
	assert.True(t, fb.Correct)
}

type recordingJournal struct {
	records []models.TestAnswer
	cleared []string
}

func (j *recordingJournal) RecordAnswer(_ context.Context, sessionID, quizID string, ans models.TestAnswer) error {
	j.records = append(j.records, ans)
	return nil
}

func (j *recordingJournal) Clear(_ context.Context, sessionID string) error {
	j.cleared = append(j.cleared, sessionID)
	return nil
}

func TestRunner_JournalsAnswersAndClearsOnSubmit(t *testing.T) {
	journal := &recordingJournal{}
	runner, _ := seededRunner(t, models.ModeTest, 2, session.WithJournal(journal))
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	for runner.State() == session.StateActive {
		card, _, ok := runner.Current()
		if !ok {
			break
		}
		_, err := runner.SubmitAnswer(ctx, card.Answer.Text)
		require.NoError(t, err)
		require.NoError(t, runner.Next(ctx))
	}

	assert.Len(t, journal.records, 2)
	require.Len(t, journal.cleared, 1)
	assert.Equal(t, runner.Session().ID, journal.cleared[0])
}

func TestRunner_FeedbackClearedOnAdvance(t *testing.T) {
	runner, _ := seededRunner(t, models.ModeTest, 2)
	ctx := context.Background()
	require.NoError(t, runner.Start(ctx))

	_, err := runner.SubmitAnswer(ctx, "guess")
	require.NoError(t, err)
	require.NotNil(t, runner.Feedback())

	require.NoError(t, runner.Next(ctx))
	assert.Nil(t, runner.Feedback())
}
