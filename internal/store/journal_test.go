package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/session"
	"github.com/quizdeck/quizdeck/internal/store"
	"github.com/quizdeck/quizdeck/internal/testutil"
)

var _ session.Journal = (*store.Store)(nil)

type JournalSuite struct {
	suite.Suite
	store *store.Store
	ctx   context.Context
}

func (s *JournalSuite) SetupTest() {
	s.store = testutil.NewStore(s.T())
	s.ctx = context.Background()
}

func (s *JournalSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.store)
}

func (s *JournalSuite) TestRecordAndReadBack() {
	err := s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "Paris", TimeTaken: 4})
	s.Require().NoError(err)

	answers, err := s.store.PendingAnswers(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(answers, 1)
	s.Equal("f1", answers[0].FlashcardID)
	s.Equal("Paris", answers[0].UserAnswer)
	s.Equal(4, answers[0].TimeTaken)
}

func (s *JournalSuite) TestAnswersKeepFirstGivenOrder() {
	for _, a := range []models.TestAnswer{
		{FlashcardID: "f3", UserAnswer: "c"},
		{FlashcardID: "f1", UserAnswer: "a"},
		{FlashcardID: "f2", UserAnswer: "b"},
	} {
		s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", a))
	}

	answers, err := s.store.PendingAnswers(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(answers, 3)
	s.Equal("f3", answers[0].FlashcardID)
	s.Equal("f1", answers[1].FlashcardID)
	s.Equal("f2", answers[2].FlashcardID)
}

func (s *JournalSuite) TestRevisedAnswerKeepsPosition() {
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "first", TimeTaken: 2}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f2", UserAnswer: "other"}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "revised", TimeTaken: 9}))

	answers, err := s.store.PendingAnswers(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(answers, 2, "one row per card")
	s.Equal("f1", answers[0].FlashcardID, "revision does not move the answer")
	s.Equal("revised", answers[0].UserAnswer)
	s.Equal(9, answers[0].TimeTaken)
}

func (s *JournalSuite) TestSessionsAreIsolated() {
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "a"}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s2", "q2", models.TestAnswer{FlashcardID: "f1", UserAnswer: "b"}))

	answers, err := s.store.PendingAnswers(s.ctx, "s1")
	s.Require().NoError(err)
	s.Require().Len(answers, 1)
	s.Equal("a", answers[0].UserAnswer)
}

func (s *JournalSuite) TestPendingSessions() {
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "a"}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f2", UserAnswer: "b"}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s2", "q2", models.TestAnswer{FlashcardID: "f9", UserAnswer: "c"}))

	pending, err := s.store.PendingSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)

	byID := map[string]store.PendingSession{}
	for _, p := range pending {
		byID[p.SessionID] = p
	}
	s.Equal(2, byID["s1"].Answers)
	s.Equal("q1", byID["s1"].QuizID)
	s.Equal(1, byID["s2"].Answers)
}

func (s *JournalSuite) TestClear() {
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s1", "q1", models.TestAnswer{FlashcardID: "f1", UserAnswer: "a"}))
	s.Require().NoError(s.store.RecordAnswer(s.ctx, "s2", "q2", models.TestAnswer{FlashcardID: "f2", UserAnswer: "b"}))

	s.Require().NoError(s.store.Clear(s.ctx, "s1"))

	answers, err := s.store.PendingAnswers(s.ctx, "s1")
	s.Require().NoError(err)
	s.Empty(answers)

	// Other sessions are untouched.
	answers, err = s.store.PendingAnswers(s.ctx, "s2")
	s.Require().NoError(err)
	s.Len(answers, 1)
}

func TestJournalSuite(t *testing.T) {
	suite.Run(t, new(JournalSuite))
}

type CacheSuite struct {
	suite.Suite
	store *store.Store
	ctx   context.Context
}

func (s *CacheSuite) SetupTest() {
	s.store = testutil.NewStore(s.T())
	s.ctx = context.Background()
}

func (s *CacheSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.store)
}

func (s *CacheSuite) TestSessionsRoundTrip() {
	score := 87.5
	completed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{ID: "s2", UserID: "u1", QuizID: "q1", Mode: models.ModeTest,
			StartedAt: time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC), CompletedAt: &completed, Score: &score},
		{ID: "s1", UserID: "u1", QuizID: "q1", Mode: models.ModeLearn,
			StartedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)},
	}

	s.Require().NoError(s.store.CacheSessions(s.ctx, sessions))

	got, err := s.store.CachedSessions(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("s2", got[0].ID, "most recent first")
	s.Equal(models.ModeTest, got[0].Mode)
	s.Require().NotNil(got[0].Score)
	s.Equal(87.5, *got[0].Score)
	s.Nil(got[1].CompletedAt)
}

func (s *CacheSuite) TestSessionsReplacedOnRefresh() {
	s.Require().NoError(s.store.CacheSessions(s.ctx, []models.Session{{ID: "old", StartedAt: time.Now()}}))
	s.Require().NoError(s.store.CacheSessions(s.ctx, []models.Session{{ID: "new", StartedAt: time.Now()}}))

	got, err := s.store.CachedSessions(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("new", got[0].ID)
}

func (s *CacheSuite) TestStatsEmptyUntilCached() {
	_, ok, err := s.store.CachedStats(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *CacheSuite) TestStatsUpsert() {
	first := models.DashboardStats{TotalQuizzes: 3, TotalFlashcards: 40, SessionsCompleted: 7, AverageScore: 81.2, StudyStreakDays: 4}
	s.Require().NoError(s.store.CacheStats(s.ctx, first))

	got, ok, err := s.store.CachedStats(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(first, got)

	second := first
	second.SessionsCompleted = 8
	second.StudyStreakDays = 5
	s.Require().NoError(s.store.CacheStats(s.ctx, second))

	got, ok, err = s.store.CachedStats(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(second, got)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}
