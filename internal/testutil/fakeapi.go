package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizdeck/quizdeck/internal/models"
)

// TestToken is the bearer token the fake backend accepts.
const TestToken = "test-token"

// FakeBackend is an in-memory QuizDeck backend served over httptest. It
// speaks the real envelope and error shapes so client tests exercise the
// full wire path, including grading of test submissions.
type FakeBackend struct {
	Server *httptest.Server

	mu          sync.Mutex
	nextID      int
	User        models.User
	Quizzes     map[string]models.Quiz
	Cards       map[string]models.WireFlashcard
	Sessions    map[string]models.Session
	Progress    map[string][]models.ProgressEntry
	Submissions []submission
	Completed   map[string]int
	Tags        []models.Tag
	Stats       models.DashboardStats

	// FailSubmit forces test submissions to 500, for retry tests.
	FailSubmit bool
	// RequireAuth rejects requests without the expected bearer token.
	RequireAuth bool
}

type submission struct {
	SessionID string              `json:"session_id"`
	Answers   []models.TestAnswer `json:"answers"`
	Duration  int                 `json:"duration"`
}

// NewFakeBackend starts the fake server. Callers must Close it.
func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		User:      models.User{ID: "u1", Email: "student@example.com", Username: "student"},
		Quizzes:   map[string]models.Quiz{},
		Cards:     map[string]models.WireFlashcard{},
		Sessions:  map[string]models.Session{},
		Progress:  map[string][]models.ProgressEntry{},
		Completed: map[string]int{},
	}
	f.Server = httptest.NewServer(f.routes())
	return f
}

func (f *FakeBackend) Close() { f.Server.Close() }

// BaseURL is what the client should use as its API base.
func (f *FakeBackend) BaseURL() string { return f.Server.URL }

func (f *FakeBackend) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

// AddQuiz seeds a quiz and returns its id.
func (f *FakeBackend) AddQuiz(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("q")
	f.Quizzes[id] = models.Quiz{ID: id, Name: name, Status: models.StatusDraft, IsDraft: true, CreatedAt: time.Now()}
	return id
}

// AddCard seeds a flashcard and returns its id.
func (f *FakeBackend) AddCard(quizID, title, question, answer string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("f")
	f.Cards[id] = models.WireFlashcard{
		ID: id, QuizID: quizID,
		QuestionTitle: title, QuestionText: question,
		AnswerText: answer, AnswerType: models.AnswerText,
		Difficulty: 3,
	}
	return id
}

func (f *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.authMiddleware)

	r.Post("/auth/login", f.handleLogin)
	r.Post("/auth/register", f.handleRegister)
	r.Get("/auth/me", f.handleMe)

	r.Get("/quizzes/", f.handleListQuizzes)
	r.Post("/quizzes/", f.handleCreateQuiz)
	r.Get("/quizzes/{id}", f.handleGetQuiz)
	r.Put("/quizzes/{id}", f.handleUpdateQuiz)
	r.Delete("/quizzes/{id}", f.handleDeleteQuiz)
	r.Get("/quizzes/{id}/export", f.handleExportQuiz)

	r.Get("/flashcards/", f.handleListCards)
	r.Post("/flashcards/", f.handleCreateCard)
	r.Put("/flashcards/{id}", f.handleUpdateCard)
	r.Delete("/flashcards/{id}", f.handleDeleteCard)

	r.Post("/sessions/", f.handleCreateSession)
	r.Get("/sessions/", f.handleListSessions)
	r.Put("/sessions/learning/{id}/progress", f.handleProgress)
	r.Post("/sessions/test/submit", f.handleSubmitTest)
	r.Post("/sessions/{id}/complete", f.handleComplete)

	r.Get("/tags/", f.handleTags)
	r.Get("/dashboard/stats", f.handleStats)

	return r
}

func (f *FakeBackend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.RequireAuth && !strings.HasPrefix(r.URL.Path, "/auth/login") && !strings.HasPrefix(r.URL.Path, "/auth/register") {
			if r.Header.Get("Authorization") != "Bearer "+TestToken {
				writeError(w, http.StatusUnauthorized, "missing or invalid token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

type fieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func writeValidationErrors(w http.ResponseWriter, errs ...fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]any{"detail": errs})
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	json.NewDecoder(r.Body).Decode(&body)
	if body.Password == "wrong" {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeData(w, map[string]any{"access_token": TestToken, "user": f.User})
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Username, Password string }
	json.NewDecoder(r.Body).Decode(&body)
	if body.Email == "taken@example.com" {
		writeValidationErrors(w,
			fieldError{Loc: []any{"body", "email"}, Msg: "already registered"},
		)
		return
	}
	user := models.User{ID: "u2", Email: body.Email, Username: body.Username}
	writeData(w, map[string]any{"access_token": TestToken, "user": user})
}

func (f *FakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, f.User)
}

func (f *FakeBackend) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := r.URL.Query().Get("status")
	out := []models.Quiz{}
	for _, q := range f.Quizzes {
		if status != "" && string(q.Status) != status {
			continue
		}
		out = append(out, q)
	}
	writeData(w, out)
}

func (f *FakeBackend) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in models.Quiz
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeValidationErrors(w, fieldError{Loc: []any{"body", "name"}, Msg: "field required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = f.newID("q")
	if in.Status == "" {
		in.Status = models.StatusDraft
	}
	in.CreatedAt = time.Now()
	f.Quizzes[in.ID] = in
	writeData(w, in)
}

func (f *FakeBackend) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.Quizzes[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	writeData(w, q)
}

func (f *FakeBackend) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.Quizzes[id]
	if !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	var in models.Quiz
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	in.ID = q.ID
	in.CreatedAt = q.CreatedAt
	in.UpdatedAt = time.Now()
	if in.Status == "" {
		in.Status = q.Status
	}
	f.Quizzes[id] = in
	writeData(w, in)
}

func (f *FakeBackend) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Quizzes[id]; !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	delete(f.Quizzes, id)
	writeData(w, nil)
}

func (f *FakeBackend) handleExportQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.Quizzes[id]
	if !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	// Raw blob, no envelope.
	w.Header().Set("Content-Type", "application/octet-stream")
	json.NewEncoder(w).Encode(q)
}

func (f *FakeBackend) handleListCards(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quiz_id")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WireFlashcard{}
	for _, c := range f.Cards {
		if c.QuizID == quizID {
			out = append(out, c)
		}
	}
	writeData(w, out)
}

func (f *FakeBackend) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var in models.WireFlashcard
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in.ID = f.newID("f")
	f.Cards[in.ID] = in
	writeData(w, in)
}

func (f *FakeBackend) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Cards[id]; !ok {
		writeError(w, http.StatusNotFound, "flashcard not found")
		return
	}
	var in models.WireFlashcard
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	in.ID = id
	f.Cards[id] = in
	writeData(w, in)
}

func (f *FakeBackend) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Cards[id]; !ok {
		writeError(w, http.StatusNotFound, "flashcard not found")
		return
	}
	delete(f.Cards, id)
	writeData(w, nil)
}

func (f *FakeBackend) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		QuizID string `json:"quiz_id"`
		Mode   string `json:"mode"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Quizzes[body.QuizID]; !ok {
		writeError(w, http.StatusNotFound, "quiz not found")
		return
	}
	sess := models.Session{
		ID:        f.newID("s"),
		UserID:    body.UserID,
		QuizID:    body.QuizID,
		Mode:      models.SessionMode(body.Mode),
		StartedAt: time.Now(),
	}
	f.Sessions[sess.ID] = sess
	writeData(w, sess)
}

func (f *FakeBackend) handleListSessions(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Session{}
	for _, s := range f.Sessions {
		out = append(out, s)
	}
	writeData(w, out)
}

func (f *FakeBackend) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Progress []models.ProgressEntry `json:"progress"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Sessions[id]; !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	f.Progress[id] = append(f.Progress[id], body.Progress...)
	writeData(w, nil)
}

// handleSubmitTest grades against every card of the session's quiz; cards
// the submission skipped come back as incorrect with an empty user answer.
func (f *FakeBackend) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	if f.FailSubmit {
		writeError(w, http.StatusInternalServerError, "submission storage unavailable")
		return
	}
	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.Sessions[sub.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	f.Submissions = append(f.Submissions, sub)

	answered := map[string]models.TestAnswer{}
	for _, a := range sub.Answers {
		answered[a.FlashcardID] = a
	}

	result := models.TestResult{}
	for id, card := range f.Cards {
		if card.QuizID != sess.QuizID {
			continue
		}
		result.Total++
		entry := models.BreakdownEntry{
			FlashcardID:   id,
			Question:      card.QuestionText,
			CorrectAnswer: card.AnswerText,
			Evaluation:    models.EvalIncorrect,
		}
		if a, ok := answered[id]; ok {
			entry.UserAnswer = a.UserAnswer
			if strings.EqualFold(strings.TrimSpace(a.UserAnswer), strings.TrimSpace(card.AnswerText)) {
				entry.Evaluation = models.EvalCorrect
				result.Correct++
			}
		}
		result.Breakdown = append(result.Breakdown, entry)
	}
	if result.Total > 0 {
		result.FinalScore = 100 * float64(result.Correct) / float64(result.Total)
	}

	score := result.FinalScore
	now := time.Now()
	sess.CompletedAt = &now
	sess.Score = &score
	f.Sessions[sub.SessionID] = sess

	writeData(w, result)
}

func (f *FakeBackend) handleComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.Sessions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	f.Completed[id]++
	if sess.CompletedAt == nil {
		now := time.Now()
		sess.CompletedAt = &now
		f.Sessions[id] = sess
	}
	writeData(w, sess)
}

func (f *FakeBackend) handleTags(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Tags == nil {
		writeData(w, []models.Tag{})
		return
	}
	writeData(w, f.Tags)
}

func (f *FakeBackend) handleStats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeData(w, f.Stats)
}

// SubmissionCount returns how many test submissions were received.
func (f *FakeBackend) SubmissionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Submissions)
}

// LastSubmission returns the answers of the most recent submission.
func (f *FakeBackend) LastSubmission() ([]models.TestAnswer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Submissions) == 0 {
		return nil, false
	}
	return f.Submissions[len(f.Submissions)-1].Answers, true
}

// ProgressEntries returns the progress ticks recorded for a session.
func (f *FakeBackend) ProgressEntries(sessionID string) []models.ProgressEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ProgressEntry, len(f.Progress[sessionID]))
	copy(out, f.Progress[sessionID])
	return out
}
