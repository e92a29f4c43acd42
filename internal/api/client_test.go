package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck/internal/api"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/qerr"
	"github.com/quizdeck/quizdeck/internal/testutil"
)

func newClient(f *testutil.FakeBackend) *api.Client {
	return api.New(f.BaseURL(), api.StaticToken(testutil.TestToken))
}

func TestLogin(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	client := api.New(fake.BaseURL(), api.StaticToken(""))

	token, user, err := client.Login(context.Background(), "student@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, testutil.TestToken, token)
	assert.Equal(t, "student@example.com", user.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	client := api.New(fake.BaseURL(), api.StaticToken(""))

	_, _, err := client.Login(context.Background(), "student@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, qerr.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestRegister_FlattensValidationErrors(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	client := api.New(fake.BaseURL(), api.StaticToken(""))

	_, _, err := client.Register(context.Background(), "taken@example.com", "dup", "pw")
	require.Error(t, err)
	assert.True(t, qerr.IsValidation(err))
	// The 422 field-error list is flattened into one readable string.
	assert.Contains(t, err.Error(), "body.email: already registered")
}

func TestBearerTokenRequired(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	fake.RequireAuth = true

	anonymous := api.New(fake.BaseURL(), api.StaticToken(""))
	_, err := anonymous.ListTags(context.Background())
	require.Error(t, err)
	assert.True(t, qerr.IsUnauthorized(err))

	authed := newClient(fake)
	_, err = authed.ListTags(context.Background())
	assert.NoError(t, err)
}

func TestListFlashcards_MapsWireShape(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	quizID := fake.AddQuiz("Geography")
	fake.AddCard(quizID, "Capitals", "Capital of France?", "Paris")

	client := newClient(fake)
	cards, err := client.ListFlashcards(context.Background(), quizID)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	// Flat wire fields arrive folded into the nested shape.
	assert.Equal(t, "Capitals", cards[0].Question.Title)
	assert.Equal(t, "Capital of France?", cards[0].Question.Text)
	assert.Equal(t, "Paris", cards[0].Answer.Text)
	assert.Equal(t, quizID, cards[0].QuizID)
}

func TestCreateThenUpdateFlashcard(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	quizID := fake.AddQuiz("Geography")
	client := newClient(fake)
	ctx := context.Background()

	card := models.Flashcard{
		QuizID: quizID,
		Question: models.Question{Title: "Capitals", Text: "Capital of Spain?", Difficulty: 1},
		Answer:   models.Answer{Text: "Madrid", Type: models.AnswerText},
	}

	created, err := client.CreateFlashcard(ctx, card)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	created.Answer.Text = "Madrid "
	require.NoError(t, client.UpdateFlashcard(ctx, *created))

	cards, err := client.ListFlashcards(ctx, quizID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, created.ID, cards[0].ID)
}

func TestGetQuiz_NotFound(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	client := newClient(fake)

	_, err := client.GetQuiz(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, qerr.IsNotFound(err))
}

func TestExportQuiz_RawBlob(t *testing.T) {
	fake := testutil.NewFakeBackend()
	defer fake.Close()
	quizID := fake.AddQuiz("Geography")
	client := newClient(fake)

	blob, err := client.ExportQuiz(context.Background(), quizID)
	require.NoError(t, err)

	// The export endpoint bypasses the envelope entirely.
	var quiz models.Quiz
	require.NoError(t, json.Unmarshal(blob, &quiz))
	assert.Equal(t, quizID, quiz.ID)
}

func TestEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "quota exceeded"})
	}))
	defer srv.Close()

	client := api.New(srv.URL, api.StaticToken(""))
	_, err := client.ListTags(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := api.New(srv.URL, api.StaticToken(""))
	_, err := client.ListTags(context.Background())
	require.Error(t, err)
	assert.True(t, qerr.IsTransport(err))
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := api.New(srv.URL, api.StaticToken(""))
	_, err := client.ListTags(context.Background())
	require.Error(t, err)

	var qe *qerr.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, qerr.CodeServer, qe.Code)
	assert.Equal(t, http.StatusInternalServerError, qe.Status)
}
