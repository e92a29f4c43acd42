package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/quizdeck/quizdeck/internal/logger"
	"github.com/quizdeck/quizdeck/internal/models"
	"github.com/quizdeck/quizdeck/internal/worker"
)

// Synthesizer turns card text into mp3 files in the audio cache. It is
// best-effort by contract: callers log failures and move on, study flow
// never blocks on audio.
type Synthesizer struct {
	credentialsPath string
	cacheDir        string
	language        string
	voice           string
	log             *logger.Logger
}

// New creates a Synthesizer. Enabled() is false when no credentials are
// configured; every other method then short-circuits.
func New(credentialsPath, cacheDir, language, voice string) *Synthesizer {
	return &Synthesizer{
		credentialsPath: credentialsPath,
		cacheDir:        cacheDir,
		language:        language,
		voice:           voice,
		log:             logger.Default().WithPrefix("speech"),
	}
}

func (s *Synthesizer) Enabled() bool {
	return s.credentialsPath != ""
}

// CachePath returns where a card's audio lives once synthesized. The name
// keys on the spoken text so an edited card gets fresh audio.
func (s *Synthesizer) CachePath(card models.Flashcard) string {
	sum := sha256.Sum256([]byte(card.ID + "\x00" + card.Question.Text))
	return filepath.Join(s.cacheDir, hex.EncodeToString(sum[:8])+".mp3")
}

// Synthesize renders the card's question text to mp3 and returns the cache
// path. Already-cached audio is returned without a network call.
func (s *Synthesizer) Synthesize(ctx context.Context, card models.Flashcard) (string, error) {
	if !s.Enabled() {
		return "", errors.New("speech synthesis is not configured")
	}
	text := card.Question.Text
	if text == "" {
		return "", errors.New("card has no question text")
	}

	path := s.CachePath(card)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	client, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(s.credentialsPath))
	if err != nil {
		return "", fmt.Errorf("create tts client: %w", err)
	}
	defer client.Close()

	language := s.language
	if card.Question.Lang != "" {
		language = card.Question.Lang
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, resp.AudioContent, 0o644); err != nil {
		return "", err
	}

	s.log.Debug("synthesized %d bytes for card %s", len(resp.AudioContent), card.ID)
	return path, nil
}

// Job wraps a synthesis request for the worker pool.
func (s *Synthesizer) Job(card models.Flashcard) worker.Job {
	return &speakJob{synth: s, card: card}
}

type speakJob struct {
	synth *Synthesizer
	card  models.Flashcard
}

func (j *speakJob) Name() string { return "speak-card" }

func (j *speakJob) Run(ctx context.Context) error {
	_, err := j.synth.Synthesize(ctx, j.card)
	return err
}
