package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL         string
	LogLevel           string
	DataDir            string
	CredentialsPath    string
	JournalPath        string
	AudioCacheDir      string
	AutosaveDebounceMS int
	JobWorkerCount     int
	JobQueueSize       int
	SpeechVoice        string
	SpeechLanguage     string
	GoogleCredentials  string
	OpenAIAPIKey       string
	OpenAIModel        string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	dataDir := envOr("QUIZDECK_DATA_DIR", defaultDataDir())

	return Config{
		APIBaseURL:         envOr("QUIZDECK_API_URL", "http://localhost:8000/api/v1"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		DataDir:            dataDir,
		CredentialsPath:    envOr("QUIZDECK_CREDENTIALS", filepath.Join(dataDir, "credentials.json")),
		JournalPath:        envOr("QUIZDECK_JOURNAL", filepath.Join(dataDir, "journal.db")),
		AudioCacheDir:      envOr("QUIZDECK_AUDIO_CACHE", filepath.Join(dataDir, "audio")),
		AutosaveDebounceMS: envIntOr("AUTOSAVE_DEBOUNCE_MS", 2000),
		JobWorkerCount:     envIntOr("JOB_WORKER_COUNT", 2),
		JobQueueSize:       envIntOr("JOB_QUEUE_SIZE", 64),
		SpeechVoice:        envOr("SPEECH_VOICE", ""),
		SpeechLanguage:     envOr("SPEECH_LANGUAGE", "en-US"),
		GoogleCredentials:  envOr("GOOGLE_CREDENTIALS_JSON", ""),
		OpenAIAPIKey:       envOr("OPENAI_API_KEY", ""),
		OpenAIModel:        envOr("OPENAI_MODEL", ""),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quizdeck"
	}
	return filepath.Join(home, ".quizdeck")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

// Validate checks the loaded configuration and returns all problems found,
// one per line.
func (c Config) Validate() error {
	var problems []string

	if c.APIBaseURL == "" {
		problems = append(problems, "QUIZDECK_API_URL cannot be empty")
	} else if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("QUIZDECK_API_URL is not a valid URL: %q", c.APIBaseURL))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be DEBUG, INFO, WARN or ERROR, got %q", c.LogLevel))
	}

	if c.AutosaveDebounceMS <= 0 {
		problems = append(problems, "AUTOSAVE_DEBOUNCE_MS must be positive")
	}
	if c.JobWorkerCount <= 0 {
		problems = append(problems, "JOB_WORKER_COUNT must be positive")
	}
	if c.JobQueueSize <= 0 {
		problems = append(problems, "JOB_QUEUE_SIZE must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
