// Package config reads the server configuration from the environment.
// main loads .env first, so values there behave like real env vars.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robalobadob/wordle/apps/solo-server/internal/game"
	"github.com/robalobadob/wordle/apps/solo-server/internal/wordapi"
)

// Word sources.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
	SourceDaily  = "daily"
	SourceNone   = "none" // dictionary only: accept every well-formed guess
)

// Config holds application configuration.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" or "console"

	WordSource       string
	DictionarySource string
	RandomWordURL    string
	DictionaryURL    string
	LookupTimeout    time.Duration
	ValidationPolicy game.Policy
	CacheDSN         string // empty disables the dictionary cache

	WordsAnswersFile string
	WordsAllowedFile string
	DailySalt        string

	SessionSecret string
	SessionTTL    time.Duration
	ClientOrigin  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:             getEnv("PORT", "5175"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		WordSource:       strings.ToLower(getEnv("WORD_SOURCE", SourceRemote)),
		DictionarySource: strings.ToLower(getEnv("DICTIONARY_SOURCE", SourceRemote)),
		RandomWordURL:    getEnv("RANDOM_WORD_URL", wordapi.DefaultRandomWordURL),
		DictionaryURL:    getEnv("DICTIONARY_URL", wordapi.DefaultDictionaryURL),
		ValidationPolicy: game.Policy(strings.ToLower(getEnv("VALIDATION_POLICY", string(game.PolicyBlock)))),
		CacheDSN:         os.Getenv("CACHE_DSN"),
		WordsAnswersFile: os.Getenv("WORDS_ANSWERS_FILE"),
		WordsAllowedFile: os.Getenv("WORDS_ALLOWED_FILE"),
		DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
		SessionSecret:    getEnv("SESSION_SECRET", "dev_secret_change_me"),
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
	}
	if _, set := os.LookupEnv("CACHE_DSN"); !set {
		c.CacheDSN = ":memory:"
	}

	var err error
	if c.LookupTimeout, err = getDuration("LOOKUP_TIMEOUT", wordapi.DefaultTimeout); err != nil {
		return nil, err
	}
	if c.SessionTTL, err = getDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.WordSource {
	case SourceRemote, SourceLocal, SourceDaily:
	default:
		return fmt.Errorf("config: WORD_SOURCE must be remote, local or daily, got %q", c.WordSource)
	}
	switch c.DictionarySource {
	case SourceRemote, SourceLocal, SourceNone:
	default:
		return fmt.Errorf("config: DICTIONARY_SOURCE must be remote, local or none, got %q", c.DictionarySource)
	}
	switch c.ValidationPolicy {
	case game.PolicyBlock, game.PolicyAllow:
	default:
		return fmt.Errorf("config: VALIDATION_POLICY must be block or allow, got %q", c.ValidationPolicy)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("config: LOOKUP_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
