// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scoring policy names accepted by SCORING_POLICY.
const (
	PolicyRubric = "rubric"
	PolicyLegacy = "legacy"
	PolicyJudge  = "judge"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	OpenAIAPIKey string
	ChatBaseURL  string
	ChatModel    string
	Temperature  float64
	JudgeModel   string
	TTSModel     string
	TTSVoice     string

	ScoringPolicy string
	ScenariosPath string // optional override for the embedded bank

	TranscriptLog TranscriptLogConfig
	RateLimit     RateLimitConfig
}

// TranscriptLogConfig controls NDJSON transcript logging.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// RateLimitConfig caps trainee messages per rolling window.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_LOG_QUEUE_SIZE", 256)
	if queueSize <= 0 {
		queueSize = 256
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/salescoach.db"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		ChatBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		ChatModel:    getEnv("CHAT_MODEL", "gpt-3.5-turbo-0125"),
		Temperature:  getEnvFloat("CHAT_TEMPERATURE", 0.7),
		JudgeModel:   getEnv("JUDGE_MODEL", "gpt-3.5-turbo-0125"),
		TTSModel:     getEnv("TTS_MODEL", "tts-1"),
		TTSVoice:     getEnv("TTS_VOICE", "alloy"),

		ScoringPolicy: strings.ToLower(getEnv("SCORING_POLICY", PolicyRubric)),
		ScenariosPath: getEnv("SCENARIOS_PATH", ""),

		TranscriptLog: TranscriptLogConfig{
			Enabled:   getEnvBool("TRANSCRIPT_LOG_ENABLED", true),
			Dir:       getEnv("TRANSCRIPT_LOG_DIR", "./data/logs/transcripts"),
			QueueSize: queueSize,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			WindowDuration:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.ChatBaseURL == "" {
		return fmt.Errorf("OPENAI_BASE_URL cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("CHAT_TEMPERATURE must be between 0 and 2")
	}
	switch c.ScoringPolicy {
	case PolicyRubric, PolicyLegacy, PolicyJudge:
	default:
		return fmt.Errorf("SCORING_POLICY must be one of %s, %s, %s", PolicyRubric, PolicyLegacy, PolicyJudge)
	}
	if c.TranscriptLog.Enabled && c.TranscriptLog.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_LOG_DIR cannot be empty")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
