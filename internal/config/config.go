package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// Question bank.
	QuestionBankPath string
	StrictCorpus     bool

	// Quiz rules.
	QuizSize    int
	PassPercent int
	// RewardToken is handed out once a submission reaches PassPercent.
	// Empty means unconfigured; the grader substitutes a placeholder.
	RewardToken string

	// Session lifecycle.
	SessionTTL   time.Duration
	CookieMaxAge time.Duration
	CookieSecure bool

	SubmitRatePerMinute int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	// Score ledger. Both URLs must be set to enable it.
	RedisURL    string
	DatabaseURL string
	MaxDBConns  int32
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "pretty"),
		QuestionBankPath:    getEnv("QUESTION_BANK_PATH", "./knowledge.csv"),
		StrictCorpus:        getEnvBool("STRICT_CORPUS", false),
		QuizSize:            getEnvInt("QUIZ_SIZE", 50),
		PassPercent:         getEnvInt("PASS_PERCENT", 90),
		RewardToken:         getEnv("REWARD_TOKEN", os.Getenv("A1CTF_FLAG")),
		SessionTTL:          getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieMaxAge:        time.Duration(getEnvInt("COOKIE_MAX_AGE_DAYS", 30)) * 24 * time.Hour,
		CookieSecure:        getEnvBool("COOKIE_SECURE", false),
		SubmitRatePerMinute: getEnvInt("SUBMIT_RATE_PER_MINUTE", 30),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		RedisURL:            getEnv("REDIS_URL", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		MaxDBConns:          int32(getEnvInt("MAX_DB_CONNS", 4)),
	}
}

// LedgerEnabled reports whether graded scores should be queued for persistence.
func (c *Config) LedgerEnabled() bool {
	return c.RedisURL != "" && c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("90m", "24h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
