package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string

	SessionSecret string

	// VAT validation gateway (OpenAI-compatible chat completions endpoint).
	VATAIURL   string
	VATAIKey   string
	VATAIModel string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by the caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "file:efactura.db")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.SessionSecret = getEnv("SESSION_SECRET", "devsessionsecret")
	cfg.VATAIURL = getEnv("VAT_AI_URL", "https://api.openai.com/v1/chat/completions")
	cfg.VATAIKey = os.Getenv("VAT_AI_KEY")
	cfg.VATAIModel = getEnv("VAT_AI_MODEL", "gpt-4o-mini")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
