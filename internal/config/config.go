package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	DatabaseDSN string
	SQLitePath  string
	Env         string
}

// Load loads configuration from environment with sensible defaults.
// DATABASE_DSN selects postgres; when it is empty the app falls back to a
// local sqlite file at STUNDEN_DB.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	cfg.SQLitePath = getEnv("STUNDEN_DB", "stunden.db")
	cfg.Env = getEnv("APP_ENV", "development")
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
			log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean env var")
			return def
		}
		return b
	}
	return def
}
