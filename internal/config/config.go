package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config aggregates the runtime settings for the chore service.
type Config struct {
	Port               string
	DBPath             string
	LogLevel           string
	RecurrenceSchedule string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the service can boot anywhere.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		Port:               getString("CHOREBOARD_PORT", "8080"),
		DBPath:             getString("CHOREBOARD_DB_PATH", "choreboard.db"),
		LogLevel:           getString("CHOREBOARD_LOG_LEVEL", "info"),
		RecurrenceSchedule: getString("CHOREBOARD_RECURRENCE_SCHEDULE", "0 0 * * *"),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
