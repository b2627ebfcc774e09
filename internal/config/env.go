package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; values never override the process environment.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads variables from the first readable .env file so they can
// be referenced as ${VAR} in the configuration.
func loadEnvFile() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
		return
	}
}
