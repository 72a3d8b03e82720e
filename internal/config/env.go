package config

import (
	"errors"
	"log/slog"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first readable .env file. Existing process variables are never overwritten.
func loadEnvFile() error {
	for _, envPath := range envFiles {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", logfields.Path(envPath))
			return nil
		}
	}
	return errors.New("no .env file found")
}
