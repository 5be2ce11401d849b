package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment. If envFiles are given, the
// first one that loads seeds the environment; a missing .env is not an error.
func Load(envFiles ...string) (*App, error) {
	logger := slog.Default()
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using system environment")
		}
		return fromEnv()
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			logger.Debug("environment file not loaded", "path", path, "error", err)
			continue
		}
		logger.Info("environment loaded", "path", path)
		break
	}
	return fromEnv()
}

func fromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
