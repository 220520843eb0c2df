// Package config loads runtime configuration from the environment. A .env
// file in the working directory is honored when present so local development
// does not require exporting variables by hand.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings for the content-forge tools.
type Config struct {
	// Model is the Gemini model used for the three text-generation stages.
	Model string `env:"GEMINI_MODEL" env-default:"gemini-3-flash-preview"`

	// ImageModel is the Gemini model used for thumbnail rendering.
	ImageModel string `env:"GEMINI_IMAGE_MODEL" env-default:"gemini-3-pro-image-preview"`

	// HistoryPath is the file backing the run history blob. Empty selects
	// ~/.content-forge/history.zst.
	HistoryPath string `env:"FORGE_HISTORY_PATH" env-default:""`

	// Port is the listen port for forge-web.
	Port int `env:"FORGE_PORT" env-default:"8080"`

	// LogLevel mirrors FORGE_LOG_LEVEL for visibility in status output.
	LogLevel string `env:"FORGE_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}

	if cfg.HistoryPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory for history path: %w", err)
		}
		cfg.HistoryPath = filepath.Join(home, ".content-forge", "history.zst")
	}

	log.Debug().
		Str("model", cfg.Model).
		Str("image_model", cfg.ImageModel).
		Str("history_path", cfg.HistoryPath).
		Msg("Configuration loaded")

	return &cfg, nil
}
