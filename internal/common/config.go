package common

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration, read once from the
// environment at startup.
type Config struct {
	// Environment selects logger behavior (development or production).
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	HTTP     HTTPConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Database DatabaseConfig
}

// HTTPConfig holds server-related configuration.
type HTTPConfig struct {
	Port              int           `env:"PORT" env-default:"8000"`
	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m"`
	CORSOrigin        string        `env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
	ShutdownTimeout   time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// OCRConfig holds recognition-engine configuration.
type OCRConfig struct {
	Language    string `env:"TESSERACT_LANG" env-default:"eng"`
	TessdataDir string `env:"TESSDATA_PREFIX" env-default:""`
}

// LLMConfig holds completion-API configuration. An empty APIKey switches the
// process permanently into heuristic-only extraction.
type LLMConfig struct {
	APIKey      string        `env:"GROQ_API_KEY" env-default:""`
	BaseURL     string        `env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model       string        `env:"GROQ_MODEL" env-default:"mixtral-8x7b-32768"`
	Temperature float32       `env:"GROQ_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `env:"GROQ_MAX_TOKENS" env-default:"200"`
	Timeout     time.Duration `env:"GROQ_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds expense-store configuration.
type DatabaseConfig struct {
	Path string `env:"DB_PATH" env-default:"./expenses.db"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
