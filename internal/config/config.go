// Package config loads the interviewer's settings from YAML, .env, and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/interview-engine/internal/generator"
	"github.com/danielpatrickdp/interview-engine/internal/interview"
	"github.com/danielpatrickdp/interview-engine/internal/logging"
	"github.com/danielpatrickdp/interview-engine/internal/qcache"
)

// #region config
// Config is the full process configuration.
type Config struct {
	DBPath      string `yaml:"db" validate:"required"`
	RedisURL    string `yaml:"redis_url"`
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`

	Engine    interview.Config `yaml:"engine"`
	Cache     qcache.Options   `yaml:"cache"`
	Generator generator.Config `yaml:"generator"`
	Logging   logging.Config   `yaml:"logging"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		DBPath:    "interview.db",
		Engine:    interview.DefaultConfig(),
		Cache:     qcache.DefaultOptions(),
		Generator: generator.Config{Provider: generator.ProviderNone},
		Logging:   logging.DefaultConfig(),
	}
}
// #endregion config

// #region env
// Environment variables that override the file.
const (
	EnvDB       = "INTERVIEW_DB"
	EnvProvider = "INTERVIEW_PROVIDER"
	EnvModel    = "INTERVIEW_MODEL"
	EnvAPIKey   = "INTERVIEW_API_KEY"
	EnvHost     = "INTERVIEW_HOST"
	EnvRedisURL = "INTERVIEW_REDIS_URL"
	EnvLogFile  = "INTERVIEW_LOG_FILE"
	EnvLogLevel = "INTERVIEW_LOG_LEVEL"
)

// providerKeyEnv is consulted when INTERVIEW_API_KEY is unset.
var providerKeyEnv = map[generator.Provider]string{
	generator.ProviderAnthropic: "ANTHROPIC_API_KEY",
	generator.ProviderOpenAI:    "OPENAI_API_KEY",
	generator.ProviderGemini:    "GEMINI_API_KEY",
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.DBPath, EnvDB)
	set(&cfg.RedisURL, EnvRedisURL)
	set(&cfg.Generator.Model, EnvModel)
	set(&cfg.Generator.APIKey, EnvAPIKey)
	set(&cfg.Generator.Host, EnvHost)
	set(&cfg.Logging.File, EnvLogFile)
	set(&cfg.Logging.Level, EnvLogLevel)
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		cfg.Generator.Provider = generator.Provider(strings.ToLower(v))
	}
	if cfg.Generator.APIKey == "" {
		if key, ok := providerKeyEnv[cfg.Generator.Provider]; ok {
			set(&cfg.Generator.APIKey, key)
		}
	}
}
// #endregion env

// #region load
var validate = validator.New()

// Load reads path (optional), then envFile (".env" when empty; a missing
// file is skipped), then environment variables, and validates the result.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Engine.MinExplorationTurns > cfg.Engine.ExplorationTurns {
		return fmt.Errorf("invalid config: min_exploration_turns %d exceeds exploration_turns %d",
			cfg.Engine.MinExplorationTurns, cfg.Engine.ExplorationTurns)
	}
	return nil
}
// #endregion load
