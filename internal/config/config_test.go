package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/interview-engine/internal/generator"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvProvider, EnvModel, EnvAPIKey, EnvHost, EnvRedisURL, EnvLogFile, EnvLogLevel,
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 24, cfg.Engine.TurnBudget)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "interview.yaml", `
db: /tmp/iv.db
metrics_addr: "127.0.0.1:9090"
engine:
  exploration_turns: 6
  min_exploration_turns: 2
  turn_budget: 18
  motivation_min_turns: 8
  alignment_min_length: 15
  elaboration_min_length: 10
  max_sentences: 2
  generation_timeout: 5s
  excerpt_tokens: 80
cache:
  ttl: 30m
  capacity: 50
  similarity_threshold: 0.6
  cleanup_interval: 5m
generator:
  provider: ollama
  model: qwen2.5:7b
  host: http://gpu-box:11434
`)
	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/iv.db", cfg.DBPath)
	assert.Equal(t, 6, cfg.Engine.ExplorationTurns)
	assert.Equal(t, 5*time.Second, cfg.Engine.GenerationTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, generator.ProviderOllama, cfg.Generator.Provider)
	assert.Equal(t, "info", cfg.Logging.Level, "unset sections keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "interview.yaml", "db: file.db\n")
	envFile := writeFile(t, ".env", "INTERVIEW_PROVIDER=Anthropic\nANTHROPIC_API_KEY=from-dotenv\n")
	t.Setenv(EnvDB, "env.db")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, generator.ProviderAnthropic, cfg.Generator.Provider)
	assert.Equal(t, "from-dotenv", cfg.Generator.APIKey)
}

func TestExplicitKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "openai")
	t.Setenv(EnvAPIKey, "explicit")
	t.Setenv("OPENAI_API_KEY", "fallback")

	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Generator.APIKey)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown provider", "generator:\n  provider: pigeon\n"},
		{"threshold above one", "cache:\n  similarity_threshold: 1.5\n"},
		{"min exceeds exploration", "engine:\n  exploration_turns: 3\n  min_exploration_turns: 5\n"},
		{"bad metrics addr", "metrics_addr: not-an-address\n"},
		{"empty db", "db: \"\"\n"},
		{"bad log level", "logging:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, "bad.yaml", tt.yaml), noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
	assert.Error(t, err)
}
