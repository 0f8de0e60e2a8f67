// Package generator provides the text-generation capabilities the interview
// engine calls at its boundary.
package generator

// #region imports
import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/interview-engine/internal/codec"
	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region config

// Provider names a generation backend.
type Provider string

const (
	ProviderNone      Provider = "none"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderGemini    Provider = "gemini"
	ProviderGRPC      Provider = "grpc"
)

// Config selects and configures a provider.
type Config struct {
	Provider  Provider `yaml:"provider" validate:"omitempty,oneof=none anthropic openai ollama gemini grpc"`
	Model     string   `yaml:"model"`
	APIKey    string   `yaml:"-"`
	Host      string   `yaml:"host"` // Ollama URL, gRPC address, or API base override
	MaxTokens int      `yaml:"max_tokens" validate:"gte=0"`
}

var defaultModels = map[Provider]string{
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderOpenAI:    "gpt-4.1-mini",
	ProviderOllama:    "qwen2.5:7b",
	ProviderGemini:    "gemini-2.5-flash",
}

// #endregion

// #region factory

// New builds the configured generator. ProviderNone returns nil, which the
// engine treats as "always fall back". The caller owns closing a returned
// gRPC client.
func New(cfg Config) (interview.Generator, error) {
	p := Provider(strings.ToLower(string(cfg.Provider)))
	if p == "" {
		p = ProviderNone
	}
	model := cfg.Model
	if model == "" {
		model = defaultModels[p]
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}

	switch p {
	case ProviderNone:
		return nil, nil
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: api key required")
		}
		return NewAnthropic(cfg.APIKey, model, maxTokens), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: api key required")
		}
		return NewOpenAI(cfg.APIKey, model, maxTokens), nil
	case ProviderOllama:
		return NewOllama(cfg.Host, model, maxTokens), nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini: api key required")
		}
		return NewGemini(cfg.APIKey, model, cfg.Host, maxTokens), nil
	case ProviderGRPC:
		if cfg.Host == "" {
			return nil, fmt.Errorf("grpc: host required")
		}
		c, err := codec.Dial(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("grpc: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// #endregion
