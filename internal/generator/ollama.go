package generator

// #region imports
import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region ollama

const defaultOllamaHost = "http://localhost:11434"

// Ollama generates questions with a local Ollama server.
type Ollama struct {
	client    *api.Client
	model     string
	maxTokens int
}

// NewOllama creates a client for host, falling back to the default local
// server when host does not parse.
func NewOllama(host, model string, maxTokens int) *Ollama {
	if host == "" {
		host = defaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		u, _ = url.Parse(defaultOllamaHost)
	}
	return &Ollama{
		client:    api.NewClient(u, http.DefaultClient),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (o *Ollama) Generate(ctx context.Context, spec interview.PromptSpec) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: spec.System()},
			{Role: "user", Content: spec.Render()},
		},
		Stream: &stream,
		Format: []byte(`"json"`),
		Options: map[string]any{
			"temperature": 0.7,
			"num_predict": o.maxTokens,
		},
	}

	var resp api.ChatResponse
	err := o.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		var se api.StatusError
		if errors.As(err, &se) {
			return "", classify(err, se.StatusCode)
		}
		return "", classify(err, 0)
	}
	if resp.Message.Content == "" {
		return "", emptyOutput("ollama")
	}
	return resp.Message.Content, nil
}

// #endregion
