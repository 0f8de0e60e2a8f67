package generator

// #region imports
import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region gemini

// Gemini generates questions with the Gemini API. The SDK client is created
// on first use because construction needs a context.
type Gemini struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int32

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGemini creates a lazily connected client. baseURL overrides the API
// endpoint and is empty in production.
func NewGemini(apiKey, model, baseURL string, maxTokens int) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, baseURL: baseURL, maxTokens: int32(maxTokens)}
}

func (g *Gemini) init(ctx context.Context) error {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
		}
		g.client, g.initErr = genai.NewClient(ctx, cfg)
	})
	if g.initErr != nil {
		return interview.NewGenerationError(interview.GenUnavailable, fmt.Errorf("create gemini client: %w", g.initErr))
	}
	return nil
}

func (g *Gemini) Generate(ctx context.Context, spec interview.PromptSpec) (string, error) {
	if err := g.init(ctx); err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: g.maxTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: spec.System()}},
		},
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: spec.Render()}},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", classify(err, 0)
	}
	if result == nil {
		return "", emptyOutput("gemini")
	}
	text := result.Text()
	if text == "" {
		return "", emptyOutput("gemini")
	}
	return text, nil
}

// #endregion
