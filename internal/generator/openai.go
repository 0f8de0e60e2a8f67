package generator

// #region imports
import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #endregion

// #region openai

// OpenAI generates questions with the Responses API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAI creates a client with SDK retries disabled.
func NewOpenAI(apiKey, model string, maxTokens int, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (o *OpenAI) Generate(ctx context.Context, spec interview.PromptSpec) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxTokens),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(spec.System() + "\n\n" + spec.Render())},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classify(err, apiErr.StatusCode)
		}
		return "", classify(err, 0)
	}
	if resp == nil {
		return "", emptyOutput("openai")
	}
	text := resp.OutputText()
	if text == "" {
		return "", emptyOutput("openai")
	}
	return text, nil
}

// #endregion
