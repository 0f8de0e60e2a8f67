package interview

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// #endregion

// #region errors

// GenerationErrorKind classifies a failed generation call.
type GenerationErrorKind string

const (
	GenTimeout      GenerationErrorKind = "timeout"
	GenQuota        GenerationErrorKind = "quota"
	GenInvalidInput GenerationErrorKind = "invalid_input"
	GenUnavailable  GenerationErrorKind = "unavailable"
)

// GenerationError is returned by a Generator when the boundary call fails.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation " + string(e.Kind)
	}
	return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err with kind.
func NewGenerationError(kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// ErrMalformedOutput means the generator answered but no question could be
// recovered from its text.
var ErrMalformedOutput = errors.New("malformed generation output")

// KindOf reports the GenerationErrorKind for err. Context deadline errors map
// to timeout; anything unrecognized maps to unavailable.
func KindOf(err error) GenerationErrorKind {
	var ge *GenerationError
	switch {
	case errors.As(err, &ge):
		return ge.Kind
	case errors.Is(err, context.DeadlineExceeded):
		return GenTimeout
	default:
		return GenUnavailable
	}
}

// #endregion

// #region generator

// Generator is the text-generation capability at the engine's boundary.
// Implementations return raw model text; failures should be *GenerationError.
type Generator interface {
	Generate(ctx context.Context, spec PromptSpec) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, spec PromptSpec) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, spec PromptSpec) (string, error) {
	return f(ctx, spec)
}

// #endregion

// #region prompt-spec

// PromptSpec is the structured generation request.
type PromptSpec struct {
	Stage             Stage
	Focus             string
	Pattern           Pattern
	Keywords          KeywordSet
	LastQuestion      string
	LastAnswerExcerpt string
	Shapes            []string
	Examples          []string
	MaxSentences      int
	AllowMotivation   bool
}

// BuildPromptSpec assembles the request from the pipeline's values.
func BuildPromptSpec(state ConversationState, pattern Pattern, keywords KeywordSet, strategy StrategyDescriptor,
	lastQ, lastA string, cfg Config) PromptSpec {
	cfg = cfg.withDefaults()
	return PromptSpec{
		Stage:             state.Stage,
		Focus:             strategy.Focus,
		Pattern:           pattern,
		Keywords:          keywords,
		LastQuestion:      lastQ,
		LastAnswerExcerpt: Excerpt(lastA, cfg.ExcerptTokens),
		Shapes:            strategy.Shapes,
		Examples:          strategy.Examples,
		MaxSentences:      cfg.MaxSentences,
		AllowMotivation:   strategy.AllowMotivation,
	}
}

const systemPrompt = `あなたは中学校入試の面接官です。小学6年生の受験生に、やさしく丁寧な話し言葉で一つだけ質問してください。
出力は必ず次のJSONだけにしてください: {"question": "..."}`

// System returns the fixed system instruction.
func (p PromptSpec) System() string { return systemPrompt }

// Render returns the user-turn prompt text.
func (p PromptSpec) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "段階: %s\n", p.Stage)
	fmt.Fprintf(&b, "焦点: %s\n", p.Focus)
	fmt.Fprintf(&b, "活動の型: %s\n", p.Pattern)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "前の答えのキーワード: %s\n", strings.Join(p.Keywords, "、"))
	}
	if p.LastQuestion != "" {
		fmt.Fprintf(&b, "直前の質問: %s\n", p.LastQuestion)
	}
	if p.LastAnswerExcerpt != "" {
		fmt.Fprintf(&b, "直前の答え: %s\n", p.LastAnswerExcerpt)
	}
	if len(p.Shapes) > 0 {
		b.WriteString("質問の形の例:\n")
		for _, s := range p.Shapes {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	for _, e := range p.Examples {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	b.WriteString("条件:\n")
	fmt.Fprintf(&b, "- %d文以内\n", p.MaxSentences)
	b.WriteString("- 最後は「？」で終える\n")
	b.WriteString("- 同じ質問を繰り返さない\n")
	if !p.AllowMotivation {
		b.WriteString("- 志望理由や学校のことには触れない\n")
	}
	return b.String()
}

// #endregion

// #region excerpt

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

func excerptCodec() tokenizer.Codec {
	codecOnce.Do(func() {
		c, err := tokenizer.ForModel(tokenizer.GPT4)
		if err == nil {
			codec = c
		}
	})
	return codec
}

// countTokens counts with the GPT-4 encoding, falling back to a rune estimate.
func countTokens(s string) int {
	if c := excerptCodec(); c != nil {
		if n, err := c.Count(s); err == nil {
			return n
		}
	}
	return len([]rune(s))
}

// Excerpt trims answer to at most maxTokens tokens on a rune boundary.
func Excerpt(answer string, maxTokens int) string {
	answer = strings.TrimSpace(answer)
	if answer == "" || countTokens(answer) <= maxTokens {
		return answer
	}
	runes := []rune(answer)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if countTokens(string(runes[:mid])) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + "…"
}

// #endregion
