package interview

// #region imports
import (
	"fmt"
	"strings"
)

// #endregion

// #region closing

// closingStatement ends the interview. It still closes with an open question
// so every output the engine returns is question-terminated.
const closingStatement = "これで面接は終わりです。ありがとうございました。最後に、何か伝えておきたいことはありますか？"

// #endregion

// #region redirects

const clarifyPrefix = "ごめんなさい、聞き方がわかりにくかったですね。"

var categoryClarifications = map[Category]string{
	CategoryDuration:   "どれくらいの時間だったか、だいたいで大丈夫なので教えてもらえますか？",
	CategoryMethod:     "どのようにしたのか、やり方を教えてもらえますか？",
	CategoryReason:     "そうしようと思った理由を教えてもらえますか？",
	CategoryDifficulty: "その中で大変だったことを教えてもらえますか？",
	CategoryExample:    "実際にあった具体的な出来事を一つ教えてもらえますか？",
	CategoryPerson:     "誰と一緒だったのか教えてもらえますか？",
	CategoryQuantity:   "どれくらいの数だったか教えてもらえますか？",
	CategoryFeeling:    "そのとき、どんな気持ちだったか教えてもらえますか？",
}

const (
	seriousPrefix    = "真剣に答えてもらえると嬉しいです。もう一度聞きますね。"
	seriousBare      = "真剣に答えてもらえると嬉しいです。もう一度教えてもらえますか？"
	elaborateRequest = "もう少し詳しく教えてもらえますか？"
	steerBackPrefix  = "そのお話も気になりますが、今は面接の質問に戻りますね。"
	steerBackBare    = "そのお話も気になりますが、今日の面接について聞かせてもらえますか？"
)

// Redirect returns the deterministic clarification for a flagged answer to
// previous. It never calls the generator.
func Redirect(v Verdict, previous string) string {
	previous = unwrapRedirect(previous)
	switch {
	case v.Joking():
		if previous == "" {
			return seriousBare
		}
		return seriousPrefix + previous
	case v.Concern == ConcernCategoryMismatch:
		if c, ok := categoryClarifications[v.Category]; ok {
			return clarifyPrefix + c
		}
		return clarifyPrefix + elaborateRequest
	case v.Concern == ConcernTooShort:
		return elaborateRequest
	case v.Concern == ConcernUnrelatedTopic:
		if previous == "" {
			return steerBackBare
		}
		return steerBackPrefix + previous
	}
	return elaborateRequest
}

// unwrapRedirect recovers the underlying question from an earlier redirect,
// so repeated flags re-ask it once instead of stacking prefaces.
func unwrapRedirect(previous string) string {
	for {
		switch {
		case strings.HasPrefix(previous, seriousPrefix):
			previous = strings.TrimPrefix(previous, seriousPrefix)
		case strings.HasPrefix(previous, steerBackPrefix):
			previous = strings.TrimPrefix(previous, steerBackPrefix)
		case strings.HasPrefix(previous, clarifyPrefix):
			previous = strings.TrimPrefix(previous, clarifyPrefix)
		case previous == seriousBare, previous == steerBackBare:
			return ""
		default:
			return previous
		}
	}
}

// #endregion

// #region chain

// groundedPrompt anchors tier 1-2 fallbacks on a keyword from the last answer.
const groundedPrompt = "「%s」について、もう少し詳しく教えてもらえますか？"

// FallbackChain returns deterministic questions for any (stage, depth). It
// performs no I/O and always yields a question-terminated string.
type FallbackChain struct {
	cfg Config
}

// NewFallbackChain creates a chain using cfg's motivation threshold.
func NewFallbackChain(cfg Config) *FallbackChain {
	return &FallbackChain{cfg: cfg.withDefaults()}
}

// Candidates lists the chain's questions for a state in preference order.
func (f *FallbackChain) Candidates(state ConversationState, pattern Pattern, keywords KeywordSet) []string {
	switch state.Stage {
	case StageOpening:
		i := state.Depth - 1
		if i < 0 {
			i = 0
		}
		if i >= OpeningSteps {
			return []string{activityIntro}
		}
		return []string{openingScript[i]}
	case StageClosing:
		return []string{closingStatement}
	case StageExploration:
		if state.Depth <= 1 {
			return []string{activityIntro}
		}
	}

	tier := state.Tier()
	subject := subjectFor(pattern)
	var out []string

	if tier <= TierObstacles && len(keywords) > 0 {
		out = append(out, fmt.Sprintf(groundedPrompt, keywords[0]))
	}
	for _, s := range tierStrategies[tier].shapes {
		out = append(out, fill(s, subject))
	}
	if tier == TierReflection && motivationAllowed(state, f.cfg) {
		out = append(out, motivationShape)
	}
	return out
}

// Next returns the first candidate not already asked in history. When every
// candidate was used, the last one is repeated rather than returning nothing.
func (f *FallbackChain) Next(state ConversationState, pattern Pattern, keywords KeywordSet, history []Turn) string {
	cands := f.Candidates(state, pattern, keywords)
	for _, q := range cands {
		if !askedBefore(history, q) {
			return q
		}
	}
	if len(cands) > 0 {
		return cands[len(cands)-1]
	}
	return elaborateRequest
}

// #endregion
