package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPromptSpecRender(t *testing.T) {
	state := ConversationState{Stage: StageExploration, Depth: 3, ExamineeTurns: 6}
	strategy := SelectStrategy(state, PatternCompetitiveSport, DefaultConfig())
	spec := BuildPromptSpec(state, PatternCompetitiveSport, NewKeywordSet("練習", "友達"), strategy,
		"どんな練習をしていますか？", "友達と毎日練習しています。", DefaultConfig())

	if spec.MaxSentences != 2 || spec.AllowMotivation {
		t.Errorf("constraints: got %+v", spec)
	}
	out := spec.Render()
	for _, want := range []string{strategy.Focus, "友達、練習", "2文以内", "「？」で終える", "志望理由"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(spec.System(), `{"question": "..."}`) {
		t.Errorf("system prompt missing envelope: %q", spec.System())
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("  短い答えです。 ", 120); got != "短い答えです。" {
		t.Errorf("short answer changed: %q", got)
	}
	long := strings.Repeat("毎日サッカーの練習をがんばりました。", 40)
	got := Excerpt(long, 20)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("trimmed excerpt should end with an ellipsis: %q", got)
	}
	if !utf8.ValidString(got) {
		t.Error("excerpt split a rune")
	}
	if n := countTokens(strings.TrimSuffix(got, "…")); n > 20 {
		t.Errorf("excerpt has %d tokens, want <= 20", n)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want GenerationErrorKind
	}{
		{NewGenerationError(GenQuota, errors.New("429")), GenQuota},
		{fmt.Errorf("call: %w", NewGenerationError(GenInvalidInput, nil)), GenInvalidInput},
		{context.DeadlineExceeded, GenTimeout},
		{errors.New("connection refused"), GenUnavailable},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v): got %s, want %s", tt.err, got, tt.want)
		}
	}
	if !strings.Contains(NewGenerationError(GenTimeout, nil).Error(), "timeout") {
		t.Error("error text should name the kind")
	}
}
