package interview

import (
	"math/rand"
	"testing"
)

var openingAnswers = [...]string{"12番の山田花子です。", "電車で来ました。", "30分くらいかかりました。"}

const neutralQuestion = "活動について教えてもらえますか？"

// openingHistory returns the three scripted exchanges with valid answers.
func openingHistory() []Turn {
	var h []Turn
	for i, a := range openingAnswers {
		h = append(h, Turn{Role: RoleInterviewer, Text: openingScript[i]}, Turn{Role: RoleExaminee, Text: a})
	}
	return h
}

func withExchanges(h []Turn, n int, question, answer string) []Turn {
	for i := 0; i < n; i++ {
		h = append(h, Turn{Role: RoleInterviewer, Text: question}, Turn{Role: RoleExaminee, Text: answer})
	}
	return h
}

func TestDerive(t *testing.T) {
	sc := NewStageController(DefaultConfig(), nil)

	jokingSecond := []Turn{
		{Role: RoleInterviewer, Text: openingScript[0]},
		{Role: RoleExaminee, Text: openingAnswers[0]},
		{Role: RoleInterviewer, Text: openingScript[1]},
		{Role: RoleExaminee, Text: "どこでもドアで来ました。"},
	}

	tests := []struct {
		name      string
		history   []Turn
		pattern   Pattern
		wantStage Stage
		wantDepth int
		wantTotal int
		wantValid int
	}{
		{"empty", nil, PatternGeneric, StageOpening, 1, 0, 0},
		{"after-identity", openingHistory()[:2], PatternGeneric, StageOpening, 2, 1, 1},
		{"joking-does-not-advance", jokingSecond, PatternGeneric, StageOpening, 2, 2, 1},
		{"opening-complete", openingHistory(), PatternGeneric, StageExploration, 1, 3, 3},
		{"exploration-depth", withExchanges(openingHistory(), 4, neutralQuestion, "毎日練習をしています。"), PatternGeneric, StageExploration, 5, 7, 7},
		{"exploration-threshold", withExchanges(openingHistory(), 9, neutralQuestion, "毎日練習をしています。"), PatternGeneric, StageDeepening, 1, 12, 12},
		{"depth-cue-too-early", withExchanges(openingHistory(), 2, neutralQuestion, "失敗したけど、もう一度挑戦しました。"), PatternGeneric, StageExploration, 3, 5, 5},
		{"depth-cue", withExchanges(openingHistory(), 3, neutralQuestion, "失敗したけど、もう一度挑戦しました。"), PatternGeneric, StageDeepening, 1, 6, 6},
		{"budget-reached", withExchanges(openingHistory(), 21, neutralQuestion, "毎日練習をしています。"), PatternGeneric, StageClosing, 1, 24, 24},
		{"budget-counts-flagged", withExchanges(nil, 24, openingScript[0], "どこでもドアで来ました。"), PatternGeneric, StageClosing, 1, 24, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sc.Derive(tt.history, tt.pattern)
			if got.Stage != tt.wantStage {
				t.Errorf("stage: got %s, want %s", got.Stage, tt.wantStage)
			}
			if got.Depth != tt.wantDepth {
				t.Errorf("depth: got %d, want %d", got.Depth, tt.wantDepth)
			}
			if got.ExamineeTurns != tt.wantTotal {
				t.Errorf("examinee turns: got %d, want %d", got.ExamineeTurns, tt.wantTotal)
			}
			if got.ValidTurns != tt.wantValid {
				t.Errorf("valid turns: got %d, want %d", got.ValidTurns, tt.wantValid)
			}
		})
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	sc := NewStageController(DefaultConfig(), nil)
	h := withExchanges(openingHistory(), 5, neutralQuestion, "毎日練習をしています。")
	first := sc.Derive(h, PatternGeneric)
	for i := 0; i < 3; i++ {
		if got := sc.Derive(h, PatternGeneric); got != first {
			t.Fatalf("call %d: got %+v, want %+v", i, got, first)
		}
	}
}

var answerPool = []string{
	"毎日練習をしています。",
	"友達と一緒に頑張りました。",
	"失敗したけど、もう一度挑戦しました。",
	"どこでもドアで来ました。",
	"朝早く家を出たのは、遅刻したくなかったからです。",
	"😀😀😀",
	"はい",
	"昨日の晩ごはんはカレーでした。",
	"30分くらいかかりました。",
	"負けて悔しかったです。",
}

var questionPool = []string{
	neutralQuestion,
	durationQuestion,
	"誰と一緒に練習しましたか？",
	"もう少し詳しく教えてもらえますか？",
	"どうしてその活動を始めたのですか？",
}

func TestDeriveStageNeverRegresses(t *testing.T) {
	sc := NewStageController(DefaultConfig(), nil)
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		pattern := AllPatterns[rng.Intn(len(AllPatterns))]
		var h []Turn
		prev := sc.Derive(h, pattern)
		for step := 0; step < 30; step++ {
			h = append(h,
				Turn{Role: RoleInterviewer, Text: questionPool[rng.Intn(len(questionPool))]},
				Turn{Role: RoleExaminee, Text: answerPool[rng.Intn(len(answerPool))]},
			)
			got := sc.Derive(h, pattern)
			if got.Stage < prev.Stage {
				t.Fatalf("run %d step %d: stage regressed %s -> %s", run, step, prev.Stage, got.Stage)
			}
			if got.Stage == prev.Stage && got.Stage != StageClosing && got.Depth < prev.Depth {
				t.Fatalf("run %d step %d: depth regressed %d -> %d in %s", run, step, prev.Depth, got.Depth, got.Stage)
			}
			prev = got
		}
	}
}

func TestMotivationAllowed(t *testing.T) {
	sc := NewStageController(DefaultConfig(), nil)
	tests := []struct {
		state ConversationState
		want  bool
	}{
		{ConversationState{Stage: StageExploration, Depth: 8, ExamineeTurns: 12}, false},
		{ConversationState{Stage: StageDeepening, Depth: 1, ExamineeTurns: 6}, false},
		{ConversationState{Stage: StageDeepening, Depth: 1, ExamineeTurns: 10}, true},
		{ConversationState{Stage: StageClosing, Depth: 1, ExamineeTurns: 24}, true},
	}
	for _, tt := range tests {
		if got := sc.MotivationAllowed(tt.state); got != tt.want {
			t.Errorf("%+v: got %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestLastExchange(t *testing.T) {
	q, a, ok := lastExchange(openingHistory())
	if !ok || q != openingScript[2] || a != openingAnswers[2] {
		t.Errorf("got (%q, %q, %v)", q, a, ok)
	}
	if _, _, ok := lastExchange(openingHistory()[:1]); ok {
		t.Error("history ending with interviewer should not report an answer")
	}
	if _, _, ok := lastExchange(nil); ok {
		t.Error("empty history should not report an answer")
	}
}
