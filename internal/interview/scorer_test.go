package interview

import (
	"testing"
)

func TestScoreQuestionDeepBeatsShallow(t *testing.T) {
	deep := ScoreQuestion("うまくいかなかったとき、仲間とどのように協力して乗り越えましたか？", PatternCompetitiveSport)
	shallow := ScoreQuestion("どうでしたか？", PatternCompetitiveSport)

	if deep.Total <= shallow.Total {
		t.Errorf("deep %d should exceed shallow %d", deep.Total, shallow.Total)
	}
	if deep.Depth != 10 {
		t.Errorf("depth markers: got %d, want 10", deep.Depth)
	}
	if shallow.WellFormed != 5 {
		t.Errorf("well-formed: got %d, want 5 (too short)", shallow.WellFormed)
	}
}

func TestScoreQuestionBounds(t *testing.T) {
	loaded := "試合や大会の練習で、なぜ、どのように、誰と、どんな大変なことを乗り越え、仲間と協力して何を学んだと思いますか？"
	r := ScoreQuestion(loaded, PatternCompetitiveSport)
	if r.Total > 50 || r.Total < 0 {
		t.Fatalf("total %d out of range", r.Total)
	}
	sum := 0
	for _, m := range r.Metrics {
		if m.Value > m.Max {
			t.Errorf("%s: %d exceeds max %d", m.Name, m.Value, m.Max)
		}
		sum += m.Value
	}
	if sum != r.Total {
		t.Errorf("metrics sum %d != total %d", sum, r.Total)
	}
}

func TestScoreQuestionDeeperTiersScoreHigherThanGeneric(t *testing.T) {
	generic := ScoreQuestion("どうでしたか？", PatternGeneric).Total
	for _, tier := range []Tier{TierObstacles, TierCollaboration} {
		state := ConversationState{Stage: StageDeepening, Depth: int(tier) * 2, ExamineeTurns: 15}
		for _, s := range SelectStrategy(state, PatternGeneric, DefaultConfig()).Shapes {
			if got := ScoreQuestion(s, PatternGeneric).Total; got <= generic {
				t.Errorf("tier %d shape %q scored %d, generic scored %d", tier, s, got, generic)
			}
		}
	}
}
