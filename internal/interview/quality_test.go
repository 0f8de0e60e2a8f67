package interview

import (
	"testing"
)

const durationQuestion = "どれくらい時間がかかりましたか？"

func TestSeriousnessCheck(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{"fictional-door", "", "どこでもドアで来ました。", true},
		{"train", "", "電車で来ました。", false},
		{"zero-minutes", durationQuestion, "0分で着きました。", true},
		{"ten-minutes", durationQuestion, "10分で着きました。", false},
		{"light-speed", "", "光の速さで来ました。", true},
		{"entertainment-substitution", "あなたが頑張ってきたことは何ですか？", "ゲームです。毎日やっています。", true},
		{"entertainment-with-making", "あなたが頑張ってきたことは何ですか？", "ゲームを作るプログラミングです。", false},
		{"entertainment-not-asked", "休みの日は何をしていますか？", "ゲームをしています。", false},
		{"emoji-only", "", "😀😀😀", true},
		{"empty", "", "", true},
		{"repeated-kana", "", "ああああ", true},
		{"keyboard-mash", "", "sdfghjk", true},
		{"filler-kana", "", "え", true},
		{"short-yes", "", "はい", false},
		{"one-kanji", "", "電車", false},
		{"dragon-ride", "", "ドラゴンに乗って来ました。", true},
		{"instant-arrival", "", "一瞬で着きました。", true},
		{"fantasy-after-travel-question", openingScript[1], "ワープしました。", true},
		{"bird-flying-observed", "", "鳥が空を飛んでいる様子を毎朝観察しました。", false},
		{"instant-blank-on-stage", "", "一瞬で頭が真っ白になったけど、最後まで歌えました。", false},
		{"dragon-fruit", "", "ベランダでドラゴンフルーツを育てました。", false},
		{"zero-without-travel", "", "0分から計り始めて、毎日記録しました。", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeriousnessCheck(tt.question, tt.answer); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlignmentCheck(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{"duration-answered", durationQuestion, "30分くらいかかりました。", false},
		{"duration-unanswered", durationQuestion, "朝早く家を出たのは、遅刻したくなかったからです。", true},
		{"reason-opinion-only", "どうしてその活動を始めたのですか？", "努力することはとても大切なことだと思います。", true},
		{"reason-answered", "どうしてその活動を始めたのですか？", "友達に誘われたのがきっかけで始めました。", false},
		{"reason-no-opinion-stays-unflagged", "どうしてその活動を始めたのですか？", "毎週土曜日に公園でボールを蹴って練習しています。", false},
		{"person-missing", "誰と一緒に練習しましたか？", "毎週土曜日に公園で練習しました。", true},
		{"person-answered", "誰と一緒に練習しましたか？", "同じクラスの友達と毎週土曜日に練習しました。", false},
		{"elaboration-bare-yes", "そのときのことを詳しく説明してもらえますか？", "はい", true},
		{"elaboration-given", "そのときのことを詳しく説明してもらえますか？", "最初はボールがうまく蹴れなくて、毎日練習しました。", false},
		{"unrelated-topic", "どうやって練習しましたか？", "昨日の晩ごはんはカレーでした。", true},
		{"weather-switch", "どうやって練習しましたか？", "今日の天気は晴れです。", true},
		{"weather-as-variable", "どうやって練習しましたか？", "天気によって練習する場所を変えていました。", false},
		{"pet-bottle", "どうやって練習しましたか？", "ペットボトルを並べてドリブルの練習をしました。", false},
		{"topic-from-question", "ペットの世話はどうしていますか？", "ペットの犬に毎朝えさをあげています。", false},
		{"short-answers-skip-category-checks", durationQuestion, "朝早く出ました。", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlignmentCheck(tt.question, tt.answer); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssessOrderAndConcerns(t *testing.T) {
	c := NewAnswerClassifier(DefaultConfig())

	tests := []struct {
		name         string
		question     string
		answer       string
		wantConcern  Concern
		wantCategory Category
	}{
		{"seriousness-first", durationQuestion, "どこでもドアで来たので、時間はかかりませんでした。", ConcernFictional, ""},
		{"duration-category", durationQuestion, "朝早く家を出たのは、遅刻したくなかったからです。", ConcernCategoryMismatch, CategoryDuration},
		{"person-category", "誰と一緒に練習しましたか？", "毎週土曜日に公園で練習しました。", ConcernCategoryMismatch, CategoryPerson},
		{"too-short", "そのときのことを詳しく説明してもらえますか？", "はい", ConcernTooShort, ""},
		{"unrelated", "どうやって練習しましたか？", "昨日の晩ごはんはカレーでした。", ConcernUnrelatedTopic, ""},
		{"ok", durationQuestion, "30分くらいかかりました。", ConcernNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Assess(tt.question, tt.answer)
			if v.Concern != tt.wantConcern {
				t.Errorf("concern: got %q, want %q", v.Concern, tt.wantConcern)
			}
			if v.Category != tt.wantCategory {
				t.Errorf("category: got %q, want %q", v.Category, tt.wantCategory)
			}
		})
	}
}

func TestAssessLeavesActivityAnswersUnflagged(t *testing.T) {
	c := NewAnswerClassifier(DefaultConfig())
	const question = "その中で一番印象に残っていることは何ですか？"

	answers := []struct {
		name   string
		answer string
	}{
		{"bottle-rocket", "ペットボトルロケットを作って、飛ばす実験をしました。"},
		{"bird-observation", "鳥が空を飛んでいる様子を毎朝観察しました。"},
		{"stage-fright", "一瞬で頭が真っ白になったけど、最後まで歌えました。"},
		{"dragon-fruit", "ベランダでドラゴンフルーツを育てました。"},
		{"insects-and-weather", "雨の日と晴れの日で、天気によって虫の数が違うことに気づきました。"},
		{"weather-log", "天気予報を毎日記録して、気温のグラフを作りました。"},
		{"magic-wand-prop", "段ボールで魔法の杖を作って、劇で使いました。"},
		{"dragon-role", "発表会でドラゴンの役を演じました。"},
		{"alien-script", "宇宙人が出てくる劇の脚本を書きました。"},
		{"fossil-research", "恐竜の化石について調べて、博物館で資料を集めました。"},
		{"pet-care-log", "ペットボトルで水やりの道具を作って、毎朝アサガオに水をあげました。"},
	}

	for _, tt := range answers {
		t.Run(tt.name, func(t *testing.T) {
			if v := c.Assess(question, tt.answer); v.Flagged() {
				t.Errorf("got %q (topic %q), want no flag", v.Concern, v.Topic)
			}
		})
	}
}

func TestClassifyQuestionIsNonExclusive(t *testing.T) {
	got := ClassifyQuestion("誰と一緒に、どのように練習しましたか？")
	want := map[Category]bool{CategoryPerson: true, CategoryMethod: true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for _, c := range got {
		if !want[c] {
			t.Errorf("unexpected category %q", c)
		}
	}
}

func TestGuardedAssessRecoversToNotFlagged(t *testing.T) {
	var nilClassifier *AnswerClassifier
	c := &AnswerClassifier{cfg: DefaultConfig()}
	if v := guardedAssess(c, durationQuestion, "電車で来ました。"); v.Flagged() {
		t.Errorf("unexpected flag %q", v.Concern)
	}
	// A nil classifier panics on field access; the guard must swallow it.
	if v := guardedAssess(nilClassifier, durationQuestion, "朝早く家を出たのは、遅刻したくなかったからです。"); v.Flagged() {
		t.Errorf("panic should resolve to not flagged, got %q", v.Concern)
	}
}
