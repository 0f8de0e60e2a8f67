package interview

// #region imports
import (
	"strings"
)

// #endregion

// #region rules

// patternRule pairs a lexicon with the Pattern it implies.
type patternRule struct {
	pattern  Pattern
	keywords []string
}

// patternRules is evaluated top to bottom, first match wins. Specific
// vocabulary sits above generic vocabulary: sport before group activity,
// observation before general making.
var patternRules = []patternRule{
	{PatternCompetitiveSport, []string{
		"サッカー", "野球", "バスケ", "バレーボール", "水泳", "陸上", "テニス", "卓球",
		"柔道", "剣道", "空手", "体操", "マラソン", "駅伝", "ドッジボール", "ラグビー",
		"大会", "試合", "優勝", "準優勝", "県大会", "記録会",
	}},
	{PatternTeamPerformance, []string{
		"合唱", "吹奏楽", "演奏", "合奏", "劇", "ダンス", "発表会", "バンド",
		"オーケストラ", "ミュージカル", "和太鼓", "鼓笛", "演劇", "音楽会",
	}},
	{PatternScientificInquiry, []string{
		"自由研究", "研究", "観察", "実験", "標本", "昆虫", "天体", "星座",
		"顕微鏡", "仮説", "植物", "化石", "調査", "記録をつけ",
	}},
	{PatternTechnicalCreation, []string{
		"プログラミング", "scratch", "スクラッチ", "ロボット", "電子工作", "工作",
		"アプリ", "ゲームを作", "模型", "マインクラフト", "レゴ", "設計",
	}},
	{PatternLeadership, []string{
		"児童会", "生徒会", "委員長", "部長", "キャプテン", "リーダー", "班長",
		"代表", "企画", "まとめ役", "学級委員",
	}},
	{PatternCommunityService, []string{
		"ボランティア", "清掃", "地域", "募金", "老人ホーム", "ゴミ拾い", "福祉",
		"お祭り", "子ども会", "町内", "寄付",
	}},
}

// #endregion

// #region classify

// ClassifyPattern tags an activity narrative with one archetype via ordered
// lexicon rules. No model call; pure and deterministic.
func ClassifyPattern(narrative string) Pattern {
	lower := strings.ToLower(strings.TrimSpace(narrative))
	if lower == "" {
		return PatternGeneric
	}
	for _, rule := range patternRules {
		if containsAny(lower, rule.keywords) {
			return rule.pattern
		}
	}
	return PatternGeneric
}

// #endregion

// #region vocabulary

// patternVocabulary flavors example questions and feeds the quality scorer.
var patternVocabulary = map[Pattern][]string{
	PatternCompetitiveSport:  {"練習", "試合", "大会", "チーム", "記録", "コーチ", "ポジション"},
	PatternTeamPerformance:   {"練習", "本番", "演奏", "パート", "仲間", "舞台", "発表"},
	PatternScientificInquiry: {"観察", "実験", "仮説", "結果", "記録", "調べ", "予想"},
	PatternTechnicalCreation: {"作品", "設計", "試作", "動作", "改良", "プログラム", "仕組み"},
	PatternLeadership:        {"企画", "みんな", "意見", "まとめ", "役割", "話し合い", "提案"},
	PatternCommunityService:  {"地域", "活動", "参加", "相手", "役に立", "感謝", "続け"},
	PatternGeneric:           {"活動", "取り組み", "工夫", "続け", "経験"},
}

// patternSubject is the noun phrase used when phrasing pattern-specific questions.
var patternSubject = map[Pattern]string{
	PatternCompetitiveSport:  "練習や試合",
	PatternTeamPerformance:   "練習や本番",
	PatternScientificInquiry: "観察や実験",
	PatternTechnicalCreation: "作品づくり",
	PatternLeadership:        "みんなをまとめる活動",
	PatternCommunityService:  "地域での活動",
	PatternGeneric:           "取り組んできた活動",
}

// subjectFor returns the phrasing subject for p, defaulting to generic.
func subjectFor(p Pattern) string {
	if s, ok := patternSubject[p]; ok {
		return s
	}
	return patternSubject[PatternGeneric]
}

// #endregion

// #region depth-cues

// depthCues end exploration early when an answer already reaches into
// pattern-specific depth (setbacks, revisions, turning points).
var depthCues = map[Pattern][]string{
	PatternCompetitiveSport:  {"負けて", "スランプ", "けが", "怪我", "レギュラーになれ", "悔しかった"},
	PatternTeamPerformance:   {"音が合わ", "息が合わ", "本番で失敗", "意見がぶつか", "まとまらな"},
	PatternScientificInquiry: {"予想と違", "仮説が外れ", "うまく育たな", "失敗した", "やり直し"},
	PatternTechnicalCreation: {"動かなかった", "バグ", "作り直", "壊れ", "うまく動かな"},
	PatternLeadership:        {"意見が分かれ", "反対され", "まとまらな", "話し合いがうまく"},
	PatternCommunityService:  {"断られ", "人が集まらな", "うまく伝わらな", "続けるのが大変"},
	PatternGeneric:           {"失敗した", "やめたくな", "くじけ", "壁にぶつか"},
}

// hasDepthCue reports whether answer contains a pattern-specific depth cue.
func hasDepthCue(p Pattern, answer string) bool {
	cues, ok := depthCues[p]
	if !ok {
		cues = depthCues[PatternGeneric]
	}
	return containsAny(strings.ToLower(answer), cues)
}

// #endregion

// #region helpers

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// #endregion
