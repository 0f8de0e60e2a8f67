package interview

// #region imports
import (
	"regexp"
)

// #endregion

// #region lexicons

// lexiconTerm maps a surface pattern to the canonical keyword it yields.
type lexiconTerm struct {
	label string
	re    *regexp.Regexp
}

func term(label, expr string) lexiconTerm {
	return lexiconTerm{label: label, re: regexp.MustCompile(expr)}
}

// The five groups run independently; their hits are unioned.
var (
	activityTerms = []lexiconTerm{
		term("練習", `練習`),
		term("試合", `試合|大会`),
		term("実験", `実験`),
		term("観察", `観察`),
		term("作品", `作品|作ったもの`),
		term("プログラム", `プログラ(ム|ミング)|スクラッチ|(?i:scratch)`),
		term("演奏", `演奏|合奏|合唱`),
		term("発表", `発表`),
		term("ボランティア", `ボランティア`),
		term("ロボット", `ロボット`),
		term("本", `本を|読書`),
	}
	difficultyTerms = []lexiconTerm{
		term("難しさ", `難し[いかくさ]|むずかし`),
		term("大変", `大変|たいへん`),
		term("失敗", `失敗|しっぱい|うまくいかな`),
		term("苦労", `苦労|苦戦`),
		term("悩み", `悩[みん]|なやみ|迷[いっ]`),
		term("悔しさ", `悔し|くやし`),
	}
	collaborationTerms = []lexiconTerm{
		term("友達", `友達|友だち|ともだち`),
		term("仲間", `仲間|なかま|チームメイト`),
		term("先生", `先生|コーチ|監督`),
		term("家族", `家族|母|父|お母さん|お父さん|兄|姉|弟|妹|祖父|祖母`),
		term("チーム", `チーム|班|グループ`),
		term("先輩", `先輩|後輩`),
	}
	emotionTerms = []lexiconTerm{
		term("嬉しさ", `嬉し|うれし`),
		term("楽しさ", `楽し|たのし`),
		term("驚き", `驚|おどろ|びっくり`),
		term("発見", `発見|気づ|気付|わかった|分かった`),
		term("達成感", `達成感|やりきった|できるようになった`),
		term("緊張", `緊張|ドキドキ|どきどき`),
	}
	methodTerms = []lexiconTerm{
		term("工夫", `工夫`),
		term("調べる", `調べ|しらべ`),
		term("記録", `記録|ノート|メモ`),
		term("話し合い", `話し合|相談`),
		term("繰り返し", `繰り返|くりかえ|何度も`),
		term("計画", `計画|予定を立て|スケジュール`),
	}

	continuityGroups = [][]lexiconTerm{
		activityTerms,
		difficultyTerms,
		collaborationTerms,
		emotionTerms,
		methodTerms,
	}
)

// #endregion

// #region extract

// ExtractKeywords pulls continuity keywords from an answer by running every
// lexicon group over the text and unioning the hits.
func ExtractKeywords(answer string) KeywordSet {
	if answer == "" {
		return KeywordSet{}
	}
	var hits []string
	for _, group := range continuityGroups {
		for _, t := range group {
			if t.re.MatchString(answer) {
				hits = append(hits, t.label)
			}
		}
	}
	return NewKeywordSet(hits...)
}

// #endregion
