package interview

// #region imports
import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// #endregion

// #region concern

// Concern names why an answer was flagged.
type Concern string

const (
	ConcernNone             Concern = "none"
	ConcernFictional        Concern = "fictional"
	ConcernExtreme          Concern = "extreme"
	ConcernEntertainment    Concern = "entertainment"
	ConcernNonsense         Concern = "nonsense"
	ConcernDegenerate       Concern = "degenerate"
	ConcernCategoryMismatch Concern = "category_mismatch"
	ConcernTooShort         Concern = "too_short"
	ConcernUnrelatedTopic   Concern = "unrelated_topic"
)

// Category is a kind of information a question asks for.
type Category string

const (
	CategoryDuration   Category = "asks_duration"
	CategoryMethod     Category = "asks_method"
	CategoryReason     Category = "asks_reason"
	CategoryDifficulty Category = "asks_difficulty"
	CategoryExample    Category = "asks_example"
	CategoryPerson     Category = "asks_person"
	CategoryQuantity   Category = "asks_quantity"
	CategoryFeeling    Category = "asks_feeling"
)

// Verdict is the outcome of assessing one answer.
type Verdict struct {
	Concern  Concern
	Category Category // set for ConcernCategoryMismatch
	Topic    string   // set for ConcernUnrelatedTopic
}

var verdictOK = Verdict{Concern: ConcernNone}

// Flagged reports whether any check fired.
func (v Verdict) Flagged() bool {
	return v.Concern != "" && v.Concern != ConcernNone
}

// Joking reports whether the seriousness check fired.
func (v Verdict) Joking() bool {
	switch v.Concern {
	case ConcernFictional, ConcernExtreme, ConcernEntertainment, ConcernNonsense, ConcernDegenerate:
		return true
	}
	return false
}

// #endregion

// #region seriousness-lexicons

// Fantasy and impossible-speed words only count as a joke when the exchange
// is about getting here; elsewhere they are ordinary vocabulary.
var (
	travelQuestion  = regexp.MustCompile(`来ました|来たか|来られ|何で来|どうやって来|かかりました|かかった|通学|通って|交通`)
	travelAnswer    = regexp.MustCompile(`で来|に乗|乗って|かかり|かかっ|着き|着いた|通って`)
	durationTrigger = regexp.MustCompile(`(どれ|どの)くらい(の)?時間|(どれ|どの)くらいかか|何分|何時間|何日|何年|何か月|何ヶ月|いつから|期間`)
)

var fictionalPattern = regexp.MustCompile(
	`どこでもドア|タケコプター|タイムマシン|魔法|まほう|ほうきに乗|じゅうたんに乗|絨毯に乗|` +
		`空を飛ん|空飛ぶ|テレポート|瞬間移動|ワープ|ドラゴン|ユニコーン|ペガサス|` +
		`ピカチュウ|ポケモンに乗|忍術|宇宙人|恐竜に乗|ドラえもん`)

var extremePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|[^0-9０-９])[0０]\s*(分|秒|時間)`),
	regexp.MustCompile(`一瞬で|いっしゅんで|光の速さ|光速|音速|マッハ`),
	regexp.MustCompile(`[0-9０-９]{4,}\s*時間かか`),
}

// benignCompounds are everyday words that contain a lexicon entry.
var benignCompounds = strings.NewReplacer(
	"ペットボトル", "・",
	"ドラゴンフルーツ", "・",
	"魔法瓶", "・",
	"天気予報", "・",
)

func travelContext(question, answer string) bool {
	return travelQuestion.MatchString(question) || travelAnswer.MatchString(answer)
}

var (
	sustainedActivityQuestion = regexp.MustCompile(`頑張|がんば|取り組|続けて|打ち込|力を入れ|熱中|夢中`)
	entertainmentTopic        = regexp.MustCompile(`ゲーム|ユーチューブ|(?i:youtube)|アニメ|漫画|マンガ|まんが|テレビ|動画|スマホ`)
	creationVerb              = regexp.MustCompile(`作|つく|プログラ|開発|制作|描`)
)

// #endregion

// #region seriousness-rules

// seriousnessRule is one (predicate, concern) pair. Rules are ordered and the
// first match wins.
type seriousnessRule struct {
	concern Concern
	match   func(question, answer string) bool
}

var seriousnessRules = []seriousnessRule{
	{ConcernDegenerate, func(_, a string) bool { return isDegenerate(a) }},
	{ConcernNonsense, func(_, a string) bool { return isNonsense(a) }},
	{ConcernFictional, func(q, a string) bool {
		return travelContext(q, a) && fictionalPattern.MatchString(benignCompounds.Replace(a))
	}},
	{ConcernExtreme, func(q, a string) bool {
		if !travelContext(q, a) && !durationTrigger.MatchString(q) {
			return false
		}
		for _, re := range extremePatterns {
			if re.MatchString(a) {
				return true
			}
		}
		return false
	}},
	{ConcernEntertainment, func(q, a string) bool {
		return sustainedActivityQuestion.MatchString(q) &&
			entertainmentTopic.MatchString(a) &&
			!creationVerb.MatchString(a)
	}},
}

// #endregion

// #region alignment-lexicons

// categoryRule ties a question trigger to the marker its answer should carry.
// needsOpinion categories only flag when the answer falls back on generic
// opinion phrasing instead of substance.
type categoryRule struct {
	category     Category
	trigger      *regexp.Regexp
	marker       *regexp.Regexp
	needsOpinion bool
}

var categoryRules = []categoryRule{
	{
		category: CategoryDuration,
		trigger:  durationTrigger,
		marker: regexp.MustCompile(`[0-9０-９一二三四五六七八九十百半数]+\s*(分|時間|秒|日|週間|週|か月|ヶ月|カ月|ケ月|年)|` +
			`半日|一日中|ずっと|すぐ|あっという間|長い時間|短い時間|くらい|ぐらい|ほど|年生`),
	},
	{
		category:     CategoryMethod,
		trigger:      regexp.MustCompile(`どうやって|どのように|どんな方法|どんなやり方|どんな工夫|どう工夫|どんなふうに`),
		marker:       regexp.MustCompile(`方法|やり方|ように|使って|使い|工夫|手順|まず|最初に|で来|で行|乗って|歩いて|自転車|電車|バス|車|ながら`),
		needsOpinion: true,
	},
	{
		category:     CategoryReason,
		trigger:      regexp.MustCompile(`なぜ|なんで|どうして|理由|きっかけ`),
		marker:       regexp.MustCompile(`から|ので|ため|理由|きっかけ|おかげ|ことで`),
		needsOpinion: true,
	},
	{
		category: CategoryDifficulty,
		trigger:  regexp.MustCompile(`大変だった|大変なこと|難しかった|難しいこと|苦労|困った|困ること|つらかった|壁|うまくいかなかった`),
		marker:   regexp.MustCompile(`大変|難し|むずかし|苦労|困|失敗|うまくいかな|つら|辛|悩|間違|できなかった|苦手|なかなか`),
	},
	{
		category:     CategoryExample,
		trigger:      regexp.MustCompile(`例えば|たとえば|具体的|エピソード|どんな場面|どんなこと`),
		marker:       regexp.MustCompile(`例えば|たとえば|とき|時に|時は|日に|回目|ことがあ|場面|[0-9０-９]`),
		needsOpinion: true,
	},
	{
		category: CategoryPerson,
		trigger:  regexp.MustCompile(`誰|だれ|どなた|どんな人|一緒に`),
		marker: regexp.MustCompile(`友達|友だち|ともだち|仲間|先生|コーチ|監督|母|父|親|兄|姉|弟|妹|祖父|祖母|おじい|おばあ|` +
			`先輩|後輩|みんな|一人|ひとり|自分|チーム|家族|さん|くん|ちゃん|人`),
	},
	{
		category: CategoryQuantity,
		trigger:  regexp.MustCompile(`何人|何個|何回|何冊|何枚|何曲|何種類|何度|いくつ|どれくらいの数`),
		marker: regexp.MustCompile(`[0-9０-９一二三四五六七八九十百千万数]+\s*(人|個|回|冊|枚|曲|種類|度|つ|匹|本|点)|` +
			`いくつか|たくさん|少し|少な|多く|全部|ひとつ|ふたつ`),
	},
	{
		category: CategoryFeeling,
		trigger:  regexp.MustCompile(`どう思|どんな気持ち|どう感じ|気持ち|感想|どうでした`),
		marker: regexp.MustCompile(`嬉し|うれし|楽し|たのし|悲し|かなし|悔し|くやし|驚|びっくり|感じ|気持ち|ドキドキ|どきどき|` +
			`緊張|達成感|好き|ほっと|安心|不安|怖|こわ|つらかった|辛かった|わくわく|ワクワク|思いました`),
		needsOpinion: true,
	},
}

var (
	opinionPhrase      = regexp.MustCompile(`と思います|と思う|だと思|大切|大事|重要|必要だ|必要です|いいこと|すごいこと`)
	elaborationRequest = regexp.MustCompile(`説明|詳しく|くわしく|具体的に`)
	bareYesNo          = regexp.MustCompile(`^(はい|いいえ|うん|ううん|そうです|ちがいます|違います|ないです|ない|あります|ありません)[。．.!！]*$`)
	unrelatedTopic     = regexp.MustCompile(`晩ごはん|晩ご飯|夕ご飯|給食のメニュー|好きな食べ物|ペット|誕生日プレゼント|遊園地|昨日のテレビ|お小遣い`)
	// Weather is only a topic switch when the answer opens on it.
	weatherTopic       = regexp.MustCompile(`^(今日|きょう|昨日|きのう|明日|あした)?(の)?(天気|お天気)(は|が|です)`)
)

// #endregion

// #region classifier

// AnswerClassifier runs the seriousness and alignment checks.
type AnswerClassifier struct {
	cfg Config
}

// NewAnswerClassifier creates a classifier with the given thresholds.
func NewAnswerClassifier(cfg Config) *AnswerClassifier {
	return &AnswerClassifier{cfg: cfg.withDefaults()}
}

// Seriousness flags fictional, impossible, substituted, or nonsensical answers.
func (c *AnswerClassifier) Seriousness(question, answer string) Verdict {
	a := strings.TrimSpace(answer)
	for _, rule := range seriousnessRules {
		if rule.match(question, a) {
			return Verdict{Concern: rule.concern}
		}
	}
	return verdictOK
}

// Alignment flags answers that do not address what the question asked.
func (c *AnswerClassifier) Alignment(question, answer string) Verdict {
	a := strings.TrimSpace(answer)
	length := utf8.RuneCountInString(a)

	if length > c.cfg.AlignmentMinLength {
		for _, rule := range categoryRules {
			if !rule.trigger.MatchString(question) || rule.marker.MatchString(a) {
				continue
			}
			if rule.needsOpinion && !opinionPhrase.MatchString(a) {
				continue
			}
			return Verdict{Concern: ConcernCategoryMismatch, Category: rule.category}
		}
	}

	if elaborationRequest.MatchString(question) &&
		(length < c.cfg.ElaborationMinLength || bareYesNo.MatchString(a)) {
		return Verdict{Concern: ConcernTooShort}
	}

	if topic := unrelatedTopicIn(a); topic != "" && !strings.Contains(question, topic) {
		return Verdict{Concern: ConcernUnrelatedTopic, Topic: topic}
	}

	return verdictOK
}

func unrelatedTopicIn(answer string) string {
	if weatherTopic.MatchString(answer) {
		return "天気"
	}
	return unrelatedTopic.FindString(benignCompounds.Replace(answer))
}

// Assess runs seriousness before alignment. An implausible answer gets a
// "please answer seriously" redirect rather than a topic clarification.
func (c *AnswerClassifier) Assess(question, answer string) Verdict {
	if v := c.Seriousness(question, answer); v.Flagged() {
		return v
	}
	return c.Alignment(question, answer)
}

// #endregion

// #region convenience

var defaultClassifier = NewAnswerClassifier(DefaultConfig())

// SeriousnessCheck reports whether answer looks like a joke or nonsense.
func SeriousnessCheck(question, answer string) bool {
	return defaultClassifier.Seriousness(question, answer).Flagged()
}

// AlignmentCheck reports whether answer fails to address question.
func AlignmentCheck(question, answer string) bool {
	return defaultClassifier.Alignment(question, answer).Flagged()
}

// ClassifyQuestion returns every category the question triggers.
func ClassifyQuestion(question string) []Category {
	var out []Category
	for _, rule := range categoryRules {
		if rule.trigger.MatchString(question) {
			out = append(out, rule.category)
		}
	}
	return out
}

// #endregion

// #region text-shape

// meaningfulRunes returns the letters and digits in s.
func meaningfulRunes(s string) []rune {
	var out []rune
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

// isDegenerate catches empty answers and lone filler kana.
func isDegenerate(a string) bool {
	m := meaningfulRunes(a)
	if len(m) == 0 {
		return !hasSymbolRunes(a) // symbol-only strings fall to isNonsense
	}
	return len(m) == 1 && (unicode.In(m[0], unicode.Hiragana, unicode.Katakana))
}

// isNonsense catches emoji-only strings, one rune repeated, and keyboard mashing.
func isNonsense(a string) bool {
	m := meaningfulRunes(a)
	if len(m) == 0 {
		return hasSymbolRunes(a)
	}
	if len(m) >= 4 && allSame(m) {
		return true
	}
	if len(m) >= 5 && allLatin(m) && !strings.ContainsAny(strings.ToLower(string(m)), "aeiouy") {
		return true
	}
	return false
}

func hasSymbolRunes(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) || (r >= 0x1F000 && r <= 0x1FAFF) {
			return true
		}
	}
	return false
}

func allSame(rs []rune) bool {
	for _, r := range rs[1:] {
		if r != rs[0] {
			return false
		}
	}
	return true
}

func allLatin(rs []rune) bool {
	for _, r := range rs {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// #endregion
