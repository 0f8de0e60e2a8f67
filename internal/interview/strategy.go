package interview

// #region imports
import (
	"fmt"
	"regexp"
	"strings"
)

// #endregion

// #region focus-table

// tierStrategy is the fixed focus and question shapes for one depth tier.
// Shapes take the pattern subject as their single %s verb when they use one.
type tierStrategy struct {
	focus    string
	shapes   []string
	examples []string // take one pattern vocabulary word
}

var tierStrategies = map[Tier]tierStrategy{
	TierFacts: {
		focus: "基本的な事実と経緯",
		shapes: []string{
			"%sを始めたのは、いつ頃ですか？",
			"%sでは、ふだんどんなことをしていますか？",
			"%sについて、一番心に残っていることは何ですか？",
		},
		examples: []string{"「%s」について、最初にどんなことをしましたか？"},
	},
	TierObstacles: {
		focus: "困難や壁",
		shapes: []string{
			"%sで、一番大変だったことは何ですか？",
			"%sで難しいと感じたのは、どんな場面でしたか？",
			"うまくいかなかったとき、どうやって乗り越えましたか？",
		},
		examples: []string{"「%s」で、思うようにいかなかったことはありますか？"},
	},
	TierCollaboration: {
		focus: "協力や支え",
		shapes: []string{
			"%sで、誰かに助けてもらったことはありますか？",
			"%sでは、周りの人とどのように協力しましたか？",
			"意見が合わなかったとき、どうしましたか？",
		},
		examples: []string{"「%s」のとき、周りの人とどう関わりましたか？"},
	},
	TierReflection: {
		focus: "振り返りと成長、これからへの生かし方",
		shapes: []string{
			"%sを通して、自分がどう変わったと思いますか？",
			"そこで学んだことを、これからどんなことに生かしたいですか？",
			"もう一度やるとしたら、どこを変えてみたいですか？",
		},
		examples: []string{"「%s」を通して気づいたことは何ですか？"},
	},
}

// motivationShape is only ever added to the reflection tier, and only once
// motivationAllowed holds.
const motivationShape = "この学校に入ったら、その経験をどのように生かしたいですか？"

// motivationTopic matches the "why this school" topic in any question text.
var motivationTopic = regexp.MustCompile(
	`志望|この学校|この中学|本校|当校|わが校|入学|` +
		`(私たち|わたしたち|僕たち|ぼくたち|うち|我々)の中?学校|` +
		`受験し|受験を|受験する|受験の理由|学校を選|学校に決|` +
		`(なぜ|どうして|なんで).*学校`)

// MentionsMotivation reports whether s touches the "why this school" topic.
func MentionsMotivation(s string) bool {
	return motivationTopic.MatchString(s)
}

// #endregion

// #region selector

// SelectStrategy maps (state, pattern) to a descriptor. The focus depends only
// on the depth tier; pattern only flavors shapes and examples. Opening and
// closing carry no generated strategy and get an empty focus.
func SelectStrategy(state ConversationState, pattern Pattern, cfg Config) StrategyDescriptor {
	cfg = cfg.withDefaults()
	if state.Stage == StageOpening || state.Stage == StageClosing {
		return StrategyDescriptor{}
	}

	tier := state.Tier()
	ts := tierStrategies[tier]
	subject := subjectFor(pattern)

	shapes := make([]string, 0, len(ts.shapes)+1)
	for _, s := range ts.shapes {
		shapes = append(shapes, fill(s, subject))
	}

	vocab := patternVocabulary[pattern]
	if len(vocab) == 0 {
		vocab = patternVocabulary[PatternGeneric]
	}
	examples := make([]string, 0, len(ts.examples))
	for i, e := range ts.examples {
		examples = append(examples, fmt.Sprintf(e, vocab[(int(tier)+i)%len(vocab)]))
	}

	allow := motivationAllowed(state, cfg)
	if allow && tier == TierReflection {
		shapes = append(shapes, motivationShape)
	}

	return StrategyDescriptor{
		Focus:           ts.focus,
		Shapes:          shapes,
		Examples:        examples,
		AllowMotivation: allow,
	}
}

// fill substitutes subject into shape when it carries a verb.
func fill(shape, subject string) string {
	if strings.Contains(shape, "%s") {
		return fmt.Sprintf(shape, subject)
	}
	return shape
}

// #endregion
