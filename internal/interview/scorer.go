package interview

// #region imports
import (
	"strings"
	"unicode/utf8"
)

// #endregion

// #region report

// ScoreMetric is one named sub-score.
type ScoreMetric struct {
	Name  string
	Value int
	Max   int
}

// QualityReport holds the sub-scores of one question. Total is 0-50.
type QualityReport struct {
	Specificity int
	Vocabulary  int
	Depth       int
	WellFormed  int
	Total       int
	Metrics     []ScoreMetric
}

// #endregion

// #region markers

var specificityMarkers = []string{"どのように", "どうやって", "なぜ", "どうして", "具体的", "どんな", "誰", "いつ", "どこ", "何"}

var depthMarkerGroups = [][]string{
	{"大変", "難し", "乗り越え", "失敗", "うまくいかな", "壁"},
	{"協力", "助け", "仲間", "周りの人", "意見", "一緒"},
	{"学んだ", "変わ", "生かし", "気づ", "成長", "これから"},
}

// #endregion

// #region score

// ScoreQuestion scores a finished question for diagnostics. It is never
// consulted when choosing what to ask.
func ScoreQuestion(question string, pattern Pattern) QualityReport {
	q := strings.TrimSpace(question)

	spec := 0
	for _, m := range specificityMarkers {
		if strings.Contains(q, m) {
			spec += 5
		}
	}
	spec = min(spec, 15)

	vocab := 0
	words := patternVocabulary[pattern]
	if len(words) == 0 {
		words = patternVocabulary[PatternGeneric]
	}
	for _, w := range words {
		if strings.Contains(q, w) {
			vocab += 5
		}
	}
	vocab = min(vocab, 10)

	depth := 0
	for _, group := range depthMarkerGroups {
		if containsAny(q, group) {
			depth += 5
		}
	}

	wf := 0
	if strings.HasSuffix(q, "？") || strings.HasSuffix(q, "?") {
		wf += 5
	}
	if n := utf8.RuneCountInString(q); n >= 10 && n <= maxQuestionRunes {
		wf += 5
	}

	return QualityReport{
		Specificity: spec,
		Vocabulary:  vocab,
		Depth:       depth,
		WellFormed:  wf,
		Total:       spec + vocab + depth + wf,
		Metrics: []ScoreMetric{
			{Name: "specificity", Value: spec, Max: 15},
			{Name: "vocabulary", Value: vocab, Max: 10},
			{Name: "depth_markers", Value: depth, Max: 15},
			{Name: "well_formed", Value: wf, Max: 10},
		},
	}
}

// #endregion
