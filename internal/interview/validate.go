package interview

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// #endregion

// #region limits

const (
	maxScanBytes     = 4096 // pattern extraction never looks past this
	minQuestionRunes = 5
	maxQuestionRunes = 120
)

// ErrSuppressedTopic means the text raised the motivation topic too early.
var ErrSuppressedTopic = errors.New("suppressed topic")

// #endregion

// #region validate

// envelope is the single-field object the generator is asked to return.
type envelope struct {
	Question string `json:"question"`
}

var (
	fencePattern    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	questionPattern = regexp.MustCompile(`"question"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// ValidateResponse recovers a question from raw generator output and repairs
// it into the required shape. It fails with ErrMalformedOutput when nothing
// usable is found and ErrSuppressedTopic when the motivation topic appears
// while it is not allowed.
func ValidateResponse(raw string, maxSentences int, allowMotivation bool) (string, error) {
	q, ok := extractQuestion(raw)
	if !ok {
		return "", ErrMalformedOutput
	}
	q, err := repairQuestion(q, maxSentences)
	if err != nil {
		return "", err
	}
	if err := CheckQuestion(q, allowMotivation); err != nil {
		return "", err
	}
	return q, nil
}

// CheckQuestion applies the checks every served question must pass,
// whether it came from the generator or the cache.
func CheckQuestion(q string, allowMotivation bool) error {
	if !strings.HasSuffix(q, "？") {
		return fmt.Errorf("%w: not question-terminated", ErrMalformedOutput)
	}
	if !allowMotivation && MentionsMotivation(q) {
		return ErrSuppressedTopic
	}
	return nil
}

// extractQuestion tries a strict parse, then every embedded object, then a
// bounded pattern match.
func extractQuestion(raw string) (string, bool) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return "", false
	}

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err == nil && strings.TrimSpace(env.Question) != "" {
		return env.Question, true
	}

	for _, cand := range findJSONCandidates(text) {
		env = envelope{}
		if err := json.Unmarshal([]byte(cand), &env); err == nil && strings.TrimSpace(env.Question) != "" {
			return env.Question, true
		}
	}

	scan := text
	if len(scan) > maxScanBytes {
		scan = scan[:maxScanBytes]
	}
	if m := questionPattern.FindStringSubmatch(scan); m != nil {
		var s string
		if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err == nil && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func stripFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// #endregion

// #region repair

var sentenceEnd = regexp.MustCompile(`[^。！？!?]+[。！？!?]*`)

// repairQuestion normalizes punctuation, keeps the last maxSentences
// sentences, and makes sure the text ends in a full-width question mark.
func repairQuestion(q string, maxSentences int) (string, error) {
	q = strings.Join(strings.Fields(q), "")
	q = unwrapQuotes(q)
	q = strings.ReplaceAll(q, "?", "？")
	q = strings.ReplaceAll(q, "!", "！")
	if strings.ContainsAny(q, "{}") {
		return "", fmt.Errorf("%w: envelope residue", ErrMalformedOutput)
	}

	sentences := sentenceEnd.FindAllString(q, -1)
	if maxSentences > 0 && len(sentences) > maxSentences {
		sentences = sentences[len(sentences)-maxSentences:]
	}
	q = strings.Join(sentences, "")

	if !strings.HasSuffix(q, "？") {
		trimmed := strings.TrimRight(q, "。！.")
		if !strings.HasSuffix(trimmed, "か") && !strings.HasSuffix(trimmed, "ね") {
			return "", fmt.Errorf("%w: not a question", ErrMalformedOutput)
		}
		q = trimmed + "？"
	}

	n := utf8.RuneCountInString(q)
	if n < minQuestionRunes || n > maxQuestionRunes {
		return "", fmt.Errorf("%w: length %d", ErrMalformedOutput, n)
	}
	return q, nil
}

// unwrapQuotes strips quotes that enclose the whole text as a pair, plus a
// stray opening or closing bracket with no partner.
func unwrapQuotes(q string) string {
	for {
		switch {
		case strings.HasPrefix(q, "「") && strings.Index(q, "」") == len(q)-len("」"):
			q = q[len("「") : len(q)-len("」")]
		case len(q) >= 2 && (q[0] == '"' || q[0] == '\'') && q[len(q)-1] == q[0] &&
			strings.IndexByte(q[1:len(q)-1], q[0]) < 0:
			q = q[1 : len(q)-1]
		case strings.HasPrefix(q, "「") && !strings.Contains(q, "」"):
			q = q[len("「"):]
		case strings.HasSuffix(q, "」") && !strings.Contains(q, "「"):
			q = q[:len(q)-len("」")]
		default:
			return q
		}
	}
}

// #endregion

// #region json-scan

// findJSONCandidates returns every top-level {...} span in s, skipping braces
// inside string literals. ASCII delimiters never occur inside UTF-8
// multi-byte sequences, so scanning bytes is safe.
func findJSONCandidates(s string) []string {
	var (
		candidates []string
		depth      int
		start      = -1
		inString   bool
		escape     bool
	)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return candidates
}

// #endregion
