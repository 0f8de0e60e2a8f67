package interview

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		allow bool
		want  string
		err   error
	}{
		{"strict", `{"question": "練習で一番大変だったことは何ですか？"}`, false, "練習で一番大変だったことは何ですか？", nil},
		{"fenced", "```json\n{\"question\": \"どんな工夫をしましたか？\"}\n```", false, "どんな工夫をしましたか？", nil},
		{"prose-wrapped", `はい、質問です。{"question":"誰と一緒に練習しましたか?"} 以上です`, false, "誰と一緒に練習しましたか？", nil},
		{"unterminated-json", `{"question": "その時どう感じましたか？", `, false, "その時どう感じましたか？", nil},
		{"missing-question-mark", `{"question":"どんな練習をしていましたか"}`, false, "どんな練習をしていましたか？", nil},
		{"sentence-ceiling", `{"question":"なるほど。よく分かりました。では、次の大会に向けて何を練習していますか？"}`, false, "よく分かりました。では、次の大会に向けて何を練習していますか？", nil},
		{"no-envelope", "I cannot help with that.", false, "", ErrMalformedOutput},
		{"empty", "", false, "", ErrMalformedOutput},
		{"statement", `{"question":"とても良い経験でした。"}`, false, "", ErrMalformedOutput},
		{"empty-field", `{"question": ""}`, false, "", ErrMalformedOutput},
		{"motivation-too-early", `{"question":"この学校を志望した理由は何ですか？"}`, false, "", ErrSuppressedTopic},
		{"inner-brackets-kept", `{"question":"「作品」について、もう少し詳しく教えてもらえますか？"}`, false, "「作品」について、もう少し詳しく教えてもらえますか？", nil},
		{"wrapping-brackets-removed", `{"question":"「どんな工夫をしましたか？」"}`, false, "どんな工夫をしましたか？", nil},
		{"motivation-allowed", `{"question":"この学校を志望した理由は何ですか？"}`, true, "この学校を志望した理由は何ですか？", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateResponse(tt.raw, 2, tt.allow)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("error: got %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateResponseSuppressesSchoolChoicePhrasings(t *testing.T) {
	questions := []string{
		"どうして私たちの中学校を選んだのですか？",
		"うちの学校のどんなところに興味を持ちましたか？",
		"当校を受験しようと思ったきっかけは何ですか？",
		"この中学でどんなことに挑戦したいですか？",
		"なぜこの学校なのか教えてもらえますか？",
		"たくさんある中で、どうしてここの学校にしたのですか？",
	}
	for _, q := range questions {
		t.Run(q, func(t *testing.T) {
			raw := `{"question":"` + q + `"}`
			if _, err := ValidateResponse(raw, 2, false); !errors.Is(err, ErrSuppressedTopic) {
				t.Errorf("got err %v, want %v", err, ErrSuppressedTopic)
			}
			if got, err := ValidateResponse(raw, 2, true); err != nil || got != q {
				t.Errorf("allowed: got %q, %v", got, err)
			}
		})
	}
}

func TestMentionsMotivationIgnoresExamineeNumber(t *testing.T) {
	if MentionsMotivation(openingScript[0]) {
		t.Errorf("opening question %q should not count as the motivation topic", openingScript[0])
	}
}

func TestValidateResponseBoundsExtraction(t *testing.T) {
	raw := strings.Repeat("x", maxScanBytes+10) + `"question": "どんな工夫をしましたか？"`
	if _, err := ValidateResponse(raw, 2, false); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("question past the scan bound should not be found, got err %v", err)
	}
}

func TestFindJSONCandidates(t *testing.T) {
	got := findJSONCandidates(`a {"x": "}"} b {"y": {"z": 1}} {broken`)
	want := []string{`{"x": "}"}`, `{"y": {"z": 1}}`}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
