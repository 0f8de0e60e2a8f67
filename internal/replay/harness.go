package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

// #region types

// TurnResult records one question the engine produced and the answer the
// fixture gave to it. Answer is empty for the final question.
type TurnResult struct {
	Turn    int
	Result  interview.Result
	Answer  string
	Quality int
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns  int
	BySource    map[interview.Source]int
	Redirects   int
	Joking      int
	Misaligned  int
	FinalStage  interview.Stage
	Closed      bool
	MeanQuality float64
}

// Mismatch is an expectation the run did not meet.
type Mismatch struct {
	Turn  int
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("turn %d: %s = %q, want %q", m.Turn, m.Field, m.Got, m.Want)
}

// #endregion types

// #region replay

// Replay asks a question, feeds the fixture's next answer, and repeats. It
// stops after the closing question or one question past the last answer.
func Replay(ctx context.Context, eng *interview.Engine, f *Fixture) []TurnResult {
	var (
		history []interview.Turn
		results []TurnResult
	)
	for i := 0; i <= len(f.Answers); i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		res := eng.NextQuestion(ctx, interview.Request{
			SessionID: f.SessionID,
			History:   history,
			Profile:   f.Profile,
		})
		tr := TurnResult{
			Turn:    i + 1,
			Result:  res,
			Quality: interview.ScoreQuestion(res.Question, res.Pattern).Total,
		}
		if i < len(f.Answers) && !res.Closing {
			tr.Answer = f.Answers[i]
		}
		results = append(results, tr)
		if res.Closing || i == len(f.Answers) {
			break
		}
		history = append(history,
			interview.Turn{Role: interview.RoleInterviewer, Text: res.Question},
			interview.Turn{Role: interview.RoleExaminee, Text: f.Answers[i]},
		)
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []TurnResult) Summary {
	s := Summary{
		TotalTurns: len(results),
		BySource:   make(map[interview.Source]int),
	}
	total := 0
	for _, r := range results {
		s.BySource[r.Result.Source]++
		total += r.Quality
		if r.Result.Source == interview.SourceRedirect {
			s.Redirects++
		}
		if r.Result.Flags.Joking {
			s.Joking++
		}
		if r.Result.Flags.Misaligned {
			s.Misaligned++
		}
	}
	if len(results) > 0 {
		last := results[len(results)-1].Result
		s.FinalStage = last.Stage
		s.Closed = last.Closing
		s.MeanQuality = float64(total) / float64(len(results))
	}
	return s
}

// Check compares results against the fixture's expectations.
func Check(f *Fixture, results []TurnResult) []Mismatch {
	var out []Mismatch
	for _, exp := range f.Expected {
		if exp.Turn < 1 || exp.Turn > len(results) {
			out = append(out, Mismatch{Turn: exp.Turn, Field: "turn", Want: "present", Got: "missing"})
			continue
		}
		got := results[exp.Turn-1].Result
		if exp.Stage != "" && exp.Stage != got.Stage.String() {
			out = append(out, Mismatch{Turn: exp.Turn, Field: "stage", Want: exp.Stage, Got: got.Stage.String()})
		}
		if exp.Source != "" && exp.Source != string(got.Source) {
			out = append(out, Mismatch{Turn: exp.Turn, Field: "source", Want: exp.Source, Got: string(got.Source)})
		}
	}
	return out
}

// #endregion replay
