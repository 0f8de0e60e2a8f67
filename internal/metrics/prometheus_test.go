package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
)

var _ interview.Observer = (*Recorder)(nil)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveTurn(interview.StageOpening, interview.SourceScript, 5*time.Millisecond)
	r.ObserveTurn(interview.StageOpening, interview.SourceScript, 5*time.Millisecond)
	r.ObserveTurn(interview.StageDeepening, interview.SourceFallback, time.Second)
	r.ObserveFlag(interview.ConcernFictional)
	r.ObserveGenerationError(interview.GenQuota)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.turnsTotal.WithLabelValues("opening", "script")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.turnsTotal.WithLabelValues("deepening", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.flagsTotal.WithLabelValues("fictional")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.genErrorsTotal.WithLabelValues("quota")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.turnDuration))
}

func TestRecorderSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder(prometheus.NewRegistry())
		NewRecorder(prometheus.NewRegistry())
	})
}

func TestRecorderWiredIntoEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	quota := interview.GeneratorFunc(func(context.Context, interview.PromptSpec) (string, error) {
		return "", interview.NewGenerationError(interview.GenQuota, errors.New("429"))
	})
	eng := interview.NewEngine(interview.DefaultConfig(), quota, nil, interview.WithObserver(r))
	profile := interview.ActivityProfile{Activity: "サッカー部で毎日練習しています"}

	var history []interview.Turn
	answers := []string{
		"12番の山田花子です。",
		"電車で来ました。",
		"30分くらいかかりました。",
		"サッカーを続けています。",
	}
	ctx := context.Background()
	for _, a := range answers {
		res := eng.NextQuestion(ctx, interview.Request{SessionID: "m1", History: history, Profile: profile})
		history = append(history,
			interview.Turn{Role: interview.RoleInterviewer, Text: res.Question},
			interview.Turn{Role: interview.RoleExaminee, Text: a})
	}
	eng.NextQuestion(ctx, interview.Request{SessionID: "m1", History: history, Profile: profile})

	require.Equal(t, 3.0, testutil.ToFloat64(r.turnsTotal.WithLabelValues("opening", "script")))
	assert.Greater(t, testutil.ToFloat64(r.genErrorsTotal.WithLabelValues("quota")), 0.0)
	assert.Greater(t, testutil.ToFloat64(r.turnsTotal.WithLabelValues("exploration", "fallback")), 0.0)
}
