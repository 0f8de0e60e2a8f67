package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
	"github.com/danielpatrickdp/interview-engine/internal/logging"
	"github.com/danielpatrickdp/interview-engine/internal/transcript"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interview in the terminal",
		Long: "Asks one question at a time and reads the examinee's answer from stdin. " +
			"Type /quit to stop; resume later with --session.",
		RunE: runChat,
	}

	cmd.Flags().StringP("session", "s", "", "Resume an existing session")
	cmd.Flags().StringP("profile", "p", "", "Activity profile JSON file")
	cmd.Flags().String("activity", "", "Activity description (instead of --profile)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")

	RootCmd.AddCommand(cmd)
}

const quitCommand = "/quit"

func runChat(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	profilePath, _ := cmd.Flags().GetString("profile")
	activity, _ := cmd.Flags().GetString("activity")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	ctx := cmd.Context()
	a, err := openApp(ctx, cmd.ErrOrStderr(), appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if metricsAddr == "" {
		metricsAddr = a.cfg.MetricsAddr
	}
	if metricsAddr != "" {
		stop := serveMetrics(a, metricsAddr)
		defer stop()
	}

	sess, err := startSession(ctx, a.store, sessionID, profilePath, activity)
	if err != nil {
		return err
	}
	recs, err := a.store.Turns(ctx, sess.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "session %s\n", sess.ID)
	return interviewLoop(ctx, a, sess, recs, bufio.NewScanner(cmd.InOrStdin()), out)
}

// interviewLoop alternates questions and answers until the closing question
// is answered, input ends, or the user quits. A resumed session whose last
// turn is an unanswered question asks it again instead of producing a new one.
func interviewLoop(ctx context.Context, a *app, sess transcript.Session, recs []transcript.TurnRecord, in *bufio.Scanner, out io.Writer) error {
	if sess.Closed() {
		fmt.Fprintln(out, "this session has already ended")
		return nil
	}
	history := make([]interview.Turn, 0, len(recs)+2)
	for _, r := range recs {
		history = append(history, r.Turn())
	}
	var pending *transcript.TurnRecord
	if n := len(recs); n > 0 && recs[n-1].Role == interview.RoleInterviewer {
		pending = &recs[n-1]
	}

	for {
		var res interview.Result
		if pending != nil {
			res = interview.Result{Question: pending.Text, Source: pending.Source, Closing: pending.Source == interview.SourceClosing}
			pending = nil
		} else {
			res = a.engine.NextQuestion(ctx, interview.Request{
				SessionID: sess.ID,
				History:   history,
				Profile:   sess.Profile,
			})
			if _, err := a.store.AppendTurn(ctx, sess.ID, interview.RoleInterviewer, res.Question, res.Source); err != nil {
				return err
			}
			if err := a.turns.LogTurn(ctx, logging.NewTurnEntry(sess.ID, res)); err != nil {
				a.log.Warn("turn log write failed", zap.Error(err))
			}
			history = append(history, interview.Turn{Role: interview.RoleInterviewer, Text: res.Question})
		}
		fmt.Fprintf(out, "面接官: %s\n", res.Question)

		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		answer := strings.TrimSpace(in.Text())
		if answer == quitCommand {
			return nil
		}
		if _, err := a.store.AppendTurn(ctx, sess.ID, interview.RoleExaminee, answer, ""); err != nil {
			return err
		}
		history = append(history, interview.Turn{Role: interview.RoleExaminee, Text: answer})

		if res.Closing {
			fmt.Fprintln(out, "面接官: ありがとうございました。")
			return a.store.CloseSession(ctx, sess.ID)
		}
	}
}

func startSession(ctx context.Context, store *transcript.Store, id, profilePath, activity string) (transcript.Session, error) {
	if id != "" {
		return store.GetSession(ctx, id)
	}
	profile, err := readProfile(profilePath, activity)
	if err != nil {
		return transcript.Session{}, err
	}
	return store.CreateSession(ctx, profile)
}

func readProfile(path, activity string) (interview.ActivityProfile, error) {
	if path == "" {
		if strings.TrimSpace(activity) == "" {
			return interview.ActivityProfile{}, errors.New("either --profile or --activity is required")
		}
		return interview.ActivityProfile{Activity: activity}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return interview.ActivityProfile{}, fmt.Errorf("read profile: %w", err)
	}
	var p interview.ActivityProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return interview.ActivityProfile{}, fmt.Errorf("parse profile: %w", err)
	}
	if strings.TrimSpace(p.Activity) == "" {
		return interview.ActivityProfile{}, errors.New("profile: activity is required")
	}
	return p, nil
}

// serveMetrics exposes the app's registry on /metrics until stop is called.
func serveMetrics(a *app, addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	a.log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
