package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/interview-engine/internal/interview"
	"github.com/danielpatrickdp/interview-engine/internal/replay"
)

func init() {
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>...",
		Short: "Replay fixture answers through the engine",
		Long: "Feeds each fixture's answers to a fresh engine and prints every question with its stage and source. " +
			"Exits non-zero when a fixture's expectations are not met.",
		Args: cobra.MinimumNArgs(1),
		RunE: runReplay,
	}

	RootCmd.AddCommand(cmd)
}

type replayReport struct {
	Fixture    string         `json:"fixture"`
	Turns      []replayTurn   `json:"turns"`
	Summary    replay.Summary `json:"summary"`
	Mismatches []string       `json:"mismatches,omitempty"`
}

type replayTurn struct {
	Turn     int              `json:"turn"`
	Stage    string           `json:"stage"`
	Depth    int              `json:"depth"`
	Source   interview.Source `json:"source"`
	Question string           `json:"question"`
	Answer   string           `json:"answer,omitempty"`
	Quality  int              `json:"quality"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var reports []replayReport
	failed := 0
	for _, path := range args {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		a, err := openApp(ctx, cmd.ErrOrStderr(), appOptions{tune: f.EngineConfig})
		if err != nil {
			return err
		}
		results := replay.Replay(ctx, a.engine, f)
		a.Close()

		rep := replayReport{Fixture: path, Summary: replay.Summarize(results)}
		for _, r := range results {
			rep.Turns = append(rep.Turns, replayTurn{
				Turn:     r.Turn,
				Stage:    r.Result.Stage.String(),
				Depth:    r.Result.Depth,
				Source:   r.Result.Source,
				Question: r.Result.Question,
				Answer:   r.Answer,
				Quality:  r.Quality,
			})
		}
		for _, m := range replay.Check(f, results) {
			rep.Mismatches = append(rep.Mismatches, m.String())
		}
		if len(rep.Mismatches) > 0 {
			failed++
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		if err := writeJSON(out, reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReplay(out, rep)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures did not match expectations", failed, len(reports))
	}
	return nil
}

func printReplay(out io.Writer, rep replayReport) {
	fmt.Fprintf(out, "== %s\n", rep.Fixture)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TURN\tSTAGE\tDEPTH\tSOURCE\tQUALITY\tQUESTION")
	for _, t := range rep.Turns {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%s\n", t.Turn, t.Stage, t.Depth, t.Source, t.Quality, t.Question)
	}
	tw.Flush()

	sources := make([]string, 0, len(rep.Summary.BySource))
	for s := range rep.Summary.BySource {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	fmt.Fprintf(out, "turns=%d redirects=%d closed=%v mean_quality=%.1f\n",
		rep.Summary.TotalTurns, rep.Summary.Redirects, rep.Summary.Closed, rep.Summary.MeanQuality)
	for _, s := range sources {
		fmt.Fprintf(out, "  %-14s %d\n", s, rep.Summary.BySource[interview.Source(s)])
	}
	for _, m := range rep.Mismatches {
		fmt.Fprintf(out, "MISMATCH %s\n", m)
	}
}
