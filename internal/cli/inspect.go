package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/interview-engine/internal/logging"
	"github.com/danielpatrickdp/interview-engine/internal/transcript"
)

func init() {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List sessions or show one session's transcript",
		RunE:  runInspect,
	}

	cmd.Flags().StringP("session", "s", "", "Show one session in detail")
	cmd.Flags().IntP("last", "n", 20, "Number of recent sessions to list")

	RootCmd.AddCommand(cmd)
}

type sessionRow struct {
	ID        string `json:"id"`
	Activity  string `json:"activity"`
	Pattern   string `json:"pattern,omitempty"`
	Turns     int    `json:"turns"`
	Closed    bool   `json:"closed"`
	CreatedAt string `json:"created_at"`
}

type sessionDetail struct {
	Session    sessionRow              `json:"session"`
	Transcript []transcriptLine        `json:"transcript"`
	Sources    []logging.SourceSummary `json:"sources"`
	Joking     int                     `json:"joking"`
	Misaligned int                     `json:"misaligned"`
}

type transcriptLine struct {
	Seq    int    `json:"seq"`
	Role   string `json:"role"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	last, _ := cmd.Flags().GetInt("last")

	ctx := cmd.Context()
	a, err := openApp(ctx, cmd.ErrOrStderr(), appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if sessionID == "" {
		sessions, err := a.store.ListSessions(ctx, last)
		if err != nil {
			return err
		}
		rows := make([]sessionRow, len(sessions))
		for i, s := range sessions {
			rows[i] = toRow(s)
		}
		if jsonOut {
			return writeJSON(out, rows)
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no sessions found")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tPATTERN\tTURNS\tCLOSED\tACTIVITY")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\t%s\n", r.ID, r.CreatedAt, r.Pattern, r.Turns, r.Closed, r.Activity)
		}
		return tw.Flush()
	}

	sess, err := a.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	recs, err := a.store.Turns(ctx, sessionID)
	if err != nil {
		return err
	}
	sources, err := a.turns.Summary(ctx, sessionID)
	if err != nil {
		return err
	}
	joking, misaligned, err := a.turns.FlagCounts(ctx, sessionID)
	if err != nil {
		return err
	}

	d := sessionDetail{Session: toRow(sess), Sources: sources, Joking: joking, Misaligned: misaligned}
	for _, r := range recs {
		d.Transcript = append(d.Transcript, transcriptLine{
			Seq: r.Seq, Role: string(r.Role), Text: r.Text, Source: string(r.Source),
		})
	}
	if jsonOut {
		return writeJSON(out, d)
	}
	printDetail(out, d)
	return nil
}

func toRow(s transcript.Session) sessionRow {
	return sessionRow{
		ID:        s.ID,
		Activity:  s.Profile.Activity,
		Pattern:   string(s.Pattern),
		Turns:     s.Turns,
		Closed:    s.Closed(),
		CreatedAt: s.CreatedAt.Format(time.DateTime),
	}
}

func printDetail(out io.Writer, d sessionDetail) {
	fmt.Fprintf(out, "session %s  pattern=%s  closed=%v\n", d.Session.ID, d.Session.Pattern, d.Session.Closed)
	fmt.Fprintf(out, "activity: %s\n\n", d.Session.Activity)
	for _, l := range d.Transcript {
		if l.Source != "" {
			fmt.Fprintf(out, "%3d %-11s [%s] %s\n", l.Seq, l.Role, l.Source, l.Text)
		} else {
			fmt.Fprintf(out, "%3d %-11s %s\n", l.Seq, l.Role, l.Text)
		}
	}
	fmt.Fprintf(out, "\njoking=%d misaligned=%d\n", d.Joking, d.Misaligned)
	for _, s := range d.Sources {
		fmt.Fprintf(out, "  %-14s %3d  mean quality %.1f\n", s.Source, s.Turns, s.MeanQuality)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
