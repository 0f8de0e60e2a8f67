package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/interview-engine/internal/replay"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session's answers as a replay fixture",
		Long:  "Writes the session's profile and examinee answers as fixture JSON, to --out or stdout.",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")

	ctx := cmd.Context()
	a, err := openApp(ctx, cmd.ErrOrStderr(), appOptions{store: true})
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.store.GetSession(ctx, args[0])
	if err != nil {
		return err
	}
	history, err := a.store.History(ctx, sess.ID)
	if err != nil {
		return err
	}

	f := replay.FromHistory(fmt.Sprintf("exported from session %s", sess.ID), sess.Profile, history)
	if outPath == "" {
		return writeJSON(cmd.OutOrStdout(), f)
	}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d answers to %s\n", len(f.Answers), outPath)
	return nil
}
