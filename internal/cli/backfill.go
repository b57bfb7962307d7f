package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BackfillOptions holds flags for the backfill command.
type BackfillOptions struct {
	*RootOptions
}

// NewBackfillCommand creates the backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackfillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Recompute previews and key concepts for the session",
		Long: `Recompute derived fields (preview, key concepts) for every lock in
the session. Run after the extraction logic changes; content itself is
never rewritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(opts, cmd)
		},
	}

	return cmd
}

func runBackfill(opts *BackfillOptions, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	updated, err := eng.Backfill(cmd.Context(), opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "backfill", err)
	}

	if f.JSON() {
		return f.Success(map[string]int{"updated": updated}, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d lock(s)\n", updated)
	return nil
}
