package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ctxlock/internal/lock"
)

// RecallOptions holds flags for the recall command.
type RecallOptions struct {
	*RootOptions
	Version string
}

// NewRecallCommand creates the recall command.
func NewRecallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recall <label>",
		Short: "Print a locked context's content",
		Long: `Print a locked context's content.

Text mode writes the raw content to stdout, byte for byte, so the
output can be piped. JSON mode wraps the full record in an envelope.

Example:
  ctxlock recall output_rule --version latest`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Version, "version", "latest", `version to read ("latest" or "major.minor")`)

	return cmd
}

func runRecall(opts *RecallOptions, label string, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	res, err := eng.Recall(cmd.Context(), opts.Session, label, opts.Version)
	if err != nil {
		return WrapExitError(ExitCommandError, "recall", err)
	}

	if res.Status != lock.StatusOK {
		if err := f.Failure(string(res.Status), res.Reason); err != nil {
			return err
		}
		return reportedErr(ExitFailure)
	}

	if f.JSON() {
		return f.Success(res, "")
	}

	f.VerboseLog("%s@%s [%s] locked %s, hash %s",
		res.Lock.Label, res.Lock.Version, res.Lock.Priority,
		res.Lock.LockedAt.Format("2006-01-02 15:04"),
		lock.HashPrefix(res.Lock.ContentHash))

	// Raw content, no trailing decoration.
	fmt.Fprint(cmd.OutOrStdout(), res.Lock.Content)
	return nil
}
