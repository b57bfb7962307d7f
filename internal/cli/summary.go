package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SummaryOptions holds flags for the summary command.
type SummaryOptions struct {
	*RootOptions
	Priority string
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "summary",
		Short:         "Print a session-start digest of recent locks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Priority, "priority", "", "only include one priority tier")

	return cmd
}

func runSummary(opts *SummaryOptions, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	digest, err := eng.SessionSummary(cmd.Context(), opts.Session, opts.Priority)
	if err != nil {
		return WrapExitError(ExitCommandError, "session summary", err)
	}

	if f.JSON() {
		return f.Success(map[string]string{"digest": digest}, "")
	}
	fmt.Fprintln(cmd.OutOrStdout(), digest)
	return nil
}
