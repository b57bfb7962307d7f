package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	AllSessions bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List lock summaries, newest first",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AllSessions, "all-sessions", false, "list locks from every session")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	summaries, err := eng.List(cmd.Context(), opts.Session, !opts.AllSessions)
	if err != nil {
		return WrapExitError(ExitCommandError, "list", err)
	}

	if f.JSON() {
		return f.Success(summaries, "")
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No locks.")
		return nil
	}
	for _, s := range summaries {
		persistent := ""
		if s.Persistent {
			persistent = " persistent"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s@%s  [%s]  %d bytes  %s  %s%s\n",
			s.Label, s.Version, s.Priority, s.Size, s.HashPrefix,
			s.LockedAt.Format("2006-01-02 15:04"), persistent)
	}
	return nil
}
