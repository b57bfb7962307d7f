package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// NewCheckCommand creates the check command, the CLI surface of the
// relevance pipeline.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <query...>",
		Short: "Rank locked contexts relevant to a query",
		Long: `Rank locked contexts relevant to a query.

Queries matching no keyword category return nothing - that is the
fast negative path, not an error.

Example:
  ctxlock check how do I authenticate API requests`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, query string, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	results, err := eng.CheckRelevance(cmd.Context(), opts.Session, query)
	if err != nil {
		return WrapExitError(ExitCommandError, "check relevance", err)
	}

	if f.JSON() {
		return f.Success(results, "")
	}

	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No relevant locks.")
		return nil
	}
	for _, r := range results {
		marker := " "
		if r.Hydrated {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f  %s@%s  [%s]  %s\n",
			marker, r.Score, r.Label, r.Version, r.Priority, r.Preview)
	}
	f.VerboseLog("categories: %s", strings.Join(results[0].MatchedCategories, ", "))
	return nil
}
