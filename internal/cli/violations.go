package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ViolationsOptions holds flags for the violations command.
type ViolationsOptions struct {
	*RootOptions
}

// NewViolationsCommand creates the violations command.
func NewViolationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViolationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "violations <action...>",
		Short: "Check an action against locked rules",
		Long: `Check a proposed action against rules extracted from relevant locks.

Matching is heuristic and best-effort: a reported violation is a
prompt to review the action, not a verdict. Finding violations exits
with code 1 so scripts can gate on it.

Example:
  ctxlock violations generate.py --output output_test`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViolations(opts, strings.Join(args, " "), cmd)
		},
	}

	// The action text itself may contain flag-like tokens (--output).
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runViolations(opts *ViolationsOptions, action string, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	violations, err := eng.CheckViolations(cmd.Context(), opts.Session, action)
	if err != nil {
		return WrapExitError(ExitCommandError, "check violations", err)
	}

	if f.JSON() {
		if err := f.Success(violations, ""); err != nil {
			return err
		}
	} else if len(violations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No violations.")
	} else {
		for _, v := range violations {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s@%s: %s\n    %s\n",
				v.Rule.Severity, v.Label, v.Version, v.Rule.Text, v.Suggestion)
		}
	}

	if len(violations) > 0 {
		return reportedErr(ExitFailure)
	}
	return nil
}
