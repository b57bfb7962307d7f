package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ctxlock/internal/lock"
)

// UnlockOptions holds flags for the unlock command.
type UnlockOptions struct {
	*RootOptions
	Version string
	Force   bool
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnlockOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unlock <label>",
		Short: "Archive and delete lock versions",
		Long: `Archive and delete lock versions.

Deleted rows are copied into the archive before removal, so unlock
never destroys content. always_check versions are skipped unless
--force is given.

Example:
  ctxlock unlock auth_spec --version all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnlock(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Version, "version", "latest", `versions to delete ("latest", "all", or "major.minor")`)
	cmd.Flags().BoolVar(&opts.Force, "force", false, "delete always_check versions too")

	return cmd
}

func runUnlock(opts *UnlockOptions, label string, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	res, err := eng.Unlock(cmd.Context(), opts.Session, label, opts.Version, opts.Force)
	if err != nil {
		return WrapExitError(ExitCommandError, "unlock", err)
	}

	if res.Status != lock.StatusOK {
		if err := f.Failure(string(res.Status), res.Reason); err != nil {
			return err
		}
		return reportedErr(ExitFailure)
	}

	text := fmt.Sprintf("Deleted %d version(s) of %s (archived)", res.Deleted, label)
	if res.Reason != "" {
		text += "\n" + res.Reason
	}
	return f.Success(res, text)
}
