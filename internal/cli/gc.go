package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// DefaultGCAge is how old a non-persistent reference lock must be
// before collection removes it.
const DefaultGCAge = 30 * 24 * time.Hour

// GCOptions holds flags for the gc command.
type GCOptions struct {
	*RootOptions
	Age time.Duration
}

// NewGCCommand creates the gc command.
func NewGCCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GCOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Garbage-collect stale reference locks",
		Long: `Garbage-collect stale locks.

Only non-persistent reference-tier locks older than --age are removed,
and each is archived first. always_check and important locks are never
collected.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGC(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Age, "age", DefaultGCAge, "minimum age before collection")

	return cmd
}

func runGC(opts *GCOptions, cmd *cobra.Command) error {
	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	removed, err := eng.GarbageCollect(cmd.Context(), opts.Age)
	if err != nil {
		return WrapExitError(ExitCommandError, "garbage collect", err)
	}

	if f.JSON() {
		return f.Success(map[string]int{"removed": removed}, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale lock(s) (archived)\n", removed)
	return nil
}
