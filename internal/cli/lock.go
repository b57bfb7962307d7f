package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ctxlock/internal/engine"
	"github.com/roach88/ctxlock/internal/lock"
)

// LockOptions holds flags for the lock command.
type LockOptions struct {
	*RootOptions
	Content    string
	Version    string
	Priority   string
	Tags       []string
	Persistent bool
}

// NewLockCommand creates the lock command.
func NewLockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LockOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lock <label>",
		Short: "Lock content as a new version under a label",
		Long: `Lock content as a new immutable version under a label.

Content comes from --content or, when the flag is omitted, from stdin.
Without --version the next version is allocated automatically ("1.0"
for a new label, minor+1 otherwise).

Example:
  ctxlock lock output_rule --priority always_check \
    --content "ALWAYS use the 'output' folder for generated files"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLock(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Content, "content", "", "content to lock (default: read stdin)")
	cmd.Flags().StringVar(&opts.Version, "version", "", "explicit version (default: allocate next)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "reference", "priority tier (always_check|important|reference)")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "comma-separated tags")
	cmd.Flags().BoolVar(&opts.Persistent, "persistent", false, "exempt from garbage collection")

	return cmd
}

func runLock(opts *LockOptions, label string, cmd *cobra.Command) error {
	content := opts.Content
	if content == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "read content from stdin", err)
		}
		content = string(data)
	}

	eng, closeStore, err := openEngine(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeStore()

	f := newFormatter(opts.RootOptions, cmd)

	res, err := eng.Lock(cmd.Context(), engine.LockRequest{
		Session:    opts.Session,
		Label:      label,
		Content:    content,
		Version:    opts.Version,
		Priority:   opts.Priority,
		Tags:       opts.Tags,
		Persistent: opts.Persistent,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "lock", err)
	}

	if res.Status != lock.StatusOK {
		if err := f.Failure(string(res.Status), res.Reason); err != nil {
			return err
		}
		return reportedErr(ExitFailure)
	}

	text := fmt.Sprintf("Locked %s@%s (%d bytes, hash %s)",
		res.Label, res.Version, res.Size, lock.HashPrefix(res.Hash))
	if len(opts.Tags) > 0 {
		f.VerboseLog("tags: %s", strings.Join(opts.Tags, ", "))
	}
	return f.Success(res, text)
}
