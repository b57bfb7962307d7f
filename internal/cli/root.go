package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/ctxlock/internal/config"
	"github.com/roach88/ctxlock/internal/engine"
	"github.com/roach88/ctxlock/internal/store"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DB      string
	Session string
	Config  string
	Format  string // "json" | "text"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ctxlock CLI.
//
// Session derivation is external to the engine: when --session is not
// given, each invocation gets a fresh random session id, which is only
// useful for one-shot experiments. Real callers pass their own.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ctxlock",
		Short: "ctxlock - durable context locks for agent sessions",
		Long: "ctxlock stores versioned, immutable text snippets (rules, specs, decisions),\n" +
			"retrieves the ones relevant to a query, and flags actions that appear to\n" +
			"violate previously locked rules.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Session == "" {
				opts.Session = uuid.NewString()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "ctxlock.db", "path to the lock database")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "", "session id (default: random per invocation)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a CUE config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewLockCommand(opts))
	cmd.AddCommand(NewRecallCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewViolationsCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewGCCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openEngine builds an engine over the configured database. The
// returned closer must be called when the command is done.
func openEngine(opts *RootOptions, errWriter io.Writer) (*engine.Engine, func() error, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("open database %s", opts.DB), err)
	}

	logHandler := slog.NewTextHandler(io.Discard, nil)
	if opts.Verbose {
		logHandler = slog.NewTextHandler(errWriter, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	eng := engine.New(st,
		engine.WithConfig(cfg),
		engine.WithLogger(slog.New(logHandler)),
	)
	return eng, st.Close, nil
}

// newFormatter builds the command's output formatter from the global
// flags and the cobra command's writers.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
