package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/burptools/burp-timer/internal/backup"
	"github.com/burptools/burp-timer/internal/engine"
	"github.com/burptools/burp-timer/internal/log"
)

// burp invokes the hook with five fixed positionals before the timer
// lines: client name, prior backup path, data path, and two reserved
// slots.
const fixedArgs = 5

// RootOptions holds the invocation environment of the timer hook.
type RootOptions struct {
	// Now is the evaluation instant, in the server's local zone.
	Now time.Time

	// RemoteAddr is the client address from the REMOTE_ADDR
	// environment variable burp sets for its scripts.
	RemoteAddr string

	Logger *slog.Logger

	helpRequested bool
}

// NewRootCommand creates the burp-timer command.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "burp-timer <client> <prior-path> <data-path> <reserved1> <reserved2> [timer-arg ...]",
		Short: "burp timer hook deciding whether a backup should run",
		Long: "burp-timer evaluates timer lines against the prior backup and exits 0 " +
			"when the backup should proceed.\n\n" + engine.OptionHelp(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, rulesFile)
		},
	}

	// Timer lines start at the first positional and routinely begin
	// with dashes; nothing after the client name is a flag of ours.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&rulesFile, "rules-file", "",
		"YAML file with timer lines to evaluate after the command-line ones")

	helpFn := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		opts.helpRequested = true
		helpFn(c, args)
	})

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *RootOptions, rulesFile string) error {
	// A lone "--help" anywhere among the positionals asks for usage,
	// the way burp admins probe hook scripts.
	if slices.Contains(args, "--help") {
		return cmd.Help()
	}
	// Without a rules file at least one timer line must follow the
	// fixed positionals, or the invocation is a mistake.
	if len(args) < fixedArgs || (len(args) == fixedArgs && rulesFile == "") {
		if err := cmd.Help(); err != nil {
			return err
		}
		return NewExitError(ExitUsage, "")
	}

	client, priorPath, dataPath := args[0], args[1], args[2]
	if _, err := os.Stat(dataPath); err != nil {
		return WrapExitError(ExitUsage, "data path not accessible", err)
	}

	lines := slices.Clone(args[fixedArgs:])
	if rulesFile != "" {
		fileLines, err := loadRulesFile(rulesFile)
		if err != nil {
			return WrapExitError(ExitUsage, "bad rules file", err)
		}
		lines = append(lines, fileLines...)
	}

	logger := opts.Logger.With("client", client)
	rec := backup.NewRecord(priorPath, opts.Now, logger)
	eval := engine.New(rec, engine.Options{
		Now:        opts.Now,
		RemoteAddr: opts.RemoteAddr,
		Out:        cmd.OutOrStdout(),
		Logger:     logger,
	})

	proceed, err := eval.Check(lines)
	if err != nil {
		if engine.IsConfigError(err) {
			return WrapExitError(ExitUsage, "bad timer ruleset", err)
		}
		return WrapExitError(ExitNoBackup, "timer evaluation failed", err)
	}
	if !proceed {
		logger.Info("backup suppressed")
		return NewExitError(ExitNoBackup, "")
	}
	logger.Info("backup allowed")
	return nil
}

// Execute runs the hook against the process environment and returns
// its exit code.
func Execute(args []string) int {
	opts := &RootOptions{
		Now:        time.Now(),
		RemoteAddr: os.Getenv("REMOTE_ADDR"),
		Logger:     log.FromEnv().With("run_id", uuid.NewString()),
	}
	return executeWith(opts, args, os.Stdout, os.Stderr)
}

func executeWith(opts *RootOptions, args []string, out, errOut io.Writer) int {
	cmd := NewRootCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if opts.helpRequested {
		return ExitUsage
	}
	if err == nil {
		return ExitProceed
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(errOut, "burp-timer: %s\n", msg)
		opts.Logger.Error("run failed", "error", msg)
	}
	return GetExitCode(err)
}
