package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"av1studio/internal/config"
	"av1studio/internal/encoder"
	"av1studio/internal/supervisor"
	"av1studio/internal/util/deps"
)

const (
	ExitOK           = 0
	ExitCLIError     = 1
	ExitMissingDep   = 2
	ExitEncoderError = 3
	ExitCanceled     = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitError classifies err by the exit code it should produce.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	code := ExitCLIError
	switch {
	case errors.Is(err, deps.ErrNotFound):
		code = ExitMissingDep
	case errors.Is(err, encoder.ErrCanceled):
		code = ExitCanceled
	case errors.Is(err, encoder.ErrEncoderExit),
		errors.Is(err, encoder.ErrEncoderFailed),
		errors.Is(err, supervisor.ErrSpawn),
		errors.Is(err, supervisor.ErrStalled):
		code = ExitEncoderError
	}
	return &ExitError{Code: code, Err: err}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "av1studio",
		Short: "Terminal front-end for av1an-verbosity",
		Long: "av1studio builds av1an-verbosity command lines from a small set of encoding settings, " +
			"runs the encode under supervision and shows its live progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd, runMode{})
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default <config dir>/config.yaml)")
	pf.BoolP("verbose", "v", false, "Debug logging and raw av1an output")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("av1an-path", "", "Path to av1an-verbosity (default: search PATH)")
	pf.String("history-db", "", "Encode history database")

	// `av1studio -i in.mkv -o out.mkv` encodes directly.
	bindSettingsFlags(root.Flags())
	bindRunFlags(root.Flags())

	root.AddCommand(newEncodeCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newPresetCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return execute(ctx, newRootCmd(), nil)
}

func execute(ctx context.Context, root *cobra.Command, args []string) error {
	if args != nil {
		root.SetArgs(args)
	}
	return exitError(root.ExecuteContext(ctx))
}
