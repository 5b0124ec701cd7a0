package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"av1studio/internal/pipeline"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Print the av1an command line without running it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runPlan,
	}
	bindSettingsFlags(cmd.Flags())
	bindRunFlags(cmd.Flags())
	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	settings, err := assembleSettings(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	rs := readRunSettings(cmd)
	svc := pipeline.NewService(
		pipeline.WithSettings(settings),
		pipeline.WithBuildOptions(rs.build),
	)
	plan, perr := svc.Plan()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, settingsRows(plan.Settings), nil))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command:")
	fmt.Fprintln(out, "  "+plan.CommandLine)
	if !plan.Resolved {
		fmt.Fprintf(out, "note: %s was not found; install it or pass --av1an-path\n", plan.Executable)
	}
	for _, w := range plan.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+w)
	}
	if perr != nil {
		msgs := strings.Split(perr.Error(), "\n")
		for _, m := range msgs {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: "+m)
		}
		return &ExitError{Code: ExitCLIError, Err: perr}
	}
	return nil
}
