package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"av1studio/internal/config"
	"av1studio/internal/model"
	"av1studio/internal/pipeline"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Check that av1an-verbosity and SvtAv1EncApp are installed",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := model.DefaultSettings()
			s.Av1anPath = viper.GetString(config.KeyAv1anPath)
			probes := pipeline.NewService(pipeline.WithSettings(s)).Probe(cmd.Context())

			rows := make([][]string, 0, len(probes))
			for _, p := range probes {
				status := "ok"
				if !p.OK() {
					status = p.Err.Error()
				}
				rows = append(rows, []string{p.Name, orDash(p.Path), orDash(p.Version), status})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Path", "Version", "Status"}, rows, nil))

			if p, missing := pipeline.MissingRequired(probes); missing {
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("%s: %w", p.Name, p.Err)}
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

