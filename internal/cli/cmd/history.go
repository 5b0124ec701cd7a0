package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"av1studio/internal/config"
	"av1studio/internal/history"
	"av1studio/internal/util/format"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List past encodes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			h, err := history.Open(cmd.Context(), viper.GetString(config.KeyHistoryDB))
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			defer h.Close()

			entries, err := h.List(cmd.Context(), limit)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No encodes recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, historyRow(e))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Output", "Outcome", "Exit", "Frames", "Size", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries, 0 for all")
	return cmd
}

func historyRow(e history.Entry) []string {
	outcome := e.Outcome
	if e.Error != "" {
		outcome += ": " + e.Error
	}
	size := "-"
	if e.Bytes > 0 {
		size = format.HumanizeBytes(e.Bytes)
	}
	return []string{
		e.StartedAt.Local().Format("2006-01-02 15:04"),
		e.Output,
		truncate(outcome, 48),
		strconv.Itoa(e.ExitCode),
		format.Frames(e.Frames, e.TotalFrames),
		size,
		format.Duration(e.Duration()),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
