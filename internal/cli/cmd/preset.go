package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"av1studio/internal/encoder"
	"av1studio/internal/model"
	"av1studio/internal/preset"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save, load and list encoding presets",
	}
	cmd.AddCommand(newPresetSaveCmd(), newPresetLoadCmd(), newPresetListCmd(), newPresetShowCmd())
	return cmd
}

func newPresetSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name|path>",
		Short: "Save the settings given as flags as a preset",
		Long: "Save writes the encoding settings given as flags. A bare name is stored in the " +
			"preset directory as YAML; a path ending in .toml or .json picks that format.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := assembleSettings(cmd)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			path := preset.NormalizePath(preset.Resolve(presetDir(), args[0]))
			if err := preset.Save(path, preset.FromSettings(s)); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s to %s\n", preset.Name(path), path)
			return nil
		},
	}
	bindSettingsFlags(cmd.Flags())
	cmd.Flags().String("preset-file", "", "Start from this preset")
	return cmd
}

func newPresetLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "load <name|path>",
		Short:         "Print the av1an command a preset produces",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := loadPreset(args[0])
			if err != nil {
				return err
			}
			s := model.DefaultSettings()
			p.Apply(&s)
			in, _ := cmd.Flags().GetString("input")
			out, _ := cmd.Flags().GetString("output")
			s.Input, s.Output = in, out
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), encoder.CommandLine(encoder.Executable(s), encoder.BuildArgs(s, encoder.BuildOptions{})))
			return nil
		},
	}
	cmd.Flags().StringP("input", "i", "", "Input file for the printed command")
	cmd.Flags().StringP("output", "o", "", "Output file for the printed command")
	return cmd
}

func newPresetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "show <name|path>",
		Short:         "Show the settings stored in a preset",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := loadPreset(args[0])
			if err != nil {
				return err
			}
			s := model.DefaultSettings()
			p.Apply(&s)
			var rows [][]string
			for _, f := range model.Fields() {
				if !f.Session {
					rows = append(rows, []string{f.Key, orDash(s.Get(f.Key))})
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", preset.Name(path), path)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

func newPresetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved presets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := presetDir()
			paths, err := preset.List(dir)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if len(paths) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No presets in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(paths))
			for _, p := range paths {
				rows = append(rows, []string{preset.Name(p), p})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Path"}, rows, nil))
			return nil
		},
	}
}

func presetDir() string {
	dir, _ := preset.Dir()
	return dir
}

func loadPreset(name string) (preset.Preset, string, error) {
	path := preset.Resolve(presetDir(), name)
	p, err := preset.Load(path)
	if err != nil {
		return p, path, &ExitError{Code: ExitCLIError, Err: err}
	}
	return p, path, nil
}
