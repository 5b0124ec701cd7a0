package cmd

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"av1studio/internal/config"
	"av1studio/internal/model"
	"av1studio/internal/preset"
)

var shorthands = map[string]string{
	"input":  "i",
	"output": "o",
}

// bindSettingsFlags registers one flag per editable setting. The flag name
// is the field key; av1an-path is a persistent root flag instead.
func bindSettingsFlags(fs *pflag.FlagSet) {
	defaults := model.DefaultSettings()
	for _, f := range model.Fields() {
		if f.Key == "av1an-path" {
			continue
		}
		usage := f.Label
		if f.Help != "" {
			usage = f.Help
		}
		if f.Kind == model.KindEnum {
			usage = fmt.Sprintf("%s (%v)", usage, f.Choices())
		}
		fs.StringP(f.Key, shorthands[f.Key], defaults.Get(f.Key), usage)
	}
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.String("preset-file", "", "Preset file or name applied before the flags above")
	fs.Bool("keep-color-with-custom", false, "Pass color flags even when --custom-params is set")
	fs.Duration("idle-timeout", 0, "Fail an encode that prints nothing for this long (0 disables)")
	fs.Duration("kill-grace", config.DefaultKillGrace, "Time between interrupt and kill on cancel")
	fs.Bool("no-ui", false, "Disable the TUI; print plain progress")
}

// assembleSettings layers defaults, the configured default preset,
// --preset-file and explicit flags, in that order.
func assembleSettings(cmd *cobra.Command) (model.EncodingSettings, error) {
	s := model.DefaultSettings()
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		s.Workers = n
	}

	presetDir, _ := preset.Dir()
	for _, name := range []string{viper.GetString(config.KeyDefaultPreset), flagString(cmd, "preset-file")} {
		if name == "" {
			continue
		}
		p, err := preset.Load(preset.Resolve(presetDir, name))
		if err != nil {
			return s, fmt.Errorf("load preset: %w", err)
		}
		p.Apply(&s)
	}

	var errs []error
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		if _, ok := model.LookupField(fl.Name); !ok || fl.Name == "av1an-path" {
			return
		}
		if err := s.Set(fl.Name, fl.Value.String()); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", fl.Name, err))
		}
	})
	if err := errors.Join(errs...); err != nil {
		return s, err
	}

	s.Av1anPath = viper.GetString(config.KeyAv1anPath)
	return s, nil
}

func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}
