package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"av1studio/internal/dirs"
)

// Keys read through Viper.
const (
	KeyAv1anPath     = "av1an_path"
	KeyLogLevel      = "log_level"
	KeyVerbose       = "verbose"
	KeyHistoryDB     = "history_db"
	KeyDefaultPreset = "default_preset"
	KeyIdleTimeout   = "idle_timeout"
	KeyKillGrace     = "kill_grace"
)

// Defaults for keys that have no flag default.
const (
	DefaultKillGrace = 5 * time.Second
	DefaultLogLevel  = "info"
)

// Init wires Viper with config paths, env, defaults, and flag bindings.
// A missing config file is fine; an unreadable one named with --config is not.
func Init(root *cobra.Command) error {
	_ = dirs.EnsureAll()

	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	viper.SetDefault(KeyKillGrace, DefaultKillGrace)
	viper.SetDefault(KeyIdleTimeout, time.Duration(0))
	if p, err := dirs.HistoryPath(); err == nil {
		viper.SetDefault(KeyHistoryDB, p)
	}

	explicit := ""
	if f := root.PersistentFlags().Lookup("config"); f != nil {
		explicit = f.Value.String()
	}
	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			viper.AddConfigPath(cfgDir)
		}
		viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}
	}

	// Environment variables: AV1STUDIO_*
	viper.SetEnvPrefix("AV1STUDIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	pf := root.PersistentFlags()
	_ = viper.BindPFlag(KeyVerbose, pf.Lookup("verbose"))
	_ = viper.BindPFlag(KeyLogLevel, pf.Lookup("log-level"))
	_ = viper.BindPFlag(KeyAv1anPath, pf.Lookup("av1an-path"))
	_ = viper.BindPFlag(KeyHistoryDB, pf.Lookup("history-db"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// LogLevel is the effective level: --verbose wins over log_level.
func LogLevel() string {
	if viper.GetBool(KeyVerbose) {
		return "debug"
	}
	return viper.GetString(KeyLogLevel)
}
