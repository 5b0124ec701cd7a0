package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "av1studio"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// xdg resolves an XDG base directory for the app. On Linux it honours env,
// then falls back to ~/linuxRel. darwinRel is relative to ~/Library.
// Anything else uses fallback.
func xdg(env, linuxRel, darwinRel string, fallback func() (string, error)) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", darwinRel, AppName()), nil
	case "linux":
		if v := os.Getenv(env); v != "" {
			return filepath.Join(v, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, linuxRel, AppName()), nil
	default:
		base, err := fallback()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, AppName()), nil
	}
}

// ConfigDir holds config.{yaml,toml,json} and the presets directory.
// - Linux: $XDG_CONFIG_HOME/av1studio or ~/.config/av1studio
// - macOS: ~/Library/Application Support/av1studio
// - Windows: %AppData%/av1studio
func ConfigDir() (string, error) {
	return xdg("XDG_CONFIG_HOME", ".config", "Application Support", os.UserConfigDir)
}

// StateDir holds the encode history and log files.
// - Linux: $XDG_STATE_HOME/av1studio or ~/.local/state/av1studio
// - macOS: ~/Library/Logs/av1studio
// - Windows: %LocalAppData%/av1studio
func StateDir() (string, error) {
	return xdg("XDG_STATE_HOME", filepath.Join(".local", "state"), "Logs", os.UserCacheDir)
}

// PresetDir is where named presets are saved.
func PresetDir() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "presets"), nil
}

// HistoryPath is the default encode history database.
func HistoryPath() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "history.db"), nil
}

// LogPath is the log file used while the full-screen UI owns the terminal.
func LogPath() (string, error) {
	d, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppName()+".log"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures the config and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
