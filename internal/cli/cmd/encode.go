package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"av1studio/internal/config"
	"av1studio/internal/dirs"
	"av1studio/internal/encoder"
	"av1studio/internal/history"
	"av1studio/internal/logging"
	"av1studio/internal/model"
	"av1studio/internal/pipeline"
	"av1studio/internal/preset"
	"av1studio/internal/ui"
	"av1studio/internal/util/format"
)

type runMode struct {
	// Form opens the settings form instead of encoding straight away.
	Form bool
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a video with av1an",
		Example: `  av1studio encode -i movie.mkv -o movie.av1.mkv --crf 30 --preset 6
  av1studio encode -i movie.mkv -o out.mkv --preset-file anime --no-ui`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd, runMode{})
		},
	}
	bindSettingsFlags(cmd.Flags())
	bindRunFlags(cmd.Flags())
	return cmd
}

// runSettings is everything an encode needs besides the settings.
type runSettings struct {
	build       encoder.BuildOptions
	idleTimeout time.Duration
	killGrace   time.Duration
	noUI        bool
}

func readRunSettings(cmd *cobra.Command) runSettings {
	_ = viper.BindPFlag(config.KeyIdleTimeout, cmd.Flags().Lookup("idle-timeout"))
	_ = viper.BindPFlag(config.KeyKillGrace, cmd.Flags().Lookup("kill-grace"))
	return runSettings{
		build:       encoder.BuildOptions{KeepColorWithCustomParams: flagBool(cmd, "keep-color-with-custom")},
		idleTimeout: viper.GetDuration(config.KeyIdleTimeout),
		killGrace:   viper.GetDuration(config.KeyKillGrace),
		noUI:        flagBool(cmd, "no-ui"),
	}
}

func runEncode(cmd *cobra.Command, mode runMode) error {
	settings, err := assembleSettings(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	rs := readRunSettings(cmd)

	useTUI := mode.Form || (!rs.noUI && isTerminal())
	log, closeLog, err := newLogger(cmd.ErrOrStderr(), useTUI)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	defer closeLog()

	hist := openHistory(cmd, log)
	if hist != nil {
		defer hist.Close()
	}

	if useTUI {
		presetDir, _ := preset.Dir()
		opts := ui.Options{
			Settings:    settings,
			Build:       rs.build,
			Logger:      log,
			IdleTimeout: rs.idleTimeout,
			KillGrace:   rs.killGrace,
			PresetDir:   presetDir,
			AutoStart:   !mode.Form,
		}
		if hist != nil {
			opts.History = hist
		}
		res, err := ui.Run(cmd.Context(), opts)
		if errors.Is(err, ui.ErrNoEncode) {
			return nil
		}
		if err != nil {
			return exitError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s (%s)\n", res.Output.OutputPath, format.HumanizeBytes(res.Output.Bytes))
		return nil
	}

	rep := newPlainReporter(cmd.ErrOrStderr(), viper.GetBool(config.KeyVerbose))
	opts := []pipeline.Option{
		pipeline.WithSettings(settings),
		pipeline.WithBuildOptions(rs.build),
		pipeline.WithReporter(rep),
		pipeline.WithJobID(uuid.NewString()),
		pipeline.WithLogger(log),
		pipeline.WithIdleTimeout(rs.idleTimeout),
		pipeline.WithKillGrace(rs.killGrace),
	}
	if hist != nil {
		opts = append(opts, pipeline.WithHistory(hist))
	}
	res, err := pipeline.NewService(opts...).RunJob(cmd.Context())
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s (%s)\n", res.Output.OutputPath, format.HumanizeBytes(res.Output.Bytes))
	return nil
}

// newLogger logs to w, or to the log file while the TUI owns the terminal.
func newLogger(w io.Writer, toFile bool) (*logrus.Logger, func(), error) {
	level := config.LogLevel()
	if !toFile {
		l, err := logging.New(level, w)
		return l, func() {}, err
	}
	path, err := dirs.LogPath()
	if err != nil {
		return logging.Discard(), func() {}, nil
	}
	l, f, err := logging.OpenFile(level, path)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = f.Close() }, nil
}

// openHistory opens the history database. Encodes still run without it.
func openHistory(cmd *cobra.Command, log logrus.FieldLogger) *history.Store {
	path := viper.GetString(config.KeyHistoryDB)
	if path == "" {
		return nil
	}
	h, err := history.Open(cmd.Context(), path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("history disabled")
		return nil
	}
	return h
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func settingsRows(s model.EncodingSettings) [][]string {
	rows := make([][]string, 0, len(model.Fields()))
	for _, f := range model.Fields() {
		rows = append(rows, []string{f.Key, orDash(s.Get(f.Key))})
	}
	return rows
}
