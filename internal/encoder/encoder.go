package encoder

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"av1studio/internal/logging"
	"av1studio/internal/model"
	"av1studio/internal/progress"
	"av1studio/internal/supervisor"
	"av1studio/internal/util"
)

// StartFunc launches a supervised process. supervisor.Start is the default.
type StartFunc func(ctx context.Context, spec supervisor.Spec) (*supervisor.Job, error)

// Options control how an encode is run.
type Options struct {
	Build BuildOptions

	// Executable overrides Executable(settings), typically with a path
	// already resolved from PATH.
	Executable string

	Reporter progress.Reporter
	JobID    string
	Logger   logrus.FieldLogger

	IdleTimeout time.Duration
	KillGrace   time.Duration
	QueueSize   int

	Start StartFunc
}

// Output describes a finished encode.
type Output struct {
	OutputPath string
	Bytes      int64
	Outcome    progress.Outcome
	Last       progress.Snapshot
	Duration   time.Duration
}

// Session is an encode whose process is running. Consume its lines either
// with Stream or by polling Job through a Monitor, then call Finish.
type Session struct {
	Settings    model.EncodingSettings
	Executable  string
	Args        []string
	CommandLine string
	Warnings    Warnings

	opts    Options
	log     logrus.FieldLogger
	job     *supervisor.Job
	lock    *flock.Flock
	started time.Time
}

// Start checks the settings, takes the output lock and spawns av1an.
func Start(ctx context.Context, s model.EncodingSettings, opts Options) (*Session, error) {
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithField("job", opts.JobID)

	warns, err := Check(s, opts.Build)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Warn(w)
		opts.Reporter.Log(progress.Log{JobID: opts.JobID, Stream: progress.StreamStderr, Line: "warning: " + w})
	}

	exe := opts.Executable
	if exe == "" {
		exe = Executable(s)
	}
	args := BuildArgs(s, opts.Build)
	ss := &Session{
		Settings:    s,
		Executable:  exe,
		Args:        args,
		CommandLine: CommandLine(exe, args),
		Warnings:    warns,
		opts:        opts,
		log:         log,
	}

	if err := util.EnsureDir(filepath.Dir(s.Output)); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	ss.lock = flock.New(s.Output + ".lock")
	locked, err := ss.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, s.Output)
	}

	opts.Reporter.Update(progress.Update{
		JobID:   opts.JobID,
		Stage:   progress.StageStarting,
		Message: "Starting av1an",
	})
	log.WithField("command", ss.CommandLine).Info("starting encode")

	start := opts.Start
	if start == nil {
		start = supervisor.Start
	}
	ss.started = time.Now()
	job, err := start(ctx, supervisor.Spec{
		Path:        exe,
		Args:        args,
		QueueSize:   opts.QueueSize,
		IdleTimeout: opts.IdleTimeout,
		KillGrace:   opts.KillGrace,
	})
	if err != nil {
		ss.release()
		return nil, err
	}
	ss.job = job
	return ss, nil
}

// Job is the running process.
func (ss *Session) Job() *supervisor.Job { return ss.job }

// Stream blocks until the process's output is exhausted, reporting every
// line and every progress snapshot. It returns the last snapshot seen.
func (ss *Session) Stream() progress.Snapshot {
	var last progress.Snapshot
	for l := range ss.job.Lines() {
		if snap, ok := ss.Observe(l); ok {
			last = snap
		}
	}
	return last
}

// Observe reports one output line and returns its progress, if any.
func (ss *Session) Observe(l supervisor.Line) (progress.Snapshot, bool) {
	rep := ss.opts.Reporter
	rep.Log(progress.Log{JobID: ss.opts.JobID, Stream: l.Stream, Line: l.Text})
	snap, ok := ParseLine(l.Text)
	if ok {
		rep.Update(progress.Update{
			JobID:    ss.opts.JobID,
			Stage:    progress.StageEncoding,
			Snapshot: snap,
			Message:  fmt.Sprintf("Encoding %d/%d frames", snap.Current, snap.Total),
		})
	}
	return snap, ok
}

// Finish releases the output lock and turns the process outcome into a
// result. Only a zero exit is a success; nothing is retried.
func (ss *Session) Finish(outcome progress.Outcome, last progress.Snapshot) (Output, error) {
	ss.release()
	if n := ss.job.Dropped(); n > 0 {
		ss.log.WithField("dropped", n).Warn("output lines dropped after cancel")
	}
	out := Output{
		OutputPath: ss.Settings.Output,
		Outcome:    outcome,
		Last:       last,
		Duration:   time.Since(ss.started),
	}
	log := ss.log.WithFields(logrus.Fields{
		"outcome":  outcome.Kind.String(),
		"exit":     outcome.ExitCode,
		"duration": out.Duration.Round(time.Second).String(),
	})

	var err error
	switch outcome.Kind {
	case progress.OutcomeCompleted:
		if outcome.ExitCode != 0 {
			err = &ExitStatusError{Code: outcome.ExitCode}
		}
	case progress.OutcomeCanceled:
		err = ErrCanceled
	default:
		err = fmt.Errorf("%w: %w", ErrEncoderFailed, outcome.Err)
	}
	if err != nil {
		log.WithError(err).Error("encode failed")
		return out, err
	}
	out.Bytes = util.FileSize(ss.Settings.Output)
	log.WithField("bytes", out.Bytes).Info("encode finished")
	return out, nil
}

func (ss *Session) release() {
	if ss.lock == nil {
		return
	}
	// The lock file stays on disk: unlinking it would let two later
	// encodes lock different inodes for the same output.
	if err := ss.lock.Unlock(); err != nil {
		ss.log.WithError(err).Warn("release output lock")
	}
	ss.lock = nil
}

// Encode runs av1an for s to completion.
func Encode(ctx context.Context, s model.EncodingSettings, opts Options) (Output, error) {
	ss, err := Start(ctx, s, opts)
	if err != nil {
		return Output{}, err
	}
	last := ss.Stream()
	return ss.Finish(ss.job.Wait(), last)
}
