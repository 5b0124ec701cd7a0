// Package pipeline runs one av1an encode end to end: dependency lookup,
// supervised encode, history and the final report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"av1studio/internal/encoder"
	"av1studio/internal/history"
	"av1studio/internal/logging"
	"av1studio/internal/model"
	"av1studio/internal/progress"
	"av1studio/internal/util"
	"av1studio/internal/util/deps"
	"av1studio/internal/util/format"
)

// Service orchestrates the resolve → encode → record workflow.
type Service struct {
	settings    model.EncodingSettings
	build       encoder.BuildOptions
	runner      util.CmdRunner
	reporter    progress.Reporter
	jobID       string
	history     history.Recorder
	log         logrus.FieldLogger
	idleTimeout time.Duration
	killGrace   time.Duration
	start       encoder.StartFunc
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the encode to run.
func WithSettings(st model.EncodingSettings) Option {
	return func(s *Service) {
		s.settings = st
	}
}

// WithBuildOptions tunes command building.
func WithBuildOptions(b encoder.BuildOptions) Option {
	return func(s *Service) {
		s.build = b
	}
}

// WithRunner injects the runner used for dependency probes.
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithJobID sets the job ID associated with reporter events and history.
func WithJobID(id string) Option {
	return func(s *Service) {
		s.jobID = id
	}
}

// WithHistory records every finished encode.
func WithHistory(h history.Recorder) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithIdleTimeout fails an encode that prints nothing for d. Zero disables.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.idleTimeout = d
	}
}

// WithKillGrace sets how long a canceled av1an gets between interrupt and kill.
func WithKillGrace(d time.Duration) Option {
	return func(s *Service) {
		s.killGrace = d
	}
}

// WithStarter replaces process spawning (tests).
func WithStarter(f encoder.StartFunc) Option {
	return func(s *Service) {
		s.start = f
	}
}

// NewService constructs a new Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.Discard
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Settings returns the encode settings.
func (s *Service) Settings() model.EncodingSettings { return s.settings }

// JobID returns the job ID.
func (s *Service) JobID() string { return s.jobID }

// Result is the outcome of RunJob.
type Result struct {
	JobID       string
	CommandLine string
	Output      encoder.Output
	HistoryID   string
}

// Start resolves av1an and spawns it. The caller drains the session, by
// Stream or through an encoder.Monitor, and hands the outcome to Finish.
func (s *Service) Start(ctx context.Context) (*encoder.Session, error) {
	exe, err := deps.FindAv1an(s.settings.Av1anPath)
	if err != nil {
		s.fail(progress.StageDeps, err)
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"job": s.jobID, "executable": exe}).Debug("resolved av1an")

	ss, err := encoder.Start(ctx, s.settings, encoder.Options{
		Build:       s.build,
		Executable:  exe,
		Reporter:    s.reporter,
		JobID:       s.jobID,
		Logger:      s.log,
		IdleTimeout: s.idleTimeout,
		KillGrace:   s.killGrace,
		Start:       s.start,
	})
	if err != nil {
		s.fail(progress.StageError, err)
		return nil, err
	}
	return ss, nil
}

// Finish closes out a session: it maps the outcome, records history and
// emits the final update and result.
func (s *Service) Finish(ctx context.Context, ss *encoder.Session, outcome progress.Outcome, last progress.Snapshot) (Result, error) {
	finished := time.Now()
	out, err := ss.Finish(outcome, last)
	res := Result{JobID: s.jobID, CommandLine: ss.CommandLine, Output: out}

	if s.history != nil {
		e, herr := s.history.Record(ctx, history.Entry{
			ID:          s.jobID,
			StartedAt:   finished.Add(-out.Duration),
			FinishedAt:  finished,
			Input:       ss.Settings.Input,
			Output:      ss.Settings.Output,
			CommandLine: ss.CommandLine,
			Outcome:     outcome.Kind.String(),
			ExitCode:    outcome.ExitCode,
			Error:       errString(err),
			Frames:      last.Current,
			TotalFrames: last.Total,
			Bytes:       out.Bytes,
		})
		if herr != nil {
			s.log.WithError(herr).Warn("record history")
		}
		res.HistoryID = e.ID
	}

	s.emitFinal(out, err)
	return res, err
}

// RunJob runs the encode to completion.
// It never prints; progress and the final result go to the Reporter.
func (s *Service) RunJob(ctx context.Context) (Result, error) {
	ss, err := s.Start(ctx)
	if err != nil {
		return Result{JobID: s.jobID}, err
	}
	last := ss.Stream()
	return s.Finish(ctx, ss, ss.Job().Wait(), last)
}

func (s *Service) emitFinal(out encoder.Output, err error) {
	name := filepath.Base(out.OutputPath)
	u := progress.Update{JobID: s.jobID, Snapshot: out.Last}
	switch {
	case err == nil:
		u.Stage = progress.StageCompleted
		u.Message = fmt.Sprintf("Saved: %s (%s)", name, format.HumanizeBytes(out.Bytes))
	case errors.Is(err, encoder.ErrCanceled):
		u.Stage = progress.StageCanceled
		u.Message = "Encode canceled"
	default:
		u.Stage = progress.StageError
		u.Message = err.Error()
	}
	s.reporter.Update(u)
	s.reporter.Result(progress.Result{
		JobID:      s.jobID,
		OutputPath: out.OutputPath,
		Bytes:      out.Bytes,
		Outcome:    out.Outcome,
		Last:       out.Last,
		Duration:   out.Duration,
		Err:        err,
	})
}

// fail reports a job that never got a running process.
func (s *Service) fail(stage progress.Stage, err error) {
	s.log.WithError(err).WithField("job", s.jobID).Error("encode not started")
	s.reporter.Update(progress.Update{JobID: s.jobID, Stage: stage, Message: err.Error()})
	s.reporter.Result(progress.Result{
		JobID:      s.jobID,
		OutputPath: s.settings.Output,
		Outcome:    progress.Outcome{Kind: progress.OutcomeFailed, Err: err},
		Err:        err,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
