package progress

import (
	"fmt"
	"time"
)

// Stage identifies a high-level step of a job.
type Stage string

const (
	StageDeps      Stage = "deps"
	StageStarting  Stage = "starting"
	StageEncoding  Stage = "encoding"
	StageCompleted Stage = "completed"
	StageCanceled  Stage = "canceled"
	StageError     Stage = "error"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
)

func (s LogStream) String() string {
	if s == StreamStderr {
		return "stderr"
	}
	return "stdout"
}

// Snapshot is the progress carried by one recognized output line.
type Snapshot struct {
	Current uint64
	Total   uint64
	FPS     float64
	ETA     string // verbatim from av1an
	Elapsed string // verbatim; only rich lines carry it
	Percent float64
}

// State is the consumer-side view of a running job. Apply overwrites it
// field by field; nothing is accumulated or smoothed.
type State struct {
	Snapshot
	InProgress bool
	Updates    int
}

// Apply merges a snapshot into the state.
func (st *State) Apply(s Snapshot) {
	st.Snapshot = s
	st.Updates++
}

// Update conveys progress or stage changes for a job.
type Update struct {
	JobID    string
	Stage    Stage
	Snapshot Snapshot
	Message  string
}

// Log is a raw output line associated with a job.
type Log struct {
	JobID  string
	Stream LogStream
	Line   string
}

// OutcomeKind classifies how a supervised process ended.
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeFailed
	OutcomeCanceled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is one of Completed(exit code), Failed(err) or Canceled.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Err      error
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeCompleted:
		return fmt.Sprintf("completed (exit %d)", o.ExitCode)
	case OutcomeFailed:
		return fmt.Sprintf("failed: %v", o.Err)
	default:
		return o.Kind.String()
	}
}

// Success reports a clean zero exit.
func (o Outcome) Success() bool {
	return o.Kind == OutcomeCompleted && o.ExitCode == 0
}

// Result is emitted once per job when it finishes.
type Result struct {
	JobID      string
	OutputPath string
	Bytes      int64
	Outcome    Outcome
	Last       Snapshot
	Duration   time.Duration
	Err        error // nil on success
}

// Reporter is implemented by the UI or any observer interested in job events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Update(Update) {}
func (discard) Log(Log)       {}
func (discard) Result(Result) {}
