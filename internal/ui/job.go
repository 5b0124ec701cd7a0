package ui

import (
	"strings"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"av1studio/internal/encoder"
	"av1studio/internal/pipeline"
	"av1studio/internal/supervisor"
)

const (
	logRingSize  = 200
	pollBatch    = 256
	pollInterval = 100 * time.Millisecond
	usageEvery   = 10 // ticks between CPU/RSS samples
)

// encodeState is the running (or finished) encode shown on the encode screen.
type encodeState struct {
	svc     *pipeline.Service
	session *encoder.Session
	monitor *encoder.Monitor
	started time.Time
	ended   time.Time

	logsRing []string
	usage    supervisor.Usage
	ticks    int

	canceling bool
	done      bool
	result    pipeline.Result
	err       error

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newEncodeState(svc *pipeline.Service, ss *encoder.Session, styles Styles) *encodeState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	return &encodeState{
		svc:     svc,
		session: ss,
		monitor: encoder.NewMonitor(ss.Job(), nil),
		started: time.Now(),
		spinner: sp,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(50),
		),
	}
}

// poll drains one batch from the queue. It reports true on the tick that
// sees the process's output close.
func (e *encodeState) poll() bool {
	lines, finished := e.monitor.Tick(pollBatch)
	for _, l := range lines {
		e.appendLog(l.Text)
	}
	e.ticks++
	if !finished && e.ticks%usageEvery == 1 {
		e.usage = e.session.Job().Usage()
	}
	if finished {
		e.usage = supervisor.Usage{}
		e.ended = time.Now()
	}
	return finished
}

func (e *encodeState) appendLog(line string) {
	line = strings.TrimRight(line, "\r\n")
	if len(e.logsRing) >= logRingSize {
		e.logsRing = e.logsRing[1:]
	}
	e.logsRing = append(e.logsRing, line)
}

func (e *encodeState) elapsed() time.Duration {
	if !e.ended.IsZero() {
		return e.ended.Sub(e.started)
	}
	return time.Since(e.started)
}

func (e *encodeState) cancel() {
	if e.done || e.canceling {
		return
	}
	e.canceling = true
	e.session.Job().Cancel()
}
