package encoder

import (
	"av1studio/internal/progress"
	"av1studio/internal/supervisor"
)

// LineSource is the polling side of a supervised job.
type LineSource interface {
	Poll(max int) ([]supervisor.Line, bool)
	Wait() progress.Outcome
}

// Monitor is the consumer half of the supervisor queue, for callers that
// own a UI loop and must never block on it.
type Monitor struct {
	State   progress.State
	Outcome progress.Outcome

	src     LineSource
	observe func(supervisor.Line) (progress.Snapshot, bool)
}

// NewMonitor watches src. observe is applied to every line; nil means ParseLine.
func NewMonitor(src LineSource, observe func(supervisor.Line) (progress.Snapshot, bool)) *Monitor {
	if observe == nil {
		observe = func(l supervisor.Line) (progress.Snapshot, bool) { return ParseLine(l.Text) }
	}
	return &Monitor{
		State:   progress.State{InProgress: true},
		src:     src,
		observe: observe,
	}
}

// Tick drains at most max queued lines and folds any progress into State.
// finished is true on exactly one tick: the one that sees the queue close.
// After that the monitor is detached and further ticks do nothing.
func (m *Monitor) Tick(max int) (lines []supervisor.Line, finished bool) {
	if m.src == nil {
		return nil, false
	}
	lines, closed := m.src.Poll(max)
	for _, l := range lines {
		if snap, ok := m.observe(l); ok {
			m.State.Apply(snap)
		}
	}
	if !closed {
		return lines, false
	}
	m.Outcome = m.src.Wait()
	m.State.InProgress = false
	m.src = nil
	return lines, true
}
