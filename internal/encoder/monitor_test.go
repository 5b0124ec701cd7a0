package encoder

import (
	"testing"

	"av1studio/internal/progress"
	"av1studio/internal/supervisor"
)

// scriptedSource hands out batches of lines, then reports closure.
type scriptedSource struct {
	batches [][]supervisor.Line
	outcome progress.Outcome
	polls   int
	waits   int
}

func (s *scriptedSource) Poll(max int) ([]supervisor.Line, bool) {
	s.polls++
	if len(s.batches) == 0 {
		return nil, true
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, false
}

func (s *scriptedSource) Wait() progress.Outcome {
	s.waits++
	return s.outcome
}

func TestMonitor_ObservesClosureOnce(t *testing.T) {
	src := &scriptedSource{
		batches: [][]supervisor.Line{
			{{Text: "10 100"}, {Text: "chunk 3 started", Stream: progress.StreamStderr}},
			{},
			{{Text: "00:00:09 ▕██▏ 20% 20/100 (0.5 s/fr, eta 00:01:20)"}},
		},
		outcome: progress.Outcome{Kind: progress.OutcomeCompleted},
	}
	m := NewMonitor(src, nil)
	if !m.State.InProgress {
		t.Fatal("new monitor should be in progress")
	}

	finishes := 0
	for i := 0; i < 6; i++ {
		_, finished := m.Tick(8)
		if finished {
			finishes++
		}
		if i == 0 && m.State.Current != 10 {
			t.Errorf("after first tick Current = %d, want 10", m.State.Current)
		}
	}

	if finishes != 1 {
		t.Errorf("closure observed %d times, want 1", finishes)
	}
	if m.State.InProgress {
		t.Error("monitor still in progress after closure")
	}
	if m.State.Current != 20 || m.State.FPS != 2 || m.State.ETA != "00:01:20" {
		t.Errorf("final state = %+v, want 20 frames at 2 fps eta 00:01:20", m.State.Snapshot)
	}
	if m.State.Updates != 2 {
		t.Errorf("Updates = %d, want 2", m.State.Updates)
	}
	if src.polls != 4 || src.waits != 1 {
		t.Errorf("source polled %d times, waited %d, want 4 and 1", src.polls, src.waits)
	}
	if !m.Outcome.Success() {
		t.Errorf("Outcome = %v, want success", m.Outcome)
	}
}

func TestMonitor_CustomObserver(t *testing.T) {
	var seen []string
	src := &scriptedSource{batches: [][]supervisor.Line{{{Text: "a"}, {Text: "1 2"}}}}
	m := NewMonitor(src, func(l supervisor.Line) (progress.Snapshot, bool) {
		seen = append(seen, l.Text)
		return ParseLine(l.Text)
	})
	m.Tick(0)
	if len(seen) != 2 || m.State.Percent != 50 {
		t.Errorf("observer saw %q, percent %v; want both lines and 50", seen, m.State.Percent)
	}
}
