package ui

import (
	"time"

	"av1studio/internal/encoder"
	"av1studio/internal/pipeline"
	"av1studio/internal/preset"
)

type depsCheckedMsg struct {
	Probes []pipeline.Probe
}

type startedMsg struct {
	Service *pipeline.Service
	Session *encoder.Session
	Err     error
}

type tickMsg time.Time

type finishedMsg struct {
	Result pipeline.Result
	Err    error
}

type presetMsg struct {
	Path   string
	Preset *preset.Preset // set on a successful load
	Err    error
}
