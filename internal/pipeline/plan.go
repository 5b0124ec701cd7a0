package pipeline

import (
	"context"

	"av1studio/internal/encoder"
	"av1studio/internal/model"
	"av1studio/internal/util/deps"
)

// Plan is what RunJob would execute, computed without running anything.
type Plan struct {
	Settings    model.EncodingSettings
	Executable  string
	Resolved    bool // Executable was found on disk
	Args        []string
	CommandLine string
	Warnings    encoder.Warnings
}

// Plan builds the av1an invocation for a dry run. The plan is filled in
// even when the settings have fatal problems; those come back as the error.
func (s *Service) Plan() (Plan, error) {
	warns, err := encoder.Check(s.settings, s.build)
	exe := encoder.Executable(s.settings)
	resolved := false
	if p, ferr := deps.FindAv1an(s.settings.Av1anPath); ferr == nil {
		exe, resolved = p, true
	}
	args := encoder.BuildArgs(s.settings, s.build)
	return Plan{
		Settings:    s.settings,
		Executable:  exe,
		Resolved:    resolved,
		Args:        args,
		CommandLine: encoder.CommandLine(exe, args),
		Warnings:    warns,
	}, err
}

// Probe is the status of one external tool.
type Probe struct {
	Name    string
	Path    string
	Version string
	Err     error
}

// OK reports whether the tool was found and ran.
func (p Probe) OK() bool { return p.Err == nil }

// Probe locates av1an and SVT-AV1 and runs each with --version.
func (s *Service) Probe(ctx context.Context) []Probe {
	return []Probe{
		s.probe(ctx, model.DefaultExecutable, func() (string, error) { return deps.FindAv1an(s.settings.Av1anPath) }),
		s.probe(ctx, deps.SvtAv1Binary, deps.FindSvtAv1),
	}
}

func (s *Service) probe(ctx context.Context, name string, find func() (string, error)) Probe {
	p := Probe{Name: name}
	p.Path, p.Err = find()
	if p.Err != nil {
		return p
	}
	p.Version, p.Err = deps.CanRun(ctx, s.runner, p.Path)
	return p
}

// MissingRequired returns the first failed probe, if any.
func MissingRequired(probes []Probe) (Probe, bool) {
	for _, p := range probes {
		if !p.OK() {
			return p, true
		}
	}
	return Probe{}, false
}
