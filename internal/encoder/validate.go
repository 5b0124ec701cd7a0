package encoder

import (
	"errors"
	"fmt"
	"math"
	"os"

	"av1studio/internal/model"
)

// Warnings are problems that do not stop an encode.
type Warnings []string

// Check reports whether s can be handed to av1an. A non-nil error stops the
// job before anything is spawned; warnings are for the user to see.
func Check(s model.EncodingSettings, opts BuildOptions) (Warnings, error) {
	var errs []error
	if s.Input == "" {
		errs = append(errs, ErrMissingInput)
	}
	if s.Output == "" {
		errs = append(errs, ErrMissingOutput)
	}
	if s.Preset < model.MinPreset || s.Preset > model.MaxPreset {
		errs = append(errs, fmt.Errorf("%w: preset %d out of range %d-%d", ErrInvalidSettings, s.Preset, model.MinPreset, model.MaxPreset))
	}
	if math.IsNaN(s.CRF) || s.CRF < model.MinCRF || s.CRF > model.MaxCRF {
		errs = append(errs, fmt.Errorf("%w: crf %s out of range %d-%d", ErrInvalidSettings, model.FormatCRF(s.CRF), model.MinCRF, model.MaxCRF))
	}
	if s.Width < 0 || s.Height < 0 {
		errs = append(errs, fmt.Errorf("%w: negative output size %dx%d", ErrInvalidSettings, s.Width, s.Height))
	}
	if s.Workers < 0 || s.ThreadAffinity < 0 {
		errs = append(errs, fmt.Errorf("%w: workers and thread affinity must not be negative", ErrInvalidSettings))
	}

	var warns Warnings
	if (s.Width > 0) != (s.Height > 0) {
		warns = append(warns, fmt.Sprintf("only one of width/height is set (%dx%d); output will not be scaled", s.Width, s.Height))
	}
	if s.CustomParams != "" && s.HasCustomColor() && !opts.KeepColorWithCustomParams {
		warns = append(warns, "custom params replace the generated encoder parameters: color primaries, transfer, matrix and range settings will NOT be passed to the encoder")
	}
	for _, p := range []struct{ name, path string }{{"scenes", s.ScenesFile}, {"zones", s.ZonesFile}} {
		if p.path == "" {
			continue
		}
		if _, err := os.Stat(p.path); err != nil {
			warns = append(warns, fmt.Sprintf("%s file %q is not readable: %v", p.name, p.path, err))
		}
	}

	return warns, errors.Join(errs...)
}
