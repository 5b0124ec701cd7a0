// Package model holds the encoding settings record and its enumerations.
package model

const (
	DefaultExecutable = "av1an-verbosity"
	DefaultConcat     = "mkvmerge"

	DefaultWidth     = 1920
	DefaultHeight    = 1080
	DefaultPreset    = 4
	DefaultCRF       = 27
	DefaultFilmGrain = "0"

	MinPreset = 0
	MaxPreset = 13
	MinCRF    = 0
	MaxCRF    = 70
)

// EncodingSettings describes one av1an job. Empty strings and zero ints mean
// "not set". It carries no derived state.
type EncodingSettings struct {
	// Session-only paths.
	Input      string
	Output     string
	ScenesFile string
	ZonesFile  string
	Av1anPath  string

	SourceLibrary SourceLibrary
	Concat        string

	Width       int
	Height      int
	PixelFormat PixelFormat

	ColorPrimaries          ColorPrimaries
	MatrixCoefficients      MatrixCoefficients
	TransferCharacteristics TransferCharacteristics
	ColorRange              ColorRange

	Preset       int
	CRF          float64
	FilmGrain    string
	CustomParams string

	// Session-only performance knobs; 0 leaves the choice to the OS / av1an.
	ThreadAffinity int
	Workers        int
}

// DefaultSettings returns the settings a fresh form starts with. Workers is
// left for the caller to fill (typically the physical core count).
func DefaultSettings() EncodingSettings {
	return EncodingSettings{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Preset:    DefaultPreset,
		CRF:       DefaultCRF,
		FilmGrain: DefaultFilmGrain,
	}
}

// HasScale reports whether both output dimensions are set.
func (s EncodingSettings) HasScale() bool {
	return s.Width > 0 && s.Height > 0
}

// HasCustomColor reports whether any color description differs from its default.
func (s EncodingSettings) HasCustomColor() bool {
	return s.ColorPrimaries != PrimariesUnspecified ||
		s.MatrixCoefficients != MatrixUnspecified ||
		s.TransferCharacteristics != TransferUnspecified ||
		s.ColorRange != RangeStudio
}
