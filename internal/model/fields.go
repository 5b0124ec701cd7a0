package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldKind tells editors how to present and parse a field.
type FieldKind int

const (
	KindPath FieldKind = iota
	KindText
	KindInt
	KindFloat
	KindEnum
)

// Field describes one editable setting. Key doubles as the CLI flag name.
type Field struct {
	Key   string
	Label string
	Help  string
	Kind  FieldKind

	// Session fields are never written to presets.
	Session bool

	get     func(*EncodingSettings) string
	set     func(*EncodingSettings, string) error
	choices []string
	cycle   func(*EncodingSettings, int)
}

// Choices lists the accepted keys for an enum field.
func (f Field) Choices() []string {
	return append([]string(nil), f.choices...)
}

var fields = []Field{
	pathField("input", "Input", "Source video file", func(s *EncodingSettings) *string { return &s.Input }),
	pathField("output", "Output", "Destination file", func(s *EncodingSettings) *string { return &s.Output }),
	pathField("scenes", "Scenes file", "Pre-computed scene cuts (optional)", func(s *EncodingSettings) *string { return &s.ScenesFile }),
	pathField("zones", "Zones file", "Per-range encoder overrides (optional)", func(s *EncodingSettings) *string { return &s.ZonesFile }),
	pathField("av1an-path", "av1an binary", "Override for the av1an-verbosity executable", func(s *EncodingSettings) *string { return &s.Av1anPath }),
	enumField("source-library", "Source library", "Frame extraction method", sourceLibraries, func(s *EncodingSettings) *SourceLibrary { return &s.SourceLibrary }),
	textField("concat", "Concat", "Concatenation method (default mkvmerge)", func(s *EncodingSettings) *string { return &s.Concat }),
	intField("width", "Width", "Output width in pixels, 0 to keep source", 0, 0, false, func(s *EncodingSettings) *int { return &s.Width }),
	intField("height", "Height", "Output height in pixels, 0 to keep source", 0, 0, false, func(s *EncodingSettings) *int { return &s.Height }),
	enumField("pix-format", "Pixel format", "Output pixel format", pixelFormats, func(s *EncodingSettings) *PixelFormat { return &s.PixelFormat }),
	enumField("color-primaries", "Color primaries", "", colorPrimaries, func(s *EncodingSettings) *ColorPrimaries { return &s.ColorPrimaries }),
	enumField("matrix-coefficients", "Matrix coefficients", "", matrixCoefficients, func(s *EncodingSettings) *MatrixCoefficients { return &s.MatrixCoefficients }),
	enumField("transfer-characteristics", "Transfer characteristics", "", transferCharacteristics, func(s *EncodingSettings) *TransferCharacteristics { return &s.TransferCharacteristics }),
	enumField("color-range", "Color range", "", colorRanges, func(s *EncodingSettings) *ColorRange { return &s.ColorRange }),
	intField("preset", "Preset", "SVT-AV1 preset, 0 (slowest) to 13 (fastest)", MinPreset, MaxPreset, true, func(s *EncodingSettings) *int { return &s.Preset }),
	{
		Key:   "crf",
		Label: "CRF",
		Help:  "Constant rate factor, 0 to 70",
		Kind:  KindFloat,
		get:   func(s *EncodingSettings) string { return FormatCRF(s.CRF) },
		set: func(s *EncodingSettings, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("invalid crf %q", v)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) || f < MinCRF || f > MaxCRF {
				return fmt.Errorf("crf %v out of range %d-%d", f, MinCRF, MaxCRF)
			}
			s.CRF = f
			return nil
		},
	},
	textField("film-grain", "Film grain", "Synthetic grain strength", func(s *EncodingSettings) *string { return &s.FilmGrain }),
	textField("custom-params", "Custom params", "Replaces the generated SVT-AV1 parameters", func(s *EncodingSettings) *string { return &s.CustomParams }),
	sessionInt(intField("thread-affinity", "Thread affinity", "Threads pinned per worker, 0 for auto", 0, 0, false, func(s *EncodingSettings) *int { return &s.ThreadAffinity })),
	sessionInt(intField("workers", "Workers", "Parallel av1an workers, 0 for auto", 0, 0, false, func(s *EncodingSettings) *int { return &s.Workers })),
}

// Fields returns the editable fields in display order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

// LookupField finds a field by key.
func LookupField(key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Set parses value into the field named key.
func (s *EncodingSettings) Set(key, value string) error {
	f, ok := LookupField(key)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	return f.set(s, value)
}

// Get renders the field named key, or "" if there is no such field.
func (s EncodingSettings) Get(key string) string {
	f, ok := LookupField(key)
	if !ok {
		return ""
	}
	return f.get(&s)
}

// Cycle steps an enum field by delta, wrapping around.
func (s *EncodingSettings) Cycle(key string, delta int) error {
	f, ok := LookupField(key)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if f.cycle == nil {
		return fmt.Errorf("setting %q is not a choice", key)
	}
	f.cycle(s, delta)
	return nil
}

// FormatCRF renders a CRF in its shortest form (27, 27.5).
func FormatCRF(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptionalInt renders 0 as the empty string.
func FormatOptionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func pathField(key, label, help string, ptr func(*EncodingSettings) *string) Field {
	f := textField(key, label, help, ptr)
	f.Kind = KindPath
	f.Session = true
	return f
}

func textField(key, label, help string, ptr func(*EncodingSettings) *string) Field {
	return Field{
		Key:   key,
		Label: label,
		Help:  help,
		Kind:  KindText,
		get:   func(s *EncodingSettings) string { return *ptr(s) },
		set: func(s *EncodingSettings, v string) error {
			*ptr(s) = strings.TrimSpace(v)
			return nil
		},
	}
}

// intField accepts "" as 0. When bounded, values outside [min, max] are rejected;
// otherwise only negatives are.
func intField(key, label, help string, min, max int, bounded bool, ptr func(*EncodingSettings) *int) Field {
	return Field{
		Key:   key,
		Label: label,
		Help:  help,
		Kind:  KindInt,
		get: func(s *EncodingSettings) string {
			if bounded {
				return strconv.Itoa(*ptr(s))
			}
			return FormatOptionalInt(*ptr(s))
		},
		set: func(s *EncodingSettings, v string) error {
			v = strings.TrimSpace(v)
			if v == "" && !bounded {
				*ptr(s) = 0
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q", key, v)
			}
			if bounded && (n < min || n > max) {
				return fmt.Errorf("%s %d out of range %d-%d", key, n, min, max)
			}
			if !bounded && n < 0 {
				return fmt.Errorf("%s must not be negative", key)
			}
			*ptr(s) = n
			return nil
		},
	}
}

func sessionInt(f Field) Field {
	f.Session = true
	return f
}

func enumField[T ~int](key, label, help string, tbl enumTable[T], ptr func(*EncodingSettings) *T) Field {
	return Field{
		Key:     key,
		Label:   label,
		Help:    help,
		Kind:    KindEnum,
		choices: tbl.keys(),
		get:     func(s *EncodingSettings) string { return tbl.at(*ptr(s)).key },
		set: func(s *EncodingSettings, v string) error {
			p, err := tbl.parse(label, v)
			if err != nil {
				return err
			}
			*ptr(s) = p
			return nil
		},
		cycle: func(s *EncodingSettings, delta int) {
			n := len(tbl)
			i := (int(*ptr(s)) + delta) % n
			if i < 0 {
				i += n
			}
			*ptr(s) = T(i)
		},
	}
}
