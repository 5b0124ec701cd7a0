// Package preset saves and loads the persistent part of EncodingSettings.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"av1studio/internal/dirs"
	"av1studio/internal/model"
	"av1studio/internal/util"
)

// DefaultExt is appended to paths without a recognised extension.
const DefaultExt = ".yaml"

var ErrUnknownFormat = errors.New("unknown preset format")

// Preset is every persistent setting. Paths, thread affinity and workers
// are session-only and never saved.
type Preset struct {
	SourceLibrary           model.SourceLibrary           `yaml:"source_library" json:"source_library" toml:"source_library"`
	Width                   looseInt                      `yaml:"width" json:"width" toml:"width"`
	Height                  looseInt                      `yaml:"height" json:"height" toml:"height"`
	PixelFormat             model.PixelFormat             `yaml:"output_pixel_format" json:"output_pixel_format" toml:"output_pixel_format"`
	ColorPrimaries          model.ColorPrimaries          `yaml:"color_primaries" json:"color_primaries" toml:"color_primaries"`
	MatrixCoefficients      model.MatrixCoefficients      `yaml:"matrix_coefficients" json:"matrix_coefficients" toml:"matrix_coefficients"`
	TransferCharacteristics model.TransferCharacteristics `yaml:"transfer_characteristics" json:"transfer_characteristics" toml:"transfer_characteristics"`
	ColorRange              model.ColorRange              `yaml:"color_range" json:"color_range" toml:"color_range"`
	Concat                  string                        `yaml:"file_concatenation" json:"file_concatenation" toml:"file_concatenation"`
	Preset                  looseInt                      `yaml:"preset" json:"preset" toml:"preset"`
	CRF                     float64                       `yaml:"crf" json:"crf" toml:"crf"`
	FilmGrain               string                        `yaml:"synthetic_grain" json:"synthetic_grain" toml:"synthetic_grain"`
	CustomParams            string                        `yaml:"custom_encode_params" json:"custom_encode_params" toml:"custom_encode_params"`
}

// FromSettings copies the persistent fields of s.
func FromSettings(s model.EncodingSettings) Preset {
	return Preset{
		SourceLibrary:           s.SourceLibrary,
		Width:                   looseInt(s.Width),
		Height:                  looseInt(s.Height),
		PixelFormat:             s.PixelFormat,
		ColorPrimaries:          s.ColorPrimaries,
		MatrixCoefficients:      s.MatrixCoefficients,
		TransferCharacteristics: s.TransferCharacteristics,
		ColorRange:              s.ColorRange,
		Concat:                  s.Concat,
		Preset:                  looseInt(s.Preset),
		CRF:                     s.CRF,
		FilmGrain:               s.FilmGrain,
		CustomParams:            s.CustomParams,
	}
}

// Apply overwrites the persistent fields of s, leaving session fields alone.
func (p Preset) Apply(s *model.EncodingSettings) {
	s.SourceLibrary = p.SourceLibrary
	s.Width = int(p.Width)
	s.Height = int(p.Height)
	s.PixelFormat = p.PixelFormat
	s.ColorPrimaries = p.ColorPrimaries
	s.MatrixCoefficients = p.MatrixCoefficients
	s.TransferCharacteristics = p.TransferCharacteristics
	s.ColorRange = p.ColorRange
	s.Concat = p.Concat
	s.Preset = int(p.Preset)
	s.CRF = p.CRF
	s.FilmGrain = p.FilmGrain
	s.CustomParams = p.CustomParams
}

type format int

const (
	formatUnknown format = iota
	formatYAML
	formatJSON
	formatTOML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".json":
		return formatJSON
	case ".toml":
		return formatTOML
	}
	return formatUnknown
}

// NormalizePath appends DefaultExt unless path already names a known format.
func NormalizePath(path string) string {
	if formatOf(path) == formatUnknown {
		return path + DefaultExt
	}
	return path
}

// Marshal encodes p in the format named by path's extension.
func Marshal(path string, p Preset) ([]byte, error) {
	switch formatOf(path) {
	case formatYAML:
		return yaml.Marshal(p)
	case formatJSON:
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case formatTOML:
		return toml.Marshal(p)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Unmarshal decodes b, in the format named by path's extension, over the
// defaults, so missing keys keep their default values.
func Unmarshal(path string, b []byte) (Preset, error) {
	p := FromSettings(model.DefaultSettings())
	var err error
	switch formatOf(path) {
	case formatYAML:
		err = yaml.Unmarshal(b, &p)
	case formatJSON:
		err = json.Unmarshal(b, &p)
	case formatTOML:
		err = toml.Unmarshal(b, &p)
	default:
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("parse preset %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path, creating parent directories.
func Save(path string, p Preset) error {
	b, err := Marshal(path, p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads the preset at path.
func Load(path string) (Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, err
	}
	return Unmarshal(path, b)
}

// Dir is where named presets live.
func Dir() (string, error) {
	return dirs.PresetDir()
}

// List returns the preset files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || formatOf(e.Name()) == formatUnknown {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Resolve maps name to a file. Anything containing a path separator or a
// known extension is taken as a path; a bare name lives in dir. When a bare
// name matches an existing file of any format, that file wins. New bare
// names are sanitized into a file name.
func Resolve(dir, name string) string {
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return NormalizePath(name)
	}
	if formatOf(name) != formatUnknown {
		return filepath.Join(dir, name)
	}
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, util.SanitizeFilename(name)+DefaultExt)
}

// Name is the display name of a preset file.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
