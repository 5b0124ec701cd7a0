package model

import (
	"fmt"
	"strings"
	"unicode"
)

// enumInfo is one row of an enumeration's lookup table.
// key is the stable identifier used in flags and preset files, code is what
// av1an receives on its command line, and label is what the UI shows.
type enumInfo struct {
	key   string
	code  string
	label string
}

// enumTable maps a variant (by index) to its info. Index 0 is the default.
type enumTable[T ~int] []enumInfo

func (t enumTable[T]) at(v T) enumInfo {
	if int(v) < 0 || int(v) >= len(t) {
		return enumInfo{}
	}
	return t[int(v)]
}

// parse accepts the key, the wire code or the label, case-insensitively.
func (t enumTable[T]) parse(kind, s string) (T, error) {
	s = strings.TrimSpace(s)
	for i, e := range t {
		if strings.EqualFold(s, e.key) || strings.EqualFold(s, e.code) || strings.EqualFold(s, e.label) {
			return T(i), nil
		}
	}
	// Variant spellings such as "Bt2020Ncl" or "L-SMASH".
	if sq := squash(s); sq != "" {
		for i, e := range t {
			if sq == squash(e.key) || sq == squash(e.label) {
				return T(i), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid %s %q (valid: %s)", kind, s, strings.Join(t.keys(), ", "))
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', '.', ' ':
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func (t enumTable[T]) keys() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.key
	}
	return out
}

// SourceLibrary selects how av1an extracts frames from the input.
type SourceLibrary int

const (
	SourceBestSource SourceLibrary = iota
	SourceFFMS2
	SourceLSMASH
)

var sourceLibraries = enumTable[SourceLibrary]{
	{key: "bestsource", code: "bestsource", label: "BestSource"},
	{key: "ffms2", code: "ffms2", label: "FFMS2"},
	{key: "lsmash", code: "lsmash", label: "LSMASH"},
}

func (v SourceLibrary) String() string { return sourceLibraries.at(v).key }

// Code is the lower-cased display name passed to av1an's -m flag.
func (v SourceLibrary) Code() string  { return sourceLibraries.at(v).code }
func (v SourceLibrary) Label() string { return sourceLibraries.at(v).label }

func (v SourceLibrary) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *SourceLibrary) UnmarshalText(b []byte) error {
	p, err := ParseSourceLibrary(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParseSourceLibrary(s string) (SourceLibrary, error) {
	return sourceLibraries.parse("source library", s)
}

// PixelFormat is the output pixel format handed to av1an.
type PixelFormat int

const (
	PixYUV420P10LE PixelFormat = iota
	PixYUV420P
)

var pixelFormats = enumTable[PixelFormat]{
	{key: "yuv420p10le", code: "yuv420p10le", label: "yuv420p10le (10-bit)"},
	{key: "yuv420p", code: "yuv420p", label: "yuv420p (8-bit)"},
}

func (v PixelFormat) String() string { return pixelFormats.at(v).key }
func (v PixelFormat) Code() string   { return pixelFormats.at(v).code }
func (v PixelFormat) Label() string  { return pixelFormats.at(v).label }

func (v PixelFormat) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *PixelFormat) UnmarshalText(b []byte) error {
	p, err := ParsePixelFormat(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParsePixelFormat(s string) (PixelFormat, error) {
	return pixelFormats.parse("pixel format", s)
}

// ColorPrimaries follows the AV1 color_primaries code points.
type ColorPrimaries int

const (
	PrimariesUnspecified ColorPrimaries = iota
	PrimariesBT709
	PrimariesBT470M
	PrimariesBT470BG
	PrimariesBT601
	PrimariesSMPTE240
	PrimariesFilm
	PrimariesBT2020
	PrimariesXYZ
	PrimariesSMPTE431
	PrimariesSMPTE432
	PrimariesEBU3213
)

var colorPrimaries = enumTable[ColorPrimaries]{
	{key: "unspecified", code: "2", label: "Unspecified"},
	{key: "bt709", code: "1", label: "BT.709"},
	{key: "bt470m", code: "4", label: "BT.470 System M"},
	{key: "bt470bg", code: "5", label: "BT.470 System B, G"},
	{key: "bt601", code: "6", label: "BT.601"},
	{key: "smpte240", code: "7", label: "SMPTE 240"},
	{key: "film", code: "8", label: "Generic film"},
	{key: "bt2020", code: "9", label: "BT.2020"},
	{key: "xyz", code: "10", label: "SMPTE 428 (CIE 1921 XYZ)"},
	{key: "smpte431", code: "11", label: "SMPTE RP 431-2"},
	{key: "smpte432", code: "12", label: "SMPTE EG 432-1"},
	{key: "ebu3213", code: "22", label: "EBU Tech. 3213-E"},
}

func (v ColorPrimaries) String() string { return colorPrimaries.at(v).key }
func (v ColorPrimaries) Code() string   { return colorPrimaries.at(v).code }
func (v ColorPrimaries) Label() string  { return colorPrimaries.at(v).label }

func (v ColorPrimaries) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *ColorPrimaries) UnmarshalText(b []byte) error {
	p, err := ParseColorPrimaries(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParseColorPrimaries(s string) (ColorPrimaries, error) {
	return colorPrimaries.parse("color primaries", s)
}

// MatrixCoefficients follows the AV1 matrix_coefficients code points.
type MatrixCoefficients int

const (
	MatrixUnspecified MatrixCoefficients = iota
	MatrixIdentity
	MatrixBT709
	MatrixFCC
	MatrixBT470BG
	MatrixBT601
	MatrixSMPTE240
	MatrixYCgCo
	MatrixBT2020NCL
	MatrixBT2020CL
	MatrixSMPTE2085
	MatrixChromaNCL
	MatrixChromaCL
	MatrixICtCp
)

var matrixCoefficients = enumTable[MatrixCoefficients]{
	{key: "unspecified", code: "2", label: "Unspecified"},
	{key: "identity", code: "0", label: "Identity (GBR)"},
	{key: "bt709", code: "1", label: "BT.709"},
	{key: "fcc", code: "4", label: "US FCC 73.628"},
	{key: "bt470bg", code: "5", label: "BT.470 System B, G"},
	{key: "bt601", code: "6", label: "BT.601"},
	{key: "smpte240", code: "7", label: "SMPTE 240 M"},
	{key: "ycgco", code: "8", label: "YCgCo"},
	{key: "bt2020-ncl", code: "9", label: "BT.2020 non-constant luminance"},
	{key: "bt2020-cl", code: "10", label: "BT.2020 constant luminance"},
	{key: "smpte2085", code: "11", label: "SMPTE ST 2085 YDzDx"},
	{key: "chroma-ncl", code: "12", label: "Chromaticity-derived non-constant luminance"},
	{key: "chroma-cl", code: "13", label: "Chromaticity-derived constant luminance"},
	{key: "ictcp", code: "14", label: "BT.2100 ICtCp"},
}

func (v MatrixCoefficients) String() string { return matrixCoefficients.at(v).key }
func (v MatrixCoefficients) Code() string   { return matrixCoefficients.at(v).code }
func (v MatrixCoefficients) Label() string  { return matrixCoefficients.at(v).label }

func (v MatrixCoefficients) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *MatrixCoefficients) UnmarshalText(b []byte) error {
	p, err := ParseMatrixCoefficients(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParseMatrixCoefficients(s string) (MatrixCoefficients, error) {
	return matrixCoefficients.parse("matrix coefficients", s)
}

// TransferCharacteristics follows the AV1 transfer_characteristics code points.
type TransferCharacteristics int

const (
	TransferUnspecified TransferCharacteristics = iota
	TransferBT709
	TransferBT470M
	TransferBT470BG
	TransferBT601
	TransferSMPTE240
	TransferLinear
	TransferLog100
	TransferLog100Sqrt10
	TransferIEC61966
	TransferBT1361
	TransferSRGB
	TransferBT202010
	TransferBT202012
	TransferSMPTE2084
	TransferSMPTE428
	TransferHLG
)

var transferCharacteristics = enumTable[TransferCharacteristics]{
	{key: "unspecified", code: "2", label: "Unspecified"},
	{key: "bt709", code: "1", label: "BT.709"},
	{key: "bt470m", code: "4", label: "BT.470 System M"},
	{key: "bt470bg", code: "5", label: "BT.470 System B, G"},
	{key: "bt601", code: "6", label: "BT.601"},
	{key: "smpte240", code: "7", label: "SMPTE 240 M"},
	{key: "linear", code: "8", label: "Linear"},
	{key: "log100", code: "9", label: "Logarithmic (100:1)"},
	{key: "log100-sqrt10", code: "10", label: "Logarithmic (100*Sqrt(10):1)"},
	{key: "iec61966", code: "11", label: "IEC 61966-2-4"},
	{key: "bt1361", code: "12", label: "BT.1361 extended color gamut"},
	{key: "srgb", code: "13", label: "sRGB or sYCC"},
	{key: "bt2020-10", code: "14", label: "BT.2020 10-bit"},
	{key: "bt2020-12", code: "15", label: "BT.2020 12-bit"},
	{key: "smpte2084", code: "16", label: "SMPTE ST 2084 (PQ)"},
	{key: "smpte428", code: "17", label: "SMPTE ST 428"},
	{key: "hlg", code: "18", label: "BT.2100 HLG"},
}

func (v TransferCharacteristics) String() string { return transferCharacteristics.at(v).key }
func (v TransferCharacteristics) Code() string   { return transferCharacteristics.at(v).code }
func (v TransferCharacteristics) Label() string  { return transferCharacteristics.at(v).label }

func (v TransferCharacteristics) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *TransferCharacteristics) UnmarshalText(b []byte) error {
	p, err := ParseTransferCharacteristics(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParseTransferCharacteristics(s string) (TransferCharacteristics, error) {
	return transferCharacteristics.parse("transfer characteristics", s)
}

// ColorRange is studio (limited) or full swing.
type ColorRange int

const (
	RangeStudio ColorRange = iota
	RangeFull
)

var colorRanges = enumTable[ColorRange]{
	{key: "studio", code: "0", label: "Studio (limited)"},
	{key: "full", code: "1", label: "Full"},
}

func (v ColorRange) String() string { return colorRanges.at(v).key }
func (v ColorRange) Code() string   { return colorRanges.at(v).code }
func (v ColorRange) Label() string  { return colorRanges.at(v).label }

func (v ColorRange) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *ColorRange) UnmarshalText(b []byte) error {
	p, err := ParseColorRange(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func ParseColorRange(s string) (ColorRange, error) {
	return colorRanges.parse("color range", s)
}
