package model

import (
	"strings"
	"testing"
)

func TestEnumCodes(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "default primaries", got: ColorPrimaries(0).Code(), want: "2"},
		{name: "bt709 primaries", got: PrimariesBT709.Code(), want: "1"},
		{name: "ebu3213 primaries", got: PrimariesEBU3213.Code(), want: "22"},
		{name: "default matrix", got: MatrixCoefficients(0).Code(), want: "2"},
		{name: "identity matrix", got: MatrixIdentity.Code(), want: "0"},
		{name: "ictcp matrix", got: MatrixICtCp.Code(), want: "14"},
		{name: "default transfer", got: TransferCharacteristics(0).Code(), want: "2"},
		{name: "pq transfer", got: TransferSMPTE2084.Code(), want: "16"},
		{name: "hlg transfer", got: TransferHLG.Code(), want: "18"},
		{name: "default range", got: ColorRange(0).Code(), want: "0"},
		{name: "full range", got: RangeFull.Code(), want: "1"},
		{name: "default source", got: SourceLibrary(0).Code(), want: "bestsource"},
		{name: "ffms2 source", got: SourceFFMS2.Code(), want: "ffms2"},
		{name: "lsmash source", got: SourceLSMASH.Code(), want: "lsmash"},
		{name: "default pixel format", got: PixelFormat(0).Code(), want: "yuv420p10le"},
		{name: "out of range variant", got: ColorRange(9).Code(), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Code() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	if v, err := ParseColorPrimaries("BT709"); err != nil || v != PrimariesBT709 {
		t.Errorf("ParseColorPrimaries(key) = %v, %v", v, err)
	}
	if v, err := ParseColorPrimaries("9"); err != nil || v != PrimariesBT2020 {
		t.Errorf("ParseColorPrimaries(code) = %v, %v", v, err)
	}
	if v, err := ParseSourceLibrary("BestSource"); err != nil || v != SourceBestSource {
		t.Errorf("ParseSourceLibrary(label) = %v, %v", v, err)
	}
	if v, err := ParseMatrixCoefficients("Bt2020Ncl"); err != nil || v != MatrixBT2020NCL {
		t.Errorf("ParseMatrixCoefficients(variant) = %v, %v", v, err)
	}
	if v, err := ParseSourceLibrary("L-SMASH"); err != nil || v != SourceLSMASH {
		t.Errorf("ParseSourceLibrary(L-SMASH) = %v, %v", v, err)
	}
	if _, err := ParseColorRange("wide"); err == nil || !strings.Contains(err.Error(), "studio, full") {
		t.Errorf("ParseColorRange(bad) error = %v, want list of valid keys", err)
	}
}

func TestEnumTextRoundTrip(t *testing.T) {
	var m MatrixCoefficients
	if err := m.UnmarshalText([]byte("bt2020-ncl")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	b, _ := m.MarshalText()
	if string(b) != "bt2020-ncl" || m.Code() != "9" {
		t.Errorf("MarshalText() = %q code %q, want bt2020-ncl code 9", b, m.Code())
	}
}

func TestSettingsSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(EncodingSettings) bool
	}{
		{name: "input path", key: "input", value: " in.mkv ", check: func(s EncodingSettings) bool { return s.Input == "in.mkv" }},
		{name: "fractional crf", key: "crf", value: "27.5", check: func(s EncodingSettings) bool { return s.CRF == 27.5 }},
		{name: "crf too high", key: "crf", value: "71", wantErr: true},
		{name: "crf not a number", key: "crf", value: "high", wantErr: true},
		{name: "crf NaN", key: "crf", value: "NaN", wantErr: true},
		{name: "crf infinite", key: "crf", value: "+Inf", wantErr: true},
		{name: "preset in range", key: "preset", value: "13", check: func(s EncodingSettings) bool { return s.Preset == 13 }},
		{name: "preset out of range", key: "preset", value: "14", wantErr: true},
		{name: "empty width clears", key: "width", value: "", check: func(s EncodingSettings) bool { return s.Width == 0 }},
		{name: "negative workers", key: "workers", value: "-1", wantErr: true},
		{name: "enum by code", key: "transfer-characteristics", value: "16", check: func(s EncodingSettings) bool { return s.TransferCharacteristics == TransferSMPTE2084 }},
		{name: "bad enum", key: "pix-format", value: "rgb24", wantErr: true},
		{name: "unknown key", key: "bitrate", value: "1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			err := s.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(s) {
				t.Errorf("Set(%q, %q) left settings %+v", tt.key, tt.value, s)
			}
		})
	}
}

func TestSettingsGet(t *testing.T) {
	s := DefaultSettings()
	s.ColorRange = RangeFull
	if got := s.Get("crf"); got != "27" {
		t.Errorf("Get(crf) = %q, want 27", got)
	}
	if got := s.Get("workers"); got != "" {
		t.Errorf("Get(workers) = %q, want empty for unset", got)
	}
	if got := s.Get("color-range"); got != "full" {
		t.Errorf("Get(color-range) = %q, want full", got)
	}
	if got := s.Get("nope"); got != "" {
		t.Errorf("Get(nope) = %q, want empty", got)
	}
}

func TestSettingsCycle(t *testing.T) {
	s := DefaultSettings()
	if err := s.Cycle("color-range", -1); err != nil {
		t.Fatalf("Cycle() error = %v", err)
	}
	if s.ColorRange != RangeFull {
		t.Errorf("Cycle(-1) from studio = %v, want full", s.ColorRange)
	}
	if err := s.Cycle("color-range", 1); err != nil || s.ColorRange != RangeStudio {
		t.Errorf("Cycle(+1) from full = %v, %v, want studio", s.ColorRange, err)
	}
	if err := s.Cycle("crf", 1); err == nil {
		t.Error("Cycle(crf) should fail for a non-choice field")
	}
}

func TestFieldTable(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Fields() {
		if seen[f.Key] {
			t.Errorf("duplicate field key %q", f.Key)
		}
		seen[f.Key] = true
		if f.Kind == KindEnum && len(f.Choices()) == 0 {
			t.Errorf("enum field %q has no choices", f.Key)
		}
	}
	for _, key := range []string{"input", "output", "av1an-path", "thread-affinity", "workers"} {
		f, ok := LookupField(key)
		if !ok || !f.Session {
			t.Errorf("field %q should exist and be session-only", key)
		}
	}
	if f, _ := LookupField("crf"); f.Session {
		t.Error("crf should be persisted in presets")
	}
}

func TestHasCustomColor(t *testing.T) {
	s := DefaultSettings()
	if s.HasCustomColor() {
		t.Error("defaults should not report custom color")
	}
	s.MatrixCoefficients = MatrixBT709
	if !s.HasCustomColor() {
		t.Error("non-default matrix should report custom color")
	}
}
