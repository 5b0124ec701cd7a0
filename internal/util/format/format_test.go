package format

import (
	"math"
	"testing"
	"time"
)

func TestHumanizeBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "single byte", bytes: 1, want: "1 B"},
		{name: "under 1KB", bytes: 1023, want: "1023 B"},
		{name: "exactly 1KB", bytes: 1024, want: "1.0 KB"},
		{name: "1.5 KB", bytes: 1536, want: "1.5 KB"},
		{name: "exactly 1MB", bytes: 1024 * 1024, want: "1.0 MB"},
		{name: "50 MB", bytes: 50 * 1024 * 1024, want: "50.0 MB"},
		{name: "exactly 1GB", bytes: 1024 * 1024 * 1024, want: "1.0 GB"},
		{name: "1.5 GB", bytes: 1536 * 1024 * 1024, want: "1.5 GB"},
		{name: "exactly 1TB", bytes: 1024 * 1024 * 1024 * 1024, want: "1.0 TB"},
		{name: "large value", bytes: 5 * 1024 * 1024 * 1024, want: "5.0 GB"},
		{name: "exactly 1PB", bytes: 1 << 50, want: "1.0 PB"},
		{name: "max int64", bytes: math.MaxInt64, want: "8.0 EB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanizeBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("HumanizeBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
func TestFPS(t *testing.T) {
	tests := []struct {
		fps  float64
		want string
	}{
		{0, "-- fps"},
		{-1, "-- fps"},
		{0.5, "2.00 s/fr"},
		{1, "1.00 fps"},
		{23.976, "23.98 fps"},
	}
	for _, tt := range tests {
		if got := FPS(tt.fps); got != tt.want {
			t.Errorf("FPS(%v) = %q, want %q", tt.fps, got, tt.want)
		}
	}
}

func TestPercentAndFrames(t *testing.T) {
	if got := Percent(20); got != "20.0%" {
		t.Errorf("Percent(20) = %q", got)
	}
	if got := Frames(20, 100); got != "20/100" {
		t.Errorf("Frames(20, 100) = %q", got)
	}
	if got := Frames(7, 0); got != "7" {
		t.Errorf("Frames(7, 0) = %q", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{9*time.Second + 600*time.Millisecond, "00:00:10"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
	}
	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
