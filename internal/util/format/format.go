package format

import (
	"fmt"
	"strconv"
	"time"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	var buf [20]byte
	frac := float64(b) / float64(div)
	s := strconv.AppendFloat(buf[:0], frac, 'f', 1, 64)
	suffix := []string{"KB", "MB", "GB", "TB", "PB", "EB"}[exp]
	return string(s) + " " + suffix
}

// FPS renders an encode rate. Slow encodes below one frame per second are
// shown as seconds per frame, the way av1an prints them.
func FPS(fps float64) string {
	switch {
	case fps <= 0:
		return "-- fps"
	case fps < 1:
		return strconv.FormatFloat(1/fps, 'f', 2, 64) + " s/fr"
	default:
		return strconv.FormatFloat(fps, 'f', 2, 64) + " fps"
	}
}

// Percent renders p with one decimal.
func Percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// Frames renders "current/total", or just current when total is unknown.
func Frames(current, total uint64) string {
	if total == 0 {
		return strconv.FormatUint(current, 10)
	}
	return fmt.Sprintf("%d/%d", current, total)
}

// Duration renders d as HH:MM:SS.
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
