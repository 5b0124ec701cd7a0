package encoder

import (
	"regexp"
	"strconv"

	"av1studio/internal/progress"
)

var (
	// "120 3600" as printed by --verbose-frame-info.
	bareFramesRe = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)

	// "00:01:23 ▕████▏ 45% 120/3600 (2.5 fps, eta 00:05:00)"; the rate may
	// also be "0.4 s/fr" on slow encodes.
	richProgressRe = regexp.MustCompile(`(\d+:\d{2}:\d{2})\s*▕[^▏]*▏\s*(\d+(?:\.\d+)?)%\s+(\d+)/(\d+)\s*\(\s*(\d+(?:\.\d+)?)\s*(fps|s/fr)\s*,\s*eta\s+([^)]*?)\s*\)`)
)

// ParseLine extracts progress from one line of av1an output. The bare frame
// count form is tried first, then the progress bar form. ok is false when
// the line carries no progress or any number in it fails to parse.
func ParseLine(line string) (snap progress.Snapshot, ok bool) {
	if m := bareFramesRe.FindStringSubmatch(line); m != nil {
		cur, err1 := strconv.ParseUint(m[1], 10, 64)
		total, err2 := strconv.ParseUint(m[2], 10, 64)
		if err1 != nil || err2 != nil {
			return progress.Snapshot{}, false
		}
		return progress.Snapshot{
			Current: cur,
			Total:   total,
			Percent: percentOf(cur, total),
		}, true
	}

	m := richProgressRe.FindStringSubmatch(line)
	if m == nil {
		return progress.Snapshot{}, false
	}
	pct, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return progress.Snapshot{}, false
	}
	cur, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return progress.Snapshot{}, false
	}
	total, err := strconv.ParseUint(m[4], 10, 64)
	if err != nil {
		return progress.Snapshot{}, false
	}
	rate, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return progress.Snapshot{}, false
	}
	fps := rate
	if m[6] == "s/fr" {
		fps = 0
		if rate > 0 {
			fps = 1 / rate
		}
	}
	return progress.Snapshot{
		Current: cur,
		Total:   total,
		FPS:     fps,
		ETA:     m[7],
		Elapsed: m[1],
		Percent: pct,
	}, true
}

func percentOf(cur, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(cur) / float64(total) * 100
}
