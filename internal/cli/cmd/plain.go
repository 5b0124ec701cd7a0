package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"av1studio/internal/progress"
	"av1studio/internal/util/format"
)

// plainReporter prints progress for --no-ui runs. On a terminal it draws a
// progress bar; otherwise it prints one line per stage change.
type plainReporter struct {
	mu      sync.Mutex
	w       io.Writer
	tty     bool
	verbose bool
	bar     *progressbar.ProgressBar
	stage   progress.Stage
}

func newPlainReporter(w io.Writer, verbose bool) *plainReporter {
	return &plainReporter{w: w, tty: isTTY(w), verbose: verbose}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *plainReporter) newBar(total uint64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(int64(total),
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("Encoding"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("fr"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (r *plainReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.Stage == progress.StageEncoding {
		if r.tty && u.Snapshot.Total > 0 {
			if r.bar == nil {
				r.bar = r.newBar(u.Snapshot.Total)
			}
			r.bar.Describe("Encoding " + format.FPS(u.Snapshot.FPS))
			_ = r.bar.Set64(int64(u.Snapshot.Current))
			r.stage = u.Stage
			return
		}
		if r.stage == progress.StageEncoding {
			return
		}
	}
	if r.bar != nil {
		_ = r.bar.Finish()
		fmt.Fprintln(r.w)
		r.bar = nil
	}
	r.stage = u.Stage
	// The saved path is printed on stdout by the caller.
	if u.Message != "" && u.Stage != progress.StageCompleted {
		fmt.Fprintln(r.w, u.Message)
	}
}

func (r *plainReporter) Log(l progress.Log) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Clear()
	}
	fmt.Fprintf(r.w, "[%s] %s\n", l.Stream, l.Line)
}

func (r *plainReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
		fmt.Fprintln(r.w)
		r.bar = nil
	}
	if res.Err != nil {
		return
	}
	fmt.Fprintf(r.w, "%s frames in %s\n",
		format.Frames(res.Last.Current, res.Last.Total), format.Duration(res.Duration))
}
