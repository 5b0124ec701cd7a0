// Package supervisor runs one external process and fans its stdout and stderr
// lines into a single bounded queue for a polling consumer.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	gopsutilprocess "github.com/shirou/gopsutil/v3/process"

	"av1studio/internal/progress"
	"av1studio/internal/util"
)

const DefaultQueueSize = 1024

// minIdleTick bounds how often the idle watchdog wakes up.
const minIdleTick = 10 * time.Millisecond

// Line is one line read from the child.
type Line struct {
	Stream progress.LogStream
	Text   string
}

// Spec describes the process to supervise.
type Spec struct {
	Path string
	Args []string
	Dir  string
	Env  []string // extra KEY=VALUE pairs

	QueueSize int

	// IdleTimeout kills the child when no line arrives for this long.
	// Zero disables it.
	IdleTimeout time.Duration
	// KillGrace is how long an interrupted child gets before it is killed.
	// Zero kills straight away.
	KillGrace time.Duration
}

// Job is a running (or finished) supervised process.
type Job struct {
	spec Spec
	cmd  *exec.Cmd

	lines   chan Line
	done    chan struct{}
	outcome progress.Outcome

	cancel     chan struct{}
	cancelOnce sync.Once

	lastLine atomic.Int64 // unix nanos
	dropped  atomic.Int64

	readErrMu sync.Mutex
	readErr   error

	procOnce sync.Once
	proc     *gopsutilprocess.Process
}

// Start spawns the process and begins reading its output. A spawn failure
// is returned immediately and nothing keeps running.
func Start(ctx context.Context, spec Spec) (*Job, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("%w: empty executable path", ErrSpawn)
	}
	if spec.QueueSize <= 0 {
		spec.QueueSize = DefaultQueueSize
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	setProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Path, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Path, err)
	}

	j := &Job{
		spec:   spec,
		cmd:    cmd,
		lines:  make(chan Line, spec.QueueSize),
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	j.touch()

	var readers sync.WaitGroup
	readers.Add(2)
	go j.read(&readers, stdout, progress.StreamStdout)
	go j.read(&readers, stderr, progress.StreamStderr)

	go j.supervise(ctx, &readers)
	return j, nil
}

// Poll drains up to max queued lines without blocking (all of them when
// max <= 0). closed is true once the process has exited and every line
// has been handed out.
func (j *Job) Poll(max int) (lines []Line, closed bool) {
	for max <= 0 || len(lines) < max {
		select {
		case l, ok := <-j.lines:
			if !ok {
				return lines, true
			}
			lines = append(lines, l)
		default:
			return lines, false
		}
	}
	return lines, false
}

// Lines exposes the queue for consumers that prefer to block. It is closed
// after the process exits and both streams hit EOF.
func (j *Job) Lines() <-chan Line { return j.lines }

// Done is closed once the outcome is known.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the process is gone and returns how it ended.
func (j *Job) Wait() progress.Outcome {
	<-j.done
	return j.outcome
}

// Cancel asks the supervisor to stop the child. Only the first call counts.
func (j *Job) Cancel() {
	j.cancelOnce.Do(func() { close(j.cancel) })
}

// Pid returns the child's process id.
func (j *Job) Pid() int { return j.cmd.Process.Pid }

// Dropped counts lines discarded because nobody drained a full queue after cancellation.
func (j *Job) Dropped() int64 { return j.dropped.Load() }

// Usage samples the child's CPU and resident memory.
type Usage struct {
	CPUPercent float64
	RSS        uint64
}

// Usage reports the child's current resource usage. It returns a zero Usage
// once the process has exited or when sampling is unsupported.
func (j *Job) Usage() Usage {
	select {
	case <-j.done:
		return Usage{}
	default:
	}
	j.procOnce.Do(func() {
		if p, err := gopsutilprocess.NewProcess(int32(j.Pid())); err == nil {
			j.proc = p
		}
	})
	if j.proc == nil {
		return Usage{}
	}
	var u Usage
	if cpuPct, err := j.proc.CPUPercent(); err == nil {
		u.CPUPercent = cpuPct
	}
	if memInfo, err := j.proc.MemoryInfo(); err == nil && memInfo != nil {
		u.RSS = memInfo.RSS
	}
	return u
}

func (j *Job) touch() { j.lastLine.Store(time.Now().UnixNano()) }

func (j *Job) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, j.lastLine.Load()))
}

func (j *Job) read(wg *sync.WaitGroup, r io.Reader, stream progress.LogStream) {
	defer wg.Done()
	sc := util.NewLineScanner(r)
	for sc.Scan() {
		j.touch()
		j.push(Line{Stream: stream, Text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		j.readErrMu.Lock()
		if j.readErr == nil {
			j.readErr = fmt.Errorf("read %s: %w", stream, err)
		}
		j.readErrMu.Unlock()
		// Keep the pipe drained so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
}

// push blocks while the queue is full, unless the job was canceled; then
// lines nobody reads are dropped so the readers can reach EOF.
func (j *Job) push(l Line) {
	select {
	case j.lines <- l:
	case <-j.cancel:
		select {
		case j.lines <- l:
		default:
			j.dropped.Add(1)
		}
	}
}

func (j *Job) supervise(ctx context.Context, readers *sync.WaitGroup) {
	exited := make(chan error, 1)
	go func() {
		readers.Wait()
		exited <- j.cmd.Wait()
	}()

	var idle <-chan time.Time
	if j.spec.IdleTimeout > 0 {
		tick := j.spec.IdleTimeout / 4
		if tick > time.Second {
			tick = time.Second
		}
		if tick < minIdleTick {
			tick = minIdleTick
		}
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		idle = ticker.C
	}

	var (
		cancel    = (<-chan struct{})(j.cancel)
		ctxDone   = ctx.Done()
		canceled  bool
		stalled   bool
		killTimer *time.Timer
	)
	stop := func(grace time.Duration) {
		cancel, ctxDone, idle = nil, nil, nil
		j.Cancel()
		killTimer = j.terminate(grace)
	}

	var waitErr error
loop:
	for {
		select {
		case waitErr = <-exited:
			break loop
		case <-cancel:
			canceled = true
			stop(j.spec.KillGrace)
		case <-ctxDone:
			canceled = true
			stop(j.spec.KillGrace)
		case now := <-idle:
			if j.idleFor(now) >= j.spec.IdleTimeout {
				stalled = true
				stop(0)
			}
		}
	}
	if killTimer != nil {
		killTimer.Stop()
	}

	j.outcome = j.classify(waitErr, canceled, stalled)
	close(j.lines)
	close(j.done)
}

// terminate interrupts the process group and kills it after grace.
func (j *Job) terminate(grace time.Duration) *time.Timer {
	if grace <= 0 {
		_ = killGroup(j.cmd)
		return nil
	}
	if err := interruptGroup(j.cmd); err != nil {
		_ = killGroup(j.cmd)
		return nil
	}
	return time.AfterFunc(grace, func() { _ = killGroup(j.cmd) })
}

func (j *Job) classify(waitErr error, canceled, stalled bool) progress.Outcome {
	switch {
	case canceled:
		return progress.Outcome{Kind: progress.OutcomeCanceled, ExitCode: exitCode(waitErr)}
	case stalled:
		return progress.Outcome{Kind: progress.OutcomeFailed, ExitCode: exitCode(waitErr), Err: ErrStalled}
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !(errors.As(waitErr, &exitErr) && exitErr.ExitCode() >= 0) {
		return progress.Outcome{Kind: progress.OutcomeFailed, ExitCode: -1, Err: waitErr}
	}

	j.readErrMu.Lock()
	readErr := j.readErr
	j.readErrMu.Unlock()
	if readErr != nil {
		return progress.Outcome{Kind: progress.OutcomeFailed, ExitCode: exitCode(waitErr), Err: readErr}
	}
	return progress.Outcome{Kind: progress.OutcomeCompleted, ExitCode: exitCode(waitErr)}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
