package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"av1studio/internal/encoder"
	"av1studio/internal/supervisor"
	"av1studio/internal/util/deps"
)

// isolate points every user directory and PATH at temp dirs and returns
// the PATH directory.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	bin := t.TempDir()
	t.Setenv("PATH", bin)
	return bin
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := execute(context.Background(), root, args)
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func fakeAv1an(t *testing.T, dir string, code int) string {
	return writeScript(t, dir, "av1an-verbosity", fmt.Sprintf(`
if [ "$1" = "--version" ]; then echo "av1an-verbosity 0.4.2"; exit 0; fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
printf '0 10\r5 10\r'
echo "00:00:01 ▕███▏ 100%% 10/10 (10.0 fps, eta 00:00:00)"
printf 'av1' > "$out"
exit %d
`, code))
}

func exitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if err != nil {
		return -1
	}
	return ExitOK
}

func TestPlan(t *testing.T) {
	isolate(t)
	stdout, stderr, err := run(t, "plan", "-i", "in.mkv", "-o", "out.mkv", "--crf", "30", "--preset", "8",
		"--custom-params=--tune 0", "--color-primaries", "bt2020")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	for _, want := range []string{"av1an-verbosity -i in.mkv -o out.mkv", "--tune 0", "crf", "was not found"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("plan output missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "will NOT be passed") {
		t.Errorf("stderr = %q, want color warning", stderr)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing input and output", []string{"plan"}, "input"},
		{"bad enum", []string{"plan", "-i", "a", "-o", "b", "--pix-format", "rgb"}, "--pix-format"},
		{"bad crf", []string{"plan", "-i", "a", "-o", "b", "--crf", "99"}, "--crf"},
		{"unknown preset file", []string{"plan", "-i", "a", "-o", "b", "--preset-file", "nope"}, "load preset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, _, err := run(t, tt.args...)
			if exitCode(err) != ExitCLIError {
				t.Fatalf("exit = %d (%v), want %d", exitCode(err), err, ExitCLIError)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestPresetCommands(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "preset", "save", "anime", "--crf", "28", "--preset", "6", "--film-grain", "8")
	if err != nil {
		t.Fatalf("preset save error = %v", err)
	}
	if !strings.Contains(stdout, "anime.yaml") {
		t.Errorf("save output = %q, want anime.yaml path", stdout)
	}

	stdout, _, err = run(t, "preset", "list")
	if err != nil || !strings.Contains(stdout, "anime") {
		t.Errorf("preset list = %q, %v; want anime listed", stdout, err)
	}

	stdout, _, err = run(t, "preset", "show", "anime")
	if err != nil || !strings.Contains(stdout, "film-grain") || !strings.Contains(stdout, "28") {
		t.Errorf("preset show = %q, %v", stdout, err)
	}

	stdout, _, err = run(t, "preset", "load", "anime", "-i", "x.mkv", "-o", "y.mkv")
	if err != nil || !strings.Contains(stdout, "--crf 28 --preset 6 --film-grain 8") {
		t.Errorf("preset load = %q, %v", stdout, err)
	}

	// Explicit flags win over the preset.
	stdout, _, err = run(t, "plan", "-i", "x.mkv", "-o", "y.mkv", "--preset-file", "anime", "--crf", "35")
	if err != nil || !strings.Contains(stdout, "--crf 35 --preset 6") {
		t.Errorf("plan with preset = %q, %v", stdout, err)
	}

	if _, _, err := run(t, "preset", "show", "missing"); exitCode(err) != ExitCLIError {
		t.Errorf("show missing preset exit = %d, want %d", exitCode(err), ExitCLIError)
	}
}

func TestPresetList_Empty(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "preset", "list")
	if err != nil || !strings.Contains(stdout, "No presets") {
		t.Errorf("preset list = %q, %v", stdout, err)
	}
}

func TestDoctor(t *testing.T) {
	bin := isolate(t)
	fakeAv1an(t, bin, 0)

	stdout, _, err := run(t, "doctor")
	if exitCode(err) != ExitMissingDep {
		t.Fatalf("doctor without SvtAv1EncApp exit = %d, want %d", exitCode(err), ExitMissingDep)
	}
	if !strings.Contains(stdout, "av1an-verbosity 0.4.2") {
		t.Errorf("doctor output = %q, want av1an version", stdout)
	}

	writeScript(t, bin, deps.SvtAv1Binary, `echo "SVT-AV1 v2.1.0"`+"\n")
	stdout, _, err = run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor error = %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "SVT-AV1 v2.1.0") {
		t.Errorf("doctor output = %q, want SVT-AV1 version", stdout)
	}
}

func TestEncode_NoUI(t *testing.T) {
	bin := isolate(t)
	fakeAv1an(t, bin, 0)
	dir := t.TempDir()
	out := filepath.Join(dir, "enc", "movie.mkv")

	stdout, stderr, err := run(t, "encode", "--no-ui", "-i", filepath.Join(dir, "movie.mkv"), "-o", out)
	if err != nil {
		t.Fatalf("encode error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Saved: "+out) {
		t.Errorf("stdout = %q, want saved path", stdout)
	}
	if !strings.Contains(stderr, "10/10 frames") {
		t.Errorf("stderr = %q, want frame summary", stderr)
	}

	stdout, _, err = run(t, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(stdout, out) || !strings.Contains(stdout, "completed") {
		t.Errorf("history = %q, want the encode listed", stdout)
	}
}

func TestEncode_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, bin string)
		want  int
	}{
		{"av1an fails", func(t *testing.T, bin string) { fakeAv1an(t, bin, 1) }, ExitEncoderError},
		{"av1an missing", func(*testing.T, string) {}, ExitMissingDep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := isolate(t)
			tt.setup(t, bin)
			dir := t.TempDir()
			_, _, err := run(t, "--no-ui", "-i", filepath.Join(dir, "a.mkv"), "-o", filepath.Join(dir, "b.mkv"))
			if got := exitCode(err); got != tt.want {
				t.Errorf("exit = %d (%v), want %d", got, err, tt.want)
			}
		})
	}
}

func TestHistory_Empty(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "history")
	if err != nil || !strings.Contains(stdout, "No encodes") {
		t.Errorf("history = %q, %v", stdout, err)
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("find: %w", deps.ErrNotFound), ExitMissingDep},
		{encoder.ErrCanceled, ExitCanceled},
		{&encoder.ExitStatusError{Code: 2}, ExitEncoderError},
		{fmt.Errorf("%w: boom", encoder.ErrEncoderFailed), ExitEncoderError},
		{fmt.Errorf("%w: x", supervisor.ErrSpawn), ExitEncoderError},
		{encoder.ErrMissingInput, ExitCLIError},
		{&ExitError{Code: 7}, 7},
	}
	for _, tt := range tests {
		if got := exitCode(exitError(tt.err)); got != tt.want {
			t.Errorf("exitError(%v) code = %d, want %d", tt.err, got, tt.want)
		}
	}
	if exitError(nil) != nil {
		t.Error("exitError(nil) should be nil")
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	stdout, _, err := run(t, "completion", "bash")
	if err != nil || !strings.Contains(stdout, "av1studio") {
		t.Errorf("completion bash = %d bytes, %v", len(stdout), err)
	}
	if _, _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
