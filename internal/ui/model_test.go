package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"av1studio/internal/encoder"
	"av1studio/internal/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

func fieldIndex(t *testing.T, m Model, key string) int {
	t.Helper()
	for i, f := range m.fields {
		if f.Key == key {
			return i
		}
	}
	t.Fatalf("no field %q", key)
	return -1
}

func newTestModel(t *testing.T, s model.EncodingSettings) Model {
	t.Helper()
	m := NewModel(context.Background(), Options{Settings: s, PresetDir: t.TempDir()})
	t.Cleanup(m.cancel)
	return m
}

func TestForm_EditField(t *testing.T) {
	m := newTestModel(t, model.DefaultSettings())
	m.cursor = fieldIndex(t, m, "crf")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing || m.input.Value() != "27" {
		t.Fatalf("editing = %v value = %q, want editing 27", m.editing, m.input.Value())
	}

	m.input.SetValue("99")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing || m.statusOK || m.status == "" {
		t.Errorf("out-of-range crf accepted: editing=%v status=%q", m.editing, m.status)
	}
	if m.settings.CRF != model.DefaultCRF {
		t.Errorf("CRF = %v after rejected edit", m.settings.CRF)
	}

	m.input.SetValue("31.5")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing || m.settings.CRF != 31.5 {
		t.Errorf("editing = %v CRF = %v, want done and 31.5", m.editing, m.settings.CRF)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.input.SetValue("1")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing || m.settings.CRF != 31.5 {
		t.Errorf("esc should discard the edit: editing = %v CRF = %v", m.editing, m.settings.CRF)
	}
}

func TestForm_NavigateAndCycle(t *testing.T) {
	m := newTestModel(t, model.DefaultSettings())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, keyRunes("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	m.cursor = fieldIndex(t, m, "color-range")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.settings.ColorRange != model.RangeFull {
		t.Errorf("ColorRange = %v, want full", m.settings.ColorRange)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.settings.ColorRange != model.RangeStudio {
		t.Errorf("ColorRange = %v, want wrap to studio", m.settings.ColorRange)
	}

	m.cursor = fieldIndex(t, m, "preset")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.settings.Preset != model.DefaultPreset {
		t.Errorf("left on a number changed Preset to %d", m.settings.Preset)
	}

	m, _ = update(t, m, keyRunes("p"))
	if !strings.Contains(m.View(), "--preset 4") {
		t.Error("preview does not show the command")
	}
}

func TestForm_PresetSaveLoad(t *testing.T) {
	m := newTestModel(t, model.DefaultSettings())
	m.settings.CRF = 33

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.prompt != promptSave {
		t.Fatalf("prompt = %v, want save", m.prompt)
	}
	m.input.SetValue("anime")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no save command")
	}
	m, _ = update(t, m, cmd())
	if !m.statusOK {
		t.Fatalf("save failed: %s", m.status)
	}
	if _, err := os.Stat(filepath.Join(m.opts.PresetDir, "anime.yaml")); err != nil {
		t.Fatalf("preset file not written: %v", err)
	}

	m.settings.CRF = 20
	m.settings.Input = "keep.mkv"
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m.input.SetValue("anime")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.settings.CRF != 33 || m.settings.Input != "keep.mkv" {
		t.Errorf("after load CRF = %v Input = %q, want 33 and keep.mkv", m.settings.CRF, m.settings.Input)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	m.input.SetValue("missing")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, cmd())
	if m.statusOK {
		t.Error("loading a missing preset reported success")
	}
}

func TestForm_StartRequiresInput(t *testing.T) {
	m := newTestModel(t, model.DefaultSettings())
	m, cmd := update(t, m, keyRunes("s"))
	if cmd != nil {
		t.Error("start without input returned a command")
	}
	if m.statusOK || !strings.Contains(m.status, "input") {
		t.Errorf("status = %q, want missing input error", m.status)
	}
}

func fakeAv1an(t *testing.T, tail string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	script := `#!/bin/sh
if [ "$1" = "--version" ]; then echo "av1an 0.4"; exit 0; fi
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
printf '0 10\r5 10\r'
echo "00:00:01 ▕██▏ 100% 10/10 (4 fps, eta 00:00:00)"
printf 'av1' > "$out"
` + tail + "\n"
	p := filepath.Join(t.TempDir(), "av1an-verbosity")
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

// runEncode starts an encode with "s" and ticks until the finish message
// has been applied. between runs after every tick.
func runEncode(t *testing.T, m Model, between func(Model) Model) Model {
	t.Helper()
	m, cmd := update(t, m, keyRunes("s"))
	if cmd == nil {
		t.Fatalf("start returned no command: %s", m.status)
	}
	m, _ = update(t, m, cmd())
	if m.screen != screenEncode {
		t.Fatalf("screen = %v after start, status %q", m.screen, m.status)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		m, cmd = update(t, m, tickMsg(time.Now()))
		if between != nil {
			m = between(m)
		}
		if !m.enc.monitor.State.InProgress {
			m, _ = update(t, m, cmd())
			return m
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("encode did not finish")
	return m
}

func TestEncodeScreen_RunsToCompletion(t *testing.T) {
	s := model.DefaultSettings()
	dir := t.TempDir()
	s.Input = filepath.Join(dir, "in.mkv")
	s.Output = filepath.Join(dir, "out.mkv")
	s.Av1anPath = fakeAv1an(t, "exit 0")
	m := runEncode(t, newTestModel(t, s), nil)

	res, ran, err := m.Finished()
	if !ran || err != nil {
		t.Fatalf("Finished() = ran %v err %v", ran, err)
	}
	if res.Output.Bytes != 3 {
		t.Errorf("Bytes = %d, want 3", res.Output.Bytes)
	}
	st := m.enc.monitor.State
	if st.Current != 10 || st.Total != 10 || st.FPS != 4 {
		t.Errorf("final state = %+v, want 10/10 at 4 fps", st)
	}
	if len(m.enc.logsRing) != 3 {
		t.Errorf("log ring = %q, want 3 lines", m.enc.logsRing)
	}
	if v := m.View(); !strings.Contains(v, "done") {
		t.Errorf("view after success:\n%s", v)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenForm || !m.statusOK {
		t.Errorf("enter after finish: screen %v status %q", m.screen, m.status)
	}
}

func TestEncodeScreen_Cancel(t *testing.T) {
	s := model.DefaultSettings()
	dir := t.TempDir()
	s.Input = filepath.Join(dir, "in.mkv")
	s.Output = filepath.Join(dir, "out.mkv")
	s.Av1anPath = fakeAv1an(t, "sleep 30")

	canceled := false
	m := runEncode(t, newTestModel(t, s), func(m Model) Model {
		if !canceled && m.enc.monitor.State.Updates > 0 {
			canceled = true
			m, _ = update(t, m, keyRunes("c"))
		}
		return m
	})
	_, ran, err := m.Finished()
	if !ran || !errors.Is(err, encoder.ErrCanceled) {
		t.Errorf("Finished() = ran %v err %v, want ErrCanceled", ran, err)
	}
	if v := m.View(); !strings.Contains(v, "canceled") {
		t.Errorf("view after cancel:\n%s", v)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
