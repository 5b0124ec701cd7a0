package ui

import (
	"fmt"
	"strings"

	"av1studio/internal/encoder"
	"av1studio/internal/model"
	"av1studio/internal/progress"
	"av1studio/internal/util/format"
)

const visibleLogLines = 8

func (m Model) viewHeader(sub string) string {
	title := m.styles.Title.Render("av1studio · av1an front-end")
	return title + "\n" + m.styles.Subtitle.Render(sub)
}

func (m Model) viewDeps() string {
	if len(m.probes) == 0 {
		return m.styles.Faint.Render("checking dependencies…")
	}
	var parts []string
	for _, p := range m.probes {
		if p.OK() {
			parts = append(parts, m.styles.Success.Render("✓ "+p.Name))
		} else {
			parts = append(parts, m.styles.Warning.Render("✗ "+p.Name+" not found"))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(m.viewHeader("↑/↓ select • enter edit • ←/→ cycle • p preview • ctrl+s save • ctrl+o load • s start • q quit"))
	b.WriteString("\n")
	b.WriteString(m.viewDeps())
	b.WriteString("\n\n")

	for i, f := range m.fields {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("▸ ")
		}
		value := m.settings.Get(f.Key)
		if i == m.cursor && m.editing {
			value = m.input.View()
		} else if value == "" {
			value = m.styles.Faint.Render("—")
		} else {
			value = m.styles.Value.Render(value)
		}
		if f.Kind == model.KindEnum && i == m.cursor && !m.editing {
			value += m.styles.Faint.Render("  ◂ ▸")
		}
		b.WriteString(cursor + m.styles.Label.Render(f.Label) + value + "\n")
	}

	if f := m.current(); f.Help != "" {
		b.WriteString("\n" + m.styles.Help.Render(f.Help) + "\n")
	}
	if m.prompt != promptNone {
		verb := "Save"
		if m.prompt == promptLoad {
			verb = "Load"
		}
		b.WriteString("\n" + m.styles.Header.Render(verb+" preset: ") + m.input.View() + "\n")
	}
	if m.preview {
		b.WriteString("\n" + m.viewPreview())
	}
	if m.status != "" {
		style := m.styles.Error
		if m.statusOK {
			style = m.styles.Success
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) viewPreview() string {
	exe := encoder.Executable(m.settings)
	args := encoder.BuildArgs(m.settings, m.opts.Build)
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Command") + "\n")
	b.WriteString(m.styles.Command.Render(encoder.CommandLine(exe, args)) + "\n")
	warns, err := encoder.Check(m.settings, m.opts.Build)
	for _, w := range warns {
		b.WriteString(m.styles.Warning.Render("warning: "+w) + "\n")
	}
	if err != nil {
		b.WriteString(m.styles.Error.Render(err.Error()) + "\n")
	}
	return b.String()
}

func (m Model) viewEncode() string {
	e := m.enc
	var b strings.Builder
	help := "c cancel • q quit"
	if e.done {
		help = "enter back • q quit"
		if m.opts.AutoStart {
			help = "q quit"
		}
	}
	b.WriteString(m.viewHeader(help))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Faint.Render(truncate(e.session.CommandLine, 160)) + "\n\n")

	st := e.monitor.State
	b.WriteString(m.viewStatusLine(e) + "\n")
	if st.Total > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", e.bar.ViewAs(st.Percent/100), format.Percent(st.Percent)))
	}

	eta := st.ETA
	if eta == "" {
		eta = "--"
	}
	stats := fmt.Sprintf("frames %s • %s • eta %s • elapsed %s",
		format.Frames(st.Current, st.Total), format.FPS(st.FPS), eta, format.Duration(e.elapsed()))
	b.WriteString(m.styles.Value.Render(stats) + "\n")
	if st.InProgress {
		b.WriteString(m.styles.Faint.Render(fmt.Sprintf("cpu %.0f%% • rss %s",
			e.usage.CPUPercent, format.HumanizeBytes(int64(e.usage.RSS)))) + "\n")
	}

	b.WriteString("\n" + m.styles.Header.Render("Output") + "\n")
	logs := e.logsRing
	if len(logs) > visibleLogLines {
		logs = logs[len(logs)-visibleLogLines:]
	}
	for _, l := range logs {
		b.WriteString(m.styles.Faint.Render(truncate(l, 160)) + "\n")
	}
	return m.styles.Box.Render(b.String())
}

func (m Model) viewStatusLine(e *encodeState) string {
	switch {
	case !e.done && e.canceling:
		return m.styles.Warning.Render(e.spinner.View() + " canceling…")
	case !e.done && !e.monitor.State.InProgress:
		return m.styles.StageEnc.Render(e.spinner.View() + " finishing…")
	case !e.done:
		return m.styles.StageEnc.Render(e.spinner.View() + " " + string(progress.StageEncoding))
	case e.err == nil:
		out := e.result.Output
		return m.styles.Success.Render(fmt.Sprintf("✓ done: %s (%s)", out.OutputPath, format.HumanizeBytes(out.Bytes)))
	case e.result.Output.Outcome.Kind == progress.OutcomeCanceled:
		return m.styles.Warning.Render("✗ canceled")
	default:
		return m.styles.Error.Render("✗ " + e.err.Error())
	}
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
