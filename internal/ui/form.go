package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"av1studio/internal/model"
	"av1studio/internal/pipeline"
)

func (m Model) current() model.Field {
	return m.fields[m.cursor]
}

func (m Model) updateFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing || m.prompt != promptNone {
		return m.updateInput(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case "left", "h":
		m.cycle(-1)
	case "right", "l":
		m.cycle(1)
	case "enter":
		m.editing = true
		m.input.Placeholder = m.current().Help
		m.input.SetValue(m.settings.Get(m.current().Key))
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "p":
		m.preview = !m.preview
	case "ctrl+s":
		return m.openPrompt(promptSave)
	case "ctrl+o":
		return m.openPrompt(promptLoad)
	case "s":
		plan, err := pipeline.NewService(
			pipeline.WithSettings(m.settings),
			pipeline.WithBuildOptions(m.opts.Build),
		).Plan()
		if err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		for _, w := range plan.Warnings {
			m.log.Warn(w)
		}
		m.setStatus("Starting av1an…", true)
		return m, m.startCmd()
	}
	return m, nil
}

func (m *Model) cycle(delta int) {
	f := m.current()
	if f.Kind != model.KindEnum {
		return
	}
	if err := m.settings.Cycle(f.Key, delta); err != nil {
		m.setStatus(err.Error(), false)
		return
	}
	m.setStatus("", true)
}

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Placeholder = "preset name or path"
	m.input.SetValue("")
	return m, m.input.Focus()
}

// updateInput handles keys while the text input owns the keyboard.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.prompt = promptNone
		m.input.Blur()
		m.setStatus("", true)
		return m, nil
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "enter":
		value := m.input.Value()
		if m.prompt != promptNone {
			kind := m.prompt
			m.prompt = promptNone
			m.input.Blur()
			if value == "" {
				return m, nil
			}
			return m, m.presetCmd(kind, value)
		}
		if err := m.settings.Set(m.current().Key, value); err != nil {
			// Stay in the editor so the value can be fixed.
			m.setStatus(err.Error(), false)
			return m, nil
		}
		m.editing = false
		m.input.Blur()
		m.setStatus("", true)
		return m, nil
	}
	var c tea.Cmd
	m.input, c = m.input.Update(msg)
	return m, c
}
