package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"av1studio/internal/encoder"
	"av1studio/internal/history"
	"av1studio/internal/logging"
	"av1studio/internal/model"
	"av1studio/internal/pipeline"
	"av1studio/internal/preset"
)

// Options configure the UI.
type Options struct {
	Settings    model.EncodingSettings
	Build       encoder.BuildOptions
	Logger      logrus.FieldLogger
	History     history.Recorder
	IdleTimeout time.Duration
	KillGrace   time.Duration
	PresetDir   string

	// AutoStart skips the form and begins encoding at once; the program
	// exits when the encode finishes.
	AutoStart bool
}

type screen int

const (
	screenForm screen = iota
	screenEncode
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSave
	promptLoad
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	log    logrus.FieldLogger

	screen   screen
	settings model.EncodingSettings
	fields   []model.Field
	cursor   int
	editing  bool
	prompt   promptKind
	input    textinput.Model
	preview  bool
	status   string
	statusOK bool

	probes []pipeline.Probe
	enc    *encodeState

	quitting bool

	width, height int
	styles        Styles
}

func NewModel(ctx context.Context, opts Options) Model {
	c, cancel := context.WithCancel(ctx)
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 4096
	in.Width = 60
	return Model{
		ctx:      c,
		cancel:   cancel,
		opts:     opts,
		log:      opts.Logger,
		settings: opts.Settings,
		fields:   model.Fields(),
		input:    in,
		styles:   defaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.checkDepsCmd()}
	if m.opts.AutoStart {
		cmds = append(cmds, m.startCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.screen == screenEncode {
			return m.updateEncodeKeys(msg)
		}
		return m.updateFormKeys(msg)

	case depsCheckedMsg:
		m.probes = msg.Probes
		return m, nil

	case presetMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), false)
		} else if msg.Preset != nil {
			msg.Preset.Apply(&m.settings)
			m.setStatus("Loaded preset "+msg.Path, true)
		} else {
			m.setStatus("Saved preset "+msg.Path, true)
		}
		return m, nil

	case startedMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), false)
			if m.opts.AutoStart {
				m.enc = &encodeState{done: true, err: msg.Err}
				return m, tea.Quit
			}
			return m, nil
		}
		m.screen = screenEncode
		m.enc = newEncodeState(msg.Service, msg.Session, m.styles)
		return m, tea.Batch(m.enc.spinner.Tick, tickCmd())

	case tickMsg:
		if m.enc == nil || m.enc.done {
			return m, nil
		}
		if m.enc.poll() {
			return m, m.finishCmd(m.enc)
		}
		return m, tickCmd()

	case finishedMsg:
		if m.enc != nil {
			m.enc.done = true
			m.enc.result = msg.Result
			m.enc.err = msg.Err
		}
		if m.quitting || m.opts.AutoStart {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.enc != nil && !m.enc.done {
		var c tea.Cmd
		m.enc.spinner, c = m.enc.spinner.Update(msg)
		return m, c
	}
	return m, nil
}

func (m Model) View() string {
	if m.screen == screenEncode {
		return m.viewEncode()
	}
	return m.viewForm()
}

// Finished reports the encode's result once one has run.
func (m Model) Finished() (res pipeline.Result, ran bool, err error) {
	if m.enc == nil || !m.enc.done {
		return pipeline.Result{}, false, nil
	}
	return m.enc.result, true, m.enc.err
}

func (m *Model) setStatus(s string, ok bool) {
	m.status, m.statusOK = s, ok
}

func (m Model) service() *pipeline.Service {
	return pipeline.NewService(
		pipeline.WithSettings(m.settings),
		pipeline.WithBuildOptions(m.opts.Build),
		pipeline.WithJobID(uuid.NewString()),
		pipeline.WithHistory(m.opts.History),
		pipeline.WithLogger(m.log),
		pipeline.WithIdleTimeout(m.opts.IdleTimeout),
		pipeline.WithKillGrace(m.opts.KillGrace),
	)
}

func (m Model) checkDepsCmd() tea.Cmd {
	svc := m.service()
	ctx := m.ctx
	return func() tea.Msg {
		return depsCheckedMsg{Probes: svc.Probe(ctx)}
	}
}

func (m Model) startCmd() tea.Cmd {
	svc := m.service()
	ctx := m.ctx
	return func() tea.Msg {
		ss, err := svc.Start(ctx)
		return startedMsg{Service: svc, Session: ss, Err: err}
	}
}

func (m Model) finishCmd(e *encodeState) tea.Cmd {
	ctx := context.WithoutCancel(m.ctx)
	return func() tea.Msg {
		res, err := e.svc.Finish(ctx, e.session, e.monitor.Outcome, e.monitor.State.Snapshot)
		return finishedMsg{Result: res, Err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) presetCmd(kind promptKind, name string) tea.Cmd {
	dir := m.opts.PresetDir
	settings := m.settings
	return func() tea.Msg {
		path := preset.Resolve(dir, name)
		if kind == promptSave {
			return presetMsg{Path: path, Err: preset.Save(path, preset.FromSettings(settings))}
		}
		p, err := preset.Load(path)
		if err != nil {
			return presetMsg{Path: path, Err: err}
		}
		return presetMsg{Path: path, Preset: &p}
	}
}

func (m Model) updateEncodeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		m.enc.cancel()
		return m, nil
	case "q", "ctrl+c":
		if m.enc.done {
			m.cancel()
			return m, tea.Quit
		}
		m.quitting = true
		m.enc.cancel()
		return m, nil
	case "esc", "enter":
		if m.enc.done && !m.opts.AutoStart {
			m.screen = screenForm
			if m.enc.err != nil {
				m.setStatus(m.enc.err.Error(), false)
			} else {
				m.setStatus(fmt.Sprintf("Encoded %s", m.enc.result.Output.OutputPath), true)
			}
		}
		return m, nil
	}
	return m, nil
}
