package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"av1studio/internal/pipeline"
)

// ErrNoEncode is returned when the user leaves without running an encode.
var ErrNoEncode = errors.New("no encode was run")

// Run launches the TUI and blocks until it exits. It returns the last
// encode's result, or ErrNoEncode if none ran.
func Run(ctx context.Context, opts Options) (pipeline.Result, error) {
	m := NewModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return pipeline.Result{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return pipeline.Result{}, ErrNoEncode
	}
	res, ran, err := fm.Finished()
	if !ran {
		return res, ErrNoEncode
	}
	return res, err
}
