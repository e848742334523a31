package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/gross-to-net/internal/scenario"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the explorer and blocks until the user quits. It returns the scenario
// the sliders were left at.
func Run(ctx context.Context, cfg Config) (scenario.Result, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	final, err := tea.NewProgram(newModel(cfg), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return scenario.Result{}, ctx.Err()
		}
		return scenario.Result{}, fmt.Errorf("scenario explorer failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return scenario.Result{}, fmt.Errorf("scenario explorer returned unexpected model %T", final)
	}
	return m.Result(), nil
}
