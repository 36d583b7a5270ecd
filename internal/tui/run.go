package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-report/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx is canceled.
func Run(ctx context.Context, d model.Dashboard, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)

	if _, err := tea.NewProgram(New(d), opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dashboard viewer failed: %w", err)
	}
	return nil
}
