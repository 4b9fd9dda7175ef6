// Package tui is the interactive board of fiches.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/db"
)

// RunBoard starts the board and blocks until the user quits. Backend changes
// made by other processes are picked up while it runs, when the backend can
// report them.
func RunBoard(ctx context.Context, svc *actions.Service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := svc.Subscribe(ctx)
	if err != nil && !errors.Is(err, db.ErrNotSupported) {
		return err
	}

	p := tea.NewProgram(NewBoardModel(svc, events), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
