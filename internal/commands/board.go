package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/tui"
)

func addBoard(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Long: `Open the interactive board: university tabs, indicators, and the table,
kanban or calendar view. Changes made elsewhere to the same database show up live.`,
		Args: cobra.NoArgs,
		RunE: withService(func(ctx context.Context, _ *cobra.Command, _ []string, svc *actions.Service) error {
			return tui.RunBoard(ctx, svc)
		}),
	}
	topLevel.AddCommand(cmd)
}
