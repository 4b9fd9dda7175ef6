package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/models"
)

func addFilter(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage the saved filters",
		Long: fmt.Sprintf(`Manage the saved filters used by ls, kpi and board.

Fields: %s.
A value of "all" clears one filter.`, strings.Join(actions.FilterFields, ", ")),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one filter",
		Example: `  fiches filter set owner Alice
  fiches filter set status "en cours"
  fiches filter set overdue yes
  fiches filter set deadline no`,
		Args: cobra.MinimumNArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			if err := svc.ApplyFilter(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "🔎 Filters: %s\n", describeFilters(svc.Snapshot()))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear every filter",
		Args:  cobra.NoArgs,
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			if err := svc.ClearFilters(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "🔎 Filters cleared")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved filters and view",
		Args:  cobra.NoArgs,
		RunE: withService(func(_ context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			store := svc.Snapshot()
			fmt.Fprintf(out(cmd), "View: %s\n", store.UI.View)
			fmt.Fprintf(out(cmd), "Filters: %s\n", describeFilters(store))
			return nil
		}),
	})

	topLevel.AddCommand(cmd)
}

func addView(topLevel *cobra.Command) {
	names := make([]string, len(models.Views))
	for i, v := range models.Views {
		names[i] = string(v)
	}
	cmd := &cobra.Command{
		Use:       "view <" + strings.Join(names, "|") + ">",
		Short:     "Choose the view the board opens with",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			if err := svc.SetView(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "View set to %s\n", svc.Snapshot().UI.View)
			return nil
		}),
	}
	topLevel.AddCommand(cmd)
}
