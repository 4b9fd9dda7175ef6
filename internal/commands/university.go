package commands

import (
	"context"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
)

func addUniversity(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "uni",
		Aliases: []string{"university", "universities"},
		Short:   "List, select or delete universities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List universities",
		Args:    cobra.NoArgs,
		RunE: withService(func(_ context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			store := svc.Snapshot()
			if len(store.Universities) == 0 {
				fmt.Fprintln(out(cmd), "No universities. Use 'fiches import <file.xlsx>' to load a workbook.")
				return nil
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("", "ID", "UNIVERSITY", "SUBJECTS", "ITEMS")
			for _, u := range store.Universities {
				marker := ""
				if u.ID == store.UI.ActiveUniversityID {
					marker = "*"
				}
				tbl.AddRow(marker, shortID(u.ID), u.Name, len(u.Subjects), len(u.Items))
			}
			tbl.RightAlign(3)
			tbl.RightAlign(4)
			fmt.Fprintln(out(cmd), tbl)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <university>",
		Short: "Select the active university",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			univ, err := resolveUniversity(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if err := svc.SetActiveUniversity(ctx, univ.ID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "🏫 Now on %s\n", univ.Name)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <university>",
		Short: "Delete a university with its subjects and items",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			univ, err := resolveUniversity(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			err = svc.DeleteUniversity(ctx, univ.ID)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			fmt.Fprintf(out(cmd), "🗑️  Deleted %s (%d subjects, %d items)\n", univ.Name, len(univ.Subjects), len(univ.Items))
			return err
		}),
	})

	topLevel.AddCommand(cmd)
}
