package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/parser"
	"github.com/balkashynov/fiches/internal/selectors"
)

func addSubject(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Manage the subjects of the active university",
	}
	addSubjectList(cmd)
	addSubjectAssign(cmd)
	addSubjectDeadline(cmd)
	addSubjectRemove(cmd)
	topLevel.AddCommand(cmd)
}

func addSubjectList(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List subjects with their owner, progress and next deadline",
		Args:    cobra.NoArgs,
		RunE: withService(func(_ context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			store := svc.Snapshot()
			univ, err := activeUniversity(store)
			if err != nil {
				return err
			}
			if len(univ.Subjects) == 0 {
				fmt.Fprintf(out(cmd), "No subjects in %s.\n", univ.Name)
				return nil
			}

			today := svc.Now()
			tbl := uitable.New()
			tbl.MaxColWidth = 40
			tbl.Separator = "  "
			tbl.AddRow("ID", "SUBJECT", "OWNER", "METHOD", "ITEMS", "PROGRESS", "NEXT DEADLINE", "REMARK")
			for _, s := range univ.Subjects {
				next := ""
				if it := selectors.NearestDeadline(store, s.ID); it != nil {
					next = parser.FormatDeadline(*it, today)
				}
				tbl.AddRow(
					shortID(s.ID),
					s.Name,
					s.Owner,
					s.Method.Label(),
					len(univ.ItemsOf(s.ID)),
					fmt.Sprintf("%d%%", selectors.SubjectProgress(store, s.ID)),
					next,
					s.Remark,
				)
			}
			tbl.RightAlign(4)
			tbl.RightAlign(5)
			fmt.Fprintln(out(cmd), tbl)

			if owners := selectors.AllOwners(store); len(owners) > 0 {
				fmt.Fprintf(out(cmd), "\nOwners: %s\n", strings.Join(owners, ", "))
			}
			return nil
		}),
	}
	parent.AddCommand(cmd)
}

func addSubjectAssign(parent *cobra.Command) {
	var owner, method, remark string
	cmd := &cobra.Command{
		Use:   "assign <subject>",
		Short: "Set the owner, method and remark of a subject",
		Long: `Set the owner, method and remark of a subject. Omitted flags keep their value.

Methods: NB_AUDIO_AKV, NB_AUDIO_POLY, NB_AUDIO_POLY_ACC (empty clears).`,
		Args: cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			subject, err := resolveSubject(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("owner") && !flags.Changed("method") && !flags.Changed("remark") {
				return fmt.Errorf("nothing to assign. Use --owner, --method or --remark")
			}
			if flags.Changed("owner") {
				subject.Owner = owner
			}
			if flags.Changed("method") {
				m, err := models.ParseMethod(method)
				if err != nil {
					return err
				}
				subject.Method = m
			}
			if flags.Changed("remark") {
				subject.Remark = remark
			}

			updated, err := svc.AssignSubjectMeta(ctx, subject.ID, subject.Owner, subject.Method, subject.Remark)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			fmt.Fprintf(out(cmd), "👤 %s: owner %q, method %q\n", updated.Name, updated.Owner, updated.Method.Label())
			return err
		}),
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "Responsible person")
	cmd.Flags().StringVarP(&method, "method", "m", "", "Production method")
	cmd.Flags().StringVarP(&remark, "remark", "r", "", "Free remark")
	parent.AddCommand(cmd)
}

func addSubjectDeadline(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "deadline <subject> <date>",
		Short: "Set the same deadline on every item of a subject",
		Long: `Set the same deadline on every item of a subject.

Dates: dd/mm/yyyy, yyyy-mm-dd, X days, X weeks, today, tomorrow; none clears.`,
		Args: cobra.ExactArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			subject, err := resolveSubject(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			deadline, err := parser.ParseDeadline(args[1], svc.Now())
			if err != nil {
				return err
			}

			n, err := svc.SetSubjectDeadline(ctx, subject.ID, deadline)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			switch {
			case n == 0:
				fmt.Fprintf(out(cmd), "%s has no items, nothing changed.\n", subject.Name)
			case deadline == "":
				fmt.Fprintf(out(cmd), "📅 Cleared the deadline of %d items in %s\n", n, subject.Name)
			default:
				fmt.Fprintf(out(cmd), "📅 Set %s on %d items in %s\n", deadline, n, subject.Name)
			}
			return err
		}),
	}
	parent.AddCommand(cmd)
}

func addSubjectRemove(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rm <subject>",
		Short: "Delete a subject and its items",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			subject, err := resolveSubject(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			n, err := svc.DeleteSubject(ctx, subject.ID)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			fmt.Fprintf(out(cmd), "🗑️  Deleted %s and %d items\n", subject.Name, n)
			return err
		}),
	}
	parent.AddCommand(cmd)
}
