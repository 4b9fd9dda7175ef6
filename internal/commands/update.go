package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/parser"
)

func addUpdate(topLevel *cobra.Command) {
	var status, priority, due, comment, professor string
	var progress int
	cmd := &cobra.Command{
		Use:   "update <item> [expression...]",
		Short: "Update an item",
		Long: `Update the status, priority, deadline, progress, comment or professor of an item.

The item is given by id, id prefix or title. Changes can be written inline:
  +high           Set priority (low/medium/high)
  status:valide   Set status (pending, wip, review, valide)
  80%             Set progress
  due:3days       Set deadline (dd/mm/yyyy, yyyy-mm-dd, X days, X weeks, none)
  prof:Dupont     Set professor (underscores stand for spaces)
  anything else   Becomes the comment

Flags take precedence over the inline expression.

Example:
  fiches update 3f2a "+high 80% due:15/12/2026 relire la partie 2"`,
		Args: cobra.MinimumNArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			store := svc.Snapshot()
			it, err := resolveItem(store, args[0])
			if err != nil {
				return err
			}

			today := svc.Now()
			parsed := parser.ParseUpdate(strings.Join(args[1:], " "), today)
			if len(parsed.Errors) > 0 {
				return errors.New(strings.Join(parsed.Errors, "; "))
			}
			patch := actions.ItemPatch{
				Status:    parsed.Status,
				Priority:  parsed.Priority,
				Deadline:  parsed.Deadline,
				Progress:  parsed.Progress,
				Comment:   parsed.Comment,
				Professor: parsed.Professor,
			}

			flags := cmd.Flags()
			if flags.Changed("status") {
				st, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}
			if flags.Changed("prio") {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if flags.Changed("due") {
				d, err := parser.ParseDeadline(due, today)
				if err != nil {
					return err
				}
				patch.Deadline = &d
			}
			if flags.Changed("progress") {
				patch.Progress = &progress
			}
			if flags.Changed("comment") {
				patch.Comment = &comment
			}
			if flags.Changed("prof") {
				patch.Professor = &professor
			}
			if patch.IsZero() {
				return fmt.Errorf("nothing to update. See 'fiches update --help'")
			}

			updated, err := svc.UpdateItem(ctx, it.ID, patch)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			printItem(cmd, "✏️  Updated", updated, today)
			return err
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "Status: pending|wip|review|valide")
	cmd.Flags().StringVar(&priority, "prio", "", "Priority: low|medium|high")
	cmd.Flags().StringVar(&due, "due", "", "Deadline (dd/mm/yyyy, yyyy-mm-dd, 3days, none)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress 0-100")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment")
	cmd.Flags().StringVar(&professor, "prof", "", "Professor")
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "move <item> <status|next|prev>",
		Short: "Move an item to another status",
		Args:  cobra.ExactArgs(2),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			it, err := resolveItem(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}

			var status models.Status
			switch strings.ToLower(args[1]) {
			case "next":
				status = it.Status.Next()
			case "prev":
				status = it.Status.Prev()
			default:
				if status, err = models.ParseStatus(args[1]); err != nil {
					return err
				}
			}

			moved, err := svc.MoveItemStatus(ctx, it.ID, status)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			printItem(cmd, "➡️  Moved", moved, svc.Now())
			return err
		}),
	}
	topLevel.AddCommand(cmd)
}

func addRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rm <item>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			it, err := resolveItem(svc.Snapshot(), args[0])
			if err != nil {
				return err
			}
			err = svc.DeleteItem(ctx, it.ID)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			fmt.Fprintf(out(cmd), "🗑️  Deleted %s: %s\n", shortID(it.ID), it.Title)
			return err
		}),
	}
	topLevel.AddCommand(cmd)
}

// printItem shows the state of an item after a change
func printItem(cmd *cobra.Command, verb string, it models.Item, today time.Time) {
	fmt.Fprintf(out(cmd), "%s %s: %s\n", verb, shortID(it.ID), it.Title)
	fmt.Fprintf(out(cmd), "Status: %s  Priority: %s  Progress: %d%%\n", it.Status.Label(), it.Priority.Label(), it.Progress)
	if it.HasDeadline() {
		fmt.Fprintf(out(cmd), "Deadline: %s\n", parser.FormatDeadline(it, today))
	}
	if it.Professor != "" {
		fmt.Fprintf(out(cmd), "Professor: %s\n", it.Professor)
	}
	if it.Comment != "" {
		fmt.Fprintf(out(cmd), "Comment: %s\n", it.Comment)
	}
}
