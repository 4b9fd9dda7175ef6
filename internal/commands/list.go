package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/parser"
	"github.com/balkashynov/fiches/internal/selectors"
)

func addList(topLevel *cobra.Command) {
	var (
		search     string
		sortBy     string
		descending bool
		grouped    bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the items of the active university",
		Long: `List the items of the active university, with the saved filters applied.

Sort columns: title, status, priority, deadline, progress.`,
		Args: cobra.NoArgs,
		RunE: withService(func(_ context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			column, err := selectors.ParseSortColumn(sortBy)
			if err != nil {
				return err
			}
			store := svc.Snapshot()
			univ, err := activeUniversity(store)
			if err != nil {
				return err
			}
			today := svc.Now()

			items := selectors.FilteredItems(store, today)
			items = selectors.Search(univ, items, search)
			items = selectors.SortItems(items, column, descending)

			if jsonOutput {
				return renderItemsJSON(out(cmd), univ, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out(cmd), "No items found. Use 'fiches import <file.xlsx>' to load a workbook, or 'fiches filter clear'.")
				return nil
			}
			if grouped {
				for _, g := range selectors.GroupBySubject(univ, items) {
					fmt.Fprintf(out(cmd), "\n%s  %d%%  %s\n", g.Subject.Name, g.Progress, g.Subject.Owner)
					fmt.Fprintln(out(cmd), itemTable(univ, g.Items, today))
				}
				return nil
			}
			fmt.Fprintf(out(cmd), "%s: %d items\n", univ.Name, len(items))
			fmt.Fprintln(out(cmd), itemTable(univ, items, today))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only items whose title or subject contains this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort column: title|status|priority|deadline|progress")
	cmd.Flags().BoolVar(&descending, "desc", false, "Sort descending")
	cmd.Flags().BoolVarP(&grouped, "group", "g", false, "Group by subject")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	topLevel.AddCommand(cmd)
}

// itemTable renders items with their subject, owner and deadline
func itemTable(univ *models.University, items []models.Item, today time.Time) *uitable.Table {
	tbl := uitable.New()
	tbl.MaxColWidth = 40
	tbl.Separator = "  "
	tbl.AddRow("ID", "SUBJECT", "TITLE", "STATUS", "PRIORITY", "PROGRESS", "DEADLINE", "OWNER")
	for _, it := range items {
		subject := it.SubjectNameCache
		owner := ""
		if s := univ.FindSubject(it.SubjectID); s != nil {
			subject = s.Name
			owner = s.Owner
		}
		tbl.AddRow(
			shortID(it.ID),
			subject,
			it.Title,
			it.Status.Label(),
			it.Priority.Label(),
			fmt.Sprintf("%d%%", selectors.EffectiveProgress(it)),
			parser.FormatDeadline(it, today),
			owner,
		)
	}
	tbl.RightAlign(5)
	return tbl
}

// renderItemsJSON outputs items as JSON
func renderItemsJSON(w io.Writer, univ *models.University, items []models.Item) error {
	type jsonItem struct {
		models.Item
		SubjectName string `json:"subjectName"`
		Owner       string `json:"owner,omitempty"`
	}
	rows := make([]jsonItem, 0, len(items))
	for _, it := range items {
		row := jsonItem{Item: it, SubjectName: it.SubjectNameCache}
		if s := univ.FindSubject(it.SubjectID); s != nil {
			row.SubjectName = s.Name
			row.Owner = s.Owner
		}
		rows = append(rows, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func addKPI(topLevel *cobra.Command) {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Show the indicators of the filtered items",
		Args:  cobra.NoArgs,
		RunE: withService(func(_ context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
			store := svc.Snapshot()
			univ, err := activeUniversity(store)
			if err != nil {
				return err
			}
			kpis := selectors.ComputeKPIs(store, svc.Now())
			if jsonOutput {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(kpis)
			}

			fmt.Fprintf(out(cmd), "📊 %s\n", univ.Name)
			if !store.UI.Filters.IsZero() {
				fmt.Fprintf(out(cmd), "Filters: %s\n", describeFilters(store))
			}
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow("Total", kpis.Total)
			tbl.AddRow("Validated", fmt.Sprintf("%d (%d%%)", kpis.Validated, kpis.ValidatedPercent))
			tbl.AddRow("Overdue", kpis.Overdue)
			tbl.AddRow("Average progress", fmt.Sprintf("%d%%", kpis.AverageProgress))
			for _, s := range models.Statuses {
				tbl.AddRow("  "+s.Label(), kpis.ByStatus[s])
			}
			fmt.Fprintln(out(cmd), tbl)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
	topLevel.AddCommand(cmd)
}

// describeFilters renders the active filters on one line
func describeFilters(store *models.Store) string {
	f := store.UI.Filters
	var parts []string
	if f.SubjectID != "" {
		name := f.SubjectID
		if s := selectors.SubjectByID(store, f.SubjectID); s != nil {
			name = s.Name
		}
		parts = append(parts, "subject="+name)
	}
	if f.Owner != "" {
		parts = append(parts, "owner="+f.Owner)
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status.Label())
	}
	if f.Priority != "" {
		parts = append(parts, "priority="+f.Priority.Label())
	}
	if f.OverdueOnly {
		parts = append(parts, "overdue")
	}
	if f.HasDeadline != models.Any {
		parts = append(parts, "deadline="+f.HasDeadline.String())
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
