package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/importer"
)

func addImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import items from a spreadsheet",
		Long: `Import items from a spreadsheet. Each sheet is a university; column A is
the subject (blank repeats the previous one), column B the item title.
Existing items are kept, new ones are added, so importing twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			sheets, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}
			report, err := svc.ImportWorkbook(ctx, sheets)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}

			fmt.Fprintf(out(cmd), "📥 Imported %s\n", filepath.Base(args[0]))
			fmt.Fprintf(out(cmd), "Rows read: %d\n", report.Rows)
			fmt.Fprintf(out(cmd), "New items: %d\n", report.Created)
			fmt.Fprintf(out(cmd), "New subjects: %d\n", report.CreatedSubjects)
			fmt.Fprintf(out(cmd), "New universities: %d\n", report.CreatedUniversities)
			return err
		}),
	}
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write a JSON backup of everything",
		Long: `Write a JSON backup of every university, subject and item plus the saved
view and filters. The default file name is dashboard-refonte-YYYY-MM-DD.json;
"-" writes to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withService(func(_ context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			store := svc.Snapshot()
			if len(args) == 1 && args[0] == "-" {
				return importer.Export(out(cmd), store)
			}

			path := importer.ExportFilename(svc.Now())
			if len(args) == 1 {
				path = args[0]
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := importer.Export(f, store); err != nil {
				f.Close()
				return fmt.Errorf("failed to write export: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "💾 Exported %d universities to %s\n", len(store.Universities), path)
			return nil
		}),
	}
	topLevel.AddCommand(cmd)
}

func addRestore(topLevel *cobra.Command) {
	var mode string
	cmd := &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Load a JSON backup",
		Long: `Load a JSON backup made with 'fiches export'.

--mode merge (default) adds what is missing and fills empty fields;
--mode replace discards the current data.
An invalid file changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: withService(func(ctx context.Context, cmd *cobra.Command, args []string, svc *actions.Service) error {
			m, err := actions.ParseImportMode(mode)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			imported, err := importer.DecodeSnapshot(f)
			if err != nil {
				return err
			}

			report, err := svc.ImportSnapshot(ctx, imported, m)
			if err != nil && !actions.IsSyncWarning(err) {
				return err
			}
			fmt.Fprintf(out(cmd), "♻️  Restored %s (%s)\n", filepath.Base(args[0]), m)
			if m == actions.Merge {
				fmt.Fprintf(out(cmd), "Added: %d universities, %d subjects, %d items\n",
					report.AddedUniversities, report.AddedSubjects, report.AddedItems)
				fmt.Fprintf(out(cmd), "Merged items: %d\n", report.MergedItems)
				if report.SkippedItems > 0 {
					fmt.Fprintf(out(cmd), "Skipped items without subject: %d\n", report.SkippedItems)
				}
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", "merge", "merge or replace")
	topLevel.AddCommand(cmd)
}

func addPurge(topLevel *cobra.Command) {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every university, subject and item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes everything; run 'fiches export' first and confirm with --yes")
			}
			return withService(func(ctx context.Context, cmd *cobra.Command, _ []string, svc *actions.Service) error {
				err := svc.DeleteAll(ctx)
				if err != nil && !actions.IsSyncWarning(err) {
					return err
				}
				fmt.Fprintln(out(cmd), "🧹 All data deleted")
				return err
			})(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	topLevel.AddCommand(cmd)
}
