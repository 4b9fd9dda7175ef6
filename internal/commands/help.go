package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func addHelp(topLevel *cobra.Command) {
	topLevel.SetHelpCommand(&cobra.Command{
		Use:   "help [command]",
		Short: "Show comprehensive help for fiches",
		Long:  `Display detailed help for all fiches commands and flags.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				if sub, _, err := topLevel.Find(args); err == nil && sub != topLevel {
					_ = sub.Help()
					return
				}
			}
			showCustomHelp(out(cmd))
		},
	})
}

func addVersion(topLevel *cobra.Command) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the fiches version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(out(cmd), "fiches %s (commit %s, built %s)\n", version, commit, date)
		},
	})
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
███████╗██╗ ██████╗██╗  ██╗███████╗███████╗
██╔════╝██║██╔════╝██║  ██║██╔════╝██╔════╝
█████╗  ██║██║     ███████║█████╗  ███████╗
██╔══╝  ██║██║     ██╔══██║██╔══╝  ╚════██║
██║     ██║╚██████╗██║  ██║███████╗███████║
╚═╝     ╚═╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝

fiches - course sheet production tracker

COMMANDS:

  ls                      List items of the active university
    -s, --search          Filter by title or subject text
    --sort                Sort: title|status|priority|deadline|progress
    --desc                Sort descending
    -g, --group           Group by subject
    --json                JSON output

  kpi                     Totals, validated %, overdue, average progress

  board                   Interactive board (table, kanban, calendar)
    Quick actions:
      ↑/↓ ←/→       Navigate
      tab           Next view
      u             Next university
      n/p           Move status forward/back
      +/-           Progress +10/-10
      e             Edit with the update syntax
      /             Search
      s/S           Sort column / direction
      o             Overdue filter on/off
      x             Clear filters
      d             Delete item
      r             Reload from database
      esc/q         Quit

  update <item> [expr]    Update an item
    Smart syntax:
      +priority     Set priority (low/medium/high)
      status:X      Set status (pending/wip/review/valide)
      80%           Set progress
      due:X         Set deadline (15/12/2026, 3days, none)
      prof:Name     Set professor

    Example:
      fiches update 3f2a "+high 80% due:2weeks relire la partie 2"

  move <item> <status>    Move to a status, or next / prev
  rm <item>               Delete an item

  subject ls              Subjects with owner, progress, next deadline
  subject assign <s>      --owner, --method, --remark
  subject deadline <s> <date>
                          Same deadline on every item of the subject
  subject rm <s>          Delete a subject and its items

  uni ls | use <u> | rm <u>

  filter set <field> <value>
                          Fields: subject, owner, status, priority,
                          overdue, deadline ("all" clears one)
  filter clear | show
  view <table|kanban|calendar>

  import <file.xlsx>      Import a workbook (one sheet per university)
  export [path|-]         JSON backup (dashboard-refonte-YYYY-MM-DD.json)
  restore <file.json>     Load a backup
    --mode                merge (default) or replace
  purge --yes             Delete everything

  version                 Print version
  help                    Show this help

GLOBAL FLAGS:
  --driver                sqlite (default), postgres or memory
  --db                    SQLite file (default ~/.fiches/fiches.db)
  --dsn                   Postgres connection string
  --verbose               Also log to stderr

Items, subjects and universities are given by id, id prefix or name.
Configuration: ~/.fiches.yaml or ./.fiches.yaml, FICHES_* environment variables.

`)
}
