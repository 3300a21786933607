package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/handiism/metarenamer/internal/journal"
)

func (c *commandContext) withJournal(fn func(*journal.Journal) error) error {
	settings, err := c.ensureSettings()
	if err != nil {
		return err
	}
	if settings.JournalPath == "" {
		return fmt.Errorf("no journal_path configured")
	}
	j, err := journal.Open(settings.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()
	return fn(j)
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded rename runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(j *journal.Journal) error {
				runs, err := j.Runs(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{
						r.ID,
						humanize.Time(r.StartedAt),
						r.Mode,
						strconv.Itoa(r.Entries),
						yesNo(r.Entries > 0 && r.Undone == r.Entries),
						r.Source,
						r.Library,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Mode", "Files", "Undone", "Source", "Library"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <run-id>",
		Short: "Move the files of a run back where they came from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(j *journal.Journal) error {
				n, err := j.Undo(cmd.Context(), args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "Reverted %d file(s) of run %s\n", n, args[0])
				return err
			})
		},
	}
}
