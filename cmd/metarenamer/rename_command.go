package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/handiism/metarenamer/internal/config"
	"github.com/handiism/metarenamer/internal/model"
	"github.com/handiism/metarenamer/internal/rename"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		pattern     string
		mode        string
		dryRun      bool
		overwrite   bool
		playlist    bool
		writeTags   bool
		backup      string
		concurrency int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "rename <source> [library]",
		Short: "Move media files into the library using their tags",
		Long: "Reads the tags of every media file below <source>, normalizes them and " +
			"files each one under [library] (or library_path from the config) " +
			"according to the naming pattern.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			settings := *loaded

			if len(args) == 2 {
				settings.LibraryPath = args[1]
			}
			flags := cmd.Flags()
			if flags.Changed("pattern") {
				settings.Pattern = pattern
			}
			if flags.Changed("mode") {
				settings.Mode = mode
			}
			if dryRun {
				settings.Mode = config.ModeDryRun
			}
			if flags.Changed("overwrite") {
				settings.Overwrite = overwrite
			}
			if flags.Changed("playlist") {
				settings.CreatePlaylist = playlist
			}
			if flags.Changed("write-tags") {
				settings.WriteTags = writeTags
			}
			if flags.Changed("backup") {
				settings.BackupPath = backup
			}
			if flags.Changed("concurrency") {
				settings.MaxConcurrentItems = concurrency
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := newProgressPrinter(out, verbose)
			manager := rename.NewManager(&settings, printer.handle)
			manager.SetLogger(ctx.logger())

			if err := manager.Initialize(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("plan rename: %w", err)
			}

			if settings.DryRun() {
				fmt.Fprintln(out, renderPlan(manager.Items(), settings.LibraryPath))
			}

			summary, err := manager.Start(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(out, summaryLine(settings.Mode, summary))
			if summary.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Naming pattern (overrides config)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Relocation mode: move, copy or dry-run")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Only show what would happen")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files at the destination")
	cmd.Flags().BoolVar(&playlist, "playlist", false, "Write a playlist per album folder")
	cmd.Flags().BoolVar(&writeTags, "write-tags", false, "Write normalized tags back to MP3 files")
	cmd.Flags().StringVar(&backup, "backup", "", "Copy the source tree here before moving")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Files relocated in parallel")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every file")

	return cmd
}

// renderPlan lists planned relocations, with destinations relative to the
// library.
func renderPlan(items []*model.Item, library string) string {
	if abs, err := filepath.Abs(library); err == nil {
		library = abs
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		dest := item.Destination
		if rel, err := filepath.Rel(library, dest); err == nil {
			dest = rel
		}
		rows = append(rows, []string{
			filepath.Base(item.SourcePath),
			dest,
			humanize.Bytes(uint64(item.Size)),
			item.Status.String(),
		})
	}
	return renderTable(
		[]string{"Source", "Destination", "Size", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func summaryLine(mode string, s rename.Summary) string {
	if mode == config.ModeDryRun {
		return fmt.Sprintf("Dry run: %d to relocate, %d unchanged", s.Pending, s.Skipped)
	}
	return fmt.Sprintf("Run %s: %d relocated (%s), %d unchanged, %d failed",
		s.RunID, s.Done, humanize.Bytes(uint64(s.Bytes)), s.Skipped, s.Failed)
}
