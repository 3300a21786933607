package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/handiism/metarenamer/internal/audio"
	ioutils "github.com/handiism/metarenamer/internal/io"
	"github.com/handiism/metarenamer/internal/metadata"
	"github.com/handiism/metarenamer/internal/naming"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "list <path>",
		Short: "Show the metadata of media files and where they would be filed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			size, err := ioutils.TreeSize(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s [%s] %s\n", path, ioutils.Attributes(path), humanize.Bytes(uint64(size)))

			files := []string{path}
			if info.IsDir() {
				files = files[:0]
				err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
					if err != nil {
						return err
					}
					if d.Type().IsRegular() && audio.IsSupported(p) {
						files = append(files, p)
					}
					return nil
				})
				if err != nil {
					return err
				}
			}

			reader := audio.NewReader()
			normalizer := metadata.NewNormalizer(settings.ToNormalizerOptions())
			pattern := settings.ToPattern()
			for _, file := range files {
				if err := listFile(out, reader, normalizer, pattern, file, raw); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", file, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Dump every raw tag instead of the mapped fields")
	return cmd
}

func listFile(out io.Writer, reader *audio.Reader, normalizer *metadata.Normalizer, pattern naming.Pattern, path string, raw bool) error {
	fmt.Fprintf(out, "\n%s [%s]\n", path, ioutils.Attributes(path))

	if raw {
		tags, err := reader.Dump(path)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderRecord(tags.Keys(), tags.Get, nil))
		return nil
	}

	rec, err := reader.Read(path)
	if err != nil {
		return err
	}
	normalized, diags := normalizer.Normalize(rec)
	fmt.Fprintln(out, renderRecord(normalized.Keys(), rec.Get, normalized.Get))
	for _, d := range diags {
		fmt.Fprintf(out, "warning: %s\n", d)
	}
	fmt.Fprintf(out, "-> %s\n", pattern.Render(normalized, filepath.Ext(path)))
	return nil
}

// renderRecord renders keys with their raw and, when given, normalized
// values.
func renderRecord(keys []string, raw, normalized func(string) string) string {
	headers := []string{"Key", "Value"}
	if normalized != nil {
		headers = []string{"Key", "Tag", "Normalized"}
	}
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		row := []string{key, raw(key)}
		if normalized != nil {
			row = append(row, normalized(key))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, nil)
}
