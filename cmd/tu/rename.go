package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/rename"
)

func renameCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename [query]",
		Short: "Rename files after their tags",
		Long: "Rename every matching file to artist_-_title derived from its\n" +
			"tags. Files already carrying their proposed name are skipped.",
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			if err := app.loadLibrary(cmd.Context()); err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			view := app.service.View(query)

			if dryRun {
				report := &rename.Report{}
				for _, track := range view.Tracks() {
					newPath := filepath.Join(filepath.Dir(track.Path), rename.ProposedName(track))
					report.Items = append(report.Items, rename.Result{
						Path:    track.Path,
						NewPath: newPath,
						Renamed: newPath != track.Path,
					})
				}
				return app.printer.Print(core.RenameResult{Report: report})
			}

			result, err := app.service.RenameAll(view)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show proposed names without renaming")

	return cmd
}
