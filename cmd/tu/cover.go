package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func coverCommand() *cobra.Command {
	var fromFile string
	var clear bool
	var exportTo string

	cmd := &cobra.Command{
		Use:   "cover <file>",
		Short: "Show, replace or extract the embedded cover art",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			if clear && fromFile != "" {
				return usageError("--from and --clear are mutually exclusive")
			}

			if clear || fromFile != "" {
				var patch meta.Patch
				if clear {
					patch.SetCover(nil, "")
				} else {
					data, err := os.ReadFile(fromFile)
					if err != nil {
						return err
					}
					patch.SetCover(data, imageMIME(fromFile))
				}
				result, err := app.service.Apply(args[0], patch)
				if err != nil {
					return err
				}
				if !app.quiet {
					pterm.Success.Printfln("saved %s", result.Track.Path)
				}
				return app.printer.Print(result)
			}

			result, err := app.service.Show(args[0])
			if err != nil {
				return err
			}
			if exportTo != "" {
				if result.Track.Cover == nil {
					return core.WrapError(core.ExitNotFound, "no cover stored", nil)
				}
				if err := os.WriteFile(exportTo, result.Track.Cover.Data, 0o644); err != nil {
					return err
				}
				if !app.quiet {
					pterm.Success.Printfln("wrote %s", exportTo)
				}
				return nil
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().StringVar(&fromFile, "from", "", "replace the cover with an image file")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the embedded cover")
	cmd.Flags().StringVarP(&exportTo, "out", "o", "", "write the embedded cover to a file")

	return cmd
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
