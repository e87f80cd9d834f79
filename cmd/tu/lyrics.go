package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func lyricsCommand() *cobra.Command {
	var fromFile string
	var clear bool

	cmd := &cobra.Command{
		Use:   "lyrics <file>",
		Short: "Show or update the lyrics of a file",
		Long: "Without flags, print the lyrics stored in the file. With --from,\n" +
			"replace them with the contents of a text file (or stdin with '-').\n" +
			"With --clear, remove them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			if clear && fromFile != "" {
				return usageError("--from and --clear are mutually exclusive")
			}

			if !clear && fromFile == "" {
				result, err := app.service.Show(args[0])
				if err != nil {
					return err
				}
				if app.json {
					return app.printer.Print(result)
				}
				lyrics, ok := result.Track.Record.Get(meta.FieldLyrics)
				if !ok {
					return core.WrapError(core.ExitNotFound, "no lyrics stored", nil)
				}
				_, err = fmt.Fprintln(os.Stdout, lyrics)
				return err
			}

			var patch meta.Patch
			if clear {
				patch.SetLyrics("")
			} else {
				text, err := readFileOrStdin(fromFile)
				if err != nil {
					return err
				}
				patch.SetLyrics(string(text))
			}

			result, err := app.service.Apply(args[0], patch)
			if err != nil {
				return err
			}
			if !app.quiet {
				pterm.Success.Printfln("saved %s", result.Track.Path)
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().StringVar(&fromFile, "from", "", "read lyrics from a file, or - for stdin")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the stored lyrics")

	return cmd
}
