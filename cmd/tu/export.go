package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func exportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export [query]",
		Short: "Export matching tracks as CSV",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			if err := app.loadLibrary(cmd.Context()); err != nil {
				return err
			}

			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			out := os.Stdout
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := app.service.Export(out, query); err != nil {
				return err
			}
			if !app.quiet && outPath != "" && outPath != "-" {
				pterm.Success.Printfln("wrote %s", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write CSV to a file instead of stdout")

	return cmd
}
