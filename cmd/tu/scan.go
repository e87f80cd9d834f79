package main

import (
	"github.com/spf13/cobra"
)

func scanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan a directory tree into the library",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			if len(args) == 1 {
				app.root = args[0]
			}
			if app.root == "" {
				return requireRoot()
			}

			result, err := app.service.Scan(cmd.Context(), app.root)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}
