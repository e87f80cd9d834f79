package main

import (
	"github.com/spf13/cobra"
)

func showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show the tags of a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			result, err := app.service.Show(args[0])
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}
