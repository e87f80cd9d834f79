package main

import (
	"github.com/spf13/cobra"
)

func lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [query]",
		Short: "List tracks, optionally filtered",
		Long:  "List tracks in library order. A query matches title, artist or album, case-insensitively.",
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
			return app.printer.Print(app.service.List(query))
		},
	}
}
