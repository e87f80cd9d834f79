package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func setCommand() *cobra.Command {
	values := map[meta.Field]*string{}
	for _, field := range meta.TextFields {
		values[field] = new(string)
	}

	cmd := &cobra.Command{
		Use:   "set <file>...",
		Short: "Update tag fields on one or more files",
		Long: "Update tag fields. Only the flags given are written; every other\n" +
			"field in the file is left untouched. Setting a flag to an empty\n" +
			"string removes the field from the file. With several files the\n" +
			"same change is applied to each one.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			var patch meta.Patch
			for _, field := range meta.TextFields {
				if cmd.Flags().Changed(string(field)) {
					patch.SetField(field, *values[field])
				}
			}
			if patch.IsEmpty() {
				return usageError("no fields given, nothing to write")
			}

			if len(args) > 1 {
				result, err := app.service.ApplyBatch(cmd.Context(), args, patch)
				if err != nil {
					return err
				}
				return app.printer.Print(result)
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

	for _, field := range meta.TextFields {
		cmd.Flags().StringVar(values[field], string(field), "", "set the "+string(field)+" field")
	}

	return cmd
}
