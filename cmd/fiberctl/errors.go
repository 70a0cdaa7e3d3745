package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Long: `List every error code the reconciler and fiberctl can report, or
print the full explanation of a single code.

Examples:
  fiberctl errors
  fiberctl errors F004`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				if _, ok := errors.GetTemplate(args[0]); !ok {
					return errors.New("F042").WithSubject("%s", args[0])
				}
				fmt.Fprint(w, errors.New(args[0]).Format())
				return nil
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(w)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"code", "category", "message"})
			for _, code := range errors.GetAllCodes() {
				tmpl, _ := errors.GetTemplate(code)
				tbl.AppendRow(table.Row{code, tmpl.Category, tmpl.Message})
			}
			tbl.Render()
			return nil
		},
	}
}
